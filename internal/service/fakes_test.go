package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"welcomeapp-be/internal/dto"
	"welcomeapp-be/internal/entity"
	"welcomeapp-be/internal/repository/contract"
	"welcomeapp-be/internal/repository/specification"
	"welcomeapp-be/internal/repository/unitofwork"
)

// fakeStore is an in-memory stand-in for the database. Writes made inside a
// unit of work transaction are staged and only applied on Commit.
type fakeStore struct {
	mu     sync.Mutex
	books  []*entity.WelcomeBook
	ledger []*entity.CreditTransaction
	runs   []*entity.CronRun

	fetchErr       error
	updateErrs     map[string]error
	ledgerErrs     map[string]error
	suspendedAtErr map[string]error
	updatePanics   map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		updateErrs:     make(map[string]error),
		ledgerErrs:     make(map[string]error),
		suspendedAtErr: make(map[string]error),
		updatePanics:   make(map[string]string),
	}
}

func (s *fakeStore) addBooks(email string, count, balance int, last time.Time, status entity.AccountStatus, suspendedAt *time.Time) {
	for i := 0; i < count; i++ {
		s.books = append(s.books, &entity.WelcomeBook{
			UserEmail:             email,
			CreditsBalance:        balance,
			LastCreditConsumption: last,
			AccountStatus:         status,
			SuspendedAt:           suspendedAt,
		})
	}
}

func (s *fakeStore) account(email string) *entity.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := s.groupLocked(func(*entity.WelcomeBook) bool { return true })
	for _, a := range accounts {
		if a.UserEmail == email {
			return a
		}
	}
	return nil
}

func (s *fakeStore) ledgerFor(email string) []*entity.CreditTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.CreditTransaction
	for _, tx := range s.ledger {
		if tx.UserEmail == email {
			out = append(out, tx)
		}
	}
	return out
}

func (s *fakeStore) groupLocked(keep func(*entity.WelcomeBook) bool) []*entity.Account {
	var order []string
	byEmail := make(map[string]*entity.Account)
	for _, b := range s.books {
		if !keep(b) {
			continue
		}
		a, ok := byEmail[b.UserEmail]
		if !ok {
			a = &entity.Account{
				UserEmail:             b.UserEmail,
				CreditsBalance:        b.CreditsBalance,
				LastCreditConsumption: b.LastCreditConsumption,
				AccountStatus:         b.AccountStatus,
				SuspendedAt:           b.SuspendedAt,
			}
			byEmail[b.UserEmail] = a
			order = append(order, b.UserEmail)
		}
		a.WelcomebookCount++
	}

	out := make([]*entity.Account, 0, len(order))
	for _, email := range order {
		out = append(out, byEmail[email])
	}
	return out
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{store: f.store}
}

type fakeUoW struct {
	store   *fakeStore
	inTx    bool
	pending []func()
}

func (u *fakeUoW) Begin(ctx context.Context) error {
	if u.inTx {
		return errors.New("transaction already started")
	}
	u.inTx = true
	return nil
}

func (u *fakeUoW) Commit() error {
	if !u.inTx {
		return errors.New("no transaction to commit")
	}
	u.store.mu.Lock()
	for _, apply := range u.pending {
		apply()
	}
	u.store.mu.Unlock()
	u.pending = nil
	u.inTx = false
	return nil
}

func (u *fakeUoW) Rollback() error {
	u.pending = nil
	u.inTx = false
	return nil
}

// write applies immediately outside a transaction and stages inside one
func (u *fakeUoW) write(apply func()) {
	if u.inTx {
		u.pending = append(u.pending, apply)
		return
	}
	u.store.mu.Lock()
	apply()
	u.store.mu.Unlock()
}

func (u *fakeUoW) AccountRepository() contract.AccountRepository {
	return &fakeAccountRepo{uow: u}
}

func (u *fakeUoW) CreditTransactionRepository() contract.CreditTransactionRepository {
	return &fakeLedgerRepo{uow: u}
}

func (u *fakeUoW) CronRunRepository() contract.CronRunRepository {
	return &fakeCronRunRepo{uow: u}
}

type fakeAccountRepo struct {
	uow *fakeUoW
}

func (r *fakeAccountRepo) CreateWelcomeBook(ctx context.Context, book *entity.WelcomeBook) error {
	r.uow.write(func() { r.uow.store.books = append(r.uow.store.books, book) })
	return nil
}

func (r *fakeAccountRepo) FindWelcomeBooks(ctx context.Context, specs ...specification.Specification) ([]*entity.WelcomeBook, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.WelcomeBook(nil), s.books...), nil
}

func (r *fakeAccountRepo) FindConsumptionCandidates(ctx context.Context) ([]*entity.Account, error) {
	s := r.uow.store
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := s.groupLocked(func(b *entity.WelcomeBook) bool {
		if b.AccountStatus == entity.AccountStatusGracePeriod {
			return true
		}
		return b.CreditsBalance > 0 &&
			b.AccountStatus != entity.AccountStatusSuspended &&
			b.AccountStatus != entity.AccountStatusToDelete
	})
	for _, a := range accounts {
		a.WelcomebookCount = 0
		for _, b := range s.books {
			if b.UserEmail == a.UserEmail {
				a.WelcomebookCount++
			}
		}
	}
	return accounts, nil
}

func (r *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.uow.store.account(strings.ToLower(email)), nil
}

func (r *fakeAccountRepo) FindSuspendedAt(ctx context.Context, email string) (*time.Time, error) {
	s := r.uow.store
	if err := s.suspendedAtErr[email]; err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.UserEmail == email && b.SuspendedAt != nil {
			t := *b.SuspendedAt
			return &t, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) UpdateByEmail(ctx context.Context, email string, update entity.AccountUpdate) (int64, error) {
	s := r.uow.store
	if err := s.updateErrs[email]; err != nil {
		return 0, err
	}
	if msg, ok := s.updatePanics[email]; ok {
		panic(msg)
	}

	s.mu.Lock()
	var rows int64
	for _, b := range s.books {
		if b.UserEmail == email {
			rows++
		}
	}
	s.mu.Unlock()

	r.uow.write(func() {
		for _, b := range s.books {
			if b.UserEmail != email {
				continue
			}
			if update.CreditsBalance != nil {
				b.CreditsBalance = *update.CreditsBalance
			}
			if update.AccountStatus != nil {
				b.AccountStatus = *update.AccountStatus
			}
			if update.SuspendedAt != nil {
				t := *update.SuspendedAt
				b.SuspendedAt = &t
			}
			if update.LastCreditConsumption != nil {
				b.LastCreditConsumption = *update.LastCreditConsumption
			}
		}
	})
	return rows, nil
}

func (r *fakeAccountRepo) CountByStatus(ctx context.Context, status entity.AccountStatus) (int64, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := s.groupLocked(func(b *entity.WelcomeBook) bool { return b.AccountStatus == status })
	return int64(len(accounts)), nil
}

type fakeLedgerRepo struct {
	uow *fakeUoW
}

func (r *fakeLedgerRepo) Create(ctx context.Context, tx *entity.CreditTransaction) error {
	if err := r.uow.store.ledgerErrs[tx.UserEmail]; err != nil {
		return err
	}
	r.uow.write(func() { r.uow.store.ledger = append(r.uow.store.ledger, tx) })
	return nil
}

func (r *fakeLedgerRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.CreditTransaction(nil), s.ledger...), nil
}

func (r *fakeLedgerRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.ledger)), nil
}

type fakeCronRunRepo struct {
	uow *fakeUoW
}

func (r *fakeCronRunRepo) Create(ctx context.Context, run *entity.CronRun) error {
	r.uow.write(func() { r.uow.store.runs = append(r.uow.store.runs, run) })
	return nil
}

func (r *fakeCronRunRepo) FindLatest(ctx context.Context, jobName string) (*entity.CronRun, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *entity.CronRun
	for _, run := range s.runs {
		if run.JobName == jobName && (latest == nil || run.StartedAt.After(latest.StartedAt)) {
			latest = run
		}
	}
	return latest, nil
}

func (r *fakeCronRunRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CronRun, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.CronRun(nil), s.runs...), nil
}

func (r *fakeCronRunRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	s := r.uow.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.runs)), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []dto.AccountLifecycleEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, event dto.AccountLifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}
