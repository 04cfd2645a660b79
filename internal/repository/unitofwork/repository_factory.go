package unitofwork

import "context"

// RepositoryFactory hands out a fresh UnitOfWork per request or per account.
// Services never share a UnitOfWork across goroutines.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
