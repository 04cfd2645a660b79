package implementation

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapDBError(t *testing.T) {
	assert.NoError(t, wrapDBError("noop", nil))

	plain := wrapDBError("update account", errors.New("connection reset"))
	assert.EqualError(t, plain, "update account: connection reset")

	pgErr := &pgconn.PgError{Code: "23514", ConstraintName: "chk_welcome_books_credits_non_negative", Message: "check violation"}
	wrapped := wrapDBError("update account", pgErr)
	assert.Contains(t, wrapped.Error(), "sqlstate 23514")
	assert.Contains(t, wrapped.Error(), "chk_welcome_books_credits_non_negative")
	assert.True(t, errors.Is(wrapped, pgErr))
	assert.True(t, IsCheckViolation(wrapped))
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, IsCheckViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, IsCheckViolation(wrapDBError("commit", &pgconn.PgError{Code: "40001"})))
	assert.False(t, IsCheckViolation(errors.New("boom")))
}
