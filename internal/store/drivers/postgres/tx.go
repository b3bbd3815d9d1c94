package postgres

import (
	"context"
	"database/sql"

	"github.com/Djalobre/kvotizza/internal/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller will commit/rollback; outer DB stays open

// Ping is a no-op for transactions; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations are applied before any tx starts

func (t *txStore) Users() store.Users                           { return &usersRepo{db: t.tx} }
func (t *txStore) VerificationTokens() store.VerificationTokens { return &verificationTokensRepo{db: t.tx} }
func (t *txStore) PasswordResetTokens() store.PasswordResetTokens {
	return &passwordResetTokensRepo{db: t.tx}
}
func (t *txStore) RefreshTokens() store.RefreshTokens     { return &refreshTokensRepo{db: t.tx} }
func (t *txStore) AffiliateClicks() store.AffiliateClicks { return &affiliateClicksRepo{db: t.tx} }
