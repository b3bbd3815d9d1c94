package postgres

import (
	"context"
	"time"

	"github.com/Djalobre/kvotizza/internal/domain"
)

type verificationTokensRepo struct {
	db querier
}

func (r *verificationTokensRepo) CreateVerificationToken(ctx context.Context, t domain.VerificationToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_tokens (token, email, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		t.Token, t.Email, t.ExpiresAt, t.CreatedAt)
	return mapConstraint(err)
}

func (r *verificationTokensRepo) GetVerificationToken(ctx context.Context, token string) (domain.VerificationToken, error) {
	var t domain.VerificationToken
	err := r.db.QueryRowContext(ctx,
		`SELECT token, email, expires_at, created_at FROM verification_tokens WHERE token = $1`,
		token).Scan(&t.Token, &t.Email, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.VerificationToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *verificationTokensRepo) DeleteVerificationToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE token = $1`, token)
	return err
}

func (r *verificationTokensRepo) DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE expires_at <= $1`, now)
	return err
}

type passwordResetTokensRepo struct {
	db querier
}

func (r *passwordResetTokensRepo) CreatePasswordResetToken(ctx context.Context, t domain.PasswordResetToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (token, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		t.Token, t.UserID, t.ExpiresAt, t.CreatedAt)
	return mapConstraint(err)
}

func (r *passwordResetTokensRepo) GetPasswordResetToken(ctx context.Context, token string) (domain.PasswordResetToken, error) {
	var t domain.PasswordResetToken
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM password_reset_tokens WHERE token = $1`,
		token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *passwordResetTokensRepo) DeletePasswordResetToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE token = $1`, token)
	return err
}

func (r *passwordResetTokensRepo) DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at <= $1`, now)
	return err
}
