package repository

import (
	"context"
	"dentalcms/internal/logger"
	"dentalcms/internal/models"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PasswordResetRepository struct {
	db *pgxpool.Pool
}

func NewPasswordResetRepository(db *pgxpool.Pool) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

type PasswordResetRepo interface {
	ReplaceForUser(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) (int64, error)
	GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ReplaceForUser удаляет все прежние токены пользователя и сохраняет новый
// в одной транзакции: активным остаётся не больше одного.
func (r *PasswordResetRepository) ReplaceForUser(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) (int64, error) {
	var id int64
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES ($1,$2,$3) RETURNING id`,
			userID, tokenHash, expiresAt,
		).Scan(&id)
	})
	if err != nil {
		logger.Log.Error("Create reset token failed", zap.Error(err), zap.Int("user_id", userID))
		return 0, err
	}
	return id, nil
}

// GetByHash возвращает запись без фильтра по сроку и used_at: решение
// о валидности принимает сервис по своим часам.
func (r *PasswordResetRepository) GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = $1
	`, tokenHash)

	var t models.PasswordResetToken
	if err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// MarkUsed ставит used_at, только если он ещё не стоит. true — отметили именно мы.
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE password_reset_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL`, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at <= $1 OR used_at IS NOT NULL`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
