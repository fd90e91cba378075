package middleware

import (
	"context"
	"dentalcms/internal/models"
	"dentalcms/internal/reqctx"
)

type ctxKey string

const (
	ContextUser ctxKey = "user"
	ContextRole ctxKey = "role"
)

// withUser кладёт в контекст публичный профиль, id и роль пользователя.
func withUser(ctx context.Context, u *models.PublicUser) context.Context {
	ctx = context.WithValue(ctx, ContextUser, u)
	ctx = context.WithValue(ctx, ContextRole, u.Role)
	return reqctx.WithUserID(ctx, u.ID)
}

func UserFromContext(ctx context.Context) (*models.PublicUser, bool) {
	u, ok := ctx.Value(ContextUser).(*models.PublicUser)
	return u, ok && u != nil
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	return reqctx.GetUserID(ctx)
}

func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ContextRole).(string)
	return role, ok
}
