package auth

import (
	"context"

	"github.com/jakewray/portfolio/internal/domain/model"
)

type adminKey struct{}

// NewContext returns a copy of ctx carrying the authenticated administrator.
func NewContext(ctx context.Context, admin *model.Administrator) context.Context {
	return context.WithValue(ctx, adminKey{}, admin)
}

// FromContext returns the administrator stored by NewContext, if any.
func FromContext(ctx context.Context) (*model.Administrator, bool) {
	admin, ok := ctx.Value(adminKey{}).(*model.Administrator)
	return admin, ok && admin != nil
}
