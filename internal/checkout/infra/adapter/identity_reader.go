package adapter

import (
	"context"

	authapp "github.com/dwikikusuma/collegemart/internal/auth/app"
)

type AuthIdentityReader struct {
	svc *authapp.Service
}

func NewAuthIdentityReader(svc *authapp.Service) *AuthIdentityReader {
	return &AuthIdentityReader{svc: svc}
}

func (r *AuthIdentityReader) CurrentUserID(ctx context.Context) (string, bool) {
	u, ok := r.svc.CurrentUser(ctx)
	if !ok {
		return "", false
	}
	if u.ID != "" {
		return u.ID, true
	}
	return u.Email, true
}
