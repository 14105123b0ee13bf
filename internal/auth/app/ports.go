package app

import (
	"context"

	"github.com/dwikikusuma/collegemart/internal/auth/domain"
)

// Backend is the marketplace's account API.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (domain.Session, error)
	SignUp(ctx context.Context, in SignUpInput) error
}

// SessionStore keeps the signed-in session between runs.
type SessionStore interface {
	Load(ctx context.Context) (domain.Session, bool, error)
	Save(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context) error
}
