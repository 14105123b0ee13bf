package app

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dwikikusuma/collegemart/internal/auth/domain"
	"github.com/dwikikusuma/collegemart/pkg/logger"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnavailable        = errors.New("auth backend unavailable")
)

var genders = map[string]struct{}{"male": {}, "female": {}, "other": {}}

type SignUpInput struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Gender          string `json:"gender"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"cpassword"`
}

type Service struct {
	backend  Backend
	sessions SessionStore
	log      *slog.Logger
	now      func() time.Time
}

func NewService(backend Backend, sessions SessionStore, log *slog.Logger) *Service {
	return &Service{
		backend:  backend,
		sessions: sessions,
		log:      logger.OrDefault(log).With(slog.String("component", "auth")),
		now:      time.Now,
	}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, errors.Wrap(ErrInvalidInput, "email and password are required")
	}

	sess, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		return domain.User{}, err
	}
	if sess.User.Email == "" {
		sess.User.Email = email
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domain.User{}, errors.Wrap(err, "save session")
	}
	s.log.Info("signed in", slog.String("user_id", sess.User.ID))
	return sess.User, nil
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	if in.Gender == "" {
		in.Gender = "male"
	}

	switch {
	case in.Name == "":
		return errors.Wrap(ErrInvalidInput, "name is required")
	case !validEmail(in.Email):
		return errors.Wrap(ErrInvalidInput, "a valid email is required")
	case !validPhone(in.Phone):
		return errors.Wrap(ErrInvalidInput, "phone must be digits only")
	case in.Password == "":
		return errors.Wrap(ErrInvalidInput, "password is required")
	case in.Password != in.ConfirmPassword:
		return errors.Wrap(ErrInvalidInput, "passwords do not match")
	}
	if _, ok := genders[in.Gender]; !ok {
		return errors.Wrap(ErrInvalidInput, "gender must be male, female or other")
	}

	return s.backend.SignUp(ctx, in)
}

func (s *Service) SignOut(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// CurrentUser reports the signed-in user. A session whose token carries an
// exp claim in the past counts as signed out and is cleared.
func (s *Service) CurrentUser(ctx context.Context) (domain.User, bool) {
	sess, ok := s.session(ctx)
	if !ok {
		return domain.User{}, false
	}
	return sess.User, true
}

// Token returns the bearer token of the current session, or "".
func (s *Service) Token(ctx context.Context) string {
	sess, ok := s.session(ctx)
	if !ok {
		return ""
	}
	return sess.Token
}

func (s *Service) session(ctx context.Context) (domain.Session, bool) {
	sess, ok, err := s.sessions.Load(ctx)
	if err != nil {
		s.log.Warn("load session", slog.Any("err", err))
		return domain.Session{}, false
	}
	if !ok || !sess.Valid() {
		return domain.Session{}, false
	}
	if s.expired(sess.Token) {
		s.log.Info("session expired")
		if err := s.sessions.Clear(ctx); err != nil {
			s.log.Warn("clear expired session", slog.Any("err", err))
		}
		return domain.Session{}, false
	}
	return sess, true
}

// expired only looks at the exp claim; the signature belongs to the backend
// and is not checked here. Opaque tokens never expire locally.
func (s *Service) expired(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(s.now())
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validPhone(s string) bool {
	if len(s) < 7 || len(s) > 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
