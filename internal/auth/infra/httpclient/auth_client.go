package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/dwikikusuma/collegemart/internal/auth/app"
	"github.com/dwikikusuma/collegemart/internal/auth/domain"
	"github.com/dwikikusuma/collegemart/internal/backend"
)

type AuthClient struct {
	client *backend.Client
}

var _ app.Backend = (*AuthClient)(nil)

func NewAuthClient(client *backend.Client) *AuthClient {
	return &AuthClient{client: client}
}

type userDTO struct {
	ID      string          `json:"id"`
	MongoID string          `json:"_id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   json.RawMessage `json:"phone"`
	Gender  string          `json:"gender"`
}

func (u userDTO) toDomain() domain.User {
	id := u.ID
	if id == "" {
		id = u.MongoID
	}
	// phone is stored as a number by the backend
	phone := strings.Trim(strings.TrimSpace(string(u.Phone)), `"`)
	if phone == "null" {
		phone = ""
	}
	return domain.User{
		ID:     id,
		Name:   u.Name,
		Email:  u.Email,
		Phone:  phone,
		Gender: u.Gender,
	}
}

func (c *AuthClient) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	var out struct {
		Token string  `json:"token"`
		User  userDTO `json:"user"`
	}
	err := c.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   "/signin",
		Body:   map[string]string{"email": email, "password": password},
		Out:    &out,
	})
	if err != nil {
		return domain.Session{}, mapErr(err, app.ErrInvalidCredentials, "Invalid credentials")
	}
	if out.Token == "" {
		return domain.Session{}, errors.Wrap(app.ErrInvalidCredentials, "no token in response")
	}
	return domain.Session{Token: out.Token, User: out.User.toDomain()}, nil
}

func (c *AuthClient) SignUp(ctx context.Context, in app.SignUpInput) error {
	err := c.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   "/signup",
		Body:   in,
	})
	if err != nil {
		return mapErr(err, app.ErrInvalidInput, "Registration failed")
	}
	return nil
}

// mapErr turns 4xx responses into rejected, carrying the backend's message
// or fallback.
func mapErr(err, rejected error, fallback string) error {
	if errors.Is(err, backend.ErrUnreachable) {
		return errors.Wrap(app.ErrUnavailable, err.Error())
	}
	code := backend.StatusCode(err)
	switch {
	case code >= 400 && code < 500:
		msg := backend.Message(err)
		if msg == "" {
			msg = fallback
		}
		return errors.Wrap(rejected, msg)
	case code >= 500:
		return errors.Wrap(app.ErrUnavailable, err.Error())
	}
	return err
}
