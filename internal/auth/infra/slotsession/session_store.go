// Package slotsession keeps the signed-in session in the same durable slots
// as the cart, under the "token" and "user" keys.
package slotsession

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/dwikikusuma/collegemart/internal/auth/app"
	"github.com/dwikikusuma/collegemart/internal/auth/domain"
)

const (
	TokenKey = "token"
	UserKey  = "user"
)

type Slots interface {
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	slots Slots
}

var _ app.SessionStore = (*Store)(nil)

func New(slots Slots) *Store {
	return &Store{slots: slots}
}

// Load returns ok=false unless both slots are present and the user decodes.
func (s *Store) Load(ctx context.Context) (domain.Session, bool, error) {
	token, ok, err := s.slots.Read(ctx, TokenKey)
	if err != nil || !ok {
		return domain.Session{}, false, err
	}
	raw, ok, err := s.slots.Read(ctx, UserKey)
	if err != nil || !ok {
		return domain.Session{}, false, err
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.Session{}, false, errors.Wrap(err, "decode user")
	}
	return domain.Session{Token: string(token), User: u}, true, nil
}

func (s *Store) Save(ctx context.Context, sess domain.Session) error {
	raw, err := json.Marshal(sess.User)
	if err != nil {
		return errors.Wrap(err, "encode user")
	}
	if err := s.slots.Write(ctx, TokenKey, []byte(sess.Token)); err != nil {
		return err
	}
	return s.slots.Write(ctx, UserKey, raw)
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.slots.Delete(ctx, TokenKey); err != nil {
		return err
	}
	return s.slots.Delete(ctx, UserKey)
}
