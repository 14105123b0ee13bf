package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/collegemart/internal/auth/app"
	"github.com/dwikikusuma/collegemart/internal/backend"
)

func newClient(t *testing.T, h http.HandlerFunc) *AuthClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAuthClient(backend.New(srv.URL, time.Second))
}

func TestSignIn(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signin", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "asha@college.edu", body["email"])
		_, _ = w.Write([]byte(`{"token":"t1","user":{"_id":"u1","name":"Asha","email":"asha@college.edu","phone":9876543210,"gender":"female"}}`))
	})

	sess, err := c.SignIn(context.Background(), "asha@college.edu", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t1", sess.Token)
	assert.Equal(t, "u1", sess.User.ID)
	assert.Equal(t, "9876543210", sess.User.Phone)
}

func TestSignInRejected(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid password"}`))
	})

	_, err := c.SignIn(context.Background(), "a@b.c", "bad")
	require.ErrorIs(t, err, app.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "Invalid password")
}

func TestSignUpFailureFallsBackToGenericMessage(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signup", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pw", body["cpassword"])
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	err := c.SignUp(context.Background(), app.SignUpInput{Name: "A", Password: "pw", ConfirmPassword: "pw"})
	require.ErrorIs(t, err, app.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Registration failed")
}

func TestServerErrorIsUnavailable(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.SignIn(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, app.ErrUnavailable)
}
