package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/saree-store/internal/config"
	"github.com/your-org/saree-store/internal/pkg/apperror"
	"github.com/your-org/saree-store/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	cfg := &config.Config{
		App:      config.AppConfig{Name: "Saree Store"},
		JWT:      config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: time.Hour},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
	return NewService(testutil.NewDB(t, &User{}), cfg, testutil.NewLogger())
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	resp, err := svc.Register(ctx, &RegisterRequest{
		Email:           "  Meera@Example.com ",
		Password:        "handloom-weave",
		ConfirmPassword: "handloom-weave",
		FirstName:       "Meera",
	})
	require.NoError(t, err)
	assert.Equal(t, "meera@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Register(ctx, &RegisterRequest{
		Email: "meera@example.com", Password: "handloom-weave", ConfirmPassword: "handloom-weave", FirstName: "M",
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	login, err := svc.Login(ctx, &LoginRequest{Email: "MEERA@example.com", Password: "handloom-weave"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, &LoginRequest{Email: "meera@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Register(ctx, &RegisterRequest{Email: "a@b.co", Password: "handloom-weave", ConfirmPassword: "other", FirstName: "A"})
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "confirm_password")

	_, err = svc.Register(ctx, &RegisterRequest{Email: "a@b.co", Password: "short", ConfirmPassword: "short", FirstName: "A"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.GetProfile(ctx, 42)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
