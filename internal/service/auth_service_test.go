package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mergeed-api/internal/models"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
)

func newAuthService() *AuthService {
	return NewAuthService("test_secret", time.Hour, nil, nil)
}

func TestLoginDerivesRoleFromEmailSuffix(t *testing.T) {
	svc := newAuthService()

	cases := []struct {
		email string
		role  string
	}{
		{"officer@diet.in", models.RoleDIET},
		{"admin@scert.in", models.RoleSCERT},
		{"priya@school.in", models.RoleTeacher},
	}
	for _, tc := range cases {
		resp, err := svc.Login(LoginRequest{Email: tc.email, Password: "anything"})
		require.NoError(t, err, tc.email)
		assert.Equal(t, tc.role, resp.Role, tc.email)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.NotEmpty(t, resp.AccessToken)
	}
}

func TestLoginUserIDIsEmailLocalPart(t *testing.T) {
	svc := newAuthService()

	resp, err := svc.Login(LoginRequest{Email: "Officer@diet.in", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "officer", resp.UserID)
}

func TestMeRoundTripsClaims(t *testing.T) {
	svc := newAuthService()

	resp, err := svc.Login(LoginRequest{Email: "officer@diet.in", Password: "pw"})
	require.NoError(t, err)

	claims, err := svc.Me(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "officer", claims.UserID)
	assert.Equal(t, models.RoleDIET, claims.Role)
}

func TestMeRejectsTamperedToken(t *testing.T) {
	svc := newAuthService()

	resp, err := svc.Login(LoginRequest{Email: "a@b.in", Password: "pw"})
	require.NoError(t, err)

	other := NewAuthService("different_secret", time.Hour, nil, nil)
	_, err = other.Me(resp.AccessToken)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRegisterStoresMockUser(t *testing.T) {
	svc := newAuthService()

	receipt, err := svc.Register(SignupRequest{Email: "new@school.in", Password: "secret1", Name: "New Teacher"})

	require.NoError(t, err)
	assert.Contains(t, receipt.UserID, "user_")
	assert.Equal(t, "new@school.in", receipt.Email)

	_, err = svc.Register(SignupRequest{Email: "new@school.in", Password: "secret1", Name: "Again"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegisterValidatesPasswordLength(t *testing.T) {
	svc := newAuthService()

	_, err := svc.Register(SignupRequest{Email: "new@school.in", Password: "short", Name: "New"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
