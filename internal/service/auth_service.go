package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/mergeed-api/internal/models"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
)

// LoginRequest is the mock login payload. Any password is accepted for
// known role domains; the role is derived from the email suffix.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest registers a mock user account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// SignupReceipt acknowledges a mock registration.
type SignupReceipt struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type mockUser struct {
	id           string
	email        string
	name         string
	passwordHash []byte
}

// AuthService issues and verifies JWTs for the mock auth surface.
// Registered users live in process memory only.
type AuthService struct {
	secret     []byte
	expiration time.Duration
	validator  *validator.Validate
	logger     *zap.Logger

	mu    sync.RWMutex
	users map[string]mockUser
}

// NewAuthService constructs an AuthService.
func NewAuthService(secret string, expiration time.Duration, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &AuthService{
		secret:     []byte(secret),
		expiration: expiration,
		validator:  validate,
		logger:     logger,
		users:      make(map[string]mockUser),
	}
}

// Login authenticates by email suffix and issues a signed token.
func (s *AuthService) Login(req LoginRequest) (*models.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := roleForEmail(email)
	userID := email
	if at := strings.Index(email, "@"); at > 0 {
		userID = email[:at]
	}

	claims := models.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	s.logger.Info("user logged in", zap.String("user_id", userID), zap.String("role", role))
	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		UserID:      userID,
		Role:        role,
	}, nil
}

// Register stores a mock user. Accounts are not required for login.
func (s *AuthService) Register(req SignupRequest) (*SignupReceipt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}
	user := mockUser{
		id:           "user_" + uuid.NewString(),
		email:        email,
		name:         strings.TrimSpace(req.Name),
		passwordHash: hash,
	}
	s.users[email] = user

	return &SignupReceipt{UserID: user.id, Email: user.email, Name: user.name}, nil
}

// Me parses and verifies a bearer token, returning its claims.
func (s *AuthService) Me(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func roleForEmail(email string) string {
	switch {
	case strings.HasSuffix(email, "@diet.in"):
		return models.RoleDIET
	case strings.HasSuffix(email, "@scert.in"):
		return models.RoleSCERT
	default:
		return models.RoleTeacher
	}
}
