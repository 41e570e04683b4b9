package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"
	"thermowatch/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

// Domain errors for auth flows. All of them are ErrUnauthorized.
var (
	ErrInvalidPassword = fmt.Errorf("%w: invalid password", apperr.ErrUnauthorized)
	ErrUserNotFound    = fmt.Errorf("%w: user not found", apperr.ErrUnauthorized)
	ErrInvalidToken    = fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
)

// AuthService handles user auth logic
type AuthService struct {
	authRepo    repository.Authorization
	signingKey  []byte
	tokenTTL    time.Duration
	defaultRole string
	operators   map[string]bool
	now         func() time.Time
}

// NewAuthService returns an AuthService. New accounts get defaultRole, which
// is viewer unless it is exactly "operator"; usernames listed in operators
// always sign up as operators.
func NewAuthService(repo repository.Authorization, signingKey string, tokenTTL time.Duration, defaultRole string, operators []string) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	if defaultRole != models.RoleOperator {
		defaultRole = models.RoleViewer
	}
	ops := make(map[string]bool, len(operators))
	for _, name := range operators {
		if name = strings.TrimSpace(name); name != "" {
			ops[name] = true
		}
	}
	return &AuthService{
		authRepo:    repo,
		signingKey:  []byte(signingKey),
		tokenTTL:    tokenTTL,
		defaultRole: defaultRole,
		operators:   ops,
		now:         time.Now,
	}
}

func (s *AuthService) roleFor(username string) string {
	if s.operators[username] {
		return models.RoleOperator
	}
	return s.defaultRole
}

// SignUp hashes password and creates a new user with the role roleFor picks.
func (s *AuthService) SignUp(username, password string) (int, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, apperr.Validation("username is empty")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return 0, apperr.Validation("invalid password: %v", err)
	}

	existing, err := s.authRepo.GetByUsername(username)
	if err != nil {
		return 0, apperr.Storage("lookup user", err)
	}
	if existing != nil {
		return 0, apperr.Validation("username %q is already taken", username)
	}

	id, err := s.authRepo.Create(username, hash, s.roleFor(username))
	if err != nil {
		return 0, apperr.Storage("create user", err)
	}
	return id, nil
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// GenerateToken validates credentials and returns JWT
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	u, err := s.authRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return "", apperr.Storage("lookup user", err)
	}
	if u == nil {
		return "", ErrUserNotFound
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidPassword
	}

	return s.issueToken(models.Principal{UserID: u.ID, Username: u.Username, Role: u.Role})
}

// ParseToken verifies an HS256 token and returns the identity it carries.
func (s *AuthService) ParseToken(accessToken string) (models.Principal, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return models.Principal{}, ErrInvalidToken
	}

	return models.Principal{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// issueToken signs a JWT for p that expires after the configured TTL.
func (s *AuthService) issueToken(p models.Principal) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   p.UserID,
		Username: p.Username,
		Role:     p.Role,
	})
	return token.SignedString(s.signingKey)
}
