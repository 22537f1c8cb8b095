package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loja/internal/apperr"
	"loja/internal/models"
	"loja/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TokenConfig configures token issuance.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims is the payload of an access token.
type Claims struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Surname   string `json:"surname"`
	jwt.StandardClaims
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	issuer    string
	audience  string
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, cfg TokenConfig) *AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
		tokenTTL:  cfg.TTL,
	}
}

// RegisterUser hashes the password of user and saves it. The email must not
// be taken.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return fmt.Errorf("email %s: %w", user.Email, apperr.ErrConflict)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	return s.userRepo.Create(ctx, user)
}

// Login authenticates a user and returns a signed token. An unknown email
// and a wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperr.ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:        user.ID,
		Email:     user.Email,
		Firstname: user.Firstname,
		Surname:   user.Surname,
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.issuer,
			Audience:  s.audience,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken verifies signature, expiry, issuer and audience of
// tokenString. It fails with apperr.ErrTokenExpired or apperr.ErrTokenInvalid.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperr.ErrTokenExpired
		}
		logrus.WithError(err).Debug("Token validation failed")
		return nil, apperr.ErrTokenInvalid
	}

	if !token.Valid ||
		!claims.VerifyIssuer(s.issuer, true) ||
		!claims.VerifyAudience(s.audience, true) {
		return nil, apperr.ErrTokenInvalid
	}
	return claims, nil
}
