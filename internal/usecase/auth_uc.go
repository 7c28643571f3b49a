package usecase

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"paypal-premium-service/internal/domain"
	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/repository"
	"paypal-premium-service/internal/infra/logging"
)

const minPasswordLen = 6

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

// AuthUseCase covers email/password registration and login.
type AuthUseCase interface {
	// Register rejects duplicate emails with domain.ErrAlreadyExists and
	// short passwords with domain.ErrInvalidArgument.
	Register(ctx context.Context, email, password string) (userID string, err error)
	// Login returns domain.ErrUnauthorized for any mismatch; callers must
	// not reveal whether the email exists.
	Login(ctx context.Context, email, password string) (userID, token string, err error)
	// Verify parses an access token. Any defect, wrong signature, expiry,
	// non-HS256 method, maps to domain.ErrUnauthorized.
	Verify(token string) (userID, email string, err error)
}

type authUC struct {
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *zerolog.Logger
}

func NewAuthUseCase(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration, logger *zerolog.Logger) *authUC {
	return &authUC{users: users, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL, log: logger}
}

func (u *authUC) Register(ctx context.Context, email, password string) (string, error) {
	defer logging.TraceDuration(u.log, "AuthUC.Register")()

	if !model.ValidEmail(email) || len(password) < minPasswordLen {
		return "", domain.ErrInvalidArgument
	}

	// Email uniqueness is enforced here, not by the store.
	existing, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !existing.IsZero() {
		return "", domain.ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	usr := model.NewUser("", email, false)
	usr.PasswordHash = string(hash)
	if err := u.users.Create(ctx, usr); err != nil {
		return "", err
	}
	u.log.Info().Str("user_id", usr.ID).Msg("user registered")
	return usr.ID, nil
}

func (u *authUC) Login(ctx context.Context, email, password string) (string, string, error) {
	defer logging.TraceDuration(u.log, "AuthUC.Login")()

	usr, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if usr.IsZero() || usr.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)) != nil {
		return "", "", domain.ErrUnauthorized
	}

	token, err := u.mint(usr.ID, usr.Email)
	if err != nil {
		return "", "", err
	}
	return usr.ID, token, nil
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (u *authUC) Verify(token string) (string, string, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return u.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", "", domain.ErrUnauthorized
	}
	return claims.Subject, claims.Email, nil
}

func (u *authUC) mint(userID, email string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.jwtSecret)
}
