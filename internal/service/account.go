// Package service contains account, authorization and administration logic
// that sits between the HTTP handlers and the repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"askmate/internal/cache"
	"askmate/internal/models"
	"askmate/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenIssuer   = "askmate-web"
	TokenAudience = "askmate-client"
	TokenTTL      = 7 * 24 * time.Hour
)

// AccountStore is the subset of the repository the account service needs.
type AccountStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUserName(ctx context.Context, userName string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}

// AccountService registers users, checks credentials and issues tokens.
type AccountService struct {
	users  AccountStore
	secret []byte
	cost   int
	now    func() time.Time
}

func NewAccountService(users AccountStore, jwtSecret string) *AccountService {
	return &AccountService{
		users:  users,
		secret: []byte(jwtSecret),
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

type RegisterInput struct {
	UserName string
	Email    string
	Password string
}

// TokenClaims is the decoded, validated content of an access token.
type TokenClaims struct {
	UserID    string
	UserName  string
	JTI       string
	ExpiresAt time.Time
}

// Register creates an account after checking that the user name and e-mail
// are well formed and not taken.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.Email = strings.TrimSpace(in.Email)

	if err := validation.ValidateUsername(in.UserName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if taken, err := s.exists(ctx, s.users.GetUserByEmail, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, models.NewValidationError("Email is already registered")
	}
	if taken, err := s.exists(ctx, s.users.GetUserByUserName, in.UserName); err != nil {
		return nil, err
	} else if taken {
		return nil, models.NewValidationError("User name is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) exists(ctx context.Context, lookup func(context.Context, string) (*models.User, error), key string) (bool, error) {
	_, err := lookup(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case models.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Authenticate checks the password for an account found by e-mail or user name.
func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.users.GetUserByEmail(ctx, login)
	} else {
		user, err = s.users.GetUserByUserName(ctx, login)
	}
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// IssueToken signs an HS256 access token for user.
func (s *AccountService) IssueToken(user *models.User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("JWT secret not configured")
	}

	now := s.now()
	expiresAt := now.Add(TokenTTL)
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.UserName,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken validates signature, issuer, audience and revocation.
func (s *AccountService) ParseToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, models.NewUnauthorizedError("Invalid subject claim")
	}

	out := &TokenClaims{UserID: sub}
	out.UserName, _ = claims["username"].(string)
	out.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	if out.JTI != "" {
		revoked, err := cache.IsBlacklisted(ctx, out.JTI)
		if err == nil && revoked {
			return nil, models.NewUnauthorizedError("Token has been revoked")
		}
	}
	return out, nil
}

// Logout revokes the token until it would have expired anyway. Invalid
// tokens are ignored.
func (s *AccountService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ParseToken(ctx, tokenString)
	if err != nil || claims.JTI == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return cache.Blacklist(ctx, claims.JTI, ttl)
}
