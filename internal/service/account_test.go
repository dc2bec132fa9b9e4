package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"askmate/internal/cache"
	"askmate/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryAccounts is an in-memory AccountStore.
type memoryAccounts struct {
	users     []*models.User
	createErr error
}

func (m *memoryAccounts) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", email)
}

func (m *memoryAccounts) GetUserByUserName(_ context.Context, name string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.UserName, name) {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", name)
}

func (m *memoryAccounts) CreateUser(_ context.Context, u *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	u.ID = "user-" + u.UserName
	m.users = append(m.users, u)
	return nil
}

const strongPassword = "SecurePass12!@"

func newTestAccounts(store AccountStore) *AccountService {
	svc := NewAccountService(store, "test-secret-that-is-long-enough-for-hs256")
	svc.cost = bcrypt.MinCost
	return svc
}

func TestRegister(t *testing.T) {
	store := &memoryAccounts{}
	svc := newTestAccounts(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{UserName: " ada ", Email: "ada@example.com", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, "ada", user.UserName)
	assert.NotEqual(t, strongPassword, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strongPassword)))

	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"duplicate email", RegisterInput{UserName: "other", Email: "ADA@example.com", Password: strongPassword}, "Email is already registered"},
		{"duplicate user name", RegisterInput{UserName: "Ada", Email: "x@example.com", Password: strongPassword}, "User name is already taken"},
		{"weak password", RegisterInput{UserName: "bob", Email: "bob@example.com", Password: "short"}, ""},
		{"bad email", RegisterInput{UserName: "bob", Email: "bob", Password: strongPassword}, ""},
		{"bad user name", RegisterInput{UserName: "b", Email: "bob@example.com", Password: strongPassword}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
	assert.Len(t, store.users, 1)
}

func TestAuthenticate(t *testing.T) {
	store := &memoryAccounts{}
	svc := newTestAccounts(store)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{UserName: "ada", Email: "ada@example.com", Password: strongPassword})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "ada@example.com", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, "ada", u.UserName)

	u, err = svc.Authenticate(ctx, "ADA", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = svc.Authenticate(ctx, "ada", "wrong")
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	_, err = svc.Authenticate(ctx, "nobody", strongPassword)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestAccounts(&memoryAccounts{})
	user := &models.User{ID: "u1", UserName: "ada"}

	token, expiresAt, err := svc.IssueToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), expiresAt, time.Minute)

	claims, err := svc.ParseToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ada", claims.UserName)
	assert.NotEmpty(t, claims.JTI)
}

func TestParseToken_Rejects(t *testing.T) {
	svc := newTestAccounts(&memoryAccounts{})
	user := &models.User{ID: "u1", UserName: "ada"}
	token, _, err := svc.IssueToken(user)
	require.NoError(t, err)

	other := NewAccountService(&memoryAccounts{}, "a-different-secret-of-sufficient-length")
	_, err = other.ParseToken(context.Background(), token)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	_, err = svc.ParseToken(context.Background(), "not-a-token")
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	svc.now = func() time.Time { return time.Now().Add(TokenTTL + time.Hour) }
	_, err = svc.ParseToken(context.Background(), token)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err), "expired token")
}

func TestIssueToken_RequiresSecret(t *testing.T) {
	svc := NewAccountService(&memoryAccounts{}, "")
	_, _, err := svc.IssueToken(&models.User{ID: "u1"})
	assert.Error(t, err)
}

func TestLogout_RevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	svc := newTestAccounts(&memoryAccounts{})
	ctx := context.Background()
	token, _, err := svc.IssueToken(&models.User{ID: "u1", UserName: "ada"})
	require.NoError(t, err)

	claims, err := svc.ParseToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	assert.True(t, mr.Exists(cache.BlacklistKey(claims.JTI)))
	assert.Greater(t, mr.TTL(cache.BlacklistKey(claims.JTI)), time.Duration(0))

	_, err = svc.ParseToken(ctx, token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoked")

	assert.NoError(t, svc.Logout(ctx, "garbage"))
}
