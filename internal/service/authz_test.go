package service

import (
	"context"
	"errors"
	"testing"

	"askmate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleSet map[string][]string

func (r roleSet) IsUserInRole(_ context.Context, userID, roleName string) (bool, error) {
	for _, name := range r[userID] {
		if name == roleName {
			return true, nil
		}
	}
	return false, nil
}

type claimSet map[string]map[string]string

func (c claimSet) HasClaim(_ context.Context, userID, claimType, claimValue string) (bool, error) {
	v, ok := c[userID][claimType]
	return ok && v == claimValue, nil
}

type failingClaims struct{}

func (failingClaims) HasClaim(context.Context, string, string, string) (bool, error) {
	return false, errors.New("db down")
}

func TestAuthorizer_Policies(t *testing.T) {
	roles := roleSet{
		"admin":   {models.RoleAdmin},
		"super":   {models.RoleSuperAdmin},
		"regular": {},
	}
	claims := claimSet{
		"claimer":  {models.ClaimIsAdmin: "true"},
		"disabled": {models.ClaimIsAdmin: "false"},
	}
	authz := NewAuthorizer(roles, claims)
	ctx := context.Background()

	tests := []struct {
		user   string
		policy Policy
		want   bool
	}{
		{"admin", AdminRolePolicy, true},
		{"super", AdminRolePolicy, false},
		{"regular", AdminRolePolicy, false},
		{"", AdminRolePolicy, false},
		{"claimer", AdminClaimPolicy, true},
		{"super", AdminClaimPolicy, true},
		{"admin", AdminClaimPolicy, false},
		{"disabled", AdminClaimPolicy, false},
		{"", AdminClaimPolicy, false},
	}
	for _, tt := range tests {
		t.Run(tt.user+"/"+string(tt.policy), func(t *testing.T) {
			got, err := authz.Satisfies(ctx, tt.user, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := authz.Satisfies(ctx, "admin", Policy("nope"))
	assert.Error(t, err)
}

func TestAuthorizer_Ownership(t *testing.T) {
	authz := NewAuthorizer(roleSet{"super": {models.RoleSuperAdmin}}, claimSet{})
	ctx := context.Background()
	q := &models.Question{UserID: "author"}

	ok, err := authz.CanModify(ctx, "author", "author")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = authz.CanModify(ctx, "stranger", "author")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = authz.CanModify(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, ok, "anonymous never owns")

	ok, err = authz.CanAccept(ctx, "super", q)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = authz.CanAccept(ctx, "author", q)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorizer_PropagatesErrors(t *testing.T) {
	authz := NewAuthorizer(roleSet{}, failingClaims{})
	_, err := authz.Satisfies(context.Background(), "u1", AdminClaimPolicy)
	assert.Error(t, err)
}
