package repository

import (
	"context"
	"testing"

	"askmate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_UserLookups(t *testing.T) {
	repo := New(setupTestDB(t))
	ctx := context.Background()

	zed := createUser(t, repo, "zed")
	amy := createUser(t, repo, "amy")
	assert.Len(t, zed.ID, 36)
	assert.Zero(t, zed.Reputation)

	byEmail, err := repo.GetUserByEmail(ctx, "  ZED@example.com ")
	require.NoError(t, err)
	assert.Equal(t, zed.ID, byEmail.ID)

	byName, err := repo.GetUserByUserName(ctx, "Amy")
	require.NoError(t, err)
	assert.Equal(t, amy.ID, byName.ID)

	_, err = repo.GetUserByID(ctx, "missing")
	assert.True(t, models.IsNotFound(err))

	all, err := repo.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "amy", all[0].UserName)
}

func TestRepository_UserActivity(t *testing.T) {
	repo := New(setupTestDB(t))
	ctx := context.Background()
	author := createUser(t, repo, "author")
	other := createUser(t, repo, "other")

	q := createQuestion(t, repo, author, "Mine")
	removed := createQuestion(t, repo, author, "Gone")
	require.NoError(t, repo.RemoveQuestionByID(ctx, removed.ID))
	createQuestion(t, repo, other, "Theirs")

	a := createAnswer(t, repo, author, q.ID, "self answer")
	require.NoError(t, repo.AddQuestionComment(ctx, &models.QuestionComment{Body: "qc", QuestionID: q.ID, UserID: author.ID}))
	require.NoError(t, repo.AddAnswerComment(ctx, &models.AnswerComment{Body: "ac", AnswerID: a.ID, UserID: author.ID}))

	questions, err := repo.GetUserQuestions(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Mine", questions[0].Title)

	answers, err := repo.GetUserAnswers(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "Mine", answers[0].Question.Title)

	qComments, err := repo.GetUserQuestionComments(ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, qComments, 1)

	aComments, err := repo.GetUserAnswerComments(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, aComments, 1)
	assert.Equal(t, q.ID, aComments[0].Answer.QuestionID)

	none, err := repo.GetUserQuestions(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_RolesAndMembership(t *testing.T) {
	repo := New(setupTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "mod")

	role, err := repo.CreateRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, role.ID, 36)

	in, err := repo.IsUserInRole(ctx, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, in)

	require.NoError(t, repo.AddUserToRole(ctx, user.ID, role.ID))
	require.NoError(t, repo.AddUserToRole(ctx, user.ID, role.ID))

	in, err = repo.IsUserInRole(ctx, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, in)

	roles, err := repo.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.Len(t, roles[0].Users, 1)
	assert.Equal(t, "mod", roles[0].Users[0].UserName)

	userRoles, err := repo.GetUserRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, userRoles, 1)

	require.NoError(t, repo.UpdateRole(ctx, role.ID, "Moderator"))
	renamed, err := repo.GetRoleByName(ctx, "Moderator")
	require.NoError(t, err)
	assert.Equal(t, role.ID, renamed.ID)

	require.NoError(t, repo.RemoveUserFromRole(ctx, user.ID, role.ID))
	assert.True(t, models.IsNotFound(repo.RemoveUserFromRole(ctx, user.ID, role.ID)))

	require.NoError(t, repo.AddUserToRole(ctx, user.ID, role.ID))
	require.NoError(t, repo.DeleteRole(ctx, role.ID))
	_, err = repo.GetRoleByID(ctx, role.ID)
	assert.True(t, models.IsNotFound(err))

	userRoles, err = repo.GetUserRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, userRoles)
}

func TestRepository_Claims(t *testing.T) {
	repo := New(setupTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "claimant")

	has, err := repo.HasClaim(ctx, user.ID, models.ClaimIsAdmin, "true")
	require.NoError(t, err)
	assert.False(t, has)

	claim := &models.UserClaim{UserID: user.ID, ClaimType: models.ClaimIsAdmin, ClaimValue: "True"}
	require.NoError(t, repo.AddUserClaim(ctx, claim))

	has, err = repo.HasClaim(ctx, user.ID, models.ClaimIsAdmin, "true")
	require.NoError(t, err)
	assert.True(t, has)

	all, err := repo.GetAllUserClaims(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "claimant", all[0].User.UserName)

	byID, err := repo.GetApplicationClaimByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimIsAdmin, byID.ClaimType)

	forUser, err := repo.GetClaimsForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, forUser, 1)

	require.NoError(t, repo.RemoveUserClaim(ctx, claim.ID))
	_, err = repo.GetApplicationClaimByID(ctx, claim.ID)
	assert.True(t, models.IsNotFound(err))
}
