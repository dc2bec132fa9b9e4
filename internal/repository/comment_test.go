package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"askmate/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_EditQuestionComment_MarksEdited(t *testing.T) {
	db := setupTestDB(t)
	repo := New(db)
	ctx := context.Background()
	user := createUser(t, repo, "jack")
	q := createQuestion(t, repo, user, "Comments")

	c := &models.QuestionComment{Body: "first", QuestionID: q.ID, UserID: user.ID}
	require.NoError(t, repo.AddQuestionComment(ctx, c))
	backdate(t, db, &models.QuestionComment{}, c.ID, 24*time.Hour)

	original, err := repo.GetQuestionCommentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, original.IsEdited)

	require.NoError(t, repo.EditQuestionComment(ctx, &models.QuestionComment{ID: c.ID, Body: "second"}))

	edited, err := repo.GetQuestionCommentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", edited.Body)
	assert.True(t, edited.IsEdited)
	assert.True(t, edited.DateAdded.After(original.DateAdded))
	assert.Equal(t, "jack", edited.User.UserName)

	require.NoError(t, repo.RemoveQuestionComment(ctx, c.ID))
	removed, err := repo.GetQuestionCommentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, removed.IsRemoved)
}

func TestRepository_AnswerComments(t *testing.T) {
	repo := New(setupTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "kate")
	q := createQuestion(t, repo, user, "Answer comments")
	a := createAnswer(t, repo, user, q.ID, "answer")

	c := &models.AnswerComment{Body: "nice", AnswerID: a.ID, UserID: user.ID}
	require.NoError(t, repo.AddAnswerComment(ctx, c))

	c.Body = "very nice"
	require.NoError(t, repo.EditAnswerComment(ctx, c))
	assert.True(t, c.IsEdited)

	got, err := repo.GetAnswerCommentByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "very nice", got.Body)
	require.NotNil(t, got.Answer)
	assert.Equal(t, q.ID, got.Answer.QuestionID)

	require.NoError(t, repo.RemoveAnswerComment(ctx, c.ID))
	assert.True(t, models.IsNotFound(repo.RemoveAnswerComment(ctx, 12345)))
}

func TestRepository_EditAnswerComment_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "answer_comments" SET "body"=$1,"date_added"=$2,"is_edited"=$3 WHERE id = $4`)).
		WithArgs("changed", sqlmock.AnyArg(), true, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.EditAnswerComment(context.Background(), &models.AnswerComment{ID: 3, Body: "changed"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
