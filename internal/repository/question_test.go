package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"askmate/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionOrder(t *testing.T) {
	tests := []struct {
		orderBy, direction string
		column             string
		desc               bool
	}{
		{"Title", "Ascending", "title", false},
		{"Body", "asc", "body", false},
		{"Votes", "Descending", "votes", true},
		{"Views", "", "views", true},
		{"DateAdded", "ASC", "date_added", false},
		{"Nonsense", "Ascending", "date_added", false},
		{"", "", "date_added", true},
	}
	for _, tt := range tests {
		t.Run(tt.orderBy+"/"+tt.direction, func(t *testing.T) {
			column, desc := QuestionOrder(tt.orderBy, tt.direction)
			assert.Equal(t, tt.column, column)
			assert.Equal(t, tt.desc, desc)
		})
	}
}

func TestRepository_AddQuestion_StampsServerFields(t *testing.T) {
	repo := New(setupTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	clientTime := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &models.Question{
		Title:     "Why is the sky blue?",
		Body:      "Rayleigh?",
		DateAdded: clientTime,
		Votes:     99,
		Views:     12,
		IsRemoved: true,
		UserID:    user.ID,
	}
	before := time.Now()
	require.NoError(t, repo.AddQuestion(ctx, q))

	stored, err := repo.GetQuestionByIDWithoutDetails(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Votes)
	assert.Equal(t, 0, stored.Views)
	assert.False(t, stored.IsRemoved)
	assert.False(t, stored.DateAdded.Before(before.Add(-time.Second)))
	assert.NotEqual(t, clientTime.Year(), stored.DateAdded.Year())
}

func TestRepository_AddQuestion_CommitsTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "questions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	q := &models.Question{Title: "Transactions?", UserID: "u-1"}
	err := repo.AddQuestion(context.Background(), q)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), q.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AddQuestion_RollsBackAndReturnsError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "questions"`)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := repo.AddQuestion(context.Background(), &models.Question{Title: "Doomed"})
	require.Error(t, err)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListAll_Ordering(t *testing.T) {
	db := setupTestDB(t)
	repo := New(db)
	ctx := context.Background()
	user := createUser(t, repo, "bob")

	a := createQuestion(t, repo, user, "Alpha")
	b := createQuestion(t, repo, user, "Bravo")
	c := createQuestion(t, repo, user, "Charlie")
	removed := createQuestion(t, repo, user, "Removed")
	require.NoError(t, repo.RemoveQuestionByID(ctx, removed.ID))

	require.NoError(t, db.Model(&models.Question{}).Where("id = ?", a.ID).Update("votes", 5).Error)
	require.NoError(t, db.Model(&models.Question{}).Where("id = ?", b.ID).Update("votes", -2).Error)
	require.NoError(t, db.Model(&models.Question{}).Where("id = ?", c.ID).Update("votes", 9).Error)
	backdate(t, db, &models.Question{}, a.ID, 3*time.Hour)
	backdate(t, db, &models.Question{}, b.ID, 2*time.Hour)
	backdate(t, db, &models.Question{}, c.ID, time.Hour)

	titles := func(qs []models.Question) []string {
		out := make([]string, len(qs))
		for i, q := range qs {
			out[i] = q.Title
		}
		return out
	}

	votesDesc, err := repo.ListAll(ctx, "Votes", "Descending")
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie", "Alpha", "Bravo"}, titles(votesDesc))
	for i := 1; i < len(votesDesc); i++ {
		assert.GreaterOrEqual(t, votesDesc[i-1].Votes, votesDesc[i].Votes)
	}

	titleAsc, err := repo.ListAll(ctx, "Title", "Ascending")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, titles(titleAsc))

	fallback, err := repo.ListAll(ctx, "DROP TABLE", "whatever")
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie", "Bravo", "Alpha"}, titles(fallback))
}

func TestRepository_GetQuestionByID_LoadsDetails(t *testing.T) {
	db := setupTestDB(t)
	repo := New(db)
	ctx := context.Background()
	user := createUser(t, repo, "carol")
	q := createQuestion(t, repo, user, "Details")

	older := createAnswer(t, repo, user, q.ID, "older answer")
	newer := createAnswer(t, repo, user, q.ID, "newer answer")
	gone := createAnswer(t, repo, user, q.ID, "removed answer")
	backdate(t, db, &models.Answer{}, older.ID, time.Hour)
	require.NoError(t, repo.RemoveAnswerByID(ctx, gone.ID))

	require.NoError(t, repo.AddQuestionComment(ctx, &models.QuestionComment{Body: "q comment", QuestionID: q.ID, UserID: user.ID}))
	require.NoError(t, repo.AddAnswerComment(ctx, &models.AnswerComment{Body: "a comment", AnswerID: newer.ID, UserID: user.ID}))

	tag, err := repo.AddTag(ctx, "physics")
	require.NoError(t, err)
	require.NoError(t, repo.AttachTagsToQuestion(ctx, q.ID, []uint{tag.ID}))

	got, err := repo.GetQuestionByID(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Answers, 2)
	assert.Equal(t, newer.ID, got.Answers[0].ID)
	assert.Equal(t, older.ID, got.Answers[1].ID)
	require.Len(t, got.Answers[0].AnswerComments, 1)
	assert.Equal(t, "carol", got.Answers[0].AnswerComments[0].User.UserName)
	require.Len(t, got.QuestionComments, 1)
	require.Len(t, got.Tags(), 1)
	assert.Equal(t, "physics", got.Tags()[0].Name)
	require.NotNil(t, got.User)
	assert.Equal(t, "carol", got.User.UserName)

	plain, err := repo.GetQuestionByIDWithoutDetails(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, plain.Answers)
}

func TestRepository_GetQuestionByID_NotFound(t *testing.T) {
	repo := New(setupTestDB(t))

	_, err := repo.GetQuestionByID(context.Background(), 404)
	assert.True(t, models.IsNotFound(err))

	err = repo.RemoveQuestionByID(context.Background(), 404)
	assert.True(t, models.IsNotFound(err))
}

func TestRepository_EditAndViews(t *testing.T) {
	repo := New(setupTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "dave")
	q := createQuestion(t, repo, user, "Before")

	q.Title = "After"
	q.Body = "new body"
	q.ImageNamePath = "/uploads/Q_x.png"
	require.NoError(t, repo.EditQuestion(ctx, q))

	require.NoError(t, repo.IncrementQuestionViews(ctx, q.ID))
	require.NoError(t, repo.IncrementQuestionViews(ctx, q.ID))

	got, err := repo.GetQuestionByIDWithoutDetails(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, "/uploads/Q_x.png", got.ImageNamePath)
	assert.Equal(t, 2, got.Views)
}

func TestRepository_GetLatestQuestions(t *testing.T) {
	db := setupTestDB(t)
	repo := New(db)
	ctx := context.Background()
	user := createUser(t, repo, "erin")

	for i, title := range []string{"q1", "q2", "q3"} {
		q := createQuestion(t, repo, user, title)
		backdate(t, db, &models.Question{}, q.ID, time.Duration(3-i)*time.Hour)
	}

	latest, err := repo.GetLatestQuestions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "q3", latest[0].Title)
	assert.Equal(t, "q2", latest[1].Title)
}

func TestRepository_GetSearchResults(t *testing.T) {
	repo := New(setupTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "frank")

	inTitle := createQuestion(t, repo, user, "Goroutine leaks")
	inAnswer := createQuestion(t, repo, user, "Unrelated title")
	createAnswer(t, repo, user, inAnswer.ID, "Check for GOROUTINE leaks with pprof")
	createAnswer(t, repo, user, inTitle.ID, "goroutines again")
	createQuestion(t, repo, user, "Nothing here")
	hidden := createQuestion(t, repo, user, "goroutine but removed")
	require.NoError(t, repo.RemoveQuestionByID(ctx, hidden.ID))

	results, err := repo.GetSearchResults(ctx, "GoRoutine")
	require.NoError(t, err)

	ids := make([]uint, 0, len(results))
	for _, q := range results {
		ids = append(ids, q.ID)
	}
	assert.ElementsMatch(t, []uint{inTitle.ID, inAnswer.ID}, ids)

	none, err := repo.GetSearchResults(ctx, "100%")
	require.NoError(t, err)
	assert.Empty(t, none)

	blank, err := repo.GetSearchResults(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, blank)
}
