package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"askmate/internal/cache"
	"askmate/internal/middleware"
	"askmate/internal/models"
	"askmate/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	ListAll(ctx context.Context, orderBy, direction string) ([]models.Question, error)
	GetQuestionByID(ctx context.Context, id uint) (*models.Question, error)
	GetQuestionByIDWithoutDetails(ctx context.Context, id uint) (*models.Question, error)
	AddQuestion(ctx context.Context, q *models.Question) error
	EditQuestion(ctx context.Context, q *models.Question) error
	RemoveQuestionByID(ctx context.Context, id uint) error
	IncrementQuestionViews(ctx context.Context, id uint) error
	GetLatestQuestions(ctx context.Context, n int) ([]models.Question, error)
	GetSearchResults(ctx context.Context, term string) ([]models.Question, error)
}

// Sortable question columns keyed by the names the question list accepts.
var questionOrderColumns = map[string]string{
	"title":     "title",
	"body":      "body",
	"votes":     "votes",
	"views":     "views",
	"dateadded": "date_added",
}

// QuestionOrder resolves the column and direction for ListAll. Unknown
// columns fall back to date_added; anything but "Ascending"/"asc" sorts
// descending.
func QuestionOrder(orderBy, direction string) (column string, desc bool) {
	column, ok := questionOrderColumns[strings.ToLower(strings.TrimSpace(orderBy))]
	if !ok {
		column = "date_added"
	}
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "ascending", "asc":
		return column, false
	default:
		return column, true
	}
}

func withAuthorAndTags(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("QuestionTags.Tag")
}

func notRemoved(db *gorm.DB) *gorm.DB {
	return db.Where("is_removed = ?", false)
}

func (r *repository) ListAll(ctx context.Context, orderBy, direction string) ([]models.Question, error) {
	defer observability.TrackQuery("list", "questions")()

	column, desc := QuestionOrder(orderBy, direction)

	var questions []models.Question
	err := withAuthorAndTags(r.db.WithContext(ctx)).
		Preload("Answers", notRemoved).
		Where("is_removed = ?", false).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order("id").
		Find(&questions).Error
	if err != nil {
		return nil, mapError(err, "Question", "list")
	}
	return questions, nil
}

func (r *repository) GetQuestionByID(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	err := withAuthorAndTags(r.db.WithContext(ctx)).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return notRemoved(db).Order("date_added DESC").Order("id DESC")
		}).
		Preload("Answers.User").
		Preload("Answers.AnswerComments", func(db *gorm.DB) *gorm.DB {
			return notRemoved(db).Order("date_added")
		}).
		Preload("Answers.AnswerComments.User").
		Preload("QuestionComments", func(db *gorm.DB) *gorm.DB {
			return notRemoved(db).Order("date_added")
		}).
		Preload("QuestionComments.User").
		First(&q, id).Error
	if err != nil {
		return nil, mapError(err, "Question", id)
	}
	return &q, nil
}

func (r *repository) GetQuestionByIDWithoutDetails(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, mapError(err, "Question", id)
	}
	return &q, nil
}

// AddQuestion stamps the server time, resets the counters and inserts q in
// an explicit transaction. A failed insert is rolled back, logged and returned.
func (r *repository) AddQuestion(ctx context.Context, q *models.Question) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "AddQuestion", "questions")
	defer func() { span.End(err) }()

	q.ID = 0
	q.DateAdded = time.Now()
	q.Views = 0
	q.Votes = 0
	q.IsRemoved = false

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return models.NewInternalError(tx.Error)
	}

	if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
		tx.Rollback()
		middleware.Logger.ErrorContext(ctx, "add question rolled back",
			slog.String("title", q.Title),
			slog.String("error", err.Error()),
		)
		return models.NewInternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		middleware.Logger.ErrorContext(ctx, "add question commit failed", slog.String("error", err.Error()))
		return models.NewInternalError(err)
	}

	span.AddAttributes(attribute.Int64("question.id", int64(q.ID)))
	observability.ContentCreated.WithLabelValues("question").Inc()
	cache.InvalidateQuestions(ctx)
	return nil
}

func (r *repository) EditQuestion(ctx context.Context, q *models.Question) error {
	result := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", q.ID).
		Updates(map[string]any{
			"title":           q.Title,
			"body":            q.Body,
			"image_name_path": q.ImageNamePath,
		})
	if err := requireAffected(result, "Question", q.ID); err != nil {
		return err
	}
	cache.InvalidateQuestions(ctx)
	return nil
}

func (r *repository) RemoveQuestionByID(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		Update("is_removed", true)
	if err := requireAffected(result, "Question", id); err != nil {
		return err
	}
	cache.InvalidateQuestions(ctx)
	return nil
}

func (r *repository) IncrementQuestionViews(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	return requireAffected(result, "Question", id)
}

func (r *repository) GetLatestQuestions(ctx context.Context, n int) ([]models.Question, error) {
	var questions []models.Question
	err := cache.Aside(ctx, cache.LatestQuestionsKey(n), &questions, cache.LatestQuestionsTTL, func() error {
		err := withAuthorAndTags(r.db.WithContext(ctx)).
			Where("is_removed = ?", false).
			Order("date_added DESC").
			Order("id DESC").
			Limit(n).
			Find(&questions).Error
		return mapError(err, "Question", "latest")
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// GetSearchResults matches term case-insensitively against question titles,
// question bodies and answer bodies. Each question appears once.
func (r *repository) GetSearchResults(ctx context.Context, term string) (questions []models.Question, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "GetSearchResults", "questions")
	defer func() { span.End(err) }()
	defer observability.TrackQuery("search", "questions")()

	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Question{}, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	db := r.db.WithContext(ctx)
	answerMatches := db.Model(&models.Answer{}).
		Select("question_id").
		Where("is_removed = ? AND LOWER(body) LIKE ? ESCAPE '\\'", false, pattern)

	err = withAuthorAndTags(db).
		Where("is_removed = ?", false).
		Where(db.Where("LOWER(title) LIKE ? ESCAPE '\\'", pattern).
			Or("LOWER(body) LIKE ? ESCAPE '\\'", pattern).
			Or("id IN (?)", answerMatches)).
		Order("date_added DESC").
		Find(&questions).Error
	if err != nil {
		return nil, mapError(err, "Question", "search")
	}
	return questions, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
