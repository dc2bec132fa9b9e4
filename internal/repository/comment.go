package repository

import (
	"context"
	"time"

	"askmate/internal/models"
	"askmate/internal/observability"

	"gorm.io/gorm/clause"
)

// CommentRepository defines persistence operations for question and answer comments.
type CommentRepository interface {
	AddQuestionComment(ctx context.Context, c *models.QuestionComment) error
	EditQuestionComment(ctx context.Context, c *models.QuestionComment) error
	GetQuestionCommentByID(ctx context.Context, id uint) (*models.QuestionComment, error)
	RemoveQuestionComment(ctx context.Context, id uint) error
	AddAnswerComment(ctx context.Context, c *models.AnswerComment) error
	EditAnswerComment(ctx context.Context, c *models.AnswerComment) error
	GetAnswerCommentByID(ctx context.Context, id uint) (*models.AnswerComment, error)
	RemoveAnswerComment(ctx context.Context, id uint) error
}

func (r *repository) AddQuestionComment(ctx context.Context, c *models.QuestionComment) error {
	c.ID = 0
	c.DateAdded = time.Now()
	c.IsEdited = false
	c.IsRemoved = false

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return mapError(err, "QuestionComment", "new")
	}
	observability.ContentCreated.WithLabelValues("question_comment").Inc()
	return nil
}

// EditQuestionComment replaces the body in place, marks the comment edited
// and moves date_added to now. The previous body is not kept.
func (r *repository) EditQuestionComment(ctx context.Context, c *models.QuestionComment) error {
	c.DateAdded = time.Now()
	c.IsEdited = true

	result := r.db.WithContext(ctx).Model(&models.QuestionComment{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"body":       c.Body,
			"is_edited":  true,
			"date_added": c.DateAdded,
		})
	return requireAffected(result, "QuestionComment", c.ID)
}

// GetQuestionCommentByID also loads the parent question.
func (r *repository) GetQuestionCommentByID(ctx context.Context, id uint) (*models.QuestionComment, error) {
	var c models.QuestionComment
	if err := r.db.WithContext(ctx).Preload("User").Preload("Question").First(&c, id).Error; err != nil {
		return nil, mapError(err, "QuestionComment", id)
	}
	return &c, nil
}

func (r *repository) RemoveQuestionComment(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.QuestionComment{}).
		Where("id = ?", id).
		Update("is_removed", true)
	return requireAffected(result, "QuestionComment", id)
}

func (r *repository) AddAnswerComment(ctx context.Context, c *models.AnswerComment) error {
	c.ID = 0
	c.DateAdded = time.Now()
	c.IsEdited = false
	c.IsRemoved = false

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return mapError(err, "AnswerComment", "new")
	}
	observability.ContentCreated.WithLabelValues("answer_comment").Inc()
	return nil
}

// EditAnswerComment follows the same lossy edit rules as EditQuestionComment.
func (r *repository) EditAnswerComment(ctx context.Context, c *models.AnswerComment) error {
	c.DateAdded = time.Now()
	c.IsEdited = true

	result := r.db.WithContext(ctx).Model(&models.AnswerComment{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"body":       c.Body,
			"is_edited":  true,
			"date_added": c.DateAdded,
		})
	return requireAffected(result, "AnswerComment", c.ID)
}

// GetAnswerCommentByID also loads the parent answer and its question.
func (r *repository) GetAnswerCommentByID(ctx context.Context, id uint) (*models.AnswerComment, error) {
	var c models.AnswerComment
	if err := r.db.WithContext(ctx).Preload("User").Preload("Answer.Question").First(&c, id).Error; err != nil {
		return nil, mapError(err, "AnswerComment", id)
	}
	return &c, nil
}

func (r *repository) RemoveAnswerComment(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.AnswerComment{}).
		Where("id = ?", id).
		Update("is_removed", true)
	return requireAffected(result, "AnswerComment", id)
}
