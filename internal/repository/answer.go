package repository

import (
	"context"
	"time"

	"askmate/internal/models"
	"askmate/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnswerRepository defines persistence operations for answers.
type AnswerRepository interface {
	AddAnswer(ctx context.Context, a *models.Answer) error
	GetAnswerByID(ctx context.Context, id uint) (*models.Answer, error)
	EditAnswer(ctx context.Context, a *models.Answer) error
	EditAnswerAccepted(ctx context.Context, id uint) error
	VoteUpAnswerByID(ctx context.Context, id uint) error
	VoteDownAnswerByID(ctx context.Context, id uint) error
	RemoveAnswerByID(ctx context.Context, id uint) error
}

func (r *repository) AddAnswer(ctx context.Context, a *models.Answer) error {
	a.ID = 0
	a.DateAdded = time.Now()
	a.Votes = 0
	a.IsAccepted = false
	a.IsRemoved = false

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return mapError(err, "Answer", "new")
	}
	observability.ContentCreated.WithLabelValues("answer").Inc()
	return nil
}

func (r *repository) GetAnswerByID(ctx context.Context, id uint) (*models.Answer, error) {
	var a models.Answer
	if err := r.db.WithContext(ctx).Preload("User").Preload("Question").First(&a, id).Error; err != nil {
		return nil, mapError(err, "Answer", id)
	}
	return &a, nil
}

func (r *repository) EditAnswer(ctx context.Context, a *models.Answer) error {
	result := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"body":            a.Body,
			"image_name_path": a.ImageNamePath,
		})
	return requireAffected(result, "Answer", a.ID)
}

// EditAnswerAccepted flags the answer as accepted. Other answers of the same
// question keep their flag.
func (r *repository) EditAnswerAccepted(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ?", id).
		Update("is_accepted", true)
	return requireAffected(result, "Answer", id)
}

func (r *repository) VoteUpAnswerByID(ctx context.Context, id uint) error {
	return r.voteAnswer(ctx, id, 1, "up")
}

func (r *repository) VoteDownAnswerByID(ctx context.Context, id uint) error {
	return r.voteAnswer(ctx, id, -1, "down")
}

// voteAnswer adds delta in a single UPDATE; there is no floor, ceiling or
// per-user bookkeeping.
func (r *repository) voteAnswer(ctx context.Context, id uint, delta int, direction string) error {
	result := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ?", id).
		UpdateColumn("votes", gorm.Expr("votes + ?", delta))
	if err := requireAffected(result, "Answer", id); err != nil {
		return err
	}
	observability.AnswerVotes.WithLabelValues(direction).Inc()
	return nil
}

func (r *repository) RemoveAnswerByID(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ?", id).
		Update("is_removed", true)
	return requireAffected(result, "Answer", id)
}
