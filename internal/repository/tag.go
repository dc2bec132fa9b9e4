package repository

import (
	"context"
	"strings"

	"askmate/internal/cache"
	"askmate/internal/models"

	"gorm.io/gorm"
)

// TagSummary is a tag with the number of questions it labels.
type TagSummary struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	QuestionCount int64  `json:"question_count"`
}

// TagRepository defines persistence operations for tags and question tagging.
type TagRepository interface {
	GetAllTagNames(ctx context.Context) ([]string, error)
	GetAllTags(ctx context.Context) ([]TagSummary, error)
	GetAllTagsNoDuplicates(ctx context.Context, questionID uint) ([]models.Tag, error)
	GetTagIDsForQuestionID(ctx context.Context, questionID uint) ([]uint, error)
	GetTagsFromListFromDB(ctx context.Context, ids []uint) ([]models.Tag, error)
	AddTag(ctx context.Context, name string) (*models.Tag, error)
	AttachTagsToQuestion(ctx context.Context, questionID uint, tagIDs []uint) error
	DetachTagFromQuestion(ctx context.Context, questionID, tagID uint) error
	GetQuestionsByTagID(ctx context.Context, tagID uint) ([]models.Question, error)
}

func (r *repository) GetAllTagNames(ctx context.Context) ([]string, error) {
	var names []string
	err := cache.Aside(ctx, cache.TagNamesKey, &names, cache.TagNamesTTL, func() error {
		err := r.db.WithContext(ctx).Model(&models.Tag{}).
			Where("is_removed = ?", false).
			Order("name").
			Pluck("name", &names).Error
		return mapError(err, "Tag", "names")
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *repository) GetAllTags(ctx context.Context) ([]TagSummary, error) {
	var tags []TagSummary
	err := r.db.WithContext(ctx).Table("tags").
		Select("tags.id, tags.name, COUNT(question_tags.id) AS question_count").
		Joins("LEFT JOIN question_tags ON question_tags.tag_id = tags.id").
		Where("tags.is_removed = ?", false).
		Group("tags.id, tags.name").
		Order("tags.name").
		Scan(&tags).Error
	if err != nil {
		return nil, mapError(err, "Tag", "all")
	}
	return tags, nil
}

// GetAllTagsNoDuplicates returns the tags not yet attached to questionID.
func (r *repository) GetAllTagsNoDuplicates(ctx context.Context, questionID uint) ([]models.Tag, error) {
	db := r.db.WithContext(ctx)
	attached := db.Model(&models.QuestionTag{}).Select("tag_id").Where("question_id = ?", questionID)

	var tags []models.Tag
	err := db.Where("is_removed = ?", false).
		Where("id NOT IN (?)", attached).
		Order("name").
		Find(&tags).Error
	if err != nil {
		return nil, mapError(err, "Tag", questionID)
	}
	return tags, nil
}

func (r *repository) GetTagIDsForQuestionID(ctx context.Context, questionID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.QuestionTag{}).
		Where("question_id = ?", questionID).
		Order("tag_id").
		Pluck("tag_id", &ids).Error
	if err != nil {
		return nil, mapError(err, "QuestionTag", questionID)
	}
	return ids, nil
}

func (r *repository) GetTagsFromListFromDB(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name").Find(&tags).Error; err != nil {
		return nil, mapError(err, "Tag", ids)
	}
	return tags, nil
}

func (r *repository) AddTag(ctx context.Context, name string) (*models.Tag, error) {
	tag := models.Tag{Name: strings.TrimSpace(name)}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, mapError(err, "Tag", name)
	}
	cache.InvalidateTags(ctx)
	return &tag, nil
}

// AttachTagsToQuestion links tagIDs to the question, skipping tags that are
// already attached. Cached question pages carry their tags, so they are
// dropped on success.
func (r *repository) AttachTagsToQuestion(ctx context.Context, questionID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uint
		if err := tx.Model(&models.QuestionTag{}).
			Where("question_id = ?", questionID).
			Pluck("tag_id", &existing).Error; err != nil {
			return mapError(err, "QuestionTag", questionID)
		}

		seen := make(map[uint]bool, len(existing)+len(tagIDs))
		for _, id := range existing {
			seen[id] = true
		}

		rows := make([]models.QuestionTag, 0, len(tagIDs))
		for _, id := range tagIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			rows = append(rows, models.QuestionTag{QuestionID: questionID, TagID: id})
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return mapError(err, "QuestionTag", questionID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateQuestions(ctx)
	return nil
}

func (r *repository) DetachTagFromQuestion(ctx context.Context, questionID, tagID uint) error {
	result := r.db.WithContext(ctx).
		Where("question_id = ? AND tag_id = ?", questionID, tagID).
		Delete(&models.QuestionTag{})
	if err := requireAffected(result, "QuestionTag", tagID); err != nil {
		return err
	}
	cache.InvalidateQuestions(ctx)
	return nil
}

func (r *repository) GetQuestionsByTagID(ctx context.Context, tagID uint) ([]models.Question, error) {
	db := r.db.WithContext(ctx)
	tagged := db.Model(&models.QuestionTag{}).Select("question_id").Where("tag_id = ?", tagID)

	var questions []models.Question
	err := withAuthorAndTags(db).
		Where("is_removed = ?", false).
		Where("id IN (?)", tagged).
		Order("date_added DESC").
		Find(&questions).Error
	if err != nil {
		return nil, mapError(err, "Tag", tagID)
	}
	return questions, nil
}
