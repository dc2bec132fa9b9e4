package repository

import (
	"context"
	"strings"
	"time"

	"askmate/internal/cache"
	"askmate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users and their activity.
type UserRepository interface {
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUserName(ctx context.Context, userName string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	GetUserQuestions(ctx context.Context, userID string) ([]models.Question, error)
	GetUserAnswers(ctx context.Context, userID string) ([]models.Answer, error)
	GetUserQuestionComments(ctx context.Context, userID string) ([]models.QuestionComment, error)
	GetUserAnswerComments(ctx context.Context, userID string) ([]models.AnswerComment, error)
}

func (r *repository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := cache.Aside(ctx, cache.UsersKey, &users, cache.UsersTTL, func() error {
		err := r.db.WithContext(ctx).Order("user_name").Find(&users).Error
		return mapError(err, "User", "all")
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Roles").Preload("Claims").Where("id = ?", id).First(&u).Error; err != nil {
		return nil, mapError(err, "User", id)
	}
	return &u, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, mapError(err, "User", email)
	}
	return &u, nil
}

func (r *repository) GetUserByUserName(ctx context.Context, userName string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(user_name) = ?", strings.ToLower(strings.TrimSpace(userName))).
		First(&u).Error
	if err != nil {
		return nil, mapError(err, "User", userName)
	}
	return &u, nil
}

// CreateUser inserts u with a fresh registration date and zero reputation.
func (r *repository) CreateUser(ctx context.Context, u *models.User) error {
	u.DateAdded = time.Now()
	u.Reputation = 0
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error; err != nil {
		return mapError(err, "User", u.UserName)
	}
	cache.InvalidateUsers(ctx)
	return nil
}

func (r *repository) GetUserQuestions(ctx context.Context, userID string) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_removed = ?", userID, false).
		Order("date_added DESC").
		Find(&questions).Error
	if err != nil {
		return nil, mapError(err, "User", userID)
	}
	return questions, nil
}

func (r *repository) GetUserAnswers(ctx context.Context, userID string) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("user_id = ? AND is_removed = ?", userID, false).
		Order("date_added DESC").
		Find(&answers).Error
	if err != nil {
		return nil, mapError(err, "User", userID)
	}
	return answers, nil
}

func (r *repository) GetUserQuestionComments(ctx context.Context, userID string) ([]models.QuestionComment, error) {
	var comments []models.QuestionComment
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("user_id = ? AND is_removed = ?", userID, false).
		Order("date_added DESC").
		Find(&comments).Error
	if err != nil {
		return nil, mapError(err, "User", userID)
	}
	return comments, nil
}

func (r *repository) GetUserAnswerComments(ctx context.Context, userID string) ([]models.AnswerComment, error) {
	var comments []models.AnswerComment
	err := r.db.WithContext(ctx).
		Preload("Answer", func(db *gorm.DB) *gorm.DB { return db.Select("id", "question_id") }).
		Where("user_id = ? AND is_removed = ?", userID, false).
		Order("date_added DESC").
		Find(&comments).Error
	if err != nil {
		return nil, mapError(err, "User", userID)
	}
	return comments, nil
}
