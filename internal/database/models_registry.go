package database

import "askmate/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.UserClaim{},
		&models.Tag{},
		&models.Question{},
		&models.Answer{},
		&models.QuestionComment{},
		&models.AnswerComment{},
		&models.QuestionTag{},
	}
}
