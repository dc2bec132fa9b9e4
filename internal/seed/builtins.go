package seed

import (
	"errors"

	"askmate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInRoles always exist after seeding.
var BuiltInRoles = []string{models.RoleAdmin, models.RoleSuperAdmin}

// BuiltInTags is the starter tag vocabulary.
var BuiltInTags = []string{
	"go", "sql", "postgresql", "redis", "docker", "linux", "http",
	"concurrency", "testing", "css", "html", "javascript", "git",
}

// Builtins creates the built-in roles and tags if they are missing and
// returns the tags. Running it twice changes nothing.
func Builtins(db *gorm.DB) ([]models.Tag, error) {
	for _, name := range BuiltInRoles {
		role := models.Role{Name: name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&role).Error; err != nil {
			return nil, err
		}
	}

	tags := make([]models.Tag, 0, len(BuiltInTags))
	for _, name := range BuiltInTags {
		var tag models.Tag
		err := db.Where("name = ? AND is_removed = ?", name, false).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name}
			err = db.Create(&tag).Error
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
