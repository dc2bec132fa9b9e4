package models

// Tag labels questions. Names are not unique and IsRemoved is never set by
// the application.
type Tag struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	IsRemoved bool   `gorm:"not null" json:"is_removed"`
}

// QuestionTag is the join row between Question and Tag. Deleting either
// parent cascades to the join rows.
type QuestionTag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Question   *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	TagID      uint      `gorm:"not null;index" json:"tag_id"`
	Tag        *Tag      `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"tag,omitempty"`
}
