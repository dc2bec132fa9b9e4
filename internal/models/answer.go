package models

import "time"

// Answer belongs to one Question. Several answers of the same question may be
// accepted at once; nothing in the schema prevents it.
type Answer struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Body           string          `gorm:"size:1000;not null" json:"body"`
	DateAdded      time.Time       `gorm:"not null;index" json:"date_added"`
	QuestionID     uint            `gorm:"not null;index" json:"question_id"`
	Question       *Question       `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Votes          int             `gorm:"not null" json:"votes"`
	IsAccepted     bool            `gorm:"not null" json:"is_accepted"`
	IsRemoved      bool            `gorm:"not null" json:"is_removed"`
	ImageNamePath  string          `gorm:"size:512" json:"image_name_path"`
	UserID         string          `gorm:"size:36;index" json:"user_id"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AnswerComments []AnswerComment `gorm:"foreignKey:AnswerID" json:"answer_comments,omitempty"`
}
