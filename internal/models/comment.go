package models

import "time"

// QuestionComment is a comment attached directly to a question.
type QuestionComment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Body       string    `gorm:"size:1000;not null" json:"body"`
	DateAdded  time.Time `gorm:"not null" json:"date_added"`
	IsRemoved  bool      `gorm:"not null" json:"is_removed"`
	IsEdited   bool      `gorm:"not null" json:"is_edited"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	UserID     string    `gorm:"size:36;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// AnswerComment is a comment attached to an answer.
type AnswerComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"size:1000;not null" json:"body"`
	DateAdded time.Time `gorm:"not null" json:"date_added"`
	IsRemoved bool      `gorm:"not null" json:"is_removed"`
	IsEdited  bool      `gorm:"not null" json:"is_edited"`
	AnswerID  uint      `gorm:"not null;index" json:"answer_id"`
	Answer    *Answer   `gorm:"foreignKey:AnswerID" json:"answer,omitempty"`
	UserID    string    `gorm:"size:36;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
