// Package models contains the persisted entities of the AskMate forum.
package models

import "time"

// Question is a forum question. Removal is soft: rows are flagged, never deleted.
type Question struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Title            string            `gorm:"size:100;not null" json:"title"`
	Body             string            `gorm:"size:1000" json:"body"`
	DateAdded        time.Time         `gorm:"not null;index" json:"date_added"`
	Views            int               `gorm:"not null" json:"views"`
	Votes            int               `gorm:"not null" json:"votes"`
	IsRemoved        bool              `gorm:"not null" json:"is_removed"`
	ImageNamePath    string            `gorm:"size:512" json:"image_name_path"`
	UserID           string            `gorm:"size:36;index" json:"user_id"`
	User             *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Answers          []Answer          `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
	QuestionComments []QuestionComment `gorm:"foreignKey:QuestionID" json:"question_comments,omitempty"`
	QuestionTags     []QuestionTag     `gorm:"foreignKey:QuestionID" json:"question_tags,omitempty"`
}

// Tags flattens the loaded QuestionTags association.
func (q *Question) Tags() []Tag {
	tags := make([]Tag, 0, len(q.QuestionTags))
	for _, qt := range q.QuestionTags {
		if qt.Tag != nil {
			tags = append(tags, *qt.Tag)
		}
	}
	return tags
}
