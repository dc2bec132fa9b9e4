package viewmodel

import (
	"strings"

	"askmate/internal/models"
)

// QuestionForm is posted by the add and edit question pages.
type QuestionForm struct {
	Title string `form:"Title" validate:"notblank,max=100"`
	Body  string `form:"Body" validate:"max=1000"`
}

// ToQuestion builds the entity for userID. Server-owned fields are left zero.
func (f *QuestionForm) ToQuestion(userID string) *models.Question {
	return &models.Question{
		Title:  strings.TrimSpace(f.Title),
		Body:   strings.TrimSpace(f.Body),
		UserID: userID,
	}
}

// QuestionFormFrom pre-fills the edit page.
func QuestionFormFrom(q *models.Question) QuestionForm {
	return QuestionForm{Title: q.Title, Body: q.Body}
}

// AnswerForm is posted by the add and edit answer pages.
type AnswerForm struct {
	Body string `form:"Body" validate:"notblank,max=1000"`
}

func (f *AnswerForm) ToAnswer(questionID uint, userID string) *models.Answer {
	return &models.Answer{
		Body:       strings.TrimSpace(f.Body),
		QuestionID: questionID,
		UserID:     userID,
	}
}

// CommentForm is shared by question and answer comments.
type CommentForm struct {
	Body string `form:"Body" validate:"notblank,max=1000"`
}

func (f *CommentForm) ToQuestionComment(questionID uint, userID string) *models.QuestionComment {
	return &models.QuestionComment{
		Body:       strings.TrimSpace(f.Body),
		QuestionID: questionID,
		UserID:     userID,
	}
}

func (f *CommentForm) ToAnswerComment(answerID uint, userID string) *models.AnswerComment {
	return &models.AnswerComment{
		Body:     strings.TrimSpace(f.Body),
		AnswerID: answerID,
		UserID:   userID,
	}
}

// TagForm attaches existing tags and/or creates a new one.
type TagForm struct {
	TagIDs []uint `form:"TagIds"`
	NewTag string `form:"NewTag" validate:"max=100"`
}

// Empty reports whether the form selects nothing.
func (f *TagForm) Empty() bool {
	return len(f.TagIDs) == 0 && strings.TrimSpace(f.NewTag) == ""
}

// RegisterForm creates an account.
type RegisterForm struct {
	UserName        string `form:"UserName" validate:"required,username"`
	Email           string `form:"Email" validate:"required,email,max=254"`
	Password        string `form:"Password" validate:"required,password"`
	ConfirmPassword string `form:"ConfirmPassword" validate:"required,eqfield=Password"`
}

// LoginForm accepts either the e-mail address or the user name.
type LoginForm struct {
	Login     string `form:"Login" validate:"notblank,max=256"`
	Password  string `form:"Password" validate:"required"`
	ReturnURL string `form:"ReturnUrl"`
}

// RoleForm creates or renames a role.
type RoleForm struct {
	Name string `form:"Name" validate:"notblank,max=256"`
}

// RoleMembersForm toggles membership for the listed users.
type RoleMembersForm struct {
	AddUserIDs    []string `form:"AddUserIds"`
	RemoveUserIDs []string `form:"RemoveUserIds"`
}

// ClaimForm attaches a claim to a user.
type ClaimForm struct {
	ClaimType  string `form:"ClaimType" validate:"notblank,max=256"`
	ClaimValue string `form:"ClaimValue" validate:"max=256"`
}

func (f *ClaimForm) ToClaim(userID string) *models.UserClaim {
	return &models.UserClaim{
		UserID:     userID,
		ClaimType:  strings.TrimSpace(f.ClaimType),
		ClaimValue: strings.TrimSpace(f.ClaimValue),
	}
}
