// Package viewmodel holds the presentation shapes rendered by the HTML views
// and the explicit conversions from persisted entities.
package viewmodel

import (
	"time"

	"askmate/internal/models"
)

// QuestionVM is a question as shown in lists and on its detail page.
type QuestionVM struct {
	ID            uint
	Title         string
	Body          string
	DateAdded     time.Time
	Views         int
	Votes         int
	IsRemoved     bool
	ImageNamePath string
	UserID        string
	UserName      string
	AnswerCount   int
	Tags          []TagVM
	Answers       []AnswerVM
	Comments      []CommentVM
}

// AnswerVM is an answer with its comments.
type AnswerVM struct {
	ID            uint
	Body          string
	DateAdded     time.Time
	QuestionID    uint
	QuestionTitle string
	Votes         int
	IsAccepted    bool
	ImageNamePath string
	UserID        string
	UserName      string
	Comments      []CommentVM
}

// CommentVM covers both question and answer comments. QuestionID is the
// question the comment is ultimately shown under.
type CommentVM struct {
	ID         uint
	Body       string
	DateAdded  time.Time
	IsEdited   bool
	UserID     string
	UserName   string
	QuestionID uint
	AnswerID   uint
}

// TagVM is a tag, optionally with the number of questions it labels.
type TagVM struct {
	ID            uint
	Name          string
	QuestionCount int64
}

// UserVM is the public view of an account.
type UserVM struct {
	ID         string
	UserName   string
	Email      string
	DateAdded  time.Time
	Reputation int
}

// ActivityVM lists everything one user has posted.
type ActivityVM struct {
	User             UserVM
	Questions        []QuestionVM
	Answers          []AnswerVM
	QuestionComments []CommentVM
	AnswerComments   []CommentVM
}

// RoleVM is a role with its members.
type RoleVM struct {
	ID      string
	Name    string
	Members []UserVM
}

// ClaimVM is a user claim with the owner's name.
type ClaimVM struct {
	ID         uint
	UserID     string
	UserName   string
	ClaimType  string
	ClaimValue string
}

func userName(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.UserName
}

// FromQuestion maps a question and whatever associations were loaded.
func FromQuestion(q *models.Question) QuestionVM {
	vm := QuestionVM{
		ID:            q.ID,
		Title:         q.Title,
		Body:          q.Body,
		DateAdded:     q.DateAdded,
		Views:         q.Views,
		Votes:         q.Votes,
		IsRemoved:     q.IsRemoved,
		ImageNamePath: q.ImageNamePath,
		UserID:        q.UserID,
		UserName:      userName(q.User),
		AnswerCount:   len(q.Answers),
		Tags:          FromTags(q.Tags()),
	}
	if len(q.Answers) > 0 {
		vm.Answers = make([]AnswerVM, 0, len(q.Answers))
		for i := range q.Answers {
			vm.Answers = append(vm.Answers, FromAnswer(&q.Answers[i]))
		}
	}
	if len(q.QuestionComments) > 0 {
		vm.Comments = make([]CommentVM, 0, len(q.QuestionComments))
		for i := range q.QuestionComments {
			vm.Comments = append(vm.Comments, FromQuestionComment(&q.QuestionComments[i]))
		}
	}
	return vm
}

// FromQuestions maps a slice of questions.
func FromQuestions(qs []models.Question) []QuestionVM {
	out := make([]QuestionVM, 0, len(qs))
	for i := range qs {
		out = append(out, FromQuestion(&qs[i]))
	}
	return out
}

// FromAnswer maps an answer and its loaded comments.
func FromAnswer(a *models.Answer) AnswerVM {
	vm := AnswerVM{
		ID:            a.ID,
		Body:          a.Body,
		DateAdded:     a.DateAdded,
		QuestionID:    a.QuestionID,
		Votes:         a.Votes,
		IsAccepted:    a.IsAccepted,
		ImageNamePath: a.ImageNamePath,
		UserID:        a.UserID,
		UserName:      userName(a.User),
	}
	if a.Question != nil {
		vm.QuestionTitle = a.Question.Title
	}
	if len(a.AnswerComments) > 0 {
		vm.Comments = make([]CommentVM, 0, len(a.AnswerComments))
		for i := range a.AnswerComments {
			c := FromAnswerComment(&a.AnswerComments[i])
			c.QuestionID = a.QuestionID
			vm.Comments = append(vm.Comments, c)
		}
	}
	return vm
}

// FromAnswers maps a slice of answers.
func FromAnswers(as []models.Answer) []AnswerVM {
	out := make([]AnswerVM, 0, len(as))
	for i := range as {
		out = append(out, FromAnswer(&as[i]))
	}
	return out
}

func FromQuestionComment(c *models.QuestionComment) CommentVM {
	return CommentVM{
		ID:         c.ID,
		Body:       c.Body,
		DateAdded:  c.DateAdded,
		IsEdited:   c.IsEdited,
		UserID:     c.UserID,
		UserName:   userName(c.User),
		QuestionID: c.QuestionID,
	}
}

// FromAnswerComment maps an answer comment. QuestionID is filled when the
// parent answer was loaded.
func FromAnswerComment(c *models.AnswerComment) CommentVM {
	vm := CommentVM{
		ID:        c.ID,
		Body:      c.Body,
		DateAdded: c.DateAdded,
		IsEdited:  c.IsEdited,
		UserID:    c.UserID,
		UserName:  userName(c.User),
		AnswerID:  c.AnswerID,
	}
	if c.Answer != nil {
		vm.QuestionID = c.Answer.QuestionID
	}
	return vm
}

func FromQuestionComments(cs []models.QuestionComment) []CommentVM {
	out := make([]CommentVM, 0, len(cs))
	for i := range cs {
		out = append(out, FromQuestionComment(&cs[i]))
	}
	return out
}

func FromAnswerComments(cs []models.AnswerComment) []CommentVM {
	out := make([]CommentVM, 0, len(cs))
	for i := range cs {
		out = append(out, FromAnswerComment(&cs[i]))
	}
	return out
}

func FromTag(t models.Tag) TagVM {
	return TagVM{ID: t.ID, Name: t.Name}
}

func FromTags(ts []models.Tag) []TagVM {
	out := make([]TagVM, 0, len(ts))
	for _, t := range ts {
		out = append(out, FromTag(t))
	}
	return out
}

func FromUser(u *models.User) UserVM {
	return UserVM{
		ID:         u.ID,
		UserName:   u.UserName,
		Email:      u.Email,
		DateAdded:  u.DateAdded,
		Reputation: u.Reputation,
	}
}

func FromUsers(us []models.User) []UserVM {
	out := make([]UserVM, 0, len(us))
	for i := range us {
		out = append(out, FromUser(&us[i]))
	}
	return out
}

// FromRole maps a role and its loaded members.
func FromRole(r *models.Role) RoleVM {
	return RoleVM{ID: r.ID, Name: r.Name, Members: FromUsers(r.Users)}
}

func FromRoles(rs []models.Role) []RoleVM {
	out := make([]RoleVM, 0, len(rs))
	for i := range rs {
		out = append(out, FromRole(&rs[i]))
	}
	return out
}

func FromClaim(c *models.UserClaim) ClaimVM {
	return ClaimVM{
		ID:         c.ID,
		UserID:     c.UserID,
		UserName:   userName(c.User),
		ClaimType:  c.ClaimType,
		ClaimValue: c.ClaimValue,
	}
}

func FromClaims(cs []models.UserClaim) []ClaimVM {
	out := make([]ClaimVM, 0, len(cs))
	for i := range cs {
		out = append(out, FromClaim(&cs[i]))
	}
	return out
}
