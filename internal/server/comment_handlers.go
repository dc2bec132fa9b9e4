package server

import (
	"fmt"

	"askmate/internal/models"
	"askmate/internal/validation"
	"askmate/internal/viewmodel"

	"github.com/gofiber/fiber/v2"
)

const commentFormView = "comments/form"

func commentFormBind(title, action string, questionID uint, form viewmodel.CommentForm) fiber.Map {
	return fiber.Map{
		"Title":      title,
		"Action":     action,
		"QuestionID": questionID,
		"Form":       form,
	}
}

// parseCommentForm returns the form and, when invalid, its field errors.
func parseCommentForm(c *fiber.Ctx) (viewmodel.CommentForm, validation.FieldErrors, error) {
	var form viewmodel.CommentForm
	if err := c.BodyParser(&form); err != nil {
		return form, nil, models.NewValidationError("Invalid form submission")
	}
	return form, validation.Struct(&form), nil
}

// AddQuestionCommentForm handles GET /comments/addQuestionComment/:questionId
func (s *Server) AddQuestionCommentForm(c *fiber.Ctx) error {
	questionID, err := parseID(c, "questionId")
	if err != nil {
		return err
	}
	if _, err := s.liveQuestion(c.UserContext(), questionID); err != nil {
		return err
	}
	return s.renderOK(c, commentFormView, commentFormBind("Comment on question", c.Path(), questionID, viewmodel.CommentForm{}))
}

// AddQuestionComment handles POST /comments/addQuestionComment/:questionId
func (s *Server) AddQuestionComment(c *fiber.Ctx) error {
	questionID, err := parseID(c, "questionId")
	if err != nil {
		return err
	}
	if _, err := s.liveQuestion(c.UserContext(), questionID); err != nil {
		return err
	}

	form, errs, err := parseCommentForm(c)
	if err != nil {
		return err
	}
	if errs != nil {
		return s.renderInvalid(c, commentFormView, commentFormBind("Comment on question", c.Path(), questionID, form), errs)
	}

	if err := s.repo.AddQuestionComment(c.UserContext(), form.ToQuestionComment(questionID, currentUserID(c))); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(questionID))
}

// AddAnswerCommentForm handles GET /comments/addAnswerComment/:answerId
func (s *Server) AddAnswerCommentForm(c *fiber.Ctx) error {
	a, err := s.commentableAnswer(c)
	if err != nil {
		return err
	}
	return s.renderOK(c, commentFormView, commentFormBind("Comment on answer", c.Path(), a.QuestionID, viewmodel.CommentForm{}))
}

// AddAnswerComment handles POST /comments/addAnswerComment/:answerId
func (s *Server) AddAnswerComment(c *fiber.Ctx) error {
	a, err := s.commentableAnswer(c)
	if err != nil {
		return err
	}

	form, errs, err := parseCommentForm(c)
	if err != nil {
		return err
	}
	if errs != nil {
		return s.renderInvalid(c, commentFormView, commentFormBind("Comment on answer", c.Path(), a.QuestionID, form), errs)
	}

	if err := s.repo.AddAnswerComment(c.UserContext(), form.ToAnswerComment(a.ID, currentUserID(c))); err != nil {
		return err
	}
	return redirectAfterPost(c, fmt.Sprintf("%s#answer-%d", questionURL(a.QuestionID), a.ID))
}

func (s *Server) commentableAnswer(c *fiber.Ctx) (*models.Answer, error) {
	answerID, err := parseID(c, "answerId")
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetAnswerByID(c.UserContext(), answerID)
	if err != nil {
		return nil, err
	}
	if a.IsRemoved || (a.Question != nil && a.Question.IsRemoved) {
		return nil, models.NewNotFoundError("Answer", answerID)
	}
	return a, nil
}

func parentRemoved(a *models.Answer) bool {
	return a != nil && (a.IsRemoved || (a.Question != nil && a.Question.IsRemoved))
}

// editableQuestionComment loads a live question comment the user may change.
func (s *Server) editableQuestionComment(c *fiber.Ctx) (*models.QuestionComment, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	comment, err := s.repo.GetQuestionCommentByID(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if comment.IsRemoved || (comment.Question != nil && comment.Question.IsRemoved) {
		return nil, models.NewNotFoundError("QuestionComment", id)
	}
	if err := s.requireModify(c, comment.UserID); err != nil {
		return nil, err
	}
	return comment, nil
}

// EditQuestionCommentForm handles GET /comments/questionComments/:id/edit
func (s *Server) EditQuestionCommentForm(c *fiber.Ctx) error {
	comment, err := s.editableQuestionComment(c)
	if err != nil {
		return err
	}
	return s.renderOK(c, commentFormView, commentFormBind("Edit comment", c.Path(), comment.QuestionID, viewmodel.CommentForm{Body: comment.Body}))
}

// EditQuestionComment handles POST /comments/questionComments/:id/edit
func (s *Server) EditQuestionComment(c *fiber.Ctx) error {
	comment, err := s.editableQuestionComment(c)
	if err != nil {
		return err
	}
	form, errs, err := parseCommentForm(c)
	if err != nil {
		return err
	}
	if errs != nil {
		return s.renderInvalid(c, commentFormView, commentFormBind("Edit comment", c.Path(), comment.QuestionID, form), errs)
	}

	comment.Body = form.ToQuestionComment(comment.QuestionID, comment.UserID).Body
	if err := s.repo.EditQuestionComment(c.UserContext(), comment); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(comment.QuestionID))
}

// RemoveQuestionComment handles POST /comments/questionComments/:id/remove
func (s *Server) RemoveQuestionComment(c *fiber.Ctx) error {
	comment, err := s.editableQuestionComment(c)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveQuestionComment(c.UserContext(), comment.ID); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(comment.QuestionID))
}

// editableAnswerComment loads a live answer comment the user may change.
func (s *Server) editableAnswerComment(c *fiber.Ctx) (*models.AnswerComment, uint, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, 0, err
	}
	comment, err := s.repo.GetAnswerCommentByID(c.UserContext(), id)
	if err != nil {
		return nil, 0, err
	}
	if comment.IsRemoved || parentRemoved(comment.Answer) {
		return nil, 0, models.NewNotFoundError("AnswerComment", id)
	}
	if err := s.requireModify(c, comment.UserID); err != nil {
		return nil, 0, err
	}

	var questionID uint
	if comment.Answer != nil {
		questionID = comment.Answer.QuestionID
	}
	return comment, questionID, nil
}

// EditAnswerCommentForm handles GET /comments/answerComments/:id/edit
func (s *Server) EditAnswerCommentForm(c *fiber.Ctx) error {
	comment, questionID, err := s.editableAnswerComment(c)
	if err != nil {
		return err
	}
	return s.renderOK(c, commentFormView, commentFormBind("Edit comment", c.Path(), questionID, viewmodel.CommentForm{Body: comment.Body}))
}

// EditAnswerComment handles POST /comments/answerComments/:id/edit
func (s *Server) EditAnswerComment(c *fiber.Ctx) error {
	comment, questionID, err := s.editableAnswerComment(c)
	if err != nil {
		return err
	}
	form, errs, err := parseCommentForm(c)
	if err != nil {
		return err
	}
	if errs != nil {
		return s.renderInvalid(c, commentFormView, commentFormBind("Edit comment", c.Path(), questionID, form), errs)
	}

	comment.Body = form.ToAnswerComment(comment.AnswerID, comment.UserID).Body
	if err := s.repo.EditAnswerComment(c.UserContext(), comment); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(questionID))
}

// RemoveAnswerComment handles POST /comments/answerComments/:id/remove
func (s *Server) RemoveAnswerComment(c *fiber.Ctx) error {
	comment, questionID, err := s.editableAnswerComment(c)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveAnswerComment(c.UserContext(), comment.ID); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(questionID))
}
