package server

import (
	"context"
	"fmt"

	"askmate/internal/models"
	"askmate/internal/upload"
	"askmate/internal/validation"
	"askmate/internal/viewmodel"

	"github.com/gofiber/fiber/v2"
)

const answerFormView = "answers/form"

func answerFormBind(title, action string, question *models.Question, form viewmodel.AnswerForm) fiber.Map {
	return fiber.Map{
		"Title":    title,
		"Action":   action,
		"Question": viewmodel.FromQuestion(question),
		"Form":     form,
	}
}

// liveQuestion returns the question unless it does not exist or was removed.
func (s *Server) liveQuestion(ctx context.Context, id uint) (*models.Question, error) {
	q, err := s.repo.GetQuestionByIDWithoutDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.IsRemoved {
		return nil, models.NewNotFoundError("Question", id)
	}
	return q, nil
}

// liveAnswer returns the answer with its question unless either was removed.
func (s *Server) liveAnswer(c *fiber.Ctx) (*models.Answer, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetAnswerByID(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if a.IsRemoved || (a.Question != nil && a.Question.IsRemoved) {
		return nil, models.NewNotFoundError("Answer", id)
	}
	return a, nil
}

// AddAnswerForm handles GET /answers/addanswer/:questionId
func (s *Server) AddAnswerForm(c *fiber.Ctx) error {
	questionID, err := parseID(c, "questionId")
	if err != nil {
		return err
	}
	q, err := s.liveQuestion(c.UserContext(), questionID)
	if err != nil {
		return err
	}
	return s.renderOK(c, answerFormView, answerFormBind("Answer question", c.Path(), q, viewmodel.AnswerForm{}))
}

// AddAnswer handles POST /answers/addanswer/:questionId and redirects to the
// question page.
func (s *Server) AddAnswer(c *fiber.Ctx) error {
	questionID, err := parseID(c, "questionId")
	if err != nil {
		return err
	}
	q, err := s.liveQuestion(c.UserContext(), questionID)
	if err != nil {
		return err
	}

	var form viewmodel.AnswerForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}
	image, imageErrs := uploadedImage(c)
	if errs := mergeErrors(validation.Struct(&form), imageErrs); errs != nil {
		return s.renderInvalid(c, answerFormView, answerFormBind("Answer question", c.Path(), q, form), errs)
	}

	userID := currentUserID(c)
	a := form.ToAnswer(q.ID, userID)
	if image != nil {
		path, err := s.uploads.Save(image, upload.AssembleAnswerUploadedFileName(userID, image.Filename))
		if err != nil {
			return models.NewInternalError(err)
		}
		a.ImageNamePath = path
	}

	if err := s.repo.AddAnswer(c.UserContext(), a); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(q.ID))
}

// EditAnswerForm handles GET /answers/:id/edit
func (s *Server) EditAnswerForm(c *fiber.Ctx) error {
	a, err := s.liveAnswer(c)
	if err != nil {
		return err
	}
	if err := s.requireModify(c, a.UserID); err != nil {
		return err
	}
	bind := answerFormBind("Edit answer", c.Path(), a.Question, viewmodel.AnswerForm{Body: a.Body})
	bind["ImageNamePath"] = a.ImageNamePath
	return s.renderOK(c, answerFormView, bind)
}

// EditAnswer handles POST /answers/:id/edit. A new image replaces the old one.
func (s *Server) EditAnswer(c *fiber.Ctx) error {
	a, err := s.liveAnswer(c)
	if err != nil {
		return err
	}
	if err := s.requireModify(c, a.UserID); err != nil {
		return err
	}

	var form viewmodel.AnswerForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}
	image, imageErrs := uploadedImage(c)
	if errs := mergeErrors(validation.Struct(&form), imageErrs); errs != nil {
		bind := answerFormBind("Edit answer", c.Path(), a.Question, form)
		bind["ImageNamePath"] = a.ImageNamePath
		return s.renderInvalid(c, answerFormView, bind, errs)
	}

	a.Body = form.ToAnswer(a.QuestionID, a.UserID).Body
	if image != nil {
		path, err := s.uploads.Save(image, upload.AssembleAnswerUploadedFileName(currentUserID(c), image.Filename))
		if err != nil {
			return models.NewInternalError(err)
		}
		a.ImageNamePath = path
	}

	if err := s.repo.EditAnswer(c.UserContext(), a); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(a.QuestionID))
}

// VoteUpAnswer handles GET|POST /answers/:id/voteup
func (s *Server) VoteUpAnswer(c *fiber.Ctx) error {
	return s.vote(c, s.repo.VoteUpAnswerByID)
}

// VoteDownAnswer handles GET|POST /answers/:id/votedown
func (s *Server) VoteDownAnswer(c *fiber.Ctx) error {
	return s.vote(c, s.repo.VoteDownAnswerByID)
}

func (s *Server) vote(c *fiber.Ctx, apply func(context.Context, uint) error) error {
	a, err := s.liveAnswer(c)
	if err != nil {
		return err
	}
	if err := apply(c.UserContext(), a.ID); err != nil {
		return err
	}
	return redirectAfterPost(c, fmt.Sprintf("%s#answer-%d", questionURL(a.QuestionID), a.ID))
}

// AcceptAnswer handles GET|POST /answers/:id/accept. Only the question author
// or a content admin may accept.
func (s *Server) AcceptAnswer(c *fiber.Ctx) error {
	a, err := s.liveAnswer(c)
	if err != nil {
		return err
	}
	q := a.Question
	if q == nil {
		if q, err = s.liveQuestion(c.UserContext(), a.QuestionID); err != nil {
			return err
		}
	}

	ok, err := s.authz.CanAccept(c.UserContext(), currentUserID(c), q)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewForbiddenError("Only the question author can accept an answer")
	}

	if err := s.repo.EditAnswerAccepted(c.UserContext(), a.ID); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(a.QuestionID))
}

// RemoveAnswer handles POST /answers/:id/remove
func (s *Server) RemoveAnswer(c *fiber.Ctx) error {
	a, err := s.liveAnswer(c)
	if err != nil {
		return err
	}
	if err := s.requireModify(c, a.UserID); err != nil {
		return err
	}
	if err := s.repo.RemoveAnswerByID(c.UserContext(), a.ID); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(a.QuestionID))
}
