package server

import (
	"askmate/internal/models"
	"askmate/internal/repository"
	"askmate/internal/upload"
	"askmate/internal/validation"
	"askmate/internal/viewmodel"

	"github.com/gofiber/fiber/v2"
)

const questionFormView = "questions/form"

// ListQuestions handles GET /questions?orderBy=&direction=
func (s *Server) ListQuestions(c *fiber.Ctx) error {
	orderBy := c.Query("orderBy")
	direction := c.Query("direction")

	questions, err := s.repo.ListAll(c.UserContext(), orderBy, direction)
	if err != nil {
		return err
	}

	column, desc := repository.QuestionOrder(orderBy, direction)
	return s.renderOK(c, "questions/list", fiber.Map{
		"Title":      "All questions",
		"Questions":  viewmodel.FromQuestions(questions),
		"OrderBy":    column,
		"Descending": desc,
	})
}

// QuestionsByTag handles GET /questions/tagged/:tagId
func (s *Server) QuestionsByTag(c *fiber.Ctx) error {
	tagID, err := parseID(c, "tagId")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	tags, err := s.repo.GetTagsFromListFromDB(ctx, []uint{tagID})
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return models.NewNotFoundError("Tag", tagID)
	}

	questions, err := s.repo.GetQuestionsByTagID(ctx, tagID)
	if err != nil {
		return err
	}
	return s.renderOK(c, "questions/list", fiber.Map{
		"Title":     "Questions tagged " + tags[0].Name,
		"Tag":       viewmodel.FromTag(tags[0]),
		"Questions": viewmodel.FromQuestions(questions),
	})
}

// QuestionDetails handles GET /questions/:id and counts the view.
func (s *Server) QuestionDetails(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	q, err := s.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return err
	}
	if q.IsRemoved {
		return models.NewNotFoundError("Question", id)
	}
	if err := s.repo.IncrementQuestionViews(ctx, id); err != nil {
		return err
	}
	q.Views++

	userID := currentUserID(c)
	isAdmin := userID != "" && s.isContentAdmin(c)
	return s.renderOK(c, "questions/detail", fiber.Map{
		"Title":    q.Title,
		"Question": viewmodel.FromQuestion(q),
		"IsAdmin":  isAdmin,
		"IsAuthor": userID != "" && userID == q.UserID,
	})
}

// AddQuestionForm handles GET /questions/add
func (s *Server) AddQuestionForm(c *fiber.Ctx) error {
	return s.renderOK(c, questionFormView, questionFormBind("Ask a question", "/questions/add", viewmodel.QuestionForm{}))
}

func questionFormBind(title, action string, form viewmodel.QuestionForm) fiber.Map {
	return fiber.Map{"Title": title, "Action": action, "Form": form}
}

// AddQuestion handles POST /questions/add
func (s *Server) AddQuestion(c *fiber.Ctx) error {
	var form viewmodel.QuestionForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	image, imageErrs := uploadedImage(c)
	if errs := mergeErrors(validation.Struct(&form), imageErrs); errs != nil {
		return s.renderInvalid(c, questionFormView, questionFormBind("Ask a question", "/questions/add", form), errs)
	}

	userID := currentUserID(c)
	q := form.ToQuestion(userID)
	if image != nil {
		path, err := s.uploads.Save(image, upload.AssembleQuestionUploadedFileName(userID, image.Filename))
		if err != nil {
			return models.NewInternalError(err)
		}
		q.ImageNamePath = path
	}

	if err := s.repo.AddQuestion(c.UserContext(), q); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(q.ID))
}

// loadEditableQuestion fetches a live question the signed-in user may change.
func (s *Server) loadEditableQuestion(c *fiber.Ctx) (*models.Question, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	q, err := s.repo.GetQuestionByIDWithoutDetails(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if q.IsRemoved {
		return nil, models.NewNotFoundError("Question", id)
	}
	if err := s.requireModify(c, q.UserID); err != nil {
		return nil, err
	}
	return q, nil
}

// EditQuestionForm handles GET /questions/:id/edit
func (s *Server) EditQuestionForm(c *fiber.Ctx) error {
	q, err := s.loadEditableQuestion(c)
	if err != nil {
		return err
	}
	bind := questionFormBind("Edit question", c.Path(), viewmodel.QuestionFormFrom(q))
	bind["ImageNamePath"] = q.ImageNamePath
	return s.renderOK(c, questionFormView, bind)
}

// EditQuestion handles POST /questions/:id/edit. A new image replaces the old
// one; omitting it keeps the current image.
func (s *Server) EditQuestion(c *fiber.Ctx) error {
	q, err := s.loadEditableQuestion(c)
	if err != nil {
		return err
	}

	var form viewmodel.QuestionForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}
	image, imageErrs := uploadedImage(c)
	if errs := mergeErrors(validation.Struct(&form), imageErrs); errs != nil {
		bind := questionFormBind("Edit question", c.Path(), form)
		bind["ImageNamePath"] = q.ImageNamePath
		return s.renderInvalid(c, questionFormView, bind, errs)
	}

	edited := form.ToQuestion(q.UserID)
	q.Title = edited.Title
	q.Body = edited.Body
	if image != nil {
		path, err := s.uploads.Save(image, upload.AssembleQuestionUploadedFileName(currentUserID(c), image.Filename))
		if err != nil {
			return models.NewInternalError(err)
		}
		q.ImageNamePath = path
	}

	if err := s.repo.EditQuestion(c.UserContext(), q); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(q.ID))
}

// RemoveQuestion handles POST /questions/:id/remove
func (s *Server) RemoveQuestion(c *fiber.Ctx) error {
	q, err := s.loadEditableQuestion(c)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveQuestionByID(c.UserContext(), q.ID); err != nil {
		return err
	}
	return redirectAfterPost(c, "/questions")
}
