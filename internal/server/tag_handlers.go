package server

import (
	"strings"

	"askmate/internal/models"
	"askmate/internal/validation"
	"askmate/internal/viewmodel"

	"github.com/gofiber/fiber/v2"
)

const addTagsView = "tags/add"

// ListTags handles GET /tags
func (s *Server) ListTags(c *fiber.Ctx) error {
	summaries, err := s.repo.GetAllTags(c.UserContext())
	if err != nil {
		return err
	}
	tags := make([]viewmodel.TagVM, 0, len(summaries))
	for _, t := range summaries {
		tags = append(tags, viewmodel.TagVM{ID: t.ID, Name: t.Name, QuestionCount: t.QuestionCount})
	}
	return s.renderOK(c, "tags/list", fiber.Map{"Title": "Tags", "Tags": tags})
}

func (s *Server) addTagsBind(c *fiber.Ctx, q *models.Question, form viewmodel.TagForm) (fiber.Map, error) {
	ctx := c.UserContext()
	available, err := s.repo.GetAllTagsNoDuplicates(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	attachedIDs, err := s.repo.GetTagIDsForQuestionID(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	attached, err := s.repo.GetTagsFromListFromDB(ctx, attachedIDs)
	if err != nil {
		return nil, err
	}
	// Suggestions for the free-text field; served from cache when Redis is up.
	names, err := s.repo.GetAllTagNames(ctx)
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"Title":    "Tag question",
		"Action":   c.Path(),
		"Question": viewmodel.FromQuestion(q),
		"Tags":     viewmodel.FromTags(available),
		"Attached": viewmodel.FromTags(attached),
		"TagNames": names,
		"Form":     form,
	}, nil
}

func (s *Server) taggableQuestion(c *fiber.Ctx) (*models.Question, error) {
	questionID, err := parseID(c, "questionId")
	if err != nil {
		return nil, err
	}
	q, err := s.liveQuestion(c.UserContext(), questionID)
	if err != nil {
		return nil, err
	}
	if err := s.requireModify(c, q.UserID); err != nil {
		return nil, err
	}
	return q, nil
}

// AddTagsForm handles GET /tags/add/:questionId and offers only tags not yet
// attached to the question.
func (s *Server) AddTagsForm(c *fiber.Ctx) error {
	q, err := s.taggableQuestion(c)
	if err != nil {
		return err
	}
	bind, err := s.addTagsBind(c, q, viewmodel.TagForm{})
	if err != nil {
		return err
	}
	return s.renderOK(c, addTagsView, bind)
}

// AddTags handles POST /tags/add/:questionId. Selected existing tags and an
// optional new tag are attached together.
func (s *Server) AddTags(c *fiber.Ctx) error {
	q, err := s.taggableQuestion(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var form viewmodel.TagForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}
	errs := validation.Struct(&form)
	if errs == nil && form.Empty() {
		errs = validation.FieldErrors{"TagIds": "Select a tag or enter a new one"}
	}
	if errs != nil {
		bind, err := s.addTagsBind(c, q, form)
		if err != nil {
			return err
		}
		return s.renderInvalid(c, addTagsView, bind, errs)
	}

	var ids []uint
	if len(form.TagIDs) > 0 {
		known, err := s.repo.GetTagsFromListFromDB(ctx, form.TagIDs)
		if err != nil {
			return err
		}
		for _, t := range known {
			ids = append(ids, t.ID)
		}
	}
	if name := strings.TrimSpace(form.NewTag); name != "" {
		tag, err := s.repo.AddTag(ctx, name)
		if err != nil {
			return err
		}
		ids = append(ids, tag.ID)
	}

	if err := s.repo.AttachTagsToQuestion(ctx, q.ID, ids); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(q.ID))
}

// DetachTag handles POST /tags/:questionId/detach/:tagId
func (s *Server) DetachTag(c *fiber.Ctx) error {
	q, err := s.taggableQuestion(c)
	if err != nil {
		return err
	}
	tagID, err := parseID(c, "tagId")
	if err != nil {
		return err
	}
	if err := s.repo.DetachTagFromQuestion(c.UserContext(), q.ID, tagID); err != nil {
		return err
	}
	return redirectAfterPost(c, questionURL(q.ID))
}
