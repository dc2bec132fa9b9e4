package server

import (
	"askmate/internal/viewmodel"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /users
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.repo.GetAllUsers(c.UserContext())
	if err != nil {
		return err
	}
	return s.renderOK(c, "users/list", fiber.Map{"Title": "Users", "Users": viewmodel.FromUsers(users)})
}

// MyActivity handles GET /activity for the signed-in user.
func (s *Server) MyActivity(c *fiber.Ctx) error {
	return s.renderActivity(c, currentUserID(c))
}

// UserActivity handles GET /users/:id/activity
func (s *Server) UserActivity(c *fiber.Ctx) error {
	return s.renderActivity(c, c.Params("id"))
}

func (s *Server) renderActivity(c *fiber.Ctx, userID string) error {
	ctx := c.UserContext()

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	questions, err := s.repo.GetUserQuestions(ctx, userID)
	if err != nil {
		return err
	}
	answers, err := s.repo.GetUserAnswers(ctx, userID)
	if err != nil {
		return err
	}
	questionComments, err := s.repo.GetUserQuestionComments(ctx, userID)
	if err != nil {
		return err
	}
	answerComments, err := s.repo.GetUserAnswerComments(ctx, userID)
	if err != nil {
		return err
	}

	return s.renderOK(c, "users/activity", fiber.Map{
		"Title": user.UserName + "'s activity",
		"Activity": viewmodel.ActivityVM{
			User:             viewmodel.FromUser(user),
			Questions:        viewmodel.FromQuestions(questions),
			Answers:          viewmodel.FromAnswers(answers),
			QuestionComments: viewmodel.FromQuestionComments(questionComments),
			AnswerComments:   viewmodel.FromAnswerComments(answerComments),
		},
	})
}
