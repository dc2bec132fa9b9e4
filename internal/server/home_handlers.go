package server

import (
	"strings"

	"askmate/internal/viewmodel"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET / with the most recent questions.
func (s *Server) Index(c *fiber.Ctx) error {
	questions, err := s.repo.GetLatestQuestions(c.UserContext(), s.config.LatestQuestionsCount)
	if err != nil {
		return err
	}
	return s.renderOK(c, "home/index", fiber.Map{
		"Title":     "AskMate",
		"Questions": viewmodel.FromQuestions(questions),
	})
}

// Search handles GET /search?term=
func (s *Server) Search(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("term"))
	questions, err := s.repo.GetSearchResults(c.UserContext(), term)
	if err != nil {
		return err
	}
	return s.renderOK(c, "home/search", fiber.Map{
		"Title":     "Search",
		"Term":      term,
		"Questions": viewmodel.FromQuestions(questions),
	})
}
