package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAnswer_RedirectsToQuestion(t *testing.T) {
	env := newTestEnv(t)
	asker := env.user("ada")
	answerer := env.user("bob")
	q := env.question(asker, "Needs an answer")
	cookie := env.cookie(answerer)

	resp := env.get(fmt.Sprintf("/answers/addanswer/%d", q.ID), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Needs an answer")

	resp = env.post(fmt.Sprintf("/answers/addanswer/%d", q.ID), cookie, url.Values{"Body": {""}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.post(fmt.Sprintf("/answers/addanswer/%d", q.ID), cookie, url.Values{"Body": {"Here you go"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, qpath(q.ID, ""), resp.Header.Get("Location"))

	full, err := env.repo.GetQuestionByID(context.Background(), q.ID)
	require.NoError(t, err)
	require.Len(t, full.Answers, 1)
	assert.Equal(t, "Here you go", full.Answers[0].Body)
	assert.Equal(t, answerer.ID, full.Answers[0].UserID)

	resp = env.post("/answers/addanswer/999", cookie, url.Values{"Body": {"orphan"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVoteAnswer(t *testing.T) {
	env := newTestEnv(t)
	u := env.user("ada")
	q := env.question(u, "Vote on me")
	a := env.answer(u, q.ID, "Votable")
	cookie := env.cookie(u)

	resp := env.get(fmt.Sprintf("/answers/%d/voteup", a.ID), cookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/questions/%d#answer-%d", q.ID, a.ID), resp.Header.Get("Location"))

	resp = env.post(fmt.Sprintf("/answers/%d/voteup", a.ID), cookie, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	for i := 0; i < 4; i++ {
		env.post(fmt.Sprintf("/answers/%d/votedown", a.ID), cookie, nil)
	}

	stored, err := env.repo.GetAnswerByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, -2, stored.Votes, "votes have no floor")

	resp = env.post("/answers/999/voteup", cookie, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAcceptAnswer(t *testing.T) {
	env := newTestEnv(t)
	asker := env.user("ada")
	answerer := env.user("bob")
	q := env.question(asker, "Which one?")
	first := env.answer(answerer, q.ID, "first")
	second := env.answer(answerer, q.ID, "second")

	resp := env.post(fmt.Sprintf("/answers/%d/accept", first.ID), env.cookie(answerer), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	for _, a := range []uint{first.ID, second.ID} {
		resp = env.post(fmt.Sprintf("/answers/%d/accept", a), env.cookie(asker), nil)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}

	for _, id := range []uint{first.ID, second.ID} {
		stored, err := env.repo.GetAnswerByID(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, stored.IsAccepted, "accepting another answer keeps earlier ones accepted")
	}
}

func TestEditAndRemoveAnswer(t *testing.T) {
	env := newTestEnv(t)
	asker := env.user("ada")
	answerer := env.user("bob")
	q := env.question(asker, "Edit answers")
	a := env.answer(answerer, q.ID, "draft")

	resp := env.get(fmt.Sprintf("/answers/%d/edit", a.ID), env.cookie(asker))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.post(fmt.Sprintf("/answers/%d/edit", a.ID), env.cookie(answerer), url.Values{"Body": {"final"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	stored, err := env.repo.GetAnswerByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", stored.Body)

	resp = env.post(fmt.Sprintf("/answers/%d/remove", a.ID), env.cookie(answerer), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	full, err := env.repo.GetQuestionByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Empty(t, full.Answers)

	resp = env.post(fmt.Sprintf("/answers/%d/voteup", a.ID), env.cookie(answerer), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
