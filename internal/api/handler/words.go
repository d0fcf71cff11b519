package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordparty/internal/api/request"
	"github.com/mcoot/wordparty/internal/api/response"
	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/services/dictionary"
	"github.com/mcoot/wordparty/internal/services/scoring"
)

// WordsHandler serves the evaluator and dictionary lookups
type WordsHandler struct {
	dict *dictionary.Service
}

// NewWordsHandler creates a new words handler
func NewWordsHandler(dict *dictionary.Service) *WordsHandler {
	return &WordsHandler{dict: dict}
}

// Evaluate handles POST /api/v1/evaluate
func (h *WordsHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req request.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	guess, target := model.NormalizeWord(req.Guess), model.NormalizeWord(req.Target)
	if guess == "" || target == "" {
		WriteError(w, NewInvalidRequestError("guess and target are required"))
		return
	}

	states, err := scoring.Evaluate(guess, target)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Evaluation{
		Guess:  guess,
		Target: target,
		Result: response.States(states),
		Solved: scoring.Solved(states),
	})
}

// Lookup handles GET /api/v1/words/{word}
func (h *WordsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	word := model.NormalizeWord(mux.Vars(r)["word"])
	response.JSON(w, http.StatusOK, response.Word{
		Word:   word,
		Valid:  h.dict.IsValidWord(word),
		Answer: h.dict.IsAnswer(word),
	})
}
