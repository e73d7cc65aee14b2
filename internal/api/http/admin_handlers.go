package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/examgate/examgate/internal/exam"
)

func CreateQuestionHandler(svc *exam.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Question      string   `json:"question"`
			Code          string   `json:"code"`
			Options       []string `json:"options"`
			CorrectAnswer int      `json:"correctAnswer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Question == "" {
			writeMessage(w, http.StatusBadRequest, "question text required")
			return
		}
		q, err := svc.CreateQuestion(r.Context(), req.Question, req.Code, req.Options, req.CorrectAnswer)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"questionId": q.ID})
	}
}

func ListQuestionsHandler(svc *exam.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := svc.ListQuestions(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		if qs == nil {
			qs = []exam.Question{}
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

func CreateTestHandler(svc *exam.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string   `json:"name"`
			Date        string   `json:"date"` // RFC 3339
			Duration    int      `json:"duration"`
			QuestionIDs []string `json:"questionIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "bad json")
			return
		}
		start, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "date must be RFC 3339")
			return
		}
		t, err := svc.CreateTest(r.Context(), req.Name, start, req.Duration, req.QuestionIDs)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"testId": t.ID})
	}
}

func AdminResultsHandler(svc *exam.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := svc.AllResults(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		if results == nil {
			results = []exam.ResultDetail{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}
