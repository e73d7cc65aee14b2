package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/identity"
)

func ListTestsHandler(svc *exam.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tests, err := svc.ListTests(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		if tests == nil {
			tests = []exam.TestView{}
		}
		writeJSON(w, http.StatusOK, tests)
	}
}

func GetTestHandler(svc *exam.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "testID")
		t, err := svc.GetTestForStudent(r.Context(), id)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func SubmitTestHandler(svc *exam.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TestID  string `json:"testId"`
			Answers []*int `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.TestID == "" {
			writeMessage(w, http.StatusBadRequest, "testId required")
			return
		}
		studentID := auth.SubjectFromContext(r.Context())
		sum, err := svc.Submit(r.Context(), req.TestID, studentID, req.Answers)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

// requireSelf guards the self-only student routes: the {studentID} path
// segment must match the token subject.
func requireSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "studentID") != auth.SubjectFromContext(r.Context()) {
			writeMessage(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func StudentResultsHandler(svc *exam.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "studentID")
		results, err := svc.ResultsForStudent(r.Context(), id)
		if err != nil {
			writeError(w, log, err)
			return
		}
		if results == nil {
			results = []exam.Result{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func GetProfileHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "studentID")
		st, err := svc.Profile(r.Context(), id)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func UpdateProfileHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "studentID")
		var req struct {
			Name    string `json:"name"`
			DOB     string `json:"dob"`
			Phone   string `json:"phone"`
			Address string `json:"address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Name == "" {
			writeMessage(w, http.StatusBadRequest, "name required")
			return
		}
		p := identity.Profile{DOB: req.DOB, Phone: req.Phone, Address: req.Address}
		if err := svc.UpdateProfile(r.Context(), id, req.Name, p); err != nil {
			writeError(w, log, err)
			return
		}
		writeMessage(w, http.StatusOK, "profile updated")
	}
}
