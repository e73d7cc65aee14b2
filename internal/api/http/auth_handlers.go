package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/examgate/examgate/internal/identity"
)

func RegisterHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			DOB      string `json:"dob"`
			Phone    string `json:"phone"`
			Address  string `json:"address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Name == "" || req.Email == "" || req.Password == "" {
			writeMessage(w, http.StatusBadRequest, "name, email and password required")
			return
		}
		p := identity.Profile{DOB: req.DOB, Phone: req.Phone, Address: req.Address}
		if err := svc.Register(r.Context(), req.Name, req.Email, req.Password, p); err != nil {
			writeError(w, log, err)
			return
		}
		writeMessage(w, http.StatusCreated, "registered, check your email for the verification code")
	}
}

func VerifyOTPHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			OTP   string `json:"otp"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Email == "" || req.OTP == "" {
			writeMessage(w, http.StatusBadRequest, "email and otp required")
			return
		}
		sess, err := svc.VerifyOTP(r.Context(), req.Email, req.OTP)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"token":     sess.Token,
			"studentId": sess.SubjectID,
			"role":      sess.Role,
		})
	}
}

func LoginHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := decodeCredentials(w, r)
		if !ok {
			return
		}
		sess, err := svc.Login(r.Context(), email, password)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"token":     sess.Token,
			"studentId": sess.SubjectID,
			"role":      sess.Role,
		})
	}
}

func AdminLoginHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := decodeCredentials(w, r)
		if !ok {
			return
		}
		sess, err := svc.AdminLogin(r.Context(), email, password)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"token":   sess.Token,
			"adminId": sess.SubjectID,
			"role":    sess.Role,
		})
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (email, password string, ok bool) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return "", "", false
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password required")
		return "", "", false
	}
	return req.Email, req.Password, true
}
