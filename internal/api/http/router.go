package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/identity"
)

// Mount registers the full API surface on r. Auth on the public routes is
// none; admin and student groups sit behind the bearer middleware plus a
// role check.
func Mount(r chi.Router, authSvc *auth.AuthService, identitySvc *identity.Service, examSvc *exam.Service, log zerolog.Logger) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", RegisterHandler(identitySvc, log))
			r.Post("/verify-otp", VerifyOTPHandler(identitySvc, log))
			r.Post("/login", LoginHandler(identitySvc, log))
			r.Post("/admin/login", AdminLoginHandler(identitySvc, log))
		})

		r.Get("/tests", ListTestsHandler(examSvc, log))

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.JWTMiddleware(authSvc))
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Post("/question", CreateQuestionHandler(examSvc, log))
			r.Get("/questions", ListQuestionsHandler(examSvc, log))
			r.Post("/test", CreateTestHandler(examSvc, log))
			r.Get("/results", AdminResultsHandler(examSvc, log))
		})

		r.Route("/student", func(r chi.Router) {
			r.Use(auth.JWTMiddleware(authSvc))
			r.Use(auth.RequireRole(auth.RoleStudent))
			r.Get("/test/{testID}", GetTestHandler(examSvc, log))
			r.Post("/submit", SubmitTestHandler(examSvc, log))
			r.With(requireSelf).Get("/results/{studentID}", StudentResultsHandler(examSvc, log))
			r.With(requireSelf).Get("/profile/{studentID}", GetProfileHandler(identitySvc, log))
			r.With(requireSelf).Put("/profile/{studentID}", UpdateProfileHandler(identitySvc, log))
		})
	})
}
