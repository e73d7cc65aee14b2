package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/notify"
)

var (
	// ErrInvalidOrExpiredOTP is deliberately one error for both the wrong
	// code and an expired one; callers must not be able to tell them apart.
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired verification code")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrNotVerified         = errors.New("email not verified")
)

const bcryptCost = 12

// Events receives best-effort notification payloads after the primary
// write has committed. Satisfied by *notify.Outbox.
type Events interface {
	Append(ctx context.Context, typ, key string, payload interface{}) error
}

// Session is an issued credential bound to a subject and role.
type Session struct {
	Token     string `json:"token"`
	SubjectID string `json:"subject_id"`
	Role      string `json:"role"`
}

// Service runs the registration state machine
// (Unregistered -> PendingVerification -> Verified) and credential issue.
type Service struct {
	store  Store
	tokens *auth.AuthService
	events Events
	otpTTL time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

func NewService(store Store, tokens *auth.AuthService, events Events, otpTTL time.Duration, log zerolog.Logger) *Service {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &Service{
		store:  store,
		tokens: tokens,
		events: events,
		otpTTL: otpTTL,
		now:    time.Now,
		log:    log,
	}
}

// Register creates a student in PendingVerification and queues the OTP
// mail. The code never leaves the server through this path.
func (s *Service) Register(ctx context.Context, name, email, password string, p Profile) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	code, err := newOTPCode()
	if err != nil {
		return err
	}
	expires := s.now().Add(s.otpTTL)

	st := Student{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Profile:      p,
		OTPCode:      &code,
		OTPExpiresAt: &expires,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateStudent(ctx, st); err != nil {
		return err
	}

	// Best-effort: a broken mail path must not undo the registration.
	if err := s.events.Append(ctx, notify.EventOTPIssued, st.ID, notify.OTPIssued{
		Email:     email,
		Name:      name,
		Code:      code,
		ExpiresAt: expires,
	}); err != nil {
		s.log.Error().Err(err).Str("student_id", st.ID).Msg("failed to queue otp notification")
	}
	return nil
}

// VerifyOTP moves a pending student to Verified and issues a session.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (Session, error) {
	st, err := s.store.StudentByEmail(ctx, email)
	if errors.Is(err, ErrStudentNotFound) {
		return Session{}, ErrInvalidOrExpiredOTP
	}
	if err != nil {
		return Session{}, err
	}
	if st.OTPCode == nil || *st.OTPCode != code {
		return Session{}, ErrInvalidOrExpiredOTP
	}
	if !st.OTPExpiresAt.After(s.now()) {
		return Session{}, ErrInvalidOrExpiredOTP
	}

	if err := s.store.SetOTP(ctx, st.ID, nil, nil); err != nil {
		return Session{}, err
	}
	return s.issue(st.ID, auth.RoleStudent)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	st, err := s.store.StudentByEmail(ctx, email)
	if errors.Is(err, ErrStudentNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !st.Verified() {
		return Session{}, ErrNotVerified
	}
	return s.issue(st.ID, auth.RoleStudent)
}

func (s *Service) AdminLogin(ctx context.Context, email, password string) (Session, error) {
	a, err := s.store.AdminByEmail(ctx, email)
	if errors.Is(err, ErrAdminNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(a.ID, auth.RoleAdmin)
}

// EnsureAdmin provisions the bootstrap admin from configuration. If the
// configured password no longer matches the stored hash it is re-synced.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	a, err := s.store.AdminByEmail(ctx, email)
	if errors.Is(err, ErrAdminNotFound) {
		hash, herr := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if herr != nil {
			return fmt.Errorf("hash admin password: %w", herr)
		}
		return s.store.CreateAdmin(ctx, Admin{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: string(hash),
			CreatedAt:    s.now(),
		})
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	s.log.Info().Str("admin_id", a.ID).Msg("re-syncing bootstrap admin password")
	return s.store.SetAdminPassword(ctx, a.ID, string(hash))
}

func (s *Service) Profile(ctx context.Context, studentID string) (Student, error) {
	return s.store.StudentByID(ctx, studentID)
}

func (s *Service) UpdateProfile(ctx context.Context, studentID, name string, p Profile) error {
	return s.store.UpdateProfile(ctx, studentID, name, p)
}

func (s *Service) issue(sub, role string) (Session, error) {
	tok, err := s.tokens.IssueJWT(sub, role)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: tok, SubjectID: sub, Role: role}, nil
}
