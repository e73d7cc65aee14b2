package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/notify"
)

type fakeStore struct {
	students map[string]Student // by id
	byEmail  map[string]string  // email -> id
	admins   map[string]Admin   // by email
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		students: map[string]Student{},
		byEmail:  map[string]string{},
		admins:   map[string]Admin{},
	}
}

func (f *fakeStore) CreateStudent(_ context.Context, s Student) error {
	if _, ok := f.byEmail[s.Email]; ok {
		return ErrDuplicateEmail
	}
	f.students[s.ID] = s
	f.byEmail[s.Email] = s.ID
	return nil
}

func (f *fakeStore) StudentByEmail(_ context.Context, email string) (Student, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return Student{}, ErrStudentNotFound
	}
	return f.students[id], nil
}

func (f *fakeStore) StudentByID(_ context.Context, id string) (Student, error) {
	s, ok := f.students[id]
	if !ok {
		return Student{}, ErrStudentNotFound
	}
	return s, nil
}

func (f *fakeStore) SetOTP(_ context.Context, id string, code *string, expiresAt *int64) error {
	s, ok := f.students[id]
	if !ok {
		return ErrStudentNotFound
	}
	s.OTPCode = code
	s.OTPExpiresAt = nil
	if expiresAt != nil {
		t := time.Unix(*expiresAt, 0)
		s.OTPExpiresAt = &t
	}
	f.students[id] = s
	return nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, id, name string, p Profile) error {
	s, ok := f.students[id]
	if !ok {
		return ErrStudentNotFound
	}
	s.Name = name
	s.Profile = p
	f.students[id] = s
	return nil
}

func (f *fakeStore) ListStudentEmails(context.Context) ([]string, error) {
	out := make([]string, 0, len(f.byEmail))
	for e := range f.byEmail {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) CreateAdmin(_ context.Context, a Admin) error {
	if _, ok := f.admins[a.Email]; ok {
		return ErrDuplicateEmail
	}
	f.admins[a.Email] = a
	return nil
}

func (f *fakeStore) AdminByEmail(_ context.Context, email string) (Admin, error) {
	a, ok := f.admins[email]
	if !ok {
		return Admin{}, ErrAdminNotFound
	}
	return a, nil
}

func (f *fakeStore) SetAdminPassword(_ context.Context, id, hash string) error {
	for email, a := range f.admins {
		if a.ID == id {
			a.PasswordHash = hash
			f.admins[email] = a
			return nil
		}
	}
	return ErrAdminNotFound
}

type fakeEvents struct {
	payloads []interface{}
}

func (f *fakeEvents) Append(_ context.Context, _, _ string, payload interface{}) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeEvents) lastOTP(t *testing.T) notify.OTPIssued {
	t.Helper()
	for i := len(f.payloads) - 1; i >= 0; i-- {
		if p, ok := f.payloads[i].(notify.OTPIssued); ok {
			return p
		}
	}
	t.Fatal("no otp event recorded")
	return notify.OTPIssued{}
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeEvents) {
	t.Helper()
	store := newFakeStore()
	events := &fakeEvents{}
	tokens := auth.NewAuthService("test-secret", time.Hour)
	svc := NewService(store, tokens, events, 10*time.Minute, zerolog.Nop())
	return svc, store, events
}

func register(t *testing.T, svc *Service) {
	t.Helper()
	err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter22", Profile{Phone: "123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, store, _ := newTestService(t)
	register(t, svc)

	before, _ := store.StudentByEmail(context.Background(), "ada@example.com")
	err := svc.Register(context.Background(), "Imposter", "ada@example.com", "other", Profile{})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", err)
	}
	after, _ := store.StudentByEmail(context.Background(), "ada@example.com")
	if after.Name != before.Name || after.ID != before.ID {
		t.Fatalf("first registration mutated by duplicate attempt")
	}
}

func TestRegisterQueuesOTP(t *testing.T) {
	svc, store, events := newTestService(t)
	register(t, svc)

	st, err := store.StudentByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("StudentByEmail: %v", err)
	}
	if st.Verified() {
		t.Fatal("new student must be pending verification")
	}
	otp := events.lastOTP(t)
	if otp.Code != *st.OTPCode {
		t.Fatalf("queued code %q differs from stored %q", otp.Code, *st.OTPCode)
	}
	if len(otp.Code) != 6 {
		t.Fatalf("otp code %q is not 6 digits", otp.Code)
	}
}

func TestVerifyOTPSuccess(t *testing.T) {
	svc, store, events := newTestService(t)
	register(t, svc)
	code := events.lastOTP(t).Code

	sess, err := svc.VerifyOTP(context.Background(), "ada@example.com", code)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if sess.Role != auth.RoleStudent || sess.Token == "" {
		t.Fatalf("bad session: %+v", sess)
	}
	st, _ := store.StudentByEmail(context.Background(), "ada@example.com")
	if !st.Verified() || st.OTPExpiresAt != nil {
		t.Fatal("otp not cleared after verification")
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc, store, _ := newTestService(t)
	register(t, svc)

	_, err := svc.VerifyOTP(context.Background(), "ada@example.com", "000000x")
	if !errors.Is(err, ErrInvalidOrExpiredOTP) {
		t.Fatalf("got %v, want ErrInvalidOrExpiredOTP", err)
	}
	st, _ := store.StudentByEmail(context.Background(), "ada@example.com")
	if st.Verified() {
		t.Fatal("failed verification must not mutate the student")
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	svc, _, events := newTestService(t)
	register(t, svc)
	code := events.lastOTP(t).Code

	svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	_, err := svc.VerifyOTP(context.Background(), "ada@example.com", code)
	if !errors.Is(err, ErrInvalidOrExpiredOTP) {
		t.Fatalf("got %v, want ErrInvalidOrExpiredOTP", err)
	}
}

func TestVerifyOTPUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.VerifyOTP(context.Background(), "nobody@example.com", "123456")
	if !errors.Is(err, ErrInvalidOrExpiredOTP) {
		t.Fatalf("got %v, want ErrInvalidOrExpiredOTP", err)
	}
}

func TestLoginRequiresVerification(t *testing.T) {
	svc, _, events := newTestService(t)
	register(t, svc)

	if _, err := svc.Login(context.Background(), "ada@example.com", "hunter22"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("unverified login: got %v, want ErrNotVerified", err)
	}

	code := events.lastOTP(t).Code
	if _, err := svc.VerifyOTP(context.Background(), "ada@example.com", code); err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ada@example.com", "hunter22"); err != nil {
		t.Fatalf("verified login: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestEnsureAdminBootstrapAndResync(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "admin@example.com", "first"); err != nil {
		t.Fatalf("EnsureAdmin create: %v", err)
	}
	if _, err := svc.AdminLogin(ctx, "admin@example.com", "first"); err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}

	// Configured password changed: hash must be re-synced.
	if err := svc.EnsureAdmin(ctx, "admin@example.com", "second"); err != nil {
		t.Fatalf("EnsureAdmin resync: %v", err)
	}
	if _, err := svc.AdminLogin(ctx, "admin@example.com", "second"); err != nil {
		t.Fatalf("AdminLogin after resync: %v", err)
	}
	if _, err := svc.AdminLogin(ctx, "admin@example.com", "first"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still works: %v", err)
	}
	if len(store.admins) != 1 {
		t.Fatalf("expected 1 admin, got %d", len(store.admins))
	}
}
