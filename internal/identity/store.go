package identity

import (
	"context"
	"errors"
)

var (
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrStudentNotFound = errors.New("student not found")
	ErrAdminNotFound   = errors.New("admin not found")
)

// Store is the persistence boundary for students and admins. Unique-key
// violations on email must surface as ErrDuplicateEmail.
type Store interface {
	CreateStudent(ctx context.Context, s Student) error
	StudentByEmail(ctx context.Context, email string) (Student, error)
	StudentByID(ctx context.Context, id string) (Student, error)
	// SetOTP replaces the pending code and expiry; both nil marks the
	// student verified.
	SetOTP(ctx context.Context, studentID string, code *string, expiresAt *int64) error
	UpdateProfile(ctx context.Context, studentID, name string, p Profile) error
	ListStudentEmails(ctx context.Context) ([]string, error)

	CreateAdmin(ctx context.Context, a Admin) error
	AdminByEmail(ctx context.Context, email string) (Admin, error)
	SetAdminPassword(ctx context.Context, adminID, passwordHash string) error
}
