package identity

import "time"

type Profile struct {
	DOB     string `json:"dob,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Student holds the registration record. OTPCode/OTPExpiresAt are set only
// between registration and successful verification.
type Student struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Profile      Profile    `json:"profile"`
	OTPCode      *string    `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Verified reports whether the student completed OTP verification.
func (s Student) Verified() bool { return s.OTPCode == nil }

type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
