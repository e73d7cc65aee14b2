package notify

import (
	"fmt"
	"strings"
	"time"
)

// Event types appended by the domain services.
const (
	EventOTPIssued      = "otp_issued"
	EventTestCreated    = "test_created"
	EventResultRecorded = "result_recorded"
)

type OTPIssued struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TestCreated struct {
	TestID          string    `json:"test_id"`
	TestName        string    `json:"test_name"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Recipients      []string  `json:"recipients"`
}

type ResultRecorded struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	TestName       string `json:"test_name"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
}

func (e OTPIssued) render() Message {
	return Message{
		To:      []string{e.Email},
		Subject: "Your verification code",
		Body: fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires at %s.\n",
			e.Name, e.Code, e.ExpiresAt.Format(time.RFC1123)),
	}
}

func (e TestCreated) render() Message {
	return Message{
		To:      e.Recipients,
		Subject: fmt.Sprintf("New test scheduled: %s", e.TestName),
		Body: fmt.Sprintf("The test %q starts at %s and runs for %d minutes.\n",
			e.TestName, e.StartsAt.Format(time.RFC1123), e.DurationMinutes),
	}
}

func (e ResultRecorded) render() Message {
	return Message{
		To:      []string{e.Email},
		Subject: fmt.Sprintf("Your result for %s", e.TestName),
		Body: fmt.Sprintf("Hi %s,\n\nYou scored %d out of %d on %q.\n",
			e.Name, e.Score, e.TotalQuestions, e.TestName),
	}
}

func joinRecipients(to []string) string { return strings.Join(to, ", ") }
