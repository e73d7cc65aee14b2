package notify

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func marshal(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestRenderOTPIssued(t *testing.T) {
	e := Event{Type: EventOTPIssued, DataJSON: marshal(t, OTPIssued{
		Email:     "ada@example.com",
		Name:      "Ada",
		Code:      "042137",
		ExpiresAt: time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC),
	})}
	m, err := renderEvent(e)
	if err != nil {
		t.Fatalf("renderEvent: %v", err)
	}
	if len(m.To) != 1 || m.To[0] != "ada@example.com" {
		t.Fatalf("recipients = %v", m.To)
	}
	if !strings.Contains(m.Body, "042137") {
		t.Fatalf("body misses the code: %q", m.Body)
	}
}

func TestRenderTestCreatedFansOut(t *testing.T) {
	e := Event{Type: EventTestCreated, DataJSON: marshal(t, TestCreated{
		TestID:          "t1",
		TestName:        "Midterm",
		StartsAt:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Recipients:      []string{"a@example.com", "b@example.com"},
	})}
	m, err := renderEvent(e)
	if err != nil {
		t.Fatalf("renderEvent: %v", err)
	}
	if len(m.To) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(m.To))
	}
	if !strings.Contains(m.Subject, "Midterm") {
		t.Fatalf("subject misses the test name: %q", m.Subject)
	}
}

func TestRenderResultRecorded(t *testing.T) {
	e := Event{Type: EventResultRecorded, DataJSON: marshal(t, ResultRecorded{
		Email:          "ada@example.com",
		Name:           "Ada",
		TestName:       "Midterm",
		Score:          2,
		TotalQuestions: 3,
	})}
	m, err := renderEvent(e)
	if err != nil {
		t.Fatalf("renderEvent: %v", err)
	}
	if !strings.Contains(m.Body, "2 out of 3") {
		t.Fatalf("body misses the score: %q", m.Body)
	}
}

func TestRenderUnknownEventType(t *testing.T) {
	if _, err := renderEvent(Event{Type: "mystery", DataJSON: "{}"}); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestRenderBadPayload(t *testing.T) {
	if _, err := renderEvent(Event{Type: EventOTPIssued, DataJSON: "not json"}); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
