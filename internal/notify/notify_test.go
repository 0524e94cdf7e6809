package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingMailer struct {
	mu    sync.Mutex
	sent  []Email
	fail  bool
	block chan struct{}
}

func (m *recordingMailer) Send(ctx context.Context, email Email) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBookingTemplatesRender(t *testing.T) {
	d := BookingDetails{
		PropertyTitle: "Lakeview Condo",
		Date:          "2025-06-03",
		StartTime:     "10:00",
		EndTime:       "11:00",
		Mode:          "ZOOM",
		ClientName:    "Jane Doe",
		ZoomLink:      "https://zoom.us/j/123",
	}

	email, err := BookingConfirmed("jane@example.com", d)
	if err != nil {
		t.Fatal(err)
	}
	if email.Subject != SubjectBookingConfirmed || email.To != "jane@example.com" {
		t.Errorf("unexpected envelope %+v", email)
	}
	for _, want := range []string{"Lakeview Condo", "10:00 - 11:00", "https://zoom.us/j/123"} {
		if !strings.Contains(email.HTML, want) {
			t.Errorf("body missing %q", want)
		}
	}

	req, err := BookingRequest("realtor@example.com", d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(req.HTML, "Hello <strong>Realtor</strong>") {
		t.Error("expected generic greeting without a recipient name")
	}
}

func TestTemplatesEscapeUserInput(t *testing.T) {
	email, err := BookingReceived("x@example.com", BookingDetails{ClientName: "<script>alert(1)</script>"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(email.HTML, "<script>") {
		t.Error("client name should be escaped")
	}
}

func TestPasswordResetEmail(t *testing.T) {
	email, err := PasswordReset("u@example.com", "http://localhost:5173/reset-password?token=abc")
	if err != nil {
		t.Fatal(err)
	}
	if email.Subject != SubjectPasswordReset {
		t.Errorf("unexpected subject %q", email.Subject)
	}
	if !strings.Contains(email.HTML, "reset-password?token=abc") {
		t.Error("body should carry the reset link")
	}
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, discardLogger(), 10)

	for i := 0; i < 5; i++ {
		if !d.Enqueue(Email{To: "a@example.com", Subject: "s"}) {
			t.Fatal("queue should accept")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if mailer.count() != 5 {
		t.Errorf("expected 5 sent, got %d", mailer.count())
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	mailer := &recordingMailer{block: make(chan struct{})}
	d := NewDispatcher(mailer, discardLogger(), 1)

	// first email is picked up by the worker and blocks, second fills the queue
	d.Enqueue(Email{To: "1@example.com"})
	deadline := time.Now().Add(time.Second)
	for len(d.queue) != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !d.Enqueue(Email{To: "2@example.com"}) {
		t.Fatal("second email should fit in the queue")
	}
	if d.Enqueue(Email{To: "3@example.com"}) {
		t.Fatal("third email should be dropped")
	}

	close(mailer.block)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if mailer.count() != 2 {
		t.Errorf("expected 2 delivered, got %d", mailer.count())
	}
}

func TestDispatcherSurvivesMailerErrors(t *testing.T) {
	mailer := &recordingMailer{fail: true}
	d := NewDispatcher(mailer, discardLogger(), 4)
	d.Enqueue(Email{To: "a@example.com"})
	d.Enqueue(Email{To: "b@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("worker should keep running after failures: %v", err)
	}
}

func TestEnqueueAfterCloseDrops(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, discardLogger(), 4)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if d.Enqueue(Email{To: "late@example.com"}) {
		t.Error("a closed dispatcher should reject emails")
	}
	if err := d.Close(ctx); err != nil {
		t.Errorf("closing twice should be harmless: %v", err)
	}
	if mailer.count() != 0 {
		t.Errorf("nothing should be sent, got %d", mailer.count())
	}
}
