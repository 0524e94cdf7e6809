package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/meeting"
	"github.com/joshua-takyi/realtorhub/internal/notify"
)

type recordingQueue struct {
	mu     sync.Mutex
	emails []notify.Email
}

func (q *recordingQueue) Enqueue(email notify.Email) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.emails = append(q.emails, email)
	return true
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.emails)
}

// droppingQueue rejects every email, like a dispatcher whose queue is full.
type droppingQueue struct {
	mu       sync.Mutex
	rejected int
}

func (q *droppingQueue) Enqueue(notify.Email) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rejected++
	return false
}

type stubMeetings struct {
	link  string
	err   error
	calls int
}

func (s *stubMeetings) CreateMeeting(ctx context.Context, req meeting.Request) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.link, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
