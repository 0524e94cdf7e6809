package realtime

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Runs against a live server when REDIS_TEST_ADDR is set.
func TestRedisBrokerRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	b := NewRedisBroker(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 1)
	if err := b.Subscribe(ctx, func(user string, frame []byte) { got <- user + ":" + string(frame) }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := b.Publish(ctx, "64b7f0c2a1b2c3d4e5f60718", []byte(`{"type":"newMessage"}`)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case v := <-got:
		if v != `64b7f0c2a1b2c3d4e5f60718:{"type":"newMessage"}` {
			t.Errorf("unexpected delivery %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("frame was not delivered")
	}
}
