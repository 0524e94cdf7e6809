package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestKeyIsOrderIndependent(t *testing.T) {
	a := Key("properties", map[string]string{"minPrice": "100", "location": "Toronto"})
	b := Key("properties", map[string]string{"location": "Toronto", "minPrice": "100"})
	if a != b {
		t.Fatalf("expected equal keys, got %s and %s", a, b)
	}
	if !strings.HasPrefix(a, "properties:") {
		t.Errorf("key should keep its prefix: %s", a)
	}
	c := Key("properties", map[string]string{"location": "Ottawa"})
	if a == c {
		t.Error("different params should produce different keys")
	}
}

func TestDisabledCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*Cache{nil, New(nil, time.Minute)} {
		if err := c.Set(ctx, "k", []string{"x"}); err != nil {
			t.Fatalf("Set: %v", err)
		}
		var out []string
		hit, err := c.Get(ctx, "k", &out)
		if err != nil || hit {
			t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
		}
		if err := c.Invalidate(ctx, "k"); err != nil {
			t.Fatalf("Invalidate: %v", err)
		}
	}
}
