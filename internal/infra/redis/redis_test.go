//go:build !integration

package redis

import (
	"context"
	"testing"
	"time"
)

// fakeClient is an in-memory stand-in for the redis client.
type fakeClient struct {
	counters map[string]int64
	keys     map[string]bool
	expires  map[string]time.Duration
}

func newFakeClient() *fakeClient {
	return &fakeClient{counters: map[string]int64{}, keys: map[string]bool{}, expires: map[string]time.Duration{}}
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	f.expires[key] = expiration
	return true, nil
}

func (f *fakeClient) Incr(ctx context.Context, key string) (int64, error) {
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.expires[key] = expiration
	return nil
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.keys, k)
		delete(f.counters, k)
	}
	return nil
}

func (f *fakeClient) Close() error { return nil }

func TestRateLimiter(t *testing.T) {
	t.Run("allows up to the limit", func(t *testing.T) {
		cli := newFakeClient()
		rl := NewRateLimiter(cli)
		ctx := context.Background()
		key := LoginKey("a@b.com", "10.0.0.1")

		for i := 0; i < 3; i++ {
			ok, err := rl.Allow(ctx, key, 3, time.Minute)
			if err != nil || !ok {
				t.Fatalf("attempt %d: ok = %v, err = %v", i, ok, err)
			}
		}
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("fourth attempt must be denied")
		}
		if cli.expires[key] != time.Minute {
			t.Fatalf("window = %s, want 1m", cli.expires[key])
		}
	})

	t.Run("nil limiter allows everything", func(t *testing.T) {
		var rl *RateLimiter
		ok, err := rl.Allow(context.Background(), "k", 1, time.Minute)
		if err != nil || !ok {
			t.Fatalf("ok = %v, err = %v", ok, err)
		}
	})

	t.Run("keys separate by email and ip", func(t *testing.T) {
		if LoginKey("a@b.com", "10.0.0.1") == LoginKey("a@b.com", "10.0.0.2") {
			t.Fatal("distinct ips must rate-limit independently")
		}
	})
}

func TestEventDeduper(t *testing.T) {
	t.Run("first sighting is new, second is a duplicate", func(t *testing.T) {
		d := NewEventDeduper(newFakeClient())
		ctx := context.Background()

		seen, err := d.Seen(ctx, "tx-1")
		if err != nil || seen {
			t.Fatalf("first: seen = %v, err = %v", seen, err)
		}
		seen, err = d.Seen(ctx, "tx-1")
		if err != nil {
			t.Fatal(err)
		}
		if !seen {
			t.Fatal("second sighting must report seen")
		}
	})

	t.Run("forget drops the mark so a redelivery is fresh", func(t *testing.T) {
		d := NewEventDeduper(newFakeClient())
		ctx := context.Background()

		if _, err := d.Seen(ctx, "tx-1"); err != nil {
			t.Fatal(err)
		}
		if err := d.Forget(ctx, "tx-1"); err != nil {
			t.Fatal(err)
		}
		seen, err := d.Seen(ctx, "tx-1")
		if err != nil {
			t.Fatal(err)
		}
		if seen {
			t.Fatal("forgotten id must not report seen")
		}
	})

	t.Run("empty transmission id is never deduplicated", func(t *testing.T) {
		d := NewEventDeduper(newFakeClient())
		for i := 0; i < 2; i++ {
			seen, err := d.Seen(context.Background(), "")
			if err != nil || seen {
				t.Fatalf("seen = %v, err = %v", seen, err)
			}
		}
	})
}
