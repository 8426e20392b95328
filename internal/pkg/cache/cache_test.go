package cache

import (
	"Lumen/internal/pkg/clock"
	"fmt"
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func TestTTLCacheExpiry(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		advance time.Duration
		wantHit bool
	}{
		{"before expiry", 5 * time.Minute, 5*time.Minute - time.Nanosecond, true},
		{"exactly at expiry", 5 * time.Minute, 5 * time.Minute, false},
		{"after expiry", 5 * time.Minute, 10 * time.Minute, false},
		{"immediately", time.Second, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := clock.NewMock(epoch)
			c := New[string]("test", clk)
			c.Set("k", "v", tt.ttl)

			clk.Advance(tt.advance)

			v, ok := c.Get("k")
			if ok != tt.wantHit {
				t.Fatalf("Get hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && v != "v" {
				t.Errorf("Get = %q, want %q", v, "v")
			}
		})
	}
}

// 定时回调尚未触发时也必须按时间戳判定过期
func TestTTLCacheChecksTimestampBeforeTimerFires(t *testing.T) {
	clk := &stalledClock{Mock: clock.NewMock(epoch)}
	c := New[int]("stalled", clk)
	c.Set("k", 42, time.Minute)

	clk.Mock.Set(epoch.Add(2 * time.Minute))

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned before timer fired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped on read, len = %d", c.Len())
	}
}

func TestTTLCacheTimerEvicts(t *testing.T) {
	clk := clock.NewMock(epoch)
	c := New[int]("evict", clk)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Hour)

	clk.Advance(2 * time.Minute)

	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after timer eviction", c.Len())
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %v, %v", v, ok)
	}
}

func TestTTLCacheOverwriteResetsExpiry(t *testing.T) {
	clk := clock.NewMock(epoch)
	c := New[int]("overwrite", clk)
	c.Set("k", 1, time.Minute)
	clk.Advance(50 * time.Second)
	c.Set("k", 2, time.Minute)
	clk.Advance(50 * time.Second)

	v, ok := c.Get("k")
	if !ok || v != 2 {
		t.Fatalf("Get = %v, %v; the first timer must not evict the new value", v, ok)
	}
}

func TestTTLCacheInvalidate(t *testing.T) {
	clk := clock.NewMock(epoch)
	c := New[string]("invalidate", clk)
	c.Set("k", "v", time.Hour)
	c.Invalidate("k")
	c.Invalidate("missing")

	if _, ok := c.Get("k"); ok {
		t.Error("invalidated key still present")
	}

	c.Set("z", "v", 0)
	if _, ok := c.Get("z"); ok {
		t.Error("non-positive ttl should not store")
	}
}

func TestTTLCacheConcurrentAccess(t *testing.T) {
	c := New[int]("concurrent", clock.New())
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			for j := 0; j < 200; j++ {
				c.Set(key, j, time.Minute)
				c.Get(key)
				if j%50 == 0 {
					c.Invalidate(key)
				}
			}
		}(i)
	}
	wg.Wait()
}

// stalledClock 从不触发定时回调
type stalledClock struct {
	*clock.Mock
}

func (s *stalledClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	return noopTimer{}
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }

func TestTTLCacheInvalidatePrefix(t *testing.T) {
	c := New[int]("test", clock.NewMock(epoch))
	c.Set("recommend:1:hybrid:10", 1, time.Minute)
	c.Set("recommend:1:popular:5", 2, time.Minute)
	c.Set("recommend:12:hybrid:10", 3, time.Minute)

	if n := c.InvalidatePrefix("recommend:1:"); n != 2 {
		t.Fatalf("InvalidatePrefix removed %d, want 2", n)
	}
	if _, ok := c.Get("recommend:12:hybrid:10"); !ok {
		t.Error("entry of another user was removed")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
