package cache

import (
	"Lumen/internal/pkg/clock"
	"Lumen/internal/pkg/metrics"
	"strings"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
	timer     clock.Timer
}

// TTLCache 进程内带过期时间的缓存
// 过期的条目由定时回调删除，Get 同时比较时间戳，回调未触发时也按未命中处理
type TTLCache[V any] struct {
	name    string
	clk     clock.Clock
	mu      sync.Mutex
	entries map[string]*entry[V]
}

func New[V any](name string, clk clock.Clock) *TTLCache[V] {
	if clk == nil {
		clk = clock.New()
	}
	return &TTLCache[V]{
		name:    name,
		clk:     clk,
		entries: make(map[string]*entry[V]),
	}
}

// Get 获取未过期的值
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		metrics.RecordCacheMiss(c.name)
		return zero, false
	}
	if !c.clk.Now().Before(e.expiresAt) {
		c.removeLocked(key, e)
		metrics.RecordCacheMiss(c.name)
		return zero, false
	}

	metrics.RecordCacheHit(c.name)
	return e.value, true
}

// Set 写入并在 ttl 后安排删除，ttl <= 0 时不写入
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		c.Invalidate(key)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.removeLocked(key, old)
	}

	e := &entry[V]{
		value:     value,
		expiresAt: c.clk.Now().Add(ttl),
	}
	e.timer = c.clk.AfterFunc(ttl, func() {
		c.expire(key, e)
	})
	c.entries[key] = e
}

// Invalidate 主动删除
func (c *TTLCache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.removeLocked(key, e)
	}
}

// InvalidatePrefix 删除所有以 prefix 开头的 key
func (c *TTLCache[V]) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.removeLocked(key, e)
			n++
		}
	}
	return n
}

// Len 当前条目数（可能包含尚未清理的过期条目）
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTLCache[V]) expire(key string, e *entry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// 同一个 key 可能已被重新写入
	if cur, ok := c.entries[key]; ok && cur == e {
		delete(c.entries, key)
	}
}

func (c *TTLCache[V]) removeLocked(key string, e *entry[V]) {
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(c.entries, key)
}
