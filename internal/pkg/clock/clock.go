package clock

import (
	"sync"
	"time"
)

// Clock 时间源，衰减计算与缓存过期均通过它取当前时间
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer 可取消的延迟回调
type Timer interface {
	Stop() bool
}

type realClock struct{}

// New 返回基于系统时间的 Clock
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Mock 手动推进的时钟，供测试控制过期与衰减
type Mock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*mockTimer
}

func NewMock(now time.Time) *Mock {
	return &Mock{now: now}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTimer{mock: m, when: m.now.Add(d), fn: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance 推进时间并同步触发所有到期的回调
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now

	var due []*mockTimer
	pending := m.timers[:0]
	for _, t := range m.timers {
		if t.stopped {
			continue
		}
		if !t.when.After(now) {
			t.stopped = true
			due = append(due, t)
			continue
		}
		pending = append(pending, t)
	}
	m.timers = pending
	m.mu.Unlock()

	// 回调可能再次访问 Mock，必须在锁外执行
	for _, t := range due {
		t.fn()
	}
}

type mockTimer struct {
	mock    *Mock
	when    time.Time
	fn      func()
	stopped bool
}

func (t *mockTimer) Stop() bool {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Set 直接设置当前时间，不触发回调
func (m *Mock) Set(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}
