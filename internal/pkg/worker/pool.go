package worker

import (
	"Lumen/internal/pkg/logger"
	"context"
	log "log/slog"
	"sync"
	"time"
)

// Handler 处理单个任务
type Handler[T comparable] func(ctx context.Context, item T) error

type task[T comparable] struct {
	item    T
	traceID string
}

// Pool 有界任务队列 + 固定数量的 worker
// 同一个 item 在排队期间只保留一份，执行开始后再次提交会重新入队
type Pool[T comparable] struct {
	name    string
	size    int
	timeout time.Duration
	handler Handler[T]
	tasks   chan task[T]

	mu      sync.Mutex
	pending map[T]struct{}
}

func NewPool[T comparable](name string, size, queueSize int, timeout time.Duration, handler Handler[T]) *Pool[T] {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Pool[T]{
		name:    name,
		size:    size,
		timeout: timeout,
		handler: handler,
		tasks:   make(chan task[T], queueSize),
		pending: make(map[T]struct{}),
	}
}

// Submit 非阻塞提交，队列已满时返回 false
func (p *Pool[T]) Submit(ctx context.Context, item T) bool {
	p.mu.Lock()
	if _, ok := p.pending[item]; ok {
		p.mu.Unlock()
		return true
	}
	p.pending[item] = struct{}{}
	p.mu.Unlock()

	traceID := logger.TraceID(ctx)
	select {
	case p.tasks <- task[T]{item: item, traceID: traceID}:
		return true
	default:
		p.mu.Lock()
		delete(p.pending, item)
		p.mu.Unlock()
		return false
	}
}

// Pending 排队中的任务数
func (p *Pool[T]) Pending() int {
	return len(p.tasks)
}

// Run 启动 worker 并阻塞到 ctx 结束，返回前等待所有 worker 退出
func (p *Pool[T]) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(p.size)
	for i := 0; i < p.size; i++ {
		go func() {
			defer wg.Done()
			p.work(ctx)
		}()
	}

	log.Info("Worker pool started", "pool", p.name, "workers", p.size)
	<-ctx.Done()
	wg.Wait()
	log.Info("Worker pool stopped", "pool", p.name, "dropped", len(p.tasks))
}

func (p *Pool[T]) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-p.tasks:
			p.mu.Lock()
			delete(p.pending, t.item)
			p.mu.Unlock()
			p.execute(ctx, t)
		}
	}
}

func (p *Pool[T]) execute(parent context.Context, t task[T]) {
	ctx := logger.WithTask(logger.WithTraceID(parent, t.traceID), p.name)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "Worker task panic", "pool", p.name, "item", t.item, "panic", r)
		}
	}()

	if err := p.handler(ctx, t.item); err != nil {
		log.ErrorContext(ctx, "Worker task failed", "pool", p.name, "item", t.item, "err", err)
	}
}
