package redis

import (
	"context"
	"strings"
	"time"
)

// DirtySet 待重算对象的集合，由定时任务批量消费
type DirtySet struct {
	key string
}

func NewDirtySet(key string) *DirtySet {
	return &DirtySet{key: key}
}

// Mark 标记成员待处理
func (s *DirtySet) Mark(ctx context.Context, member string) error {
	return AddToSet(ctx, s.key, member)
}

// Drain 把当前集合改名为处理中集合并读出全部成员
// 集合不存在时返回空，处理完成后需调用 Done 删除处理中集合
func (s *DirtySet) Drain(ctx context.Context) ([]string, error) {
	if err := Rename(ctx, s.key, s.processingKey()); err != nil {
		if strings.Contains(err.Error(), "no such key") {
			return nil, nil
		}
		return nil, err
	}
	return GetSet(ctx, s.processingKey())
}

// Done 删除处理中集合
func (s *DirtySet) Done(ctx context.Context) error {
	return DeleteKey(ctx, s.processingKey())
}

func (s *DirtySet) processingKey() string {
	return s.key + ":processing"
}

// Locker 对 TryLock/UnLock 的封装，便于注入
type Locker struct{}

func NewLocker() *Locker {
	return &Locker{}
}

func (l *Locker) TryLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return TryLock(ctx, key, value, ttl, 1)
}

func (l *Locker) UnLock(ctx context.Context, key, value string) {
	UnLock(ctx, key, value)
}
