package service

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/clock"
	"Lumen/internal/pkg/metrics"
	"Lumen/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// RebuildScheduler 画像重建队列，Submit 不阻塞，队列满时返回 false
type RebuildScheduler interface {
	Submit(ctx context.Context, userID uint64) bool
}

// DirtyMarker 记录待延迟处理的对象
type DirtyMarker interface {
	Mark(ctx context.Context, member string) error
}

// BehaviorService 行为记录，写入后异步触发画像重建
type BehaviorService interface {
	Record(ctx context.Context, behavior *model.UserBehavior) (uint64, error)
}

type behaviorServiceImpl struct {
	behaviorRepo repository.BehaviorRepo
	scheduler    RebuildScheduler
	profileDirty DirtyMarker
	featureDirty DirtyMarker
	clk          clock.Clock
}

func NewBehaviorService(
	behaviorRepo repository.BehaviorRepo,
	scheduler RebuildScheduler,
	profileDirty DirtyMarker,
	featureDirty DirtyMarker,
	clk clock.Clock,
) BehaviorService {
	return &behaviorServiceImpl{
		behaviorRepo: behaviorRepo,
		scheduler:    scheduler,
		profileDirty: profileDirty,
		featureDirty: featureDirty,
		clk:          clk,
	}
}

// Record 校验失败时不写入任何数据
func (s *behaviorServiceImpl) Record(ctx context.Context, behavior *model.UserBehavior) (uint64, error) {
	if err := validateBehavior(behavior); err != nil {
		return 0, err
	}

	behavior.ID = 0
	if behavior.CreatedAt.IsZero() {
		behavior.CreatedAt = s.clk.Now()
	}
	if behavior.Metadata == nil {
		behavior.Metadata = model.Metadata{}
	}

	if err := s.behaviorRepo.CreateBehavior(ctx, behavior); err != nil {
		log.ErrorContext(ctx, "create behavior failed", "user_id", behavior.UserID, "err", err)
		return 0, errors.Wrapf(ErrDependency, "create behavior: %v", err)
	}
	metrics.BehaviorRecorded.WithLabelValues(behavior.ActionType).Inc()

	s.scheduleRebuild(ctx, behavior.UserID)

	if slices.Contains(model.PositiveActions, behavior.ActionType) {
		member := FeatureMember(behavior.ItemType, behavior.ItemID)
		if err := s.featureDirty.Mark(ctx, member); err != nil {
			log.WarnContext(ctx, "mark feature dirty failed", "member", member, "err", err)
		}
	}

	return behavior.ID, nil
}

// scheduleRebuild 队列满时退化为脏标记，由定时任务补做
func (s *behaviorServiceImpl) scheduleRebuild(ctx context.Context, userID uint64) {
	if s.scheduler.Submit(ctx, userID) {
		return
	}
	metrics.RebuildQueueDeferred.Inc()
	if err := s.profileDirty.Mark(ctx, strconv.FormatUint(userID, 10)); err != nil {
		log.ErrorContext(ctx, "rebuild queue full and dirty mark failed", "user_id", userID, "err", err)
		return
	}
	log.WarnContext(ctx, "rebuild queue full, deferred to dirty set", "user_id", userID)
}

func validateBehavior(b *model.UserBehavior) error {
	if b == nil || b.ItemType == "" || b.ActionType == "" {
		return ErrMissingFields
	}
	if b.UserID == 0 {
		return ErrInvalidUserID
	}
	if b.ItemID == 0 {
		return ErrMissingFields
	}
	if !isItemType(b.ItemType) {
		return ErrInvalidItemType
	}
	if !slices.Contains(model.ActionTypes, b.ActionType) {
		return ErrInvalidActionType
	}
	if b.Duration < 0 {
		return ErrParamInvalid
	}
	if b.LearningType != "" && !slices.Contains(model.LearningTypes, b.LearningType) {
		return ErrInvalidLearning
	}
	if b.CompletionStatus != "" && !slices.Contains(model.CompletionStates, b.CompletionStatus) {
		return ErrInvalidCompletion
	}
	return nil
}

// FeatureMember 脏集合中内容的编码，如 article:12
func FeatureMember(itemType string, itemID uint64) string {
	return fmt.Sprintf("%s:%d", itemType, itemID)
}

// ParseFeatureMember FeatureMember 的逆操作
func ParseFeatureMember(member string) (model.ItemKey, bool) {
	for _, itemType := range model.ItemTypes {
		if rest, ok := strings.CutPrefix(member, itemType+":"); ok {
			id, err := strconv.ParseUint(rest, 10, 64)
			if err != nil || id == 0 {
				return model.ItemKey{}, false
			}
			return model.ItemKey{ItemID: id, ItemType: itemType}, true
		}
	}
	return model.ItemKey{}, false
}
