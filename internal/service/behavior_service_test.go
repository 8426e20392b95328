package service

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/clock"
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestBehaviorService(repo *fakeBehaviorRepo, sched *fakeScheduler) (BehaviorService, *fakeDirty, *fakeDirty) {
	profileDirty, featureDirty := &fakeDirty{}, &fakeDirty{}
	svc := NewBehaviorService(repo, sched, profileDirty, featureDirty, clock.NewMock(testNow))
	return svc, profileDirty, featureDirty
}

func TestBehaviorRecordValidation(t *testing.T) {
	valid := func() *model.UserBehavior {
		return &model.UserBehavior{UserID: 1, ItemID: 7, ItemType: model.ItemTypeArticle, ActionType: model.ActionView}
	}

	tests := []struct {
		name    string
		mutate  func(b *model.UserBehavior)
		wantErr error
	}{
		{"unknown action", func(b *model.UserBehavior) { b.ActionType = "dislike" }, ErrInvalidActionType},
		{"unknown item type", func(b *model.UserBehavior) { b.ItemType = "video" }, ErrInvalidItemType},
		{"missing action", func(b *model.UserBehavior) { b.ActionType = "" }, ErrMissingFields},
		{"missing user", func(b *model.UserBehavior) { b.UserID = 0 }, ErrInvalidUserID},
		{"missing item", func(b *model.UserBehavior) { b.ItemID = 0 }, ErrMissingFields},
		{"negative duration", func(b *model.UserBehavior) { b.Duration = -1 }, ErrParamInvalid},
		{"unknown learning type", func(b *model.UserBehavior) { b.LearningType = "sleep" }, ErrInvalidLearning},
		{"unknown completion", func(b *model.UserBehavior) { b.CompletionStatus = "paused" }, ErrInvalidCompletion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, sched := &fakeBehaviorRepo{}, &fakeScheduler{}
			svc, profileDirty, featureDirty := newTestBehaviorService(repo, sched)

			b := valid()
			tt.mutate(b)
			_, err := svc.Record(context.Background(), b)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Record err = %v, want %v", err, tt.wantErr)
			}
			if ErrorMap[tt.wantErr] != BadRequest {
				t.Errorf("%v maps to %d, want %d", tt.wantErr, ErrorMap[tt.wantErr], BadRequest)
			}
			if repo.count() != 0 || len(sched.accepted) != 0 || len(profileDirty.members) != 0 || len(featureDirty.members) != 0 {
				t.Error("validation failure must not write anything")
			}
		})
	}
}

func TestBehaviorRecordSchedulesRebuild(t *testing.T) {
	repo, sched := &fakeBehaviorRepo{}, &fakeScheduler{}
	svc, profileDirty, featureDirty := newTestBehaviorService(repo, sched)

	id, err := svc.Record(context.Background(), &model.UserBehavior{
		UserID: 42, ItemID: 7, ItemType: model.ItemTypeArticle, ActionType: model.ActionLike,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	if got := repo.behaviors[0].CreatedAt; !got.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", got, testNow)
	}
	if len(sched.accepted) != 1 || sched.accepted[0] != 42 {
		t.Errorf("scheduled = %v, want [42]", sched.accepted)
	}
	if len(profileDirty.members) != 0 {
		t.Errorf("profile dirty = %v, want none", profileDirty.members)
	}
	if len(featureDirty.members) != 1 || featureDirty.members[0] != "article:7" {
		t.Errorf("feature dirty = %v, want [article:7]", featureDirty.members)
	}
}

func TestBehaviorRecordViewDoesNotMarkFeature(t *testing.T) {
	repo, sched := &fakeBehaviorRepo{}, &fakeScheduler{}
	svc, _, featureDirty := newTestBehaviorService(repo, sched)

	_, err := svc.Record(context.Background(), &model.UserBehavior{
		UserID: 1, ItemID: 3, ItemType: model.ItemTypeMyArticle, ActionType: model.ActionView, Duration: 120,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(featureDirty.members) != 0 {
		t.Errorf("feature dirty = %v, want none", featureDirty.members)
	}
}

func TestBehaviorRecordQueueFullDefersToDirtySet(t *testing.T) {
	repo, sched := &fakeBehaviorRepo{}, &fakeScheduler{reject: true}
	svc, profileDirty, _ := newTestBehaviorService(repo, sched)

	if _, err := svc.Record(context.Background(), &model.UserBehavior{
		UserID: 42, ItemID: 7, ItemType: model.ItemTypeArticle, ActionType: model.ActionShare,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(profileDirty.members) != 1 || profileDirty.members[0] != "42" {
		t.Errorf("profile dirty = %v, want [42]", profileDirty.members)
	}
}

func TestBehaviorRecordStoreFailureIsReturned(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo, sched := &fakeBehaviorRepo{createErr: storeErr}, &fakeScheduler{}
	svc, _, _ := newTestBehaviorService(repo, sched)

	_, err := svc.Record(context.Background(), &model.UserBehavior{
		UserID: 1, ItemID: 1, ItemType: model.ItemTypeArticle, ActionType: model.ActionView,
	})
	if !errors.Is(err, ErrDependency) {
		t.Fatalf("Record err = %v, want %v", err, ErrDependency)
	}
	if !strings.Contains(err.Error(), storeErr.Error()) {
		t.Errorf("Record err = %v, want the store cause in the message", err)
	}
	if len(sched.accepted) != 0 {
		t.Error("rebuild scheduled although the write failed")
	}
}

func TestParseFeatureMember(t *testing.T) {
	tests := []struct {
		member string
		want   model.ItemKey
		ok     bool
	}{
		{"article:12", model.ItemKey{ItemID: 12, ItemType: model.ItemTypeArticle}, true},
		{"my_article:3", model.ItemKey{ItemID: 3, ItemType: model.ItemTypeMyArticle}, true},
		{"article:", model.ItemKey{}, false},
		{"article:0", model.ItemKey{}, false},
		{"video:1", model.ItemKey{}, false},
		{"article:x", model.ItemKey{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseFeatureMember(tt.member)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseFeatureMember(%q) = %v, %v; want %v, %v", tt.member, got, ok, tt.want, tt.ok)
		}
		if ok && FeatureMember(got.ItemType, got.ItemID) != tt.member {
			t.Errorf("FeatureMember round trip of %q failed", tt.member)
		}
	}
}
