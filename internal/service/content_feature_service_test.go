package service

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/clock"
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func newTestFeatureService(features *fakeFeatureRepo, contents *fakeContentRepo, behaviors *fakeBehaviorRepo) ContentFeatureService {
	return NewContentFeatureService(features, contents, behaviors, clock.NewMock(testNow))
}

func source(id uint64, itemType, title, techStack string, views int64, published time.Time) *model.ContentSource {
	return &model.ContentSource{
		ItemID: id, ItemType: itemType, Title: title, TechStack: techStack, Views: views, PublishedAt: published,
	}
}

func TestComputePopularityFreshItem(t *testing.T) {
	contents := &fakeContentRepo{sources: map[model.ItemKey]*model.ContentSource{
		{ItemID: 1, ItemType: model.ItemTypeArticle}: source(1, model.ItemTypeArticle, "t", "", 0, testNow),
	}}
	svc := newTestFeatureService(newFakeFeatureRepo(), contents, &fakeBehaviorRepo{})

	score, err := svc.ComputePopularity(context.Background(), 1, model.ItemTypeArticle)
	if err != nil {
		t.Fatal(err)
	}
	if score != 20 {
		t.Errorf("popularity = %v, want 20", score)
	}

	missing, err := svc.ComputePopularity(context.Background(), 2, model.ItemTypeArticle)
	if err != nil || missing != 0 {
		t.Errorf("missing content = %v, %v, want 0", missing, err)
	}
}

func TestRefreshFeaturesExtractsTags(t *testing.T) {
	contents := &fakeContentRepo{sources: map[model.ItemKey]*model.ContentSource{
		{ItemID: 3, ItemType: model.ItemTypeMyArticle}: source(3, model.ItemTypeMyArticle,
			"Building a React app with Docker", "Go, Redis", 99, testNow.Add(-60*24*time.Hour)),
	}}
	behaviors := &fakeBehaviorRepo{}
	for _, action := range []string{model.ActionLike, model.ActionView, model.ActionCollect} {
		_ = behaviors.CreateBehavior(context.Background(), &model.UserBehavior{
			UserID: 1, ItemID: 3, ItemType: model.ItemTypeMyArticle, ActionType: action,
		})
	}
	features := newFakeFeatureRepo()
	svc := newTestFeatureService(features, contents, behaviors)

	feature, err := svc.RefreshFeatures(context.Background(), 3, model.ItemTypeMyArticle)
	if err != nil {
		t.Fatalf("RefreshFeatures: %v", err)
	}
	want := model.TagSet{"react", "docker", "go", "redis"}
	if fmt.Sprint(feature.Tags) != fmt.Sprint(want) {
		t.Errorf("tags = %v, want %v", feature.Tags, want)
	}
	wantScore := math.Log(100)*10 + 2*5
	if math.Abs(feature.PopularityScore-wantScore) > 1e-9 {
		t.Errorf("popularity = %v, want %v", feature.PopularityScore, wantScore)
	}
	if stored := features.get(3, model.ItemTypeMyArticle); stored == nil || stored.TechStack != "Go, Redis" {
		t.Errorf("stored = %+v", stored)
	}

	gone, err := svc.RefreshFeatures(context.Background(), 4, model.ItemTypeMyArticle)
	if err != nil || gone != nil {
		t.Errorf("deleted content = %v, %v, want nil, nil", gone, err)
	}
	if _, err = svc.RefreshFeatures(context.Background(), 3, "video"); !errors.Is(err, ErrInvalidItemType) {
		t.Errorf("bad type err = %v", err)
	}
}

func TestGetFeaturesOrDefault(t *testing.T) {
	features := newFakeFeatureRepo(&model.ContentFeature{ItemID: 1, ItemType: model.ItemTypeArticle, Tags: model.TagSet{"vue"}})
	svc := newTestFeatureService(features, &fakeContentRepo{}, &fakeBehaviorRepo{})
	ctx := context.Background()

	got, err := svc.GetFeaturesOrDefault(ctx, 1, model.ItemTypeArticle, model.LearningRead)
	if err != nil || !got.Tags.Contains("vue") {
		t.Errorf("existing = %+v, %v", got, err)
	}
	got, err = svc.GetFeaturesOrDefault(ctx, 2, model.ItemTypeArticle, model.LearningTest)
	if err != nil || fmt.Sprint(got.Tags) != "[javascript html css]" {
		t.Errorf("default = %+v, %v", got, err)
	}
	got, err = svc.GetFeaturesOrDefault(ctx, 2, model.ItemTypeArticle, "")
	if err != nil || got == nil || len(got.Tags) != 0 {
		t.Errorf("non learning default = %+v, %v", got, err)
	}
}

func TestUpsertAndRemoveFeatures(t *testing.T) {
	features := newFakeFeatureRepo()
	svc := newTestFeatureService(features, &fakeContentRepo{}, &fakeBehaviorRepo{})
	ctx := context.Background()

	if err := svc.UpsertFeatures(ctx, 5, model.ItemTypeArticle, model.TagSet{" Go ", "go", "K8s"}, "Go", 3); err != nil {
		t.Fatal(err)
	}
	if f := features.get(5, model.ItemTypeArticle); fmt.Sprint(f.Tags) != "[go k8s]" || f.PopularityScore != 3 {
		t.Errorf("stored = %+v", f)
	}
	if err := svc.RemoveFeatures(ctx, 5, model.ItemTypeArticle); err != nil {
		t.Fatal(err)
	}
	if features.get(5, model.ItemTypeArticle) != nil {
		t.Error("feature not removed")
	}
}

func TestInitializeAll(t *testing.T) {
	contents := &fakeContentRepo{sources: map[model.ItemKey]*model.ContentSource{}}
	for i := uint64(1); i <= 250; i++ {
		contents.sources[model.ItemKey{ItemID: i, ItemType: model.ItemTypeArticle}] =
			source(i, model.ItemTypeArticle, "vue tips", "", 1, testNow)
	}
	contents.sources[model.ItemKey{ItemID: 1, ItemType: model.ItemTypeMyArticle}] =
		source(1, model.ItemTypeMyArticle, "notes", "Rust", 0, testNow)
	features := newFakeFeatureRepo()

	n, err := newTestFeatureService(features, contents, &fakeBehaviorRepo{}).InitializeAll(context.Background())
	if err != nil {
		t.Fatalf("InitializeAll: %v", err)
	}
	if n != 251 || len(features.features) != 251 {
		t.Errorf("processed=%d stored=%d, want 251", n, len(features.features))
	}
	if f := features.get(1, model.ItemTypeMyArticle); fmt.Sprint(f.Tags) != "[rust]" {
		t.Errorf("my_article tags = %v", f.Tags)
	}
}

func TestNormalizeAll(t *testing.T) {
	features := newFakeFeatureRepo(
		&model.ContentFeature{ItemID: 1, ItemType: model.ItemTypeArticle, Tags: model.TagSet{"React", "react", " Vue"}},
		&model.ContentFeature{ItemID: 2, ItemType: model.ItemTypeArticle, Tags: model.TagSet{"go"}},
	)

	n, err := newTestFeatureService(features, &fakeContentRepo{}, &fakeBehaviorRepo{}).NormalizeAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("rewritten = %d, want 2", n)
	}
	if got := features.get(1, model.ItemTypeArticle).Tags; fmt.Sprint(got) != "[react vue]" {
		t.Errorf("tags = %v", got)
	}
}
