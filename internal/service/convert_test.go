package service

import (
	"Lumen/internal/model"
	"testing"
)

func TestToRecommendationDTOs(t *testing.T) {
	item := &model.ContentItem{
		ItemID: 7, ItemType: model.ItemTypeArticle, Title: "hooks", Author: "lin",
		Views: 42, TechStack: "react", Tags: model.NewTagSet("react", "hooks"), PopularityScore: 12.5,
	}
	recs := []*model.Recommendation{
		{ItemID: 7, ItemType: model.ItemTypeArticle, Score: 1.5, Strategy: model.StrategyContentBased, Content: item},
		{ItemID: 8, ItemType: model.ItemTypeMyArticle, Score: 0.5, Strategy: model.StrategyPopular},
	}

	got, err := ToRecommendationDTOs(recs)
	if err != nil {
		t.Fatalf("ToRecommendationDTOs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}

	first := got[0]
	if first.RecommendationType != model.StrategyContentBased || first.Score != 1.5 {
		t.Errorf("first = %+v", first)
	}
	if first.Content == nil {
		t.Fatal("content not copied")
	}
	if first.Content.Title != "hooks" || first.Content.Views != 42 || first.Content.PopularityScore != 12.5 {
		t.Errorf("content = %+v", first.Content)
	}
	first.Content.Tags[0] = "vue"
	if item.Tags[0] != "react" {
		t.Error("dto tags share the model slice")
	}
	if got[1].Content != nil {
		t.Errorf("item without content got %+v", got[1].Content)
	}
}
