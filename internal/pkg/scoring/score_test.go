package scoring

import (
	"Lumen/internal/model"
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestActionWeight(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		duration int
		want     float64
	}{
		{"view without dwell", model.ActionView, 0, 0.1},
		{"view half dwell", model.ActionView, 150, 0.3},
		{"view capped at five minutes", model.ActionView, 3000, 0.5},
		{"view negative duration", model.ActionView, -10, 0.1},
		{"like", model.ActionLike, 0, 0.8},
		{"collect", model.ActionCollect, 0, 1.0},
		{"comment", model.ActionComment, 0, 0.9},
		{"share falls back", model.ActionShare, 0, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActionWeight(tt.action, tt.duration); !almostEqual(got, tt.want) {
				t.Errorf("ActionWeight(%q, %d) = %v, want %v", tt.action, tt.duration, got, tt.want)
			}
		})
	}
}

func TestTimeDecay(t *testing.T) {
	if got := TimeDecay(0); got != 1 {
		t.Errorf("TimeDecay(0) = %v, want 1", got)
	}
	if got := TimeDecay(-time.Hour); got != 1 {
		t.Errorf("future event should not be boosted, got %v", got)
	}
	if got, want := TimeDecay(30*24*time.Hour), math.Exp(-1); !almostEqual(got, want) {
		t.Errorf("TimeDecay(30d) = %v, want %v", got, want)
	}
	if TimeDecay(10*24*time.Hour) <= TimeDecay(20*24*time.Hour) {
		t.Error("older events must weigh less")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		weights map[string]float64
	}{
		{"single tag", map[string]float64{"react": 0.37}},
		{"several tags", map[string]float64{"react": 2.4, "vue": 1.2, "docker": 0.05}},
		{"tied maximum", map[string]float64{"go": 3, "redis": 3, "mysql": 1}},
		{"tiny weights", map[string]float64{"a": 1e-12, "b": 3e-12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.weights)
			if len(got) != len(tt.weights) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.weights))
			}
			hasOne := false
			for tag, w := range got {
				if w < 0 || w > 1 {
					t.Errorf("weight %s = %v out of [0,1]", tag, w)
				}
				if w == 1.0 {
					hasOne = true
				}
			}
			if !hasOne {
				t.Errorf("no tag has weight exactly 1.0: %v", got)
			}
		})
	}

	if got := Normalize(nil); len(got) != 0 {
		t.Errorf("Normalize(nil) = %v, want empty", got)
	}
}

func TestCosine(t *testing.T) {
	vectors := []map[string]float64{
		{"react": 1, "hooks": 0.5},
		{"react": 0.2, "vue": 1},
		{"docker": 1, "kubernetes": 0.7, "aws": 0.1},
		{"react": 1, "hooks": 0.5, "vue": 0.3, "css": 0.9},
		{"graphql": 0.333333333, "rest": 1},
	}

	for i, a := range vectors {
		if got := Cosine(a, a); got != 1.0 {
			t.Errorf("Cosine(v%d, v%d) = %v, want exactly 1.0", i, i, got)
		}
		for j, b := range vectors {
			ab, ba := Cosine(a, b), Cosine(b, a)
			if ab != ba {
				t.Errorf("Cosine not symmetric for v%d/v%d: %v != %v", i, j, ab, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Cosine(v%d, v%d) = %v out of [0,1]", i, j, ab)
			}
		}
	}

	if got := Cosine(map[string]float64{"a": 1}, map[string]float64{"b": 1}); got != 0 {
		t.Errorf("disjoint vectors = %v, want 0", got)
	}
	if got := Cosine(nil, map[string]float64{"b": 1}); got != 0 {
		t.Errorf("empty vector = %v, want 0", got)
	}
}

func TestCosineIdenticalProfiles(t *testing.T) {
	a := model.TagWeights{"react": 1, "hooks": 0.4, "vue": 0.25}
	b := model.TagWeights{"react": 1, "hooks": 0.4, "vue": 0.25}
	if got := Cosine(a, b); got != 1.0 {
		t.Errorf("identical vectors = %v, want 1.0", got)
	}
}

func TestPopularity(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	t.Run("fresh item without views", func(t *testing.T) {
		if got := Popularity(0, now, now, 0); !almostEqual(got, 20) {
			t.Errorf("Popularity = %v, want 20", got)
		}
	})

	t.Run("recency bonus decays linearly", func(t *testing.T) {
		got := Popularity(0, now.AddDate(0, 0, -15), now, 0)
		if !almostEqual(got, 10) {
			t.Errorf("Popularity at 15 days = %v, want 10", got)
		}
		if got := Popularity(0, now.AddDate(0, 0, -45), now, 0); got != 0 {
			t.Errorf("Popularity at 45 days = %v, want 0", got)
		}
	})

	t.Run("interactions add five each", func(t *testing.T) {
		old := now.AddDate(-1, 0, 0)
		if got := Popularity(0, old, now, 3); !almostEqual(got, 15) {
			t.Errorf("Popularity = %v, want 15", got)
		}
	})

	t.Run("monotonic in views", func(t *testing.T) {
		published := now.AddDate(0, 0, -3)
		prev := -1.0
		for _, views := range []int64{0, 1, 2, 10, 100, 1000, 1 << 20} {
			got := Popularity(views, published, now, 2)
			if got < prev {
				t.Errorf("Popularity(%d) = %v < previous %v", views, got, prev)
			}
			prev = got
		}
	})
}

func TestContentScore(t *testing.T) {
	weights := model.TagWeights{"react": 1, "hooks": 0.5}

	tests := []struct {
		name      string
		tags      model.TagSet
		techStack string
		views     int64
		want      float64
	}{
		{"matching tags", model.TagSet{"react", "hooks", "css"}, "", 0, 1.5},
		{"tech stack bonus", model.TagSet{"go"}, "React, Redux", 0, 0.5},
		{"views nudge", model.TagSet{}, "", 9, math.Log(10) * 0.1},
		{"no overlap", model.TagSet{"docker"}, "kubernetes", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentScore(weights, tt.tags, tt.techStack, tt.views); !almostEqual(got, tt.want) {
				t.Errorf("ContentScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHybridQuotas(t *testing.T) {
	tests := []struct {
		limit                     int
		content, collab, popular int
	}{
		{10, 4, 4, 2},
		{1, 1, 1, 1},
		{5, 2, 2, 1},
		{7, 3, 3, 2},
		{0, 0, 0, 0},
	}

	for _, tt := range tests {
		c, col, p := HybridQuotas(tt.limit)
		if c != tt.content || col != tt.collab || p != tt.popular {
			t.Errorf("HybridQuotas(%d) = (%d,%d,%d), want (%d,%d,%d)",
				tt.limit, c, col, p, tt.content, tt.collab, tt.popular)
		}
	}
}
