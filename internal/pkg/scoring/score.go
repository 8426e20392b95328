package scoring

import (
	"Lumen/internal/model"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	decayDays        = 30.0
	viewDwellCap     = 300.0
	recencyWindow    = 30.0
	recencyBonus     = 20.0
	interactionBonus = 5.0
	techStackBonus   = 0.5
	viewsNudge       = 0.1
)

// ActionWeight 行为基础权重，浏览按停留时长加权，5 分钟封顶
func ActionWeight(action string, durationSec int) float64 {
	switch action {
	case model.ActionView:
		d := math.Max(0, math.Min(float64(durationSec), viewDwellCap))
		return 0.1 + d/viewDwellCap*0.4
	case model.ActionLike:
		return 0.8
	case model.ActionCollect:
		return 1.0
	case model.ActionComment:
		return 0.9
	default:
		return 0.2
	}
}

// TimeDecay exp(-days/30)，未来时间按 0 天处理
func TimeDecay(age time.Duration) float64 {
	days := age.Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / decayDays)
}

// Normalize 除以最大权重，非空时最大项恰为 1.0
func Normalize(weights map[string]float64) model.TagWeights {
	maxWeight := 0.0
	for _, w := range weights {
		if w > maxWeight {
			maxWeight = w
		}
	}

	out := make(model.TagWeights, len(weights))
	if maxWeight <= 0 {
		return out
	}
	for tag, w := range weights {
		if w <= 0 {
			continue
		}
		out[tag] = w / maxWeight
	}
	return out
}

// Cosine 余弦相似度，缺失的 key 视为 0
// 按排序后的 key 累加，保证 Cosine(a,b) 与 Cosine(b,a) 逐位相等
func Cosine(a, b map[string]float64) float64 {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var dot, na, nb float64
	for _, k := range keys {
		wa, wb := a[k], b[k]
		dot += wa * wb
		na += wa * wa
		nb += wb * wb
	}
	if na == 0 || nb == 0 {
		return 0
	}

	sim := dot / math.Sqrt(na*nb)
	return math.Max(0, math.Min(1, sim))
}

// Popularity 热度快照：log(views+1)*10 + 30 天线性新鲜度加成 + 5*互动数
func Popularity(views int64, publishedAt, now time.Time, interactions int64) float64 {
	if views < 0 {
		views = 0
	}
	score := math.Log(float64(views)+1) * 10

	if !publishedAt.IsZero() {
		ageDays := now.Sub(publishedAt).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		score += math.Max(0, recencyWindow-ageDays) / recencyWindow * recencyBonus
	}

	return score + float64(interactions)*interactionBonus
}

// ContentScore 用户兴趣与内容的匹配分
func ContentScore(weights model.TagWeights, tags model.TagSet, techStack string, views int64) float64 {
	score := 0.0
	for _, tag := range tags {
		score += weights[tag]
	}

	if techStack != "" {
		stack := strings.ToLower(techStack)
		for tag := range weights {
			if strings.Contains(stack, tag) {
				score += techStackBonus
				break
			}
		}
	}

	if views > 0 {
		score += math.Log(float64(views)+1) * viewsNudge
	}
	return score
}

// PopularScore 热门策略排序分
func PopularScore(item *model.ContentItem) float64 {
	return float64(item.Views) + item.PopularityScore
}

// HybridQuotas 混合策略配额：40% / 40% / 20%，各自向上取整
func HybridQuotas(limit int) (content, collaborative, popular int) {
	if limit <= 0 {
		return 0, 0, 0
	}
	content = (limit*4 + 9) / 10
	collaborative = (limit*4 + 9) / 10
	popular = (limit*2 + 9) / 10
	return
}
