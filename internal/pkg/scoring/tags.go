package scoring

import (
	"Lumen/internal/model"
	"strings"
)

// Vocabulary 技术关键词表，按顺序匹配
var Vocabulary = []string{
	"react", "vue", "angular", "javascript", "typescript", "nodejs", "express",
	"mongodb", "mysql", "postgresql", "redis", "docker", "kubernetes",
	"aws", "azure", "gcp", "html", "css", "sass", "less", "webpack",
	"vite", "babel", "jest", "cypress", "git", "ci/cd", "rest", "graphql",
}

// ExtractTags 标题与正文的关键词子串匹配，并上技术栈字段的逗号分词
func ExtractTags(title, content, techStack string) model.TagSet {
	text := strings.ToLower(title + " " + content)

	tags := make([]string, 0, 8)
	for _, kw := range Vocabulary {
		if strings.Contains(text, kw) {
			tags = append(tags, kw)
		}
	}
	tags = append(tags, SplitTechStack(techStack)...)

	return model.NewTagSet(tags...)
}

// SplitTechStack 逗号分隔的技术栈转为小写 token
func SplitTechStack(techStack string) []string {
	if strings.TrimSpace(techStack) == "" {
		return nil
	}
	parts := strings.Split(techStack, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FeatureTokens 特征关联的全部 token：标签与技术栈的并集
func FeatureTokens(f *model.ContentFeature) model.TagSet {
	if f == nil {
		return nil
	}
	tokens := make([]string, 0, len(f.Tags)+4)
	tokens = append(tokens, f.Tags...)
	tokens = append(tokens, SplitTechStack(f.TechStack)...)
	return model.NewTagSet(tokens...)
}

var defaultSkills = map[string][]string{
	model.LearningRead:     {"javascript", "react"},
	model.LearningPractice: {"javascript", "nodejs"},
	model.LearningProject:  {"react", "vue", "nodejs"},
	model.LearningTest:     {"javascript", "html", "css"},
}

// DefaultSkills 内容缺少特征时按学习类型给出的默认技能
func DefaultSkills(learningType string) []string {
	if skills, ok := defaultSkills[learningType]; ok {
		return append([]string(nil), skills...)
	}
	return []string{"general"}
}

// DefaultFeature 缺失特征时的兜底，非学习行为返回空特征
func DefaultFeature(itemID uint64, itemType, learningType string) *model.ContentFeature {
	f := &model.ContentFeature{ItemID: itemID, ItemType: itemType, Tags: model.TagSet{}}
	if learningType != "" {
		f.Tags = model.NewTagSet(DefaultSkills(learningType)...)
	}
	return f
}
