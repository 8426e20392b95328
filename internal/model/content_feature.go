package model

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ContentFeature 内容特征，(item_id, item_type) 唯一
type ContentFeature struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	ItemID          uint64    `gorm:"not null;uniqueIndex:uk_item,priority:1" json:"itemId"`
	ItemType        string    `gorm:"type:varchar(16);not null;uniqueIndex:uk_item,priority:2" json:"itemType"`
	Tags            TagSet    `gorm:"type:json" json:"tags"`
	TechStack       string    `gorm:"type:varchar(255);not null;default:''" json:"techStack"`
	PopularityScore float64   `gorm:"not null;default:0" json:"popularityScore"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (ContentFeature) TableName() string {
	return "content_features"
}

// TagSet 有序去重的小写标签集合
// 历史数据里 tags 可能是 JSON 数组、JSON 对象或逗号分隔字符串，读取时统一转换
type TagSet []string

// NewTagSet 规范化：去空白、转小写、按首次出现去重
func NewTagSet(tags ...string) TagSet {
	seen := make(map[string]struct{}, len(tags))
	out := make(TagSet, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (t TagSet) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

func (t TagSet) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	return marshalColumn([]string(t))
}

func (t *TagSet) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*t = TagSet{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan tag set: %v", value)
	}
	*t = ParseTagSet(raw)
	return nil
}

// ParseTagSet 解析任意历史格式的标签字段
func ParseTagSet(raw []byte) TagSet {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return TagSet{}
	}

	switch raw[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(raw, &items); err == nil {
			tags := make([]string, 0, len(items))
			for _, item := range items {
				if s, ok := item.(string); ok {
					tags = append(tags, s)
				}
			}
			return NewTagSet(tags...)
		}
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err == nil {
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return NewTagSet(keys...)
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return ParseTagSet([]byte(s))
		}
	}

	return NewTagSet(strings.Split(string(raw), ",")...)
}
