package model

import "time"

// Article 站点文章
type Article struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Content     string    `gorm:"type:longtext" json:"content"`
	Author      string    `gorm:"type:varchar(64)" json:"author"`
	PublishDate time.Time `json:"publishDate"`
	Views       int64     `gorm:"not null;default:0" json:"views"`
	TechStack   string    `gorm:"type:varchar(255);not null;default:''" json:"techStack"`
}

func (Article) TableName() string {
	return "articles"
}

// MyArticle 用户自己发布的文章，没有浏览量
type MyArticle struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"type:longtext" json:"content"`
	TechStack string    `gorm:"type:varchar(255);not null;default:''" json:"techStack"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

// MyArticleUpdatedAtColumn my_articles 的更新时间列沿用驼峰命名
const MyArticleUpdatedAtColumn = "updatedAt"

func (MyArticle) TableName() string {
	return "my_articles"
}

// ContentItem 两类文章与特征联表后的统一视图
type ContentItem struct {
	ItemID          uint64    `json:"itemId"`
	ItemType        string    `json:"itemType"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	PublishDate     time.Time `json:"publishDate"`
	Views           int64     `json:"views"`
	TechStack       string    `json:"techStack"`
	Tags            TagSet    `json:"tags"`
	PopularityScore float64   `json:"popularityScore"`
}

// ContentSource 计算特征所需的原始内容
type ContentSource struct {
	ItemID      uint64
	ItemType    string
	Title       string
	Content     string
	TechStack   string
	Views       int64
	PublishedAt time.Time
}

// ItemTypeCount 各类型特征数量
type ItemTypeCount struct {
	ItemType string `json:"itemType"`
	Count    int64  `json:"count"`
}
