package consts

// 进程内缓存名，同时用作监控标签
const (
	CacheSimilarUsers   = "similar_users"
	CacheRecommend      = "recommend"
	CacheRecommendLast  = "recommend_last_good"
	CacheLearnProgress  = "learning_progress"
	CacheCommunityStats = "community_stats"
)

// 进程内缓存 key 前缀
const (
	SimilarUsersKey   = "similar_users:"
	RecommendKey      = "recommend:"
	PopularKey        = "popular:"
	LearnProgressKey  = "progress:"
	CommunityStatsKey = "community:stats"
)
