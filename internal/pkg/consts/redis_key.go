package consts

const (
	ProfileDirtyKey = "recommend:profile:dirty"
	FeatureDirtyKey = "recommend:feature:dirty"
)

const (
	CommunityStatsLock = "lock:learning:community:"
)
