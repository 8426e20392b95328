package cron

import (
	"Lumen/internal/api/config"
	log "log/slog"
)

// InitCron 注册并启动全部定时任务
func InitCron(specs config.CronConfig, jobs Jobs) (*Manager, error) {
	log.Info("Cron Jobs starting...",
		"profile_rebuild", specs.ProfileRebuild,
		"popularity_refresh", specs.PopularityRefresh,
		"community_snapshot", specs.CommunitySnapshot)
	mgr := NewCronManager(specs, jobs)
	if err := mgr.RegisterJobs(); err != nil {
		return nil, err
	}
	mgr.Start()
	return mgr, nil
}
