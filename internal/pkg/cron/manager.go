package cron

import (
	"Lumen/internal/api/config"
	log "log/slog"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine *cron.Cron
	specs  config.CronConfig
	jobs   Jobs
}

// Jobs 需要注册的定时任务
type Jobs struct {
	ProfileRebuild    cron.Job
	PopularityRefresh cron.Job
	CommunitySnapshot cron.Job
}

func NewCronManager(specs config.CronConfig, jobs Jobs) *Manager {
	return &Manager{
		engine: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		specs:  specs,
		jobs:   jobs,
	}
}

// RegisterJobs 注册定时任务，表达式为空的任务不注册
func (s *Manager) RegisterJobs() error {
	entries := []struct {
		name string
		spec string
		job  cron.Job
	}{
		{"profile_rebuild", s.specs.ProfileRebuild, s.jobs.ProfileRebuild},
		{"popularity_refresh", s.specs.PopularityRefresh, s.jobs.PopularityRefresh},
		{"community_snapshot", s.specs.CommunitySnapshot, s.jobs.CommunitySnapshot},
	}
	for _, e := range entries {
		if e.spec == "" || e.job == nil {
			log.Warn("cron job disabled", "job", e.name)
			continue
		}
		if _, err := s.engine.AddJob(e.spec, e.job); err != nil {
			return errors.Wrapf(err, "register cron job %s", e.name)
		}
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
