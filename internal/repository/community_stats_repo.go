package repository

import (
	"Lumen/internal/model"
	"context"
	"errors"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

type CommunityStatsRepo interface {
	GetByDate(ctx context.Context, date time.Time) (*model.CommunityLearningStats, error)
	CreateStats(ctx context.Context, stats *model.CommunityLearningStats) error
}

type communityStatsRepoImpl struct {
	db *gorm.DB
}

func NewCommunityStatsRepository(db *gorm.DB) CommunityStatsRepo {
	return &communityStatsRepoImpl{db: db}
}

// GetByDate 某日快照，不存在时返回 nil, nil
func (r *communityStatsRepoImpl) GetByDate(ctx context.Context, date time.Time) (*model.CommunityLearningStats, error) {
	var stats model.CommunityLearningStats
	err := r.db.WithContext(ctx).
		Where("stat_date = ?", date.Format(time.DateOnly)).
		First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

// CreateStats 每天只保留第一份快照，重复插入视为成功
func (r *communityStatsRepoImpl) CreateStats(ctx context.Context, stats *model.CommunityLearningStats) error {
	err := r.db.WithContext(ctx).Create(stats).Error
	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return nil
	}
	return err
}
