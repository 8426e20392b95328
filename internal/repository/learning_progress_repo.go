package repository

import (
	"Lumen/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LearningProgressRepo interface {
	GetProgress(ctx context.Context, userID uint64) (*model.LearningProgress, error)
	UpdateProgress(ctx context.Context, userID uint64, fn func(p *model.LearningProgress) error) (*model.LearningProgress, error)
	AverageLearningHours(ctx context.Context) (float64, error)
}

type learningProgressRepoImpl struct {
	db *gorm.DB
}

func NewLearningProgressRepository(db *gorm.DB) LearningProgressRepo {
	return &learningProgressRepoImpl{db: db}
}

// GetProgress 不存在时返回 nil, nil
func (r *learningProgressRepoImpl) GetProgress(ctx context.Context, userID uint64) (*model.LearningProgress, error) {
	var progress model.LearningProgress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

// UpdateProgress 行锁内读-改-写，没有记录时从空进度开始
func (r *learningProgressRepoImpl) UpdateProgress(ctx context.Context, userID uint64, fn func(p *model.LearningProgress) error) (*model.LearningProgress, error) {
	var result *model.LearningProgress
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var progress model.LearningProgress
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&progress).Error

		current := &progress
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			current = model.NewLearningProgress(userID)
		}

		if err = fn(current); err != nil {
			return err
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(current).Error
		if err != nil {
			return err
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AverageLearningHours 只统计有学习时长的用户
func (r *learningProgressRepoImpl) AverageLearningHours(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&model.LearningProgress{}).
		Select("COALESCE(AVG(total_learning_hours), 0)").
		Where("total_learning_hours > 0").
		Scan(&avg).Error
	return avg, err
}
