package repository

import (
	"Lumen/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InterestProfileRepo interface {
	GetProfile(ctx context.Context, userID uint64) (*model.InterestProfile, error)
	SaveProfile(ctx context.Context, profile *model.InterestProfile) error
	ListProfilesExcept(ctx context.Context, userID uint64) ([]*model.InterestProfile, error)
	CountProfiles(ctx context.Context) (int64, error)
}

type interestProfileRepoImpl struct {
	db *gorm.DB
}

func NewInterestProfileRepository(db *gorm.DB) InterestProfileRepo {
	return &interestProfileRepoImpl{db: db}
}

func (r *interestProfileRepoImpl) GetProfile(ctx context.Context, userID uint64) (*model.InterestProfile, error) {
	var profile model.InterestProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// SaveProfile 后写覆盖先写
func (r *interestProfileRepoImpl) SaveProfile(ctx context.Context, profile *model.InterestProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"interest_tags", "behavior_pattern", "last_updated"}),
	}).Create(profile).Error
}

// ListProfilesExcept 按 user_id 升序，保证相似度并列时顺序稳定
func (r *interestProfileRepoImpl) ListProfilesExcept(ctx context.Context, userID uint64) ([]*model.InterestProfile, error) {
	profiles := make([]*model.InterestProfile, 0)
	err := r.db.WithContext(ctx).
		Where("user_id <> ?", userID).
		Order("user_id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *interestProfileRepoImpl) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.InterestProfile{}).Count(&count).Error
	return count, err
}
