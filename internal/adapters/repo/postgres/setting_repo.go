package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velez/storefront/internal/domain"
)

type SettingRepo struct{ db *gorm.DB }

func NewSettingRepo(db *gorm.DB) *SettingRepo { return &SettingRepo{db: db} }

func (r *SettingRepo) Get(ctx context.Context, key string) (string, error) {
	var s domain.Setting
	if err := r.db.WithContext(ctx).First(&s, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return s.Value, nil
}

func (r *SettingRepo) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Setting
		err := tx.Where("key = ?", key).First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Update("value", value).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&domain.Setting{ID: uuid.New(), Key: key, Value: value}).Error
		}
		return err
	})
}
