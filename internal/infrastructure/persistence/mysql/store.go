package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// Store 基于MySQL的共享键值存储
type Store struct {
	db *gorm.DB
}

// NewStore 创建MySQL存储
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var model KVEntryModel
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询存储条目失败")
	}
	return model.Value, true, nil
}

// Set 写入（INSERT ... ON DUPLICATE KEY UPDATE）
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	model := KVEntryModel{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "写入存储条目失败")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&KVEntryModel{}).Error
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "删除存储条目失败")
	}
	return nil
}
