package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// Locker 基于行锁的存储级单写锁（实现reservation.Locker）
// 教学要点:
// 1. Acquire开启事务并 SELECT ... FOR UPDATE 锁住锁行
// 2. 其他上下文在同一行上阻塞，直到持有者提交事务
// 3. 持有者进程崩溃时连接断开，MySQL自动回滚释放行锁
// 4. 等待时间受innodb_lock_wait_timeout约束，ctx取消也会中断等待
type Locker struct {
	db   *gorm.DB
	name string
}

// NewLocker 创建锁并确保锁行存在（已存在时忽略）
func NewLocker(ctx context.Context, db *gorm.DB, namespace string) (*Locker, error) {
	l := &Locker{db: db, name: namespace + ":lock"}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&LockModel{Name: l.name}).Error
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "创建锁行失败")
	}
	return l, nil
}

func (l *Locker) Acquire(ctx context.Context) (func(context.Context) error, error) {
	tx := l.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.WrapCode(tx.Error, apperrors.ErrCodeDatabaseError, "开启事务失败")
	}

	var row LockModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", l.name).
		First(&row).Error
	if err != nil {
		tx.Rollback()
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "获取存储锁失败")
	}

	return func(context.Context) error {
		if err := tx.Commit().Error; err != nil {
			return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "释放存储锁失败")
		}
		return nil
	}, nil
}
