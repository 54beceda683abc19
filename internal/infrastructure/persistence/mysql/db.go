package mysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/storefront/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Warn
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	// 6. 自动迁移表结构
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&KVEntryModel{},
		&LockModel{},
	)
}

// KVEntryModel 共享键值条目
// 设计说明：
// 1. 值是完整的JSON（账本或购物车），整体覆盖写入
// 2. key是MySQL保留字，列名使用entry_key
type KVEntryModel struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:191;comment:存储键"`
	Value     []byte    `gorm:"type:longblob;not null;comment:序列化值"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (KVEntryModel) TableName() string {
	return "kv_entries"
}

// LockModel 存储级锁的锁行
// 通过 SELECT ... FOR UPDATE 锁住这一行实现跨进程单写
type LockModel struct {
	Name      string    `gorm:"primaryKey;size:191;comment:锁名"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (LockModel) TableName() string {
	return "kv_locks"
}
