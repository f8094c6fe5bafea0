package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options 描述打开数据库所需的参数。
type Options struct {
	// URL is either a SQLite file path / DSN or a postgres:// URL.
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     logger.LogLevel
}

// IsPostgresURL reports whether url selects the PostgreSQL driver.
func IsPostgresURL(url string) bool {
	lower := strings.ToLower(strings.TrimSpace(url))
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// Open 打开数据库连接、配置连接池并执行自动迁移。
// URL 为空时回退到默认值 newsdesk.db。
func Open(opts Options) (*gorm.DB, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		url = "newsdesk.db"
	}

	logLevel := opts.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var dialector gorm.Dialector
	if IsPostgresURL(url) {
		// lib/pq 作为 database/sql 驱动
		dialector = postgres.New(postgres.Config{DriverName: "postgres", DSN: url})
	} else {
		if err := ensureParentDir(url); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(url)
	}

	gdb, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(gdb); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return gdb, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&Article{},
		&AdminCredential{},
		&NewsletterSubscription{},
		&ContactMessage{},
	)
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
