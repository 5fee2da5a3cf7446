package gormstore

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DIP-Sharing-Board/discord-bot/internal/config"
)

// sqliteBusyTimeout keeps concurrent writers waiting on the file lock instead
// of failing with SQLITE_BUSY
const sqliteBusyTimeout = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Client wraps the gorm connection
type Client struct {
	db     *gorm.DB
	config *config.Database
	log    *zap.Logger
}

// NewClient opens the configured database and verifies the connection
func NewClient(ctx context.Context, config *config.Database, log *zap.Logger) (*Client, error) {
	dialector, err := openDialector(config)
	if err != nil {
		return nil, err
	}

	log.Info("Connecting to database",
		zap.String("driver", config.Driver),
		zap.String("sqlitePath", config.SQLitePath),
		zap.String("mysqlHost", config.MySQLHost),
		zap.String("database", config.MySQLName))

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	if config.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(config.ConnMaxLifetime) * time.Second)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Error("Failed to ping database", zap.Error(err))
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established successfully")

	return &Client{db: db, config: config, log: log}, nil
}

func openDialector(config *config.Database) (gorm.Dialector, error) {
	switch config.Driver {
	case "sqlite":
		return sqlite.Open(config.SQLitePath + "?" + sqliteBusyTimeout), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
			config.MySQLUser, config.MySQLPassword, config.MySQLHost, config.MySQLPort, config.MySQLName)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", config.Driver)
	}
}

// DB returns the underlying gorm handle
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	c.log.Info("Closing database connection")
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		c.log.Error("Error closing database connection", zap.Error(err))
		return err
	}
	c.log.Info("Database connection closed successfully")
	return nil
}
