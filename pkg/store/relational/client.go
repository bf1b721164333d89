package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	// Pure Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"

	"github.com/0xmhha/skill-tracker/pkg/kvstore"
	"github.com/0xmhha/skill-tracker/pkg/logger"
)

// Row is one table row keyed by snake_case column name.
type Row = map[string]any

// Client is a thin table client: rows go in and out as maps and filters
// are column equality.
type Client struct {
	db     *gorm.DB
	logger logger.Logger
}

// ClientConfig contains database connection configuration.
type ClientConfig struct {
	// Path is the SQLite database file. ":memory:" keeps everything in
	// the single pooled connection.
	Path string

	// BusyTimeout is how long a statement waits on a locked database.
	// Default: 5s.
	BusyTimeout time.Duration

	// Debug logs every SQL statement.
	Debug bool
}

// OpenClient opens the database and migrates the schema.
func OpenClient(cfg ClientConfig, log logger.Logger) (*Client, error) {
	if cfg.Path == "" {
		return nil, ErrNoPath
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Noop()
	}

	path := kvstore.ExpandHome(cfg.Path)
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		path, cfg.BusyTimeout.Milliseconds())
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps :memory: alive.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	mode := gormlogger.Silent
	if cfg.Debug {
		mode = gormlogger.Info
	}

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(mode),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if path != ":memory:" {
		if err := db.Exec("PRAGMA journal_mode = WAL;").Error; err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := db.AutoMigrate(&skillRow{}, &sessionRow{}, &settingsRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Debug("database opened", "path", path)

	return &Client{db: db, logger: log}, nil
}

// Select returns the rows of table matching filter, ordered by order
// when it is not empty.
func (c *Client) Select(ctx context.Context, table string, filter Row, order string) ([]Row, error) {
	q := c.db.WithContext(ctx).Table(table)
	if len(filter) > 0 {
		q = q.Where(map[string]any(filter))
	}
	if order != "" {
		q = q.Order(order)
	}

	rows := []map[string]any{}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	return rows, nil
}

// Insert adds row to table.
func (c *Client) Insert(ctx context.Context, table string, row Row) error {
	if err := c.db.WithContext(ctx).Table(table).Create(map[string]any(row)).Error; err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Update sets values on the rows of table matching filter and returns
// the number of rows changed.
func (c *Client) Update(ctx context.Context, table string, filter, values Row) (int64, error) {
	if len(filter) == 0 {
		return 0, ErrNoFilter
	}

	res := c.db.WithContext(ctx).Table(table).Where(map[string]any(filter)).Updates(map[string]any(values))
	if res.Error != nil {
		return 0, fmt.Errorf("update %s: %w", table, res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the rows of table matching filter and returns how many
// were removed.
func (c *Client) Delete(ctx context.Context, table string, filter Row) (int64, error) {
	if len(filter) == 0 {
		return 0, ErrNoFilter
	}

	res := c.db.WithContext(ctx).Table(table).Where(map[string]any(filter)).Delete(map[string]any{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, res.Error)
	}
	return res.RowsAffected, nil
}

// Transaction runs fn with a client bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (c *Client) Transaction(ctx context.Context, fn func(tx *Client) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Client{db: tx, logger: c.logger})
	})
}

// Close closes the database.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// ensureDir creates the parent directory of a database file.
func ensureDir(path string) error {
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		return nil
	}

	dir := filepath.Dir(strings.TrimPrefix(path, "file:"))
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// Errors returned by the table client.
var (
	// ErrNoPath is returned when ClientConfig.Path is empty.
	ErrNoPath = errors.New("database path is required")

	// ErrNoFilter is returned for an unfiltered update or delete.
	ErrNoFilter = errors.New("update and delete need a filter")
)
