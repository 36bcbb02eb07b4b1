package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/biz"
	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/conf"
)

var _ biz.ResultCache = (*PostgresCache)(nil)

// PostgresCache 把扫描结果存在 UNLOGGED 表里，过期靠 expires_at 判断
type PostgresCache struct {
	db *sql.DB
}

// NewPostgresCache 连接数据库并初始化缓存表
func NewPostgresCache(c *conf.Postgres) (*PostgresCache, error) {
	db, err := sql.Open("postgres", c.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pc := newPostgresCache(db)
	if err := pc.init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return pc, nil
}

func newPostgresCache(db *sql.DB) *PostgresCache {
	return &PostgresCache{db: db}
}

func (p *PostgresCache) init(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `
		CREATE UNLOGGED TABLE IF NOT EXISTS scan_cache (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to init scan_cache table: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, `DELETE FROM scan_cache WHERE expires_at <= NOW()`); err != nil {
		return fmt.Errorf("failed to purge expired cache entries: %w", err)
	}
	return nil
}

func (p *PostgresCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM scan_cache WHERE key = $1 AND expires_at > NOW()`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO scan_cache (key, value, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`, key, value, time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresCache) Close() error {
	return p.db.Close()
}
