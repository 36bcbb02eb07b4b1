package conf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
)

// 缓存后端类型
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// 默认值
const (
	DefaultHTTPAddr     = "0.0.0.0:8000"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultGdeltBase    = "https://api.gdeltproject.org/api/v2/doc/doc"
	DefaultGdeltTimeout = 10 * time.Second
	DefaultMaxRecords   = 75
	DefaultCacheTimeout = 300 * time.Second
)

type Bootstrap struct {
	Server  *Server  `json:"server"`
	Gdelt   *Gdelt   `json:"gdelt"`
	Cache   *Cache   `json:"cache"`
	Scoring *Scoring `json:"scoring"`
	Log     *Log     `json:"log"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
	// RateLimit 每秒允许的扫描请求数，0 表示不限流
	RateLimit float64 `json:"rate_limit"`
	Burst     int     `json:"burst"`
}

type Gdelt struct {
	BaseUrl      string `json:"base_url"`
	Timeout      string `json:"timeout"`
	MaxRecords   int    `json:"max_records"`
	AugmentQuery bool   `json:"augment_query"`
}

type Cache struct {
	Type           string    `json:"type"`
	DefaultTimeout string    `json:"default_timeout"`
	Redis          *Redis    `json:"redis"`
	Postgres       *Postgres `json:"postgres"`
}

type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	Db       int    `json:"db"`
}

type Postgres struct {
	Source string `json:"source"`
}

type Scoring struct {
	// TablesFile 评分表覆盖文件，为空使用内置表
	TablesFile string `json:"tables_file"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Load 从配置文件加载配置，文件中的 ${ENV:default} 占位符由环境变量解析
func Load(path string) (*Bootstrap, error) {
	c := config.New(
		config.WithSource(
			env.NewSource(),
			file.NewSource(path),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	var bc Bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, fmt.Errorf("scanning config %s: %w", path, err)
	}
	bc.ApplyDefaults()
	if err := bc.Validate(); err != nil {
		return nil, err
	}
	return &bc, nil
}

// ApplyDefaults 补全缺省配置
func (bc *Bootstrap) ApplyDefaults() {
	if bc.Server == nil {
		bc.Server = &Server{}
	}
	if bc.Server.Http == nil {
		bc.Server.Http = &HTTP{}
	}
	if bc.Server.Http.Addr == "" {
		bc.Server.Http.Addr = DefaultHTTPAddr
	}
	if bc.Gdelt == nil {
		bc.Gdelt = &Gdelt{}
	}
	if bc.Gdelt.BaseUrl == "" {
		bc.Gdelt.BaseUrl = DefaultGdeltBase
	}
	if bc.Gdelt.MaxRecords <= 0 {
		bc.Gdelt.MaxRecords = DefaultMaxRecords
	}
	if bc.Cache == nil {
		bc.Cache = &Cache{}
	}
	if bc.Cache.Type == "" {
		bc.Cache.Type = CacheMemory
	}
	if bc.Cache.Redis == nil {
		bc.Cache.Redis = &Redis{}
	}
	if bc.Cache.Postgres == nil {
		bc.Cache.Postgres = &Postgres{}
	}
	if bc.Scoring == nil {
		bc.Scoring = &Scoring{}
	}
	if bc.Log == nil {
		bc.Log = &Log{}
	}
	if bc.Log.Level == "" {
		bc.Log.Level = "info"
	}
}

// Validate 校验配置
func (bc *Bootstrap) Validate() error {
	if _, err := ParseDuration(bc.Server.Http.Timeout, DefaultHTTPTimeout); err != nil {
		return fmt.Errorf("server.http.timeout: %w", err)
	}
	if bc.Server.Http.RateLimit < 0 {
		return fmt.Errorf("server.http.rate_limit must not be negative")
	}
	if _, err := ParseDuration(bc.Gdelt.Timeout, DefaultGdeltTimeout); err != nil {
		return fmt.Errorf("gdelt.timeout: %w", err)
	}
	if _, err := ParseDuration(bc.Cache.DefaultTimeout, DefaultCacheTimeout); err != nil {
		return fmt.Errorf("cache.default_timeout: %w", err)
	}

	switch bc.Cache.Backend() {
	case CacheMemory:
	case CacheRedis:
		if bc.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for redis cache")
		}
	case CachePostgres:
		if bc.Cache.Postgres.Source == "" {
			return fmt.Errorf("cache.postgres.source is required for postgres cache")
		}
	default:
		return fmt.Errorf("unknown cache type %q (valid: memory, redis, postgres)", bc.Cache.Type)
	}
	return nil
}

// Backend 归一化缓存类型，兼容 SimpleCache / RedisCache 写法
func (c *Cache) Backend() string {
	switch strings.ToLower(strings.TrimSpace(c.Type)) {
	case "memory", "simple", "simplecache":
		return CacheMemory
	case "redis", "rediscache":
		return CacheRedis
	case "postgres", "postgresql":
		return CachePostgres
	default:
		return c.Type
	}
}

// TTL 缓存默认过期时间
func (c *Cache) TTL() time.Duration {
	d, _ := ParseDuration(c.DefaultTimeout, DefaultCacheTimeout)
	return d
}

// TimeoutDuration 上游请求超时
func (g *Gdelt) TimeoutDuration() time.Duration {
	d, _ := ParseDuration(g.Timeout, DefaultGdeltTimeout)
	return d
}

// TimeoutDuration HTTP 服务端超时
func (h *HTTP) TimeoutDuration() time.Duration {
	d, _ := ParseDuration(h.Timeout, DefaultHTTPTimeout)
	return d
}

// ParseDuration 解析时长，支持 "10s" 形式和纯秒数 "10"；空串返回默认值
func ParseDuration(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		if secs <= 0 {
			return def, fmt.Errorf("duration must be positive, got %q", s)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return def, fmt.Errorf("duration must be positive, got %q", s)
	}
	return d, nil
}
