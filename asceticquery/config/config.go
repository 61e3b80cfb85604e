package config

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"

	query "github.com/krew-solutions/ascetic-query-go/asceticquery/query/domain"
)

type Database struct {
	Driver string `env:"DRIVER,default=sqlite"`
	DSN    string `env:"DSN,default=:memory:"`
}

type Paging struct {
	DefaultSize int `env:"DEFAULT_PAGE_SIZE,default=20"`
	MaxSize     int `env:"MAX_PAGE_SIZE,default=1000"`
}

// Config is read from QUERY_* environment variables.
type Config struct {
	Database   Database `env:",prefix=DB_"`
	Paging     Paging
	ListenAddr string `env:"LISTEN_ADDR,default=:8080"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`
	Profile    string `env:"PROFILE"`
}

// Limits are the page limits applied to entities whose profile sets none.
func (c Config) Limits() query.PageLimits {
	return query.PageLimits{DefaultSize: c.Paging.DefaultSize, MaxSize: c.Paging.MaxSize}
}

func (c Config) Validate() error {
	if c.Paging.DefaultSize < 1 || c.Paging.MaxSize < 1 {
		return errors.New("page sizes must be positive")
	}
	if c.Paging.DefaultSize > c.Paging.MaxSize {
		return errors.Errorf("default page size %d exceeds max page size %d", c.Paging.DefaultSize, c.Paging.MaxSize)
	}
	return nil
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &cfg, envconfig.PrefixLookuper("QUERY_", lookuper)); err != nil {
		return nil, errors.Wrap(err, "unable to read configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}
