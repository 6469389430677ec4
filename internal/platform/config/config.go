// Package config loads service configuration from WILLGATE_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	dErrors "willgate/pkg/domain-errors"
	"willgate/pkg/platform/strings"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Ledger backends.
const (
	LedgerMemory = "memory"
	LedgerHTTP   = "http"
)

// Server captures process-wide configuration.
type Server struct {
	Addr          string        `env:"ADDR" envDefault:":8080"`
	Environment   string        `env:"ENV" envDefault:"development"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"willgate"`
	JWTAudience   string        `env:"JWT_AUDIENCE" envDefault:"willgate-api"`
	AdminToken    string        `env:"ADMIN_TOKEN"`
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
	// RateLimit is requests per client IP per RateWindow; 0 disables it.
	RateLimit  int           `env:"RATE_LIMIT" envDefault:"300"`
	RateWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	Store    StoreConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	Kafka    KafkaConfig
	Workflow WorkflowConfig
	Ledger   LedgerConfig
}

type StoreConfig struct {
	Backend string `env:"STORE_BACKEND" envDefault:"memory"`
}

type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	KeyPrefix    string        `env:"REDIS_KEY_PREFIX" envDefault:"willgate"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type PostgresConfig struct {
	DSN             string        `env:"POSTGRES_DSN"`
	MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" envDefault:"willgate.db"`
}

type KafkaConfig struct {
	Brokers           string `env:"KAFKA_BROKERS"`
	AuditTopic        string `env:"KAFKA_AUDIT_TOPIC" envDefault:"willgate.audit"`
	Partitions        int32  `env:"KAFKA_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16  `env:"KAFKA_REPLICATION_FACTOR" envDefault:"1"`
}

// BrokerList splits the comma-separated broker setting.
func (k KafkaConfig) BrokerList() []string {
	return strings.SplitList(k.Brokers)
}

type WorkflowConfig struct {
	LivenessWindow        int           `env:"LIVENESS_WINDOW" envDefault:"30"`
	TickInterval          time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	CheckpointInterval    time.Duration `env:"CHECKPOINT_INTERVAL" envDefault:"5s"`
	DistributionTimeout   time.Duration `env:"DISTRIBUTION_TIMEOUT" envDefault:"30s"`
	DistributionSweep     time.Duration `env:"DISTRIBUTION_SWEEP_INTERVAL" envDefault:"15s"`
	AutoDistribute        bool          `env:"AUTO_DISTRIBUTE" envDefault:"false"`
	CertificateExtraPairs string        `env:"CERTIFICATE_TOKENS"`
}

// CertificateTokens parses "token=signal" pairs, e.g. "approved=1,denied=0".
func (w WorkflowConfig) CertificateTokens() map[string]string {
	return strings.SplitPairs(w.CertificateExtraPairs)
}

type LedgerConfig struct {
	Backend string        `env:"LEDGER_BACKEND" envDefault:"memory"`
	URL     string        `env:"LEDGER_URL"`
	Timeout time.Duration `env:"LEDGER_TIMEOUT" envDefault:"10s"`
	// Seed opens accounts on the in-process ledger: "account=owner,...".
	Seed        string `env:"LEDGER_SEED"`
	SeedBalance string `env:"LEDGER_SEED_BALANCE" envDefault:"0"`
	// SeedBeneficiaries is the default roster of every seeded account:
	// "address=percentage,...".
	SeedBeneficiaries string `env:"LEDGER_SEED_BENEFICIARIES"`
}

// SeedAccounts parses the account=owner pairs for the in-process ledger.
func (l LedgerConfig) SeedAccounts() map[string]string {
	return strings.SplitPairs(l.Seed)
}

// SeedRoster returns the address=percentage entries in the order given.
func (l LedgerConfig) SeedRoster() []string {
	return strings.SplitList(l.SeedBeneficiaries)
}

// Load parses the environment and validates cross-field requirements.
func Load() (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "WILLGATE_"}); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) Validate() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			return dErrors.New(dErrors.CodeValidation, "WILLGATE_REDIS_URL is required for the redis store")
		}
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return dErrors.New(dErrors.CodeValidation, "WILLGATE_POSTGRES_DSN is required for the postgres store")
		}
	case StoreSQLite:
		if c.SQLite.Path == "" {
			return dErrors.New(dErrors.CodeValidation, "WILLGATE_SQLITE_PATH is required for the sqlite store")
		}
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unknown store backend %q", c.Store.Backend)
	}

	switch c.Ledger.Backend {
	case LedgerMemory:
	case LedgerHTTP:
		if c.Ledger.URL == "" {
			return dErrors.New(dErrors.CodeValidation, "WILLGATE_LEDGER_URL is required for the http ledger")
		}
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unknown ledger backend %q", c.Ledger.Backend)
	}

	if c.Workflow.LivenessWindow <= 0 {
		return dErrors.New(dErrors.CodeValidation, "WILLGATE_LIVENESS_WINDOW must be positive")
	}
	if c.Workflow.TickInterval <= 0 {
		return dErrors.New(dErrors.CodeValidation, "WILLGATE_TICK_INTERVAL must be positive")
	}
	if c.Environment == "production" && c.JWTSigningKey == "dev-secret-key-change-in-production" {
		return dErrors.New(dErrors.CodeValidation, "WILLGATE_JWT_SIGNING_KEY must be set in production")
	}
	return nil
}
