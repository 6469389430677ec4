package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"

	"willgate/internal/allocation"
	"willgate/internal/certificate"
	httpapi "willgate/internal/http"
	"willgate/internal/ledger/httpclient"
	ledgermem "willgate/internal/ledger/memory"
	"willgate/internal/platform/config"
	"willgate/internal/platform/kafka"
	"willgate/internal/platform/postgres"
	"willgate/internal/platform/redis"
	"willgate/internal/platform/sqlite"
	"willgate/internal/workflow/ports"
	"willgate/internal/workflow/service"
	storemem "willgate/internal/workflow/store/memory"
	storepg "willgate/internal/workflow/store/postgres"
	storeredis "willgate/internal/workflow/store/redis"
	storesqlite "willgate/internal/workflow/store/sqlite"
	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
	"willgate/pkg/platform/audit/publisher"
	auditkafka "willgate/pkg/platform/audit/store/kafka"
	auditmem "willgate/pkg/platform/audit/store/memory"
	auditpg "willgate/pkg/platform/audit/store/postgres"
)

// dependencies are the backends selected by configuration.
type dependencies struct {
	ledger  ports.Ledger
	decoder certificate.Decoder
	store   service.Store
	audit   *publisher.Publisher
	health  map[string]httpapi.HealthCheck
	closers []func() error
}

func (d *dependencies) onClose(fn func() error) {
	d.closers = append(d.closers, fn)
}

// close runs closers in reverse order of registration.
func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

func buildDependencies(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *dependencies, err error) {
	deps := &dependencies{health: make(map[string]httpapi.HealthCheck)}
	defer func() {
		if err != nil {
			deps.close()
		}
	}()

	decoder, err := certificate.NewStaticDecoder(cfg.Workflow.CertificateTokens())
	if err != nil {
		return nil, err
	}
	deps.decoder = decoder

	if deps.ledger, err = buildLedger(ctx, cfg.Ledger, log); err != nil {
		return nil, err
	}

	auditStore, err := buildStore(ctx, cfg, log, deps)
	if err != nil {
		return nil, err
	}

	pubOpts := []publisher.Option{publisher.WithLogger(log)}
	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if producer != nil {
		deps.onClose(func() error { producer.Close(); return nil })
		if err := kafka.EnsureTopic(ctx, producer, cfg.Kafka, log); err != nil {
			return nil, err
		}
		pubOpts = append(pubOpts, publisher.WithSink(
			auditkafka.New(producer, cfg.Kafka.AuditTopic, auditkafka.WithLogger(log)),
		))
		deps.health["kafka"] = producer.Ping
	}
	deps.audit = publisher.NewPublisher(auditStore, pubOpts...)
	deps.onClose(func() error { deps.audit.Close(); return nil })

	return deps, nil
}

// buildStore selects the snapshot store and returns the matching audit store:
// Postgres keeps audit events next to snapshots, other backends keep them in memory.
func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger, deps *dependencies) (audit.Store, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		deps.onClose(db.Close)
		if err := postgres.Migrate(ctx, db); err != nil {
			return nil, err
		}
		deps.store = storepg.New(db)
		deps.health["postgres"] = db.PingContext
		return auditpg.New(db), nil

	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		deps.onClose(client.Close)
		deps.store = storeredis.New(client.Client, cfg.Redis.KeyPrefix)
		deps.health["redis"] = client.Health

	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		deps.onClose(db.Close)
		deps.store = storesqlite.New(db.DB)
		deps.health["sqlite"] = db.PingContext

	default:
		deps.store = storemem.NewInMemoryStore()
	}
	log.InfoContext(ctx, "snapshot store ready", "backend", cfg.Store.Backend)
	return auditmem.NewInMemoryStore(), nil
}

func buildLedger(ctx context.Context, cfg config.LedgerConfig, log *slog.Logger) (ports.Ledger, error) {
	if cfg.Backend == config.LedgerHTTP {
		client, err := httpclient.New(cfg.URL,
			httpclient.WithTimeout(cfg.Timeout),
			httpclient.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	ledger := ledgermem.New()
	balance, ok := new(big.Int).SetString(cfg.SeedBalance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid ledger seed balance %q", cfg.SeedBalance)
	}
	roster, err := seedRoster(cfg.SeedRoster())
	if err != nil {
		return nil, err
	}
	for rawAccount, rawOwner := range cfg.SeedAccounts() {
		acct, err := domain.ParseAddress(rawAccount)
		if err != nil {
			return nil, fmt.Errorf("ledger seed account: %w", err)
		}
		owner, err := domain.ParseAddress(rawOwner)
		if err != nil {
			return nil, fmt.Errorf("ledger seed owner: %w", err)
		}
		ledger.Open(acct, owner)
		if balance.Sign() > 0 {
			if err := ledger.Deposit(acct, balance); err != nil {
				return nil, fmt.Errorf("seed %s: %w", acct, err)
			}
		}
		if len(roster) > 0 {
			if err := ledger.SyncBeneficiaries(ctx, acct, roster); err != nil {
				return nil, fmt.Errorf("seed %s beneficiaries: %w", acct, err)
			}
		}
		log.Info("ledger account seeded",
			"account", acct.String(),
			"owner", owner.String(),
			"beneficiaries", len(roster),
		)
	}
	return ledger, nil
}

// seedRoster builds the default roster through the registry, so a seeded
// roster obeys the same rules as one entered over the API.
func seedRoster(entries []string) ([]allocation.Beneficiary, error) {
	reg := allocation.NewRegistry()
	for _, entry := range entries {
		rawAddr, rawPct, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("ledger seed beneficiary %q: want address=percentage", entry)
		}
		pct, err := strconv.Atoi(strings.TrimSpace(rawPct))
		if err != nil {
			return nil, fmt.Errorf("ledger seed beneficiary %q: %w", entry, err)
		}
		if _, err := reg.Add(strings.TrimSpace(rawAddr), "", pct); err != nil {
			return nil, fmt.Errorf("ledger seed beneficiary %q: %w", entry, err)
		}
	}
	return reg.List().Beneficiaries, nil
}
