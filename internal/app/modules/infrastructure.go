package modules

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nats-io/nats.go"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/config"
	"soundstake.io/soundstake/internal/domain"
	"soundstake.io/soundstake/internal/governance/audit"
	"soundstake.io/soundstake/internal/infrastructure"
	"soundstake.io/soundstake/internal/jobs"
	"soundstake.io/soundstake/internal/notification"
	"soundstake.io/soundstake/internal/pkg/logger"
	"soundstake.io/soundstake/internal/pkg/worker"
	"soundstake.io/soundstake/internal/provider"
	"soundstake.io/soundstake/internal/repository"
	"soundstake.io/soundstake/internal/repository/postgres"
	"soundstake.io/soundstake/internal/service"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config      *config.Config
	DB          *infrastructure.DatabaseClients
	Pools       *worker.Pools
	Store       repository.Store
	RiverClient *river.Client[pgx.Tx]
	AuditLogger *audit.Logger

	Payments    provider.PaymentGateway
	Streaming   provider.StreamingDataProvider
	Verifier    provider.MetadataVerifier
	Entitlement provider.SubscriptionEntitlement
	Files       provider.FileStore
	HealthCheck *provider.HealthChecker

	RateTables *service.RateTables
	Events     *domain.EventDispatcher
	Notifier   *notification.Triggers
	// Enqueuer inserts through RiverClient once InitRiver has run.
	Enqueuer *jobs.Enqueuer

	nats *nats.Conn
}

// NewInfrastructure initializes DB, pools, external providers and shared services.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	tables, err := service.LoadRateTables(cfg.ROI.TablesFile)
	if err != nil {
		return nil, fmt.Errorf("load rate tables: %w", err)
	}

	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	// Dev-mode: apply the schema and River queue tables on boot.
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		LookupPoolSize:  cfg.Worker.LookupPoolSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	store := postgres.NewStore(db.Pool)
	infra := &Infrastructure{
		Config:      cfg,
		DB:          db,
		Pools:       pools,
		Store:       store,
		AuditLogger: audit.NewLogger(store),
		Entitlement: provider.NewStaticEntitlement(cfg.Campaigns.EntitledArtists),
		RateTables:  tables,
		Events:      domain.NewEventDispatcher(),
		Notifier:    notification.NewTriggers(notification.NewInboxSender(store)),
	}
	infra.Enqueuer = jobs.NewEnqueuerFunc(infra.insertJob)
	infra.wireProviders(ctx)

	if cfg.Events.NATSURL != "" {
		nc, err := notification.ConnectNATS(cfg.Events.NATSURL)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("init event bus: %w", err)
		}
		infra.nats = nc
		infra.Events.RegisterAll(notification.NewEventForwarder(nc, cfg.Events.SubjectPrefix).Handle)
		logger.Info("Domain events publishing to NATS", zap.String("url", nc.ConnectedUrl()))
	}

	return infra, nil
}

// wireProviders picks the payment and streaming drivers. Remote drivers are
// also registered with the health checker.
func (i *Infrastructure) wireProviders(ctx context.Context) {
	cfg := i.Config
	var targets []provider.Pinger

	switch cfg.Payments.Driver {
	case "http":
		gw := provider.NewHTTPPaymentGateway(cfg.Payments.BaseURL, cfg.Payments.APIKey, cfg.Payments.TransferTimeout)
		i.Payments = gw
		targets = append(targets, gw)
	default:
		i.Payments = provider.NewMockPaymentGateway()
		// Uploads only have somewhere to go in development.
		i.Files = provider.NewMemoryFileStore()
	}

	switch cfg.Streaming.Driver {
	case "http":
		sp := provider.NewHTTPStreamingProvider(ctx, provider.StreamingConfig{
			BaseURL:      cfg.Streaming.BaseURL,
			TokenURL:     cfg.Streaming.TokenURL,
			ClientID:     cfg.Streaming.ClientID,
			ClientSecret: cfg.Streaming.ClientSecret,
			Timeout:      cfg.Streaming.LookupTimeout,
		})
		i.Streaming = sp
		i.Verifier = sp
		targets = append(targets, sp)
	default:
		i.Streaming = provider.NewMockStreamingProvider()
		i.Verifier = provider.NewMockMetadataVerifier()
	}

	i.HealthCheck = provider.NewHealthChecker(defaultHealthInterval, cfg.Streaming.LookupTimeout, targets...)
	logger.Info("External providers configured",
		zap.String("payments", cfg.Payments.Driver),
		zap.String("streaming", cfg.Streaming.Driver),
		zap.Int("health_targets", len(targets)),
	)
}

func (i *Infrastructure) insertJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) error {
	if i.RiverClient == nil {
		return fmt.Errorf("river client is not initialized")
	}
	_, err := i.RiverClient.Insert(ctx, args, opts)
	return err
}

// InitRiver initializes River client on top of a prepared worker registry.
func (i *Infrastructure) InitRiver(workers *river.Workers, periodic []*river.PeriodicJob) error {
	if i == nil || i.DB == nil || i.Config == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}
	if err := i.DB.InitRiverClient(workers, periodic, i.Config.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	i.RiverClient = i.DB.RiverClient
	return nil
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.nats != nil {
		if err := i.nats.Drain(); err != nil {
			logger.Warn("NATS drain failed", zap.Error(err))
		}
		i.nats = nil
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
