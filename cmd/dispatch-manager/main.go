// cmd/dispatch-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"wms-dispatch/internal/api"
	"wms-dispatch/internal/common/aws"
	"wms-dispatch/internal/common/camunda"
	"wms-dispatch/internal/common/config"
	"wms-dispatch/internal/common/database"
	"wms-dispatch/internal/common/logger"
	"wms-dispatch/internal/common/observability"
	"wms-dispatch/internal/dispatchlog"
	"wms-dispatch/internal/models"
	"wms-dispatch/internal/parcels"
	"wms-dispatch/internal/session"
	"wms-dispatch/internal/sms"

	sbs "wms-dispatch/internal/workers/notification/send-bulk-sms"
	sps "wms-dispatch/internal/workers/notification/send-parcel-sms"
	ssu "wms-dispatch/internal/workers/notification/send-status-update"
	slo "wms-dispatch/internal/workers/session/session-logout"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting dispatch manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("smsProvider", cfg.SMS.Provider),
	)

	obs := observability.New("dispatch-manager", zapLog)
	defer obs.Shutdown()

	ctx := context.Background()
	checks := make(map[string]api.ReadinessCheck)

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	checks["postgres"] = pg.Ping
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	checks["redis"] = rdb.Ping
	zapLog.Info("Redis connected successfully")

	// --- Dispatch log ---
	var recorders dispatchlog.Multi
	if cfg.DispatchLog.PostgresEnabled {
		recorders = append(recorders, dispatchlog.NewPostgresRecorder(pg.DB))
	}
	if cfg.DispatchLog.ElasticsearchEnabled && cfg.Database.Elasticsearch.Enabled() {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, dispatch log will not be indexed", zap.Error(err))
		} else {
			recorders = append(recorders, dispatchlog.NewElasticsearchRecorder(esClient.Client, cfg.DispatchLog.Index))
			checks["elasticsearch"] = esClient.Ping
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- SMS gateway ---
	sender, configErrs := buildSender(ctx, cfg, zapLog)
	if len(configErrs) > 0 {
		zapLog.Warn("SMS gateway is not configured, sends will be refused", zap.Strings("errors", configErrs))
	}

	catalog, err := sms.LoadCatalog(cfg.SMS.TemplatesPath)
	if err != nil {
		zapLog.Fatal("failed to load message templates", zap.Error(err))
	}

	workflowOpts := []sms.WorkflowOption{sms.WithObserver(obs)}
	if len(recorders) > 0 {
		workflowOpts = append(workflowOpts, sms.WithRecorder(recorders))
	}
	workflow := sms.NewWorkflow(
		catalog,
		sms.NewDispatcher(sender, config.GetDuration(cfg.SMS.SendInterval), log),
		configErrs,
		log,
		workflowOpts...,
	)

	// --- Sessions ---
	sessions, err := session.NewManager(
		session.TimeoutConfig{
			Total:       config.GetDuration(cfg.Session.Timeout),
			WarningLead: config.GetDuration(cfg.Session.WarningTime),
		},
		session.NewRedisStore(rdb.Client, config.GetDuration(cfg.Session.Timeout)+time.Hour),
		log,
		session.WithLogoutHook(func(s models.Session, reason string) {
			zapLog.Info("session logged out",
				zap.String("sessionId", s.ID),
				zap.String("userId", s.UserID),
				zap.String("reason", reason),
			)
		}),
	)
	if err != nil {
		zapLog.Fatal("invalid session configuration", zap.Error(err))
	}

	repo := parcels.NewRepository(pg.DB, log)

	// --- Failure reports ---
	var reporter sps.FailureReporter
	if cfg.Integrations.AWS.SES.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Warn("failed to load AWS config, failure reports disabled", zap.Error(err))
		} else {
			reporter = aws.NewSESClient(awsCfg, cfg.Integrations.AWS.SES.FromEmail)
		}
	}

	// --- Zeebe job workers ---
	var (
		zeebe   *camunda.Client
		workers []*camunda.Worker
	)
	if cfg.Camunda.BrokerAddress != "" {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")
		checks["zeebe"] = zeebe.HealthCheck

		workers = startWorkers(zeebe.GetClient(), cfg, zapLog, log, workerDeps{
			parcels:  repo,
			workflow: workflow,
			sessions: sessions,
			reporter: reporter,
		})
		zapLog.Info("Job workers registered", zap.Int("count", len(workers)))
	} else {
		zapLog.Info("No Zeebe broker configured, job workers disabled")
	}

	// --- HTTP API ---
	srv := &http.Server{
		Addr: cfg.Server.Address,
		Handler: api.NewServer(api.Dependencies{
			Sessions: sessions,
			SMS:      workflow,
			Parcels:  repo,
			Checks:   checks,
			Logger:   log,
		}, api.Options{
			AllowedOrigins:  cfg.Server.CORSAllowedOrigins,
			DefaultTestMode: cfg.SMS.DefaultTestMode,
		}).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP API listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	for _, w := range workers {
		w.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Dispatch manager stopped gracefully")
}

// buildSender picks the SMS provider. Missing settings are returned as
// configuration errors instead of failing startup.
func buildSender(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (sms.Sender, []string) {
	if cfg.SMS.Provider == "sns" {
		if errs := sms.SNSConfigErrors(cfg.Integrations.AWS.Region); len(errs) > 0 {
			return sms.NewSNSGateway(nil), errs
		}
		awsCfg, err := aws.LoadConfig(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Warn("failed to load AWS config", zap.Error(err))
			return sms.NewSNSGateway(nil), []string{"AWS configuration could not be loaded"}
		}
		return sms.NewSNSGateway(aws.NewSNSClient(awsCfg, cfg.Integrations.AWS.SNS.DefaultSMSSenderID)), nil
	}

	gw := sms.GatewayConfig{
		ServerURL:  cfg.SMS.Gateway.ServerURL,
		UserID:     cfg.SMS.Gateway.UserID,
		Password:   cfg.SMS.Gateway.Password,
		SenderName: cfg.SMS.Gateway.SenderName,
	}
	return sms.NewHostPinnacleGateway(gw, config.GetDuration(cfg.SMS.RequestTimeout)), gw.Validate()
}

type workerDeps struct {
	parcels  *parcels.Repository
	workflow *sms.Workflow
	sessions *session.Manager
	reporter sps.FailureReporter
}

func startWorkers(client zbc.Client, cfg *config.Config, zapLog *zap.Logger, log logger.Logger, deps workerDeps) []*camunda.Worker {
	var workers []*camunda.Worker

	// Send Parcel SMS
	if taskType := sps.TaskType; cfg.Workers[taskType].Enabled {
		handler, err := sps.NewHandler(sps.HandlerOptions{
			AppConfig: cfg,
			Logger:    log,
			Parcels:   deps.parcels,
			Workflow:  deps.workflow,
			Reporter:  deps.reporter,
		})
		if err != nil {
			zapLog.Fatal("failed to create send-parcel-sms handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(client, taskType, cfg.Workers[taskType], handler, zapLog))
	}

	// Send Bulk SMS
	if taskType := sbs.TaskType; cfg.Workers[taskType].Enabled {
		handler, err := sbs.NewHandler(sbs.HandlerOptions{
			AppConfig: cfg,
			Logger:    log,
			Workflow:  deps.workflow,
		})
		if err != nil {
			zapLog.Fatal("failed to create send-bulk-sms handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(client, taskType, cfg.Workers[taskType], handler, zapLog))
	}

	// Send Status Update
	if taskType := ssu.TaskType; cfg.Workers[taskType].Enabled {
		handler, err := ssu.NewHandler(ssu.HandlerOptions{
			AppConfig: cfg,
			Logger:    log,
			Parcels:   deps.parcels,
			Workflow:  deps.workflow,
		})
		if err != nil {
			zapLog.Fatal("failed to create send-status-update handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(client, taskType, cfg.Workers[taskType], handler, zapLog))
	}

	// Session Logout
	if taskType := slo.TaskType; cfg.Workers[taskType].Enabled {
		handler, err := slo.NewHandler(slo.HandlerOptions{
			AppConfig: cfg,
			Logger:    log,
			Sessions:  deps.sessions,
		})
		if err != nil {
			zapLog.Fatal("failed to create session-logout handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(client, taskType, cfg.Workers[taskType], handler, zapLog))
	}

	return workers
}
