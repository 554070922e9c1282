// cmd/intake-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	commonaws "founder-intake/internal/common/aws"
	"founder-intake/internal/common/config"
	"founder-intake/internal/common/database"
	"founder-intake/internal/common/logger"
	"founder-intake/internal/dashboard"
	"founder-intake/internal/generation"
	"founder-intake/internal/models"
	"founder-intake/internal/notify"
	"founder-intake/internal/search"
	"founder-intake/internal/server"
	"founder-intake/internal/snapshot"
	"founder-intake/internal/store"
	"founder-intake/internal/wizard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger)

	log.Info("starting intake server", map[string]interface{}{
		"environment": cfg.App.Environment,
		"port":        cfg.HTTP.Port,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pg *database.PostgresClient
	err = retryWithBackoff(ctx, 5, 2*time.Second, func() error {
		var connErr error
		pg, connErr = database.NewPostgresClient(ctx, cfg.Database.Postgres)
		return connErr
	})
	if err != nil {
		zapLogger.Fatal("postgres unavailable", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := database.NewRedisClient(ctx, cfg.Database.Redis)
	if err != nil {
		zapLogger.Fatal("redis unavailable", zap.Error(err))
	}
	defer redisClient.Close()

	docStore := store.NewPostgresStore(pg.DB, log)
	if err := docStore.EnsureSchema(ctx); err != nil {
		zapLogger.Fatal("schema setup failed", zap.Error(err))
	}

	cache := snapshot.NewCache(redisClient, log)
	gateway := generation.NewGateway(cfg.APIs.OpenAI, log)

	var searchIndex *search.Index
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		esClient, esErr := database.NewElasticsearchClient(cfg.Database.Elasticsearch)
		if esErr != nil {
			log.Warn("elasticsearch unavailable, search disabled", map[string]interface{}{"error": esErr.Error()})
		} else {
			searchIndex = search.NewIndex(esClient, cfg.Database.Elasticsearch.Index, log)
		}
	}

	notifier := buildNotifier(ctx, cfg, log)

	hook := func(documentID string, draft models.FormDraft) {
		hookCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if notifier != nil {
			notifier.SubmissionReceived(hookCtx, documentID, draft)
		}
		if searchIndex != nil {
			if err := searchIndex.IndexSubmission(hookCtx, models.Submission{ID: documentID, Draft: draft}); err != nil {
				log.Warn("submission indexing failed", map[string]interface{}{
					"documentId": documentID,
					"error":      err.Error(),
				})
			}
		}
	}

	readModel := dashboard.NewReadModel(docStore, log)
	if err := readModel.Start(ctx); err != nil {
		zapLogger.Fatal("dashboard subscription failed", zap.Error(err))
	}
	defer readModel.Stop()

	registry := server.NewSessionRegistry(docStore, cache, wizard.SubmitHook(hook), log)
	srv := server.NewServer(registry, gateway, readModel, searchIndex, cfg.Dashboard.Password, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      srv.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("intake server stopped", nil)
}

func buildNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) *notify.Notifier {
	awsCfg := cfg.Integrations.AWS
	if !awsCfg.Enabled {
		return nil
	}

	var email notify.EmailSender
	var topic notify.TopicPublisher

	if sesClient, err := commonaws.NewSESClient(ctx, awsCfg.Region); err != nil {
		log.Warn("ses client unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		email = sesClient
	}
	if snsClient, err := commonaws.NewSNSClient(ctx, awsCfg.Region); err != nil {
		log.Warn("sns client unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		topic = snsClient
	}
	if email == nil && topic == nil {
		return nil
	}
	return notify.NewNotifier(email, topic, awsCfg.SESSender, awsCfg.AdminEmail, awsCfg.SNSTopicARN, log)
}

// retryWithBackoff retries fn with exponential backoff until attempts are
// exhausted or ctx is cancelled.
func retryWithBackoff(ctx context.Context, attempts int, initial time.Duration, fn func() error) error {
	delay := initial
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
