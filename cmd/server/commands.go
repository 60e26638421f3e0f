package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/config"
	"github.com/oarthurdev/vortex-gestao/internal/database"
	"github.com/oarthurdev/vortex-gestao/internal/logger"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/realtime"
	"github.com/oarthurdev/vortex-gestao/internal/server"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const serviceName = "vortex-gestao"

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			return database.Migrate(db, log)
		},
	}
}

func seedCmd() *cobra.Command {
	var (
		companyName string
		document    string
		username    string
		password    string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo company and its admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			if err := database.Migrate(db, log); err != nil {
				return err
			}
			store := storage.NewDBStorage(db)
			return seed(cmd.Context(), store, log, companyName, document, username, password)
		},
	}
	cmd.Flags().StringVar(&companyName, "company", "Vortex Imóveis Demo", "company name")
	cmd.Flags().StringVar(&document, "document", "00.000.000/0001-00", "company CNPJ")
	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&password, "password", "admin123", "admin password")
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}
	return cfg, log, nil
}

// seed is idempotent: an existing admin username leaves everything as is.
func seed(ctx context.Context, store storage.Storage, log *zap.Logger, companyName, document, username, password string) error {
	if _, err := store.GetUserByUsername(ctx, username); err == nil {
		log.Info("seed skipped, user already exists", zap.String("username", username))
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return store.Transact(ctx, func(tx storage.Storage) error {
		company := &models.Company{Name: companyName, Document: document, Email: "contato@vortex.example"}
		if err := tx.CreateCompany(ctx, company); err != nil {
			return fmt.Errorf("seed company: %w", err)
		}
		user := &models.User{
			CompanyID:    company.ID,
			Username:     username,
			PasswordHash: hash,
			Email:        "admin@vortex.example",
			Name:         "Administrador",
			Role:         models.RoleAdmin,
			IsActive:     true,
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		log.Info("seed complete", zap.String("company_id", company.ID), zap.String("username", username))
		return nil
	})
}

func openStorage(cfg *config.Config, log *zap.Logger) (storage.Storage, error) {
	if cfg.StorageDriver == config.DriverMemory {
		return storage.NewMemStorage(), nil
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}
	return storage.NewDBStorage(db), nil
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := openStorage(cfg, log)
	if err != nil {
		return err
	}

	hub := realtime.NewHub(log)
	deps := server.Deps{Config: cfg, Store: store, Hub: hub, Log: log}

	if cfg.RedisURL != "" {
		relay, err := realtime.NewRedisRelay(cfg.RedisURL, cfg.RedisChannel, hub, log)
		if err != nil {
			return err
		}
		defer relay.Close()
		go func() {
			if err := relay.Run(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("redis relay stopped", zap.Error(err))
			}
		}()
		deps.Bus = relay
	}

	app := server.New(deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.HTTPPort), zap.String("storage", cfg.StorageDriver))
		errCh <- app.Listen(":" + cfg.HTTPPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
