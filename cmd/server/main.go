package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dcs-solutions/zabbix-chat/internal/cache"
	"github.com/dcs-solutions/zabbix-chat/internal/chat"
	"github.com/dcs-solutions/zabbix-chat/internal/config"
	"github.com/dcs-solutions/zabbix-chat/internal/llm"
	"github.com/dcs-solutions/zabbix-chat/internal/logging"
	"github.com/dcs-solutions/zabbix-chat/internal/server"
	"github.com/dcs-solutions/zabbix-chat/internal/zabbix"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "zabbix-chat: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx := context.Background()

	mgr := config.NewManager(configPath)
	if err := mgr.Load(ctx); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := mgr.Validate(ctx); err != nil {
		return err
	}
	cfg := mgr.Get(ctx)

	logger, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Sync()

	if configPath != "" {
		// File edits are picked up for observability settings; a restart is
		// still needed for connection-level changes.
		go func() {
			for range mgr.Watch(ctx) {
				logger.Info("configuration file reloaded")
			}
		}()
	}

	repo, err := zabbix.NewRepository(zabbix.Config{
		DSN:             cfg.DSN(),
		PoolSize:        cfg.Database.PoolSize,
		MaxIdle:         cfg.Database.MaxIdle,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("open zabbix database: %w", err)
	}
	defer repo.Close()

	completer, err := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxOutputTokens,
		time.Duration(cfg.LLM.Timeout)*time.Second)
	if err != nil {
		return fmt.Errorf("init completion client: %w", err)
	}

	orch := chat.New(repo, completer, cache.New(), chat.Config{
		TTLHosts:    time.Duration(cfg.Cache.TTLHosts) * time.Second,
		TTLProblems: time.Duration(cfg.Cache.TTLProblems) * time.Second,
	}, logger)

	srv := server.New(cfg, orch, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
