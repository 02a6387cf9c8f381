// Command sqlchat runs the HTTP service: natural-language querying, raw
// SQL execution, connection management and dataset imports over the
// configured databases.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sqlchat/internal/config"
	"sqlchat/internal/conn"
	"sqlchat/internal/dataset"
	"sqlchat/internal/filestore"
	"sqlchat/internal/filestore/minio"
	"sqlchat/internal/logger"
	"sqlchat/internal/oracle"
	"sqlchat/internal/query"
	"sqlchat/internal/schema"
	"sqlchat/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New(nil).Errorf("failed to load config: %v", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	logger.SetGlobal(log)

	if err := run(cfg, log); err != nil {
		log.Errorf("server exited: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := conn.NewStore(cfg.Store.Path, cfg.Store.Secret, log)
	reg := conn.NewRegistry(store, log)
	defer reg.Close()

	// The default connection is best-effort at startup: a broken default
	// database should not keep the management API from coming up.
	if err := reg.Connect(ctx, conn.DefaultName); err != nil {
		log.With().Err(err).Logger().Warn("default database is unavailable at startup")
	}

	var objStore filestore.Store
	if cfg.Filestore.Enabled() {
		fsCfg := &filestore.Config{
			Provider:  filestore.ProviderMinIO,
			Endpoint:  cfg.Filestore.Endpoint,
			AccessKey: cfg.Filestore.AccessKey,
			SecretKey: cfg.Filestore.SecretKey,
			UseSSL:    cfg.Filestore.UseSSL,
			Region:    cfg.Filestore.Region,
			Bucket:    cfg.Filestore.Bucket,
		}
		s, err := minio.New(ctx, fsCfg)
		if err != nil {
			log.With().Err(err).Logger().Warn("dataset file storage is unavailable")
		} else {
			objStore = s
			defer s.Close()
		}
	}

	var gen oracle.Oracle = oracle.Disabled{}
	if cfg.Oracle.APIKey != "" {
		gen = oracle.NewOpenAI(oracle.Config{
			APIKey:  cfg.Oracle.APIKey,
			Model:   cfg.Oracle.Model,
			BaseURL: cfg.Oracle.BaseURL,
			Timeout: cfg.Oracle.Timeout,
		}, log)
	} else {
		log.Warn("no oracle API key configured; natural-language querying is disabled")
	}

	srv := server.New(server.Deps{
		Registry:     reg,
		Introspector: schema.New(reg, log),
		Executor:     query.New(reg, cfg.Query.Timeout, log),
		Importer:     dataset.NewImporter(reg, log),
		Oracle:       gen,
		Store:        objStore,
		Bucket:       cfg.Filestore.Bucket,
		Query:        cfg.Query,
		Log:          log,
	})

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.With().Str("addr", cfg.Server.Addr).Logger().Info("http server listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
