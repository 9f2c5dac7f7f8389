package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elsa-proficiency-test/internal/app"
	"elsa-proficiency-test/internal/config"
	"elsa-proficiency-test/internal/domain"
	"elsa-proficiency-test/internal/infra/memory"
	pgloader "elsa-proficiency-test/internal/infra/postgres"
	infraredis "elsa-proficiency-test/internal/infra/redis"
	"elsa-proficiency-test/internal/logging"
	transport "elsa-proficiency-test/internal/transport/http"
	"github.com/common-nighthawk/go-figure"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port, catalogPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the proficiency test server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, *catalogPath)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag, catalogPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logFile := logging.Setup(cfg)
	defer logFile.Close()

	startup, err := loadCatalog(cfg, catalogPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	served, err := servedCatalogs(startup)
	if err != nil {
		return err
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(served)
	if pool != nil {
		pg := pgloader.NewCatalogLoader(pool)
		// embedded and startup catalogs are always servable, even against an empty database
		for _, c := range served {
			if err := pg.SaveCatalog(ctx, c); err != nil {
				return err
			}
		}
		loader = pg
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogRepo app.CatalogRepository
	if redisClient != nil {
		redisCatalogs := infraredis.NewCatalogRepository(redisClient, loader, catalogTTL)
		for _, c := range served {
			dropped, err := redisCatalogs.Reconcile(ctx, c)
			if err != nil {
				log.Printf("reconcile cached catalog %s: %v", c.ID, err)
				continue
			}
			if dropped {
				log.Printf("cached catalog %s had stale section totals, dropped", c.ID)
			}
		}
		catalogRepo = redisCatalogs
	} else {
		catalogRepo = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}
	service := app.NewTestService(store, catalogRepo)
	wsHandler := transport.NewWSHandler(service)
	reportHandler := transport.NewReportHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/report", reportHandler.ServeReport)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	printStartupBanner(startup)

	go func() {
		log.Printf("serving catalog %q (%d sections, %d points) on :%s", startup.ID, len(startup.Sections), startup.MaxTotal(), finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func printStartupBanner(c domain.Catalog) {
	figure.NewFigure("PROFICIENCY", "", true).Print()
	fmt.Println("======================================================")
	fmt.Printf("%s\n\n", c.Title)
}
