package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/artscan/internal/application"
	appcatalog "github.com/bryanwahyu/artscan/internal/application/catalog"
	appissues "github.com/bryanwahyu/artscan/internal/application/issues"
	appmuseums "github.com/bryanwahyu/artscan/internal/application/museums"
	appscans "github.com/bryanwahyu/artscan/internal/application/scans"
	"github.com/bryanwahyu/artscan/internal/config"
	"github.com/bryanwahyu/artscan/internal/domain/artworks"
	domissues "github.com/bryanwahyu/artscan/internal/domain/issues"
	dommuseums "github.com/bryanwahyu/artscan/internal/domain/museums"
	domscans "github.com/bryanwahyu/artscan/internal/domain/scans"
	mysqlp "github.com/bryanwahyu/artscan/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/artscan/internal/infra/db/postgres"
	"github.com/bryanwahyu/artscan/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/artscan/internal/infra/storage"
	"github.com/bryanwahyu/artscan/internal/infra/vision/clip"
	openaiVision "github.com/bryanwahyu/artscan/internal/infra/vision/openai"
	"github.com/bryanwahyu/artscan/internal/middleware"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "artscan-api").Logger()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	ctx := context.Background()

	// connect database, postgres default, mysql sebagai alternatif
	var (
		artworkRepo artworks.Repository
		museumRepo  dommuseums.Repository
		scanRepo    domscans.Repository
		issueRepo   domissues.Repository
		locker      artworks.Locker
		dbChecker   middleware.HealthChecker
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("mysql connect error")
		}
		defer db.Close()
		artworkRepo = mysqlp.NewArtworkRepository(db)
		museumRepo = mysqlp.NewMuseumRepository(db)
		scanRepo = mysqlp.NewScanRepository(db)
		issueRepo = mysqlp.NewIssueRepository(db)
		locker = mysqlp.NewNamedLocker(db)
		dbChecker = &middleware.DatabaseHealthChecker{DB: db}
	default:
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect error")
		}
		defer db.Close()
		artworkRepo = pgp.NewArtworkRepository(db)
		museumRepo = pgp.NewMuseumRepository(db)
		scanRepo = pgp.NewScanRepository(db)
		issueRepo = pgp.NewIssueRepository(db)
		locker = pgp.NewAdvisoryLocker(db)
		dbChecker = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("minio init error")
	}

	// init vision clients
	embedder := clip.New(cfg.Embedding.Endpoint, cfg.Embedding.Dimension,
		time.Duration(cfg.Embedding.TimeoutMS)*time.Millisecond)
	analyzer := openaiVision.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	clock := application.SystemClock{}

	coordinator := &appcatalog.Coordinator{
		Repo:      artworkRepo,
		Locker:    locker,
		Clock:     clock,
		Threshold: cfg.Matching.Threshold,
		TopK:      cfg.Matching.TopK,
		Dimension: cfg.Embedding.Dimension,
		Log:       log,
	}

	scansSvc := &appscans.Service{
		Artworks:  artworkRepo,
		Museums:   museumRepo,
		Ledger:    scanRepo,
		Embedder:  embedder,
		Analyzer:  analyzer,
		Catalog:   coordinator,
		Images:    store,
		Clock:     clock,
		Threshold: cfg.Matching.Threshold,
		TopK:      cfg.Matching.TopK,
		Log:       log,
	}
	issuesSvc := &appissues.Service{
		Reports:  issueRepo,
		Artworks: artworkRepo,
		Clock:    clock,
		Log:      log,
	}
	museumsSvc := &appmuseums.Service{Repo: museumRepo}

	handler := httpserver.NewRouter(scansSvc, issuesSvc, museumsSvc, log, httpserver.Options{
		AdminKey: cfg.Server.AdminKey,
		ScanRPM:  cfg.Server.ScanRPM,
		HealthChecks: map[string]middleware.HealthChecker{
			"database":     dbChecker,
			"object_store": middleware.CheckerFunc(store.Check),
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
