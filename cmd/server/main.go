package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/exercise-resolver/internal/api"
	"alcyxob/exercise-resolver/internal/cache"
	"alcyxob/exercise-resolver/internal/config"
	"alcyxob/exercise-resolver/internal/domain"
	"alcyxob/exercise-resolver/internal/logger"
	mongorepo "alcyxob/exercise-resolver/internal/repository/mongo"
	"alcyxob/exercise-resolver/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer log.Sync()
	log.Info("starting exercise resolver", "address", cfg.Server.Address)

	// --- Database Connection ---
	dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Error("could not connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongorepo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("database connection established", "database", cfg.Database.Name)

	// --- Indexes ---
	// The unique index on normalizedName must exist before serving writes:
	// concurrent create_or_get relies on it for at-most-one-winner semantics.
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 1*time.Minute)
	if err := mongorepo.EnsureCatalogIndexes(indexCtx, appDB); err != nil {
		indexCancel()
		log.Error("failed to ensure catalog indexes", "error", err)
		os.Exit(1)
	}
	indexCancel()

	// --- Repository, Cache, Services ---
	catalogRepo := mongorepo.NewMongoCatalogRepository(appDB)

	catalogCache := cache.NewCatalogCache()
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 1*time.Minute)
	if err := catalogCache.Load(loadCtx, catalogRepo); err != nil {
		loadCancel()
		log.Error("failed to bulk-load catalog cache", "error", err)
		os.Exit(1)
	}
	loadCancel()
	log.Info("catalog cache populated", "records", catalogCache.Len())

	// External collaborators. The AI classifier and the embedding index are
	// injected by the deployment; without them every brand-new name routes
	// to needs_review (confidence 0.0) and the semantic channel is absent.
	var classify domain.ClassifyFunc = func(ctx context.Context, rawName string) (domain.Classification, error) {
		return domain.Classification{}, nil
	}
	var semanticIndex domain.SemanticIndex

	retriever := service.NewCandidateRetriever(catalogCache, catalogRepo, semanticIndex, cfg.Matching, log)
	resolverService := service.NewResolverService(catalogRepo, catalogCache, retriever, classify, cfg.Matching, log)

	// --- HTTP Server ---
	if cfg.Log.Mode == "prod" || cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, resolverService)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		log.Info("listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	log.Info("server exited")
}
