package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/clients/coingecko"
	"github.com/aristath/oneglance/internal/clients/defillama"
	"github.com/aristath/oneglance/internal/clients/yahoo"
	"github.com/aristath/oneglance/internal/config"
	"github.com/aristath/oneglance/internal/database"
	"github.com/aristath/oneglance/internal/jobs"
	"github.com/aristath/oneglance/internal/modules/dashboard"
	"github.com/aristath/oneglance/internal/modules/events"
	"github.com/aristath/oneglance/internal/modules/ingest"
	"github.com/aristath/oneglance/internal/modules/metrics"
	"github.com/aristath/oneglance/internal/modules/notify"
	"github.com/aristath/oneglance/internal/modules/portfolio"
	"github.com/aristath/oneglance/internal/modules/registry"
	"github.com/aristath/oneglance/internal/modules/scoring"
	"github.com/aristath/oneglance/internal/modules/thesis"
	"github.com/aristath/oneglance/internal/scheduler"
	"github.com/aristath/oneglance/internal/server"
	"github.com/aristath/oneglance/pkg/logger"
)

// classBundle holds one asset class's wired repositories, services and
// handlers. Crypto and stocks are two instances of the same shape
// pointing at different database files.
type classBundle struct {
	registryRepo *registry.Repository
	ingestSvc    *ingest.Service
	scoringSvc   *scoring.Service
	handlers     server.ClassHandlers
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Pretty:   cfg.DevMode,
		FilePath: cfg.LogFile,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting oneglance")

	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load scoring configuration")
	}

	// One database per asset class, identical schema
	cryptoDB, err := openDB(cfg.CryptoDBPath(), "crypto")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize crypto database")
	}
	defer cryptoDB.Close()

	stocksDB, err := openDB(cfg.StocksDBPath(), "stocks")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize stocks database")
	}
	defer stocksDB.Close()

	notifier := notify.NewNotifier(cfg.SlackWebhookLog, cfg.SlackWebhookAlert, log)

	crypto := buildClass("crypto", cryptoDB, scoringCfg, cfg.ScoringWorkers, log)
	stocks := buildClass("stocks", stocksDB, scoringCfg, cfg.ScoringWorkers, log)

	// External data clients
	cgClient := coingecko.NewClient(cfg.CoinGeckoAPIKey, log)
	dlClient := defillama.NewClient(log)
	yhClient := yahoo.NewClient(log)

	// Scheduler and the daily pipeline
	sched := scheduler.New(log)

	collectCrypto := jobs.NewCollectCryptoJob(crypto.registryRepo, crypto.ingestSvc, cgClient, dlClient, log)
	collectStocks := jobs.NewCollectStocksJob(stocks.registryRepo, stocks.ingestSvc, yhClient, log)

	crypto.handlers.Collector = collectCrypto
	stocks.handlers.Collector = collectStocks
	stocks.handlers.Search = registry.NewSearchHandler(yahooSearcher{yhClient}, log)
	pipeline := jobs.NewDailyPipelineJob(
		[]scheduler.Job{collectCrypto, collectStocks},
		crypto.scoringSvc,
		stocks.scoringSvc,
		notifier,
		log,
	)

	if err := sched.AddJob(cfg.PipelineSchedule, pipeline); err != nil {
		log.Fatal().Err(err).Msg("Failed to register daily pipeline")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Crypto:    crypto.handlers,
		Stocks:    stocks.handlers,
		CryptoDB:  cryptoDB,
		StocksDB:  stocksDB,
		Scheduler: sched,
		DevMode:   cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// yahooSearcher adapts the Yahoo client to the registry search interface
type yahooSearcher struct {
	client *yahoo.Client
}

func (s yahooSearcher) SearchSymbols(ctx context.Context, query string) ([]registry.SearchMatch, error) {
	results, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	matches := make([]registry.SearchMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, registry.SearchMatch{
			Symbol:   r.Symbol,
			Name:     r.Name,
			Exchange: r.Exchange,
			Kind:     r.Kind,
		})
	}
	return matches, nil
}

func openDB(path, name string) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    path,
		Profile: database.ProfileArchive,
		Name:    name,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func buildClass(class string, db *database.DB, scoringCfg scoring.Config, workers int, log zerolog.Logger) classBundle {
	conn := db.Conn()
	classLog := log.With().Str("class", class).Logger()

	registryRepo := registry.NewRepository(conn, classLog)
	metricsRepo := metrics.NewRepository(conn, classLog)
	eventsRepo := events.NewRepository(conn, classLog)
	scoreRepo := scoring.NewRepository(conn, classLog)
	thesisRepo := thesis.NewRepository(conn, classLog)
	portfolioRepo := portfolio.NewRepository(conn, classLog)

	ingestSvc := ingest.NewService(registryRepo, metricsRepo, eventsRepo, classLog)
	scoringSvc := scoring.NewService(class, registryRepo, metricsRepo, eventsRepo, scoreRepo, scoringCfg, workers, classLog)
	portfolioSvc := portfolio.NewService(portfolioRepo, registryRepo, classLog)
	dashboardSvc := dashboard.NewService(registryRepo, metricsRepo, eventsRepo, scoreRepo, thesisRepo, classLog)

	return classBundle{
		registryRepo: registryRepo,
		ingestSvc:    ingestSvc,
		scoringSvc:   scoringSvc,
		handlers: server.ClassHandlers{
			Registry:  registry.NewHandler(registryRepo, classLog),
			Ingest:    ingest.NewHandler(ingestSvc, classLog),
			Scoring:   scoring.NewHandler(scoringSvc, classLog),
			Portfolio: portfolio.NewHandler(portfolioSvc, classLog),
			Thesis:    thesis.NewHandler(thesisRepo, registryRepo, classLog),
			Dashboard: dashboard.NewHandler(dashboardSvc, classLog),
		},
	}
}
