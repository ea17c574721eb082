package commands

import (
	"fmt"
	"runtime"

	"github.com/dmoraes/brewlake/internal/bronze"
	"github.com/dmoraes/brewlake/internal/gold"
	"github.com/dmoraes/brewlake/internal/pipeline"
	"github.com/dmoraes/brewlake/internal/quality"
	"github.com/dmoraes/brewlake/internal/silver"
	"github.com/dmoraes/brewlake/internal/store"
	"github.com/dmoraes/brewlake/pkg/config"
	"github.com/dmoraes/brewlake/pkg/database"
	"github.com/dmoraes/brewlake/pkg/httputil"
	"github.com/dmoraes/brewlake/pkg/logger"
	"github.com/dmoraes/brewlake/pkg/redis"
)

// deps holds the wired application components shared by the commands
type deps struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client
	cache *redis.Cache

	bronzeRepo  *store.BronzeRepository
	silverRepo  *store.SilverRepository
	goldRepo    *store.GoldRepository
	qualityRepo *store.QualityRepository
	runRepo     *store.RunRepository

	cleaner      *silver.Cleaner
	gate         *quality.Gate
	engine       *gold.Engine
	ingestor     *bronze.Ingestor
	orchestrator *pipeline.Orchestrator
}

// bootstrap wires config, logging, storage, and the pipeline stages.
// Every command builds its world through this function.
func bootstrap() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	d := &deps{
		cfg:   cfg,
		log:   log,
		db:    db,
		redis: redisClient,
		cache: redis.NewCache(redisClient, "brewlake"),
	}

	d.bronzeRepo = store.NewBronzeRepository(db.Pool)
	d.silverRepo = store.NewSilverRepository(db.Pool)
	d.goldRepo = store.NewGoldRepository(db.Pool)
	d.qualityRepo = store.NewQualityRepository(db.Pool)
	d.runRepo = store.NewRunRepository(db.Pool)

	// Local token bucket paces a single crawl; the redis sliding window
	// caps concurrent crawlers across processes
	httpClient := httputil.NewWithTimeout(cfg, log, cfg.BreweryAPI.Timeout).
		WithRateLimiter(redis.NewRateLimiter(redisClient, "brewlake"), redis.BreweryAPIRateLimit)
	client := bronze.NewClient(cfg, httpClient, log)
	d.ingestor = bronze.NewIngestor(client, d.bronzeRepo, log, nil)

	d.cleaner = silver.NewCleaner(silver.Config{Workers: runtime.NumCPU()}, log)
	d.gate = quality.NewGate(quality.Config{
		NullRateCeiling: cfg.Pipeline.NullRateCeiling,
		Strict:          cfg.Pipeline.StrictQuality,
		MinRecords:      cfg.Pipeline.MinRecords,
	}, log)
	d.engine = gold.NewEngine(gold.Config{
		TopCitiesLimit: cfg.Pipeline.TopCitiesLimit,
	}, log)

	d.orchestrator = pipeline.NewOrchestrator(
		d.ingestor, d.cleaner, d.gate, d.engine,
		d.bronzeRepo, d.silverRepo, d.goldRepo, d.qualityRepo, d.runRepo,
		log,
	)

	return d, nil
}

// close releases the database and redis connections
func (d *deps) close() {
	if d.redis != nil {
		d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
