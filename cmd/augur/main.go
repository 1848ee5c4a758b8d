package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fortuna/augur/internal/analyzer"
	"github.com/fortuna/augur/internal/api/rest"
	"github.com/fortuna/augur/internal/api/websocket"
	"github.com/fortuna/augur/internal/cache"
	"github.com/fortuna/augur/internal/config"
	"github.com/fortuna/augur/internal/logging"
	"github.com/fortuna/augur/internal/publisher"
	"github.com/fortuna/augur/internal/resolver"
	"github.com/fortuna/augur/internal/sources"
	"github.com/fortuna/augur/internal/sources/espn"
	"github.com/fortuna/augur/internal/sources/footdata"
	"github.com/fortuna/augur/internal/sources/sofascore"
	"github.com/fortuna/augur/internal/sources/webscrape"
	"github.com/fortuna/augur/internal/store"
	"github.com/fortuna/augur/internal/store/repository"
)

const (
	serviceName    = "augur"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Betting Slip Analysis Service", serviceName, serviceVersion)

	// Load configuration from environment
	cfg := loadConfig()
	logger := logging.New(log.Default(), cfg.Debug)

	// Load team/market dictionaries
	dict, err := config.LoadDictionary(cfg.DictionaryPath)
	if err != nil {
		log.Fatalf("Failed to load dictionary: %v", err)
	}
	log.Printf("✓ Dictionary loaded (%d teams, %d markets)", len(dict.Teams), len(dict.Markets))

	// Initialize database connection (optional - the service runs without
	// persistence)
	var slipRepo *repository.SlipRepository
	if cfg.DatabaseDSN != "" {
		db, err := store.NewDatabase(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("✓ Connected to database")

		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		log.Println("✓ Database migrations applied")

		slipRepo = repository.NewSlipRepository(db)
	} else {
		log.Println("⚠️  No database DSN configured, running without persistence")
	}

	// Initialize cache store
	var cacheStore cache.Store
	if cfg.CacheBackend == "redis" {
		redisCache, err := connectRedis(cfg.RedisURL, logger)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		cacheStore = redisCache
		log.Println("✓ Connected to Redis cache")
	} else {
		cacheStore = cache.NewMemory(cfg.CacheCapacity)
		log.Printf("✓ In-memory cache initialized (capacity: %d)", cfg.CacheCapacity)
	}

	// Build the source chain in priority order
	chain := buildSourceChain(cfg)
	log.Printf("✓ Source chain ready (%d sources)", len(chain))

	// Initialize the core
	slipAnalyzer := analyzer.New(dict, logger)
	res := resolver.New(chain, cacheStore, logger, &resolver.Config{
		SourceTimeout: cfg.SourceTimeout,
		CacheTTL:      cfg.CacheTTL,
	})

	// Initialize WebSocket server
	wsServer := websocket.NewServer()
	go func() {
		log.Printf("Starting WebSocket server on port %s", cfg.WSPort)
		if err := wsServer.Start(cfg.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	// Resolution updates go to WebSocket clients, and to a Redis stream
	// when Redis is available so offline consumers can catch up.
	var broadcaster rest.Broadcaster = wsServer
	if cfg.CacheBackend == "redis" {
		streamPub, err := publisher.NewRedisStream(cfg.RedisURL, logger)
		if err != nil {
			log.Printf("⚠️  Redis stream publisher unavailable: %v (WebSocket only)", err)
		} else {
			defer streamPub.Close()
			broadcaster = fanout{wsServer, streamPub}
			log.Println("✓ Redis resolution stream publisher ready")
		}
	}

	// Initialize REST API server
	restServer := rest.NewServer(cfg.RESTPort, slipAnalyzer, res, slipRepo, broadcaster)
	go func() {
		log.Printf("Starting REST API server on port %s", cfg.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", cfg.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s", cfg.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down augur gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Println("augur stopped")
}

// fanout forwards each resolution update to every underlying broadcaster.
type fanout []rest.Broadcaster

func (f fanout) BroadcastResolutionUpdate(payload []byte) {
	for _, b := range f {
		b.BroadcastResolutionUpdate(payload)
	}
}

// buildSourceChain assembles the fixed priority chain: the most
// authoritative API first, the web scraper as the permissive last resort.
func buildSourceChain(cfg Config) []sources.Adapter {
	chain := []sources.Adapter{
		footdata.New(cfg.FootballDataURL, cfg.FootballDataToken),
		espn.New(cfg.ESPNAPIBase),
		sofascore.New(cfg.SofaScoreAPIBase),
	}

	if cfg.EnableWebScrape {
		scraper, err := webscrape.New()
		if err != nil {
			log.Printf("⚠️  Web scraper unavailable: %v (continuing with %d sources)", err, len(chain))
		} else {
			chain = append(chain, scraper)
		}
	}

	return chain
}

// connectRedis retries the Redis connection; container orchestration often
// starts dependencies in parallel.
func connectRedis(redisURL string, logger logging.Logger) (*cache.Redis, error) {
	const maxRetries = 10
	retryDelay := 2 * time.Second

	var redisCache *cache.Redis
	var err error
	for i := 0; i < maxRetries; i++ {
		redisCache, err = cache.NewRedis(redisURL, logger)
		if err == nil {
			return redisCache, nil
		}
		if i < maxRetries-1 {
			log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		}
	}
	return nil, err
}

// Config holds runtime configuration loaded from the environment.
type Config struct {
	RESTPort          string
	WSPort            string
	DatabaseDSN       string
	CacheBackend      string // memory | redis
	RedisURL          string
	CacheCapacity     int
	CacheTTL          time.Duration
	SourceTimeout     time.Duration
	DictionaryPath    string
	FootballDataURL   string
	FootballDataToken string
	ESPNAPIBase       string
	SofaScoreAPIBase  string
	EnableWebScrape   bool
	Debug             bool
}

func loadConfig() Config {
	return Config{
		RESTPort:          getEnv("REST_PORT", "8080"),
		WSPort:            getEnv("WS_PORT", "8081"),
		DatabaseDSN:       getEnv("AUGUR_DSN", ""),
		CacheBackend:      getEnv("CACHE_BACKEND", "memory"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		CacheCapacity:     getEnvInt("CACHE_CAPACITY", cache.DefaultCapacity),
		CacheTTL:          getEnvDuration("CACHE_TTL", 6*time.Hour),
		SourceTimeout:     getEnvDuration("SOURCE_TIMEOUT", 8*time.Second),
		DictionaryPath:    getEnv("DICTIONARY_PATH", ""),
		FootballDataURL:   getEnv("FOOTBALL_DATA_URL", ""),
		FootballDataToken: getEnv("FOOTBALL_DATA_TOKEN", ""),
		ESPNAPIBase:       getEnv("ESPN_API_BASE", ""),
		SofaScoreAPIBase:  getEnv("SOFASCORE_API_BASE", ""),
		EnableWebScrape:   getEnv("ENABLE_WEB_SCRAPE", "true") == "true",
		Debug:             getEnv("LOG_DEBUG", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if v, err := time.ParseDuration(value); err == nil {
			return v
		}
	}
	return defaultValue
}
