package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"rreader/api"
	"rreader/archive"
	"rreader/config"
	"rreader/ingest"
	"rreader/queue"
	"rreader/rssfeeds"
	"rreader/store"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	discoverer := rssfeeds.NewDiscoverer()
	parser := rssfeeds.NewParser()
	extractor := rssfeeds.NewExtractor()

	locker := initializeLocker(cfg)
	scheduler := ingest.NewScheduler(st, discoverer, parser, locker, cfg.Workers)
	scheduler.Start(ctx)
	go scheduler.RunDispatcher(ctx, cfg.FetchInterval)

	archiver := initializeArchiver(ctx, cfg)
	extractPool := ingest.NewExtractPool(st, extractor, archiver, cfg.Workers)
	go runExtractLoop(ctx, extractPool, cfg)

	if len(cfg.KafkaBrokers) > 0 {
		consumer, err := queue.NewConsumer(queue.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
			Handler: queue.NewFetchCommandHandler(scheduler),
		})
		if err != nil {
			log.Fatalf("Failed to create Kafka consumer: %v", err)
		}
		if err := consumer.Start(ctx); err != nil {
			log.Fatalf("Failed to start Kafka consumer: %v", err)
		}
		defer consumer.Close()
	} else {
		log.Println("Kafka not configured; fetch commands come from the HTTP API only")
	}

	router := api.NewRouter(api.Dependencies{
		Store:      st,
		Scheduler:  scheduler,
		Discoverer: discoverer,
		Extractor:  extractor,
	})

	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /api/health")
	log.Println("  POST /api/feeds")
	log.Println("  GET  /api/feeds")
	log.Println("  GET  /api/feeds/:id/health")
	log.Println("  POST /api/feeds/:id/refresh")
	log.Println("  POST /api/feeds/:id/enable")
	log.Println("  POST /api/articles/:id/extract")

	if err := router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// initializeLocker uses a Redis lease when REDIS_ADDR is set so multiple
// instances can share one database; otherwise feeds are locked in-process.
func initializeLocker(cfg config.Config) ingest.Locker {
	if cfg.RedisAddr == "" {
		return ingest.NewMemoryLocker()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	log.Printf("Using Redis feed locks at %s", cfg.RedisAddr)
	return ingest.NewRedisLocker(client)
}

// initializeArchiver returns nil when S3 is not configured.
// Required: S3_BUCKET. Optional: S3_REGION, S3_PROFILE, S3_PREFIX, S3_USE_PATH_STYLE=true
func initializeArchiver(ctx context.Context, cfg config.Config) ingest.Archiver {
	if cfg.S3Bucket == "" {
		log.Println("S3 not configured; article archiving disabled")
		return nil
	}

	client, err := archive.NewS3(ctx, archive.S3Config{
		Region:       cfg.S3Region,
		Profile:      cfg.S3Profile,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (archiving disabled)", err)
		return nil
	}

	return archive.NewArchiver(client, cfg.S3Bucket, cfg.S3Prefix)
}

func runExtractLoop(ctx context.Context, pool *ingest.ExtractPool, cfg config.Config) {
	ticker := time.NewTicker(cfg.ExtractInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := pool.RunBatch(ctx); err != nil {
				log.Printf("Content extraction batch failed: %v", err)
			}
		}
	}
}
