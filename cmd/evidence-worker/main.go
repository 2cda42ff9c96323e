package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/recicla/recicla-api/internal/config"
	"github.com/recicla/recicla-api/internal/domain/evidence"
	"github.com/recicla/recicla-api/internal/pkg/database"
	"github.com/recicla/recicla-api/internal/pkg/storage"
)

const (
	pollInterval = 5 * time.Second
	thumbSide    = 400
	jpegQuality  = 85
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().Msg("Starting evidence-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	var store storage.Storage
	if cfg.StorageBackend == "s3" {
		store, err = storage.NewS3Storage(storage.Config{
			S3Endpoint:  cfg.S3Endpoint,
			S3Region:    cfg.S3Region,
			S3AccessKey: cfg.S3AccessKey,
			S3SecretKey: cfg.S3SecretKey,
			S3Bucket:    cfg.S3Bucket,
			S3PublicURL: cfg.S3PublicURL,
		})
	} else {
		store, err = storage.NewLocalStorage(cfg.LocalPath, cfg.LocalBaseURL)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	repo := evidence.NewRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional: Redis pub/sub wake-up (polling still runs)
	wake := make(chan struct{}, 1)
	if rdb != nil {
		go subscribeWakeups(ctx, rdb, wake)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	lastIdleLog := time.Time{}
	idleLogEvery := 1 * time.Minute

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("evidence-worker stopped")
			return
		case <-wake:
			// immediate poll
		case <-ticker.C:
		}

		// One upload at a time; ClaimNext bumps attempts so the claim is
		// safe with multiple workers.
		upload, ok, err := repo.ClaimNext(ctx)
		if err != nil {
			log.Error().Err(err).Msg("DB error while claiming upload")
			continue
		}
		if !ok {
			now := time.Now()
			if lastIdleLog.IsZero() || now.Sub(lastIdleLog) >= idleLogEvery {
				log.Info().Msg("Idle: no unprocessed evidence found")
				lastIdleLog = now
			}
			continue
		}

		start := time.Now()
		log.Info().
			Str("upload_id", upload.ID.String()).
			Str("key", upload.Key).
			Msg("Processing evidence photo")

		thumbKey, err := processOne(ctx, store, upload.Key)
		if err != nil {
			log.Error().
				Err(err).
				Str("upload_id", upload.ID.String()).
				Msg("Processing failed")

			if err2 := repo.MarkFailed(ctx, upload.ID, err.Error()); err2 != nil {
				log.Error().Err(err2).Str("upload_id", upload.ID.String()).Msg("Failed to update status=failed")
			}
			continue
		}

		if err := repo.MarkProcessed(ctx, upload.ID, thumbKey); err != nil {
			log.Error().Err(err).Str("upload_id", upload.ID.String()).Msg("Failed to update status=processed")
			continue
		}

		log.Info().
			Str("upload_id", upload.ID.String()).
			Dur("took", time.Since(start)).
			Str("thumb_key", thumbKey).
			Msg("Processing done")
	}
}

// processOne downloads the original photo and writes a review thumbnail
// next to it. Admins load the thumbnail in the review queue; the original
// stays untouched as the evidence of record.
func processOne(ctx context.Context, st storage.Storage, originalKey string) (string, error) {
	rc, err := st.Get(ctx, originalKey)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	thumb := imaging.Fit(img, thumbSide, thumbSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("encode thumb: %w", err)
	}

	thumbKey := evidence.ThumbKeyFor(originalKey)
	if err := st.Put(ctx, thumbKey, bytes.NewReader(buf.Bytes()), "image/jpeg"); err != nil {
		return "", fmt.Errorf("upload thumb: %w", err)
	}

	return thumbKey, nil
}

func subscribeWakeups(ctx context.Context, rdb *redis.Client, wake chan<- struct{}) {
	sub := rdb.Subscribe(ctx, "evidence:uploaded")
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Channel():
			// non-blocking wake-up
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
