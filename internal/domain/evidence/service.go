package evidence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/recicla/recicla-api/internal/pkg/storage"
)

const maxUploadBytes = 10 << 20 // 10 MiB

var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Service handles evidence photo intake
type Service struct {
	repo    Repository
	storage storage.Storage
	redis   *redis.Client // nil if Redis disabled
}

// NewService creates evidence service
func NewService(repo Repository, st storage.Storage, redisClient *redis.Client) *Service {
	return &Service{repo: repo, storage: st, redis: redisClient}
}

// Store buffers an uploaded photo, sniffs its real content type, writes
// it to object storage and records it
func (s *Service) Store(ctx context.Context, userID uuid.UUID, reader io.Reader) (*Upload, error) {
	data, mimeType, err := storage.ReadAndSniff(reader, maxUploadBytes)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return nil, ErrFileTooLarge
		case errors.Is(err, storage.ErrEmptyFile):
			return nil, ErrEmptyFile
		default:
			return nil, err
		}
	}

	ext, ok := allowedMimeTypes[mimeType]
	if !ok {
		return nil, ErrInvalidMimeType
	}
	size := int64(len(data))

	id := uuid.New()
	key := fmt.Sprintf("evidence/%s%s", id, ext)

	if err := s.storage.Put(ctx, key, bytes.NewReader(data), mimeType); err != nil {
		return nil, err
	}

	now := time.Now()
	u := &Upload{
		ID:        id,
		UserID:    userID,
		Key:       key,
		MimeType:  mimeType,
		SizeBytes: size,
		Status:    StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		// Orphaned object is harmless; remove it anyway.
		_ = s.storage.Delete(ctx, key)
		return nil, err
	}

	// Wake the worker; polling picks the upload up anyway if this is lost
	if s.redis != nil {
		_ = s.redis.Publish(ctx, "evidence:uploaded", id.String()).Err()
	}

	log.Info().
		Str("upload_id", id.String()).
		Str("user_id", userID.String()).
		Str("key", key).
		Int64("size", size).
		Msg("evidence photo stored")
	return u, nil
}

// Get returns upload metadata with resolved URLs
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Upload, string, string, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", "", err
	}

	url := s.storage.GetURL(u.Key)
	thumbURL := ""
	if u.ThumbKey.Valid {
		thumbURL = s.storage.GetURL(u.ThumbKey.String)
	}
	return u, url, thumbURL, nil
}

// ThumbKeyFor derives the thumbnail key for an original evidence key
func ThumbKeyFor(key string) string {
	base := key[:len(key)-len(path.Ext(key))]
	return base + "_thumb.jpg"
}
