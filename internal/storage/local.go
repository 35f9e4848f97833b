package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PublicPrefix is the URL prefix under which stored student images are served.
const PublicPrefix = "/images/students"

// ImageStore writes uploaded student images to the local filesystem and
// returns paths rooted at the public static-serving prefix.
type ImageStore struct {
	dir    string
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewImageStore constructs an image store rooted at uploadDir, creating the
// student images directory if it does not exist.
func NewImageStore(uploadDir string, logger zerolog.Logger) (*ImageStore, error) {
	dir := filepath.Join(uploadDir, "images", "students")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", dir, err)
	}

	return &ImageStore{
		dir:    dir,
		logger: logger.With().Str("component", "image_store").Logger(),
		tracer: otel.Tracer("github.com/prajjwal-ghimire/sms-go-api/internal/storage"),
	}, nil
}

// Store writes the uploaded file under a collision-free name and returns its
// public relative path. A partially written file is removed before returning
// an error so readers never observe a half-written image.
func (s *ImageStore) Store(ctx context.Context, file *multipart.FileHeader) (string, error) {
	_, span := s.tracer.Start(ctx, "image.store")
	defer span.End()

	if file == nil {
		err := fmt.Errorf("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return "", err
	}

	name := uuid.NewString() + "_" + sanitizeFileName(file.Filename)
	span.SetAttributes(
		attribute.String("image.original_name", file.Filename),
		attribute.String("image.stored_name", name),
		attribute.Int64("image.size_bytes", file.Size),
	)

	src, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(s.dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dstPath)
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	s.logger.Info().Str("stored_as", name).Msg("image stored")
	span.SetStatus(codes.Ok, "stored")

	return path.Join(PublicPrefix, name), nil
}

// Remove deletes the file referenced by the public relative path. Empty paths
// and missing files are no-ops.
func (s *ImageStore) Remove(ctx context.Context, relativePath string) error {
	_, span := s.tracer.Start(ctx, "image.remove")
	defer span.End()

	if relativePath == "" {
		span.SetStatus(codes.Ok, "nothing to remove")
		return nil
	}

	span.SetAttributes(attribute.String("image.path", relativePath))

	name := path.Base(relativePath)
	if name == "" || name == "." || name == "/" {
		err := fmt.Errorf("invalid image path: %s", relativePath)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid path")
		return err
	}

	physicalPath := filepath.Join(s.dir, name)
	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn().Str("path", physicalPath).Msg("image to remove does not exist")
			span.SetStatus(codes.Ok, "already absent")
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "remove failed")
		return fmt.Errorf("failed to remove image: %w", err)
	}

	s.logger.Info().Str("path", physicalPath).Msg("image removed")
	span.SetStatus(codes.Ok, "removed")

	return nil
}

func sanitizeFileName(original string) string {
	name := filepath.Base(strings.TrimSpace(original))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "upload"
	}
	return name
}
