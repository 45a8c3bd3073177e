package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// FileBackend implements a storage backend using the local file system.
// Content is stored in a directory structure organized by content type.
type FileBackend struct {
	baseDir     string
	prefixes    map[interfaces.ContentType]string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a new file storage backend using the specified base directory.
// It creates subdirectories for different content types if they don't exist.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	prefixes := map[interfaces.ContentType]string{
		interfaces.EvidenceType:  "evidence",
		interfaces.AgentCardType: "agent-cards",
	}

	for _, prefix := range prefixes {
		if err := os.MkdirAll(filepath.Join(baseDir, prefix), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", prefix, err)
		}
	}

	return &FileBackend{
		baseDir:     baseDir,
		prefixes:    prefixes,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Fetch retrieves data from the file system by its content identifier and type.
// Returns ErrContentNotFound if the file doesn't exist.
func (b *FileBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	filePath, err := b.getFilePath(id, contentType)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, interfaces.ErrContentNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	b.log.Debug("Fetched content from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return data, nil
}

// Store saves data to the file system and returns its content identifier.
// The identifier is the hex SHA-256 hash of the data.
func (b *FileBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	id := contentHash(data)

	filePath, err := b.getFilePath(id, contentType)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	b.log.Debug("Stored content in file",
		slog.String("path", filePath),
		slog.String("contentID", id.String()))

	return id, nil
}

// Available checks if the file backend is accessible by verifying the base directory exists.
func (b *FileBackend) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	if err != nil {
		b.log.Debug("File backend unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this storage backend.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

// getFilePath generates a file path for a content ID and type. Only
// identifiers produced by Store are accepted.
func (b *FileBackend) getFilePath(id interfaces.ContentID, contentType interfaces.ContentType) (string, error) {
	if !isContentHash(id) {
		return "", fmt.Errorf("%w: malformed content id %q", interfaces.ErrContentNotFound, id)
	}
	subdir, ok := b.prefixes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %s", contentType)
	}
	return filepath.Join(b.baseDir, subdir, id.String()), nil
}

// contentHash returns the hex SHA-256 digest used as content id by hash-addressed backends.
func contentHash(data []byte) interfaces.ContentID {
	hash := sha256.Sum256(data)
	return interfaces.ContentID(hex.EncodeToString(hash[:]))
}

func isContentHash(id interfaces.ContentID) bool {
	decoded, err := hex.DecodeString(string(id))
	return err == nil && len(decoded) == sha256.Size
}
