package interfaces

import (
	"context"
	"errors"
)

// ContentID is the identifier a storage provider returns for stored content:
// an IPFS CID for IPFS-backed providers, a hex SHA-256 digest otherwise.
type ContentID string

// String returns the identifier.
func (id ContentID) String() string {
	return string(id)
}

// ContentType indicates storage namespace.
type ContentType int

const (
	// EvidenceType for agent evidence payloads
	EvidenceType ContentType = iota
	// AgentCardType for agent metadata documents
	AgentCardType
)

// String returns type name.
func (ct ContentType) String() string {
	switch ct {
	case EvidenceType:
		return "evidence"
	case AgentCardType:
		return "agent-card"
	default:
		return "unknown"
	}
}

var (
	// ErrContentNotFound is returned when requested content cannot be found in the storage backend.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable is returned when a storage backend is not accessible.
	// This could be due to network issues, authentication failures, or service outages.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a storage location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// StorageBackend provides content-addressed data storage.
type StorageBackend interface {
	// Fetch retrieves data by content ID and type.
	Fetch(ctx context.Context, id ContentID, contentType ContentType) ([]byte, error)

	// Store saves data and returns its content ID.
	Store(ctx context.Context, data []byte, contentType ContentType) (ContentID, error)

	// Available checks if backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}
