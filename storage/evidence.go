package storage

import (
	"context"
	"fmt"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// StoreEvidence serialises evidence and stores it as EvidenceType content.
func StoreEvidence(ctx context.Context, backend interfaces.StorageBackend, evidence *interfaces.Evidence) (interfaces.ContentID, error) {
	data, err := evidence.Bytes()
	if err != nil {
		return "", fmt.Errorf("could not serialise evidence: %w", err)
	}
	return backend.Store(ctx, data, interfaces.EvidenceType)
}

// FetchEvidence loads evidence previously stored with StoreEvidence.
func FetchEvidence(ctx context.Context, backend interfaces.StorageBackend, id interfaces.ContentID) (*interfaces.Evidence, error) {
	data, err := backend.Fetch(ctx, id, interfaces.EvidenceType)
	if err != nil {
		return nil, err
	}
	return interfaces.ParseEvidence(data)
}
