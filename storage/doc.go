// Package storage stores agent evidence and metadata documents with pluggable
// backends.
//
// Supported backends:
//
//   - File system storage for local runs and tests
//   - IPFS storage through a node's HTTP API
//   - Pinata pinning service, addressed by the returned IPFS CID
//   - S3-compatible object storage
//
// # Storage URI Format
//
// Storage backends are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - file:///var/lib/onboarding/evidence/
//   - ipfs://127.0.0.1:5001/?timeout=30s
//   - pinata://api.pinata.cloud/?gateway=https://gateway.pinata.cloud
//   - s3://bucket-name/prefix/?region=us-west-2
//
// The Pinata JWT is never part of the URI; the factory takes it from its
// configuration (PINATA_JWT for the CLIs).
//
// # Content Addressing
//
// Store returns the identifier under which the backend can later Fetch the
// content. IPFS-backed providers return the IPFS CID, the file and S3
// backends return the hex SHA-256 digest of the data. The caller treats the
// identifier as opaque.
//
// # Multi-Backend Storage
//
// MultiStorageBackend stores to every available backend and returns the
// identifier of the first backend that succeeded. Fetch tries backends in
// order until one returns the content.
//
// # Usage Example
//
//	factory := storage.NewStorageBackendFactory(logger, storage.FactoryConfig{PinataJWT: jwt})
//	backend, err := factory.CreateMultiBackend([]string{
//	    "pinata://api.pinata.cloud",
//	    "file:///var/lib/onboarding/evidence",
//	})
//	if err != nil {
//	    return err
//	}
//
//	cid, err := storage.StoreEvidence(ctx, backend, &interfaces.Evidence{
//	    AgentID:   agentID.String(),
//	    Timestamp: time.Now().UnixMilli(),
//	})
package storage
