package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

const (
	DefaultPinataAPIURL     = "https://api.pinata.cloud"
	DefaultPinataGatewayURL = "https://gateway.pinata.cloud"
)

// PinataConfig configures a PinataBackend. Empty URLs use the public endpoints.
type PinataConfig struct {
	JWT        string
	APIURL     string
	GatewayURL string
	Timeout    time.Duration
}

// PinataBackend pins JSON documents with the Pinata pinning service and
// fetches them back through a gateway. Content IDs are IPFS CIDs.
type PinataBackend struct {
	client     *http.Client
	jwt        string
	apiURL     string
	gatewayURL string
	log        *slog.Logger
}

// NewPinataBackend creates a backend authenticating with cfg.JWT.
func NewPinataBackend(cfg PinataConfig, log *slog.Logger) (*PinataBackend, error) {
	if cfg.JWT == "" {
		return nil, fmt.Errorf("%w: PINATA_JWT is not set", interfaces.ErrMissingCredential)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultPinataAPIURL
	}
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = DefaultPinataGatewayURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &PinataBackend{
		client:     &http.Client{Timeout: cfg.Timeout},
		jwt:        cfg.JWT,
		apiURL:     strings.TrimSuffix(cfg.APIURL, "/"),
		gatewayURL: strings.TrimSuffix(cfg.GatewayURL, "/"),
		log:        log,
	}, nil
}

type pinJSONRequest struct {
	Content  json.RawMessage `json:"pinataContent"`
	Metadata struct {
		Name string `json:"name"`
	} `json:"pinataMetadata"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// Store pins data, which must be a JSON document, and returns its CID.
func (b *PinataBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	if !json.Valid(data) {
		return "", fmt.Errorf("pinata backend stores JSON documents only")
	}

	var req pinJSONRequest
	req.Content = data
	req.Metadata.Name = fmt.Sprintf("%s-%s", contentType, contentHash(data)[:16])

	body, err := json.Marshal(&req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL+"/pinning/pinJSONToIPFS", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.jwt)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", interfaces.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read pinata response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pinata pin failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var pinned pinResponse
	if err := json.Unmarshal(respBody, &pinned); err != nil {
		return "", fmt.Errorf("could not parse pinata response: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("pinata response has no IpfsHash")
	}

	b.log.Debug("Pinned content with Pinata",
		slog.String("ipfsCID", pinned.IpfsHash),
		slog.Int64("size", pinned.PinSize),
		slog.String("contentType", contentType.String()))

	return interfaces.ContentID(pinned.IpfsHash), nil
}

// Fetch retrieves pinned content through the gateway.
func (b *PinataBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.gatewayURL+"/ipfs/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, interfaces.ErrContentNotFound
	default:
		return nil, fmt.Errorf("pinata gateway returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// Available checks that the JWT is accepted.
func (b *PinataBackend) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.apiURL+"/data/testAuthentication", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+b.jwt)

	resp, err := b.client.Do(req)
	if err != nil {
		b.log.Warn("Pinata unavailable", "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.log.Warn("Pinata rejected credentials", slog.Int("status", resp.StatusCode))
		return false
	}
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *PinataBackend) Name() string {
	return "pinata"
}

// LocationURI returns the URI that identifies this storage backend.
func (b *PinataBackend) LocationURI() string {
	u, err := url.Parse(b.apiURL)
	if err != nil {
		return "pinata://"
	}
	return fmt.Sprintf("pinata://%s/?gateway=%s", u.Host, url.QueryEscape(b.gatewayURL))
}
