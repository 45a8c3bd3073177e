package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvidence() *interfaces.Evidence {
	return &interfaces.Evidence{
		AgentID:   "42",
		Timestamp: 1700000000000,
		Analysis:  map[string]any{"trend": "bullish", "confidence": 0.87},
	}
}

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "evidence-store")

	backend, err := NewFileBackend(dir, discardLogger())
	require.NoError(t, err)
	assert.True(t, backend.Available(ctx))
	assert.Equal(t, "file://"+dir, backend.LocationURI())

	id, err := StoreEvidence(ctx, backend, testEvidence())
	require.NoError(t, err)
	assert.Len(t, id.String(), 64)

	stored, err := FetchEvidence(ctx, backend, id)
	require.NoError(t, err)
	assert.Equal(t, testEvidence(), stored)

	// Same content, same id.
	again, err := StoreEvidence(ctx, backend, testEvidence())
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// Content types are separate namespaces.
	_, err = backend.Fetch(ctx, id, interfaces.AgentCardType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)

	_, err = backend.Fetch(ctx, "../../etc/passwd", interfaces.EvidenceType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}

func TestEvidenceSerialisation(t *testing.T) {
	data, err := testEvidence().Bytes()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "42", raw["agentId"])
	assert.Equal(t, float64(1700000000000), raw["timestamp"])
	assert.Contains(t, raw, "analysis")
}

func newPinataServer(t *testing.T, jwt string) (*httptest.Server, map[string][]byte) {
	pinned := map[string][]byte{}
	mux := http.NewServeMux()

	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+jwt
	}

	mux.HandleFunc("/data/testAuthentication", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"message":"Congratulations! You are communicating with the Pinata API!"}`))
	})

	mux.HandleFunc("/pinning/pinJSONToIPFS", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid jwt"}`))
			return
		}
		var req struct {
			Content  json.RawMessage `json:"pinataContent"`
			Metadata struct {
				Name string `json:"name"`
			} `json:"pinataMetadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad pin request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Contains(t, req.Metadata.Name, "evidence-")

		cid := "bafkrei" + contentHash(req.Content).String()[:20]
		pinned[cid] = req.Content
		json.NewEncoder(w).Encode(map[string]any{
			"IpfsHash":  cid,
			"PinSize":   len(req.Content),
			"Timestamp": "2024-01-01T00:00:00Z",
		})
	})

	mux.HandleFunc("/ipfs/", func(w http.ResponseWriter, r *http.Request) {
		data, ok := pinned[r.URL.Path[len("/ipfs/"):]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(data)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, pinned
}

func TestPinataBackend(t *testing.T) {
	ctx := context.Background()
	server, pinned := newPinataServer(t, "test-jwt")

	backend, err := NewPinataBackend(PinataConfig{JWT: "test-jwt", APIURL: server.URL, GatewayURL: server.URL}, discardLogger())
	require.NoError(t, err)
	assert.True(t, backend.Available(ctx))

	cid, err := StoreEvidence(ctx, backend, testEvidence())
	require.NoError(t, err)
	assert.Contains(t, pinned, cid.String())

	stored, err := FetchEvidence(ctx, backend, cid)
	require.NoError(t, err)
	assert.Equal(t, testEvidence(), stored)

	_, err = backend.Fetch(ctx, "bafkreiunknown", interfaces.EvidenceType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)

	_, err = backend.Store(ctx, []byte("not json"), interfaces.EvidenceType)
	assert.Error(t, err)
}

func TestPinataBackendRejectedJWT(t *testing.T) {
	ctx := context.Background()
	server, _ := newPinataServer(t, "test-jwt")

	backend, err := NewPinataBackend(PinataConfig{JWT: "wrong", APIURL: server.URL, GatewayURL: server.URL}, discardLogger())
	require.NoError(t, err)
	assert.False(t, backend.Available(ctx))

	_, err = StoreEvidence(ctx, backend, testEvidence())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = NewPinataBackend(PinataConfig{}, discardLogger())
	assert.ErrorIs(t, err, interfaces.ErrMissingCredential)
}

// fakeS3 keeps objects in memory.
type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	headErr error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadBucketWithContext(ctx aws.Context, in *s3.HeadBucketInput, opts ...request.Option) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestS3Backend(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{objects: map[string][]byte{}}
	backend := newS3Backend(client, S3Config{Bucket: "agents", Prefix: "/onboarding/", Region: "eu-west-1"}, discardLogger())

	assert.True(t, backend.Available(ctx))
	assert.Equal(t, "s3-agents", backend.Name())

	id, err := StoreEvidence(ctx, backend, testEvidence())
	require.NoError(t, err)
	assert.Contains(t, client.objects, "agents/onboarding/evidence/"+id.String())

	stored, err := FetchEvidence(ctx, backend, id)
	require.NoError(t, err)
	assert.Equal(t, testEvidence(), stored)

	_, err = backend.Fetch(ctx, contentHash([]byte("missing")), interfaces.EvidenceType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)

	client.headErr = errors.New("AccessDenied")
	assert.False(t, backend.Available(ctx))
}

func TestStorageBackendFactory(t *testing.T) {
	factory := NewStorageBackendFactory(discardLogger(), FactoryConfig{PinataJWT: "jwt"})
	dir := t.TempDir()

	tests := []struct {
		uri     string
		name    string
		wantErr error
	}{
		{uri: "file://" + dir, name: "file-" + filepath.Base(dir)},
		{uri: "ipfs://127.0.0.1:5001/?timeout=5s", name: "ipfs-127.0.0.1-5001"},
		{uri: "ipfs://localhost", name: "ipfs-localhost-5001"},
		{uri: "pinata://api.pinata.cloud", name: "pinata"},
		{uri: "s3://bucket/prefix/?region=us-west-2", name: "s3-bucket"},
		{uri: "ipfs://127.0.0.1:5001/?timeout=soon", wantErr: interfaces.ErrInvalidLocationURI},
		{uri: "ftp://example.com", wantErr: interfaces.ErrInvalidLocationURI},
		{uri: "file://", wantErr: interfaces.ErrInvalidLocationURI},
		{uri: "s3:///prefix", wantErr: interfaces.ErrInvalidLocationURI},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			backend, err := factory.StorageBackendFor(tt.uri)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, backend.Name())
		})
	}

	_, err := NewStorageBackendFactory(discardLogger(), FactoryConfig{}).StorageBackendFor("pinata://")
	assert.ErrorIs(t, err, interfaces.ErrMissingCredential)
}

func TestCreateMultiBackendSkipsInvalidURIs(t *testing.T) {
	factory := NewStorageBackendFactory(discardLogger(), FactoryConfig{})
	dir := t.TempDir()

	backend, err := factory.CreateMultiBackend([]string{"pinata://", "file://" + dir})
	require.NoError(t, err)
	assert.Equal(t, "multi:[file://"+dir+"]", backend.LocationURI())

	_, err = factory.CreateMultiBackend([]string{"ftp://nowhere"})
	assert.Error(t, err)
}
