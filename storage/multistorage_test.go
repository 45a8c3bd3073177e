package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
)

// MockStorageBackend implements interfaces.StorageBackend for testing
type MockStorageBackend struct {
	mock.Mock
	name string
}

func (m *MockStorageBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	args := m.Called(ctx, id, contentType)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockStorageBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	args := m.Called(ctx, data, contentType)
	return args.Get(0).(interfaces.ContentID), args.Error(1)
}

func (m *MockStorageBackend) Available(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockStorageBackend) Name() string {
	return m.name
}

func (m *MockStorageBackend) LocationURI() string {
	return "mock:" + m.name
}

// backendState describes how a mock backend behaves in a single call.
type backendState int

const (
	offline backendState = iota
	failing
	serving
	untouched // must not be asked anything
)

const evidenceCID = interfaces.ContentID("bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku")

var (
	evidencePayload = []byte(`{"agentId":"1","timestamp":1}`)
	errBackend      = errors.New("backend error")
)

func mockBackends(states []backendState, configure func(m *MockStorageBackend, ok bool)) []interfaces.StorageBackend {
	backends := make([]interfaces.StorageBackend, len(states))
	for i, state := range states {
		m := &MockStorageBackend{name: string(rune('a' + i))}
		switch state {
		case offline:
			m.On("Available", mock.Anything).Return(false)
		case failing, serving:
			m.On("Available", mock.Anything).Return(true)
			configure(m, state == serving)
		}
		backends[i] = m
	}
	return backends
}

func assertMocks(t *testing.T, backends []interfaces.StorageBackend) {
	for _, b := range backends {
		b.(*MockStorageBackend).AssertExpectations(t)
	}
}

func TestMultiStorageBackend_Available(t *testing.T) {
	tests := map[string]struct {
		available []bool
		want      bool
	}{
		"all up":      {[]bool{true, true}, true},
		"one up":      {[]bool{false, true, false}, true},
		"all down":    {[]bool{false, false}, false},
		"no backends": {nil, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var backends []interfaces.StorageBackend
			for _, up := range tt.available {
				m := &MockStorageBackend{name: "m"}
				m.On("Available", mock.Anything).Return(up).Maybe()
				backends = append(backends, m)
			}

			assert.Equal(t, tt.want, NewMultiStorageBackend(backends, discardLogger()).Available(context.Background()))
		})
	}
}

func TestMultiStorageBackend_Fetch(t *testing.T) {
	tests := map[string]struct {
		states  []backendState
		wantErr error
	}{
		"first serves":             {states: []backendState{serving, untouched}},
		"falls back after failure": {states: []backendState{failing, serving}},
		"skips offline":            {states: []backendState{offline, serving}},
		"all fail":                 {states: []backendState{failing, failing}, wantErr: errBackend},
		"all offline":              {states: []backendState{offline, offline}, wantErr: interfaces.ErrBackendUnavailable},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			backends := mockBackends(tt.states, func(m *MockStorageBackend, ok bool) {
				if ok {
					m.On("Fetch", mock.Anything, evidenceCID, interfaces.EvidenceType).Return(evidencePayload, nil)
				} else {
					m.On("Fetch", mock.Anything, evidenceCID, interfaces.EvidenceType).Return(nil, errBackend)
				}
			})

			data, err := NewMultiStorageBackend(backends, discardLogger()).Fetch(context.Background(), evidenceCID, interfaces.EvidenceType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, data)
			} else {
				require.NoError(t, err)
				assert.Equal(t, evidencePayload, data)
			}
			assertMocks(t, backends)
		})
	}
}

func TestMultiStorageBackend_Store(t *testing.T) {
	tests := map[string]struct {
		states  []backendState
		wantErr error
	}{
		"stores everywhere":     {states: []backendState{serving, serving}},
		"tolerates one failure": {states: []backendState{failing, serving}},
		"skips offline":         {states: []backendState{offline, serving}},
		"all fail":              {states: []backendState{failing, failing}, wantErr: errBackend},
		"all offline":           {states: []backendState{offline}, wantErr: interfaces.ErrBackendUnavailable},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			backends := mockBackends(tt.states, func(m *MockStorageBackend, ok bool) {
				if ok {
					m.On("Store", mock.Anything, evidencePayload, interfaces.EvidenceType).Return(evidenceCID, nil)
				} else {
					m.On("Store", mock.Anything, evidencePayload, interfaces.EvidenceType).Return(interfaces.ContentID(""), errBackend)
				}
			})

			id, err := NewMultiStorageBackend(backends, discardLogger()).Store(context.Background(), evidencePayload, interfaces.EvidenceType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, id)
			} else {
				require.NoError(t, err)
				assert.Equal(t, evidenceCID, id)
			}
			assertMocks(t, backends)
		})
	}
}

func TestMultiStorageBackend_StoreReturnsFirstContentID(t *testing.T) {
	pinata := &MockStorageBackend{name: "pinata"}
	pinata.On("Available", mock.Anything).Return(true)
	pinata.On("Store", mock.Anything, evidencePayload, interfaces.EvidenceType).Return(evidenceCID, nil)

	file := &MockStorageBackend{name: "file"}
	file.On("Available", mock.Anything).Return(true)
	file.On("Store", mock.Anything, evidencePayload, interfaces.EvidenceType).Return(contentHash(evidencePayload), nil)

	multi := NewMultiStorageBackend([]interfaces.StorageBackend{pinata, file}, discardLogger())
	id, err := multi.Store(context.Background(), evidencePayload, interfaces.EvidenceType)
	require.NoError(t, err)
	assert.Equal(t, evidenceCID, id)

	pinata.AssertExpectations(t)
	file.AssertExpectations(t)
	assert.Equal(t, "multi:[mock:pinata,mock:file]", multi.LocationURI())
}
