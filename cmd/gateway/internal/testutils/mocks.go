package testutils

import (
	"context"
	"sync"

	"github.com/satya1844/cryptrack/cmd/gateway/internal/metadata"
	"github.com/satya1844/cryptrack/pkg/models"
)

// MockClient simulates a connected websocket client
type MockClient struct {
	IDVal    string
	RawBytes []string
	Closed   bool
	Mu       sync.Mutex
}

func NewMockClient(id string) *MockClient {
	return &MockClient{IDVal: id}
}

func (m *MockClient) ID() string { return m.IDVal }

func (m *MockClient) Close() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
}

func (m *MockClient) SendBytes(b []byte) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.RawBytes = append(m.RawBytes, string(b))
}

func (m *MockClient) Received() []string {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	out := make([]string, len(m.RawBytes))
	copy(out, m.RawBytes)
	return out
}

func (m *MockClient) IsClosed() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.Closed
}

// MockTableProvider serves a fixed metadata table
type MockTableProvider struct {
	Table metadata.Table
}

func (m *MockTableProvider) Current() metadata.Table { return m.Table }

// MockSink records broadcast payloads
type MockSink struct {
	Payloads []string
	Mu       sync.Mutex
}

func (m *MockSink) Broadcast(msg []byte) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Payloads = append(m.Payloads, string(msg))
}

func (m *MockSink) Count() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Payloads)
}

// MockSource simulates the store side of the gateway
type MockSource struct {
	Entries  []models.MetadataEntry
	Err      error
	Payloads chan string
}

func (m *MockSource) LoadMetadata(ctx context.Context) ([]models.MetadataEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Entries, nil
}

func (m *MockSource) RunPubSub(ctx context.Context, onMessage func(payload string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-m.Payloads:
			if !ok {
				return
			}
			onMessage(p)
		}
	}
}
