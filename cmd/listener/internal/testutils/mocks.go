package testutils

import (
	"io"
	"sync"
)

// MockFeedConn replays scripted feed messages, then reports a transport
// failure (io.EOF) like a dropped exchange socket would.
type MockFeedConn struct {
	Messages [][]byte
	Index    int
	Mu       sync.Mutex
	Closed   bool
}

func (m *MockFeedConn) ReadMessage() (int, []byte, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if m.Closed || m.Index >= len(m.Messages) {
		return 0, nil, io.EOF
	}
	msg := m.Messages[m.Index]
	m.Index++
	return 1, msg, nil
}

func (m *MockFeedConn) Close() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
	return nil
}
