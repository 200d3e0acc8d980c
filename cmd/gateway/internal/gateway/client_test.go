package gateway_test

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/cmd/gateway/internal/gateway"
	"github.com/satya1844/cryptrack/cmd/gateway/internal/hub"
)

// slowConn widens the gap between consecutive writes on the underlying
// conn. A second goroutine writing to the same conn would land its bytes
// inside another writer's half-written frame.
type slowConn struct {
	net.Conn
}

func (c slowConn) Write(b []byte) (int, error) {
	time.Sleep(2 * time.Millisecond)
	return c.Conn.Write(b)
}

func startClient(t *testing.T, serverConn net.Conn) *hub.Hub {
	t.Helper()
	h := hub.NewHub(zap.NewNop())
	gateway.NewClient(serverConn, h, zap.NewNop()).Start()
	return h
}

func TestClient_AnswersPingWithPong(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	startClient(t, server)

	ping := ws.MaskFrameInPlace(ws.NewPingFrame([]byte("ka")))
	if err := ws.WriteFrame(client, ping); err != nil {
		t.Fatalf("Failed to send ping: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	frame, err := ws.ReadFrame(client)
	if err != nil {
		t.Fatalf("Failed to read pong: %v", err)
	}
	if frame.Header.OpCode != ws.OpPong {
		t.Fatalf("Expected pong, got opcode %v", frame.Header.OpCode)
	}
	if string(frame.Payload) != "ka" {
		t.Errorf("Pong must echo the ping payload, got %q", frame.Payload)
	}
}

func TestClient_PongNeverInterleavesWithBroadcast(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	h := hub.NewHub(zap.NewNop())
	gateway.NewClient(slowConn{server}, h, zap.NewNop()).Start()
	time.Sleep(10 * time.Millisecond)

	payload := []byte(`[{"symbol":"BTCUSDT","rank":1}]`)
	const broadcasts = 20

	go func() {
		for i := 0; i < broadcasts; i++ {
			h.Broadcast(payload)
		}
	}()
	go func() {
		for i := 0; i < broadcasts; i++ {
			ws.WriteFrame(client, ws.MaskFrameInPlace(ws.NewPingFrame([]byte("pp"))))
			time.Sleep(time.Millisecond)
		}
	}()

	// Every frame coming back must parse cleanly: a pong written from a
	// second goroutine would embed itself inside a broadcast frame's
	// payload and break the stream for this subscriber.
	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	texts := 0
	for texts < broadcasts {
		frame, err := ws.ReadFrame(client)
		if err != nil {
			t.Fatalf("Stream corrupted after %d broadcast frames: %v", texts, err)
		}
		switch frame.Header.OpCode {
		case ws.OpText:
			if !bytes.Equal(frame.Payload, payload) {
				t.Fatalf("Broadcast payload corrupted: %q", frame.Payload)
			}
			texts++
		case ws.OpPong:
			if string(frame.Payload) != "pp" {
				t.Fatalf("Pong payload corrupted: %q", frame.Payload)
			}
		default:
			t.Fatalf("Unexpected opcode %v", frame.Header.OpCode)
		}
	}
}
