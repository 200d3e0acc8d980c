package listener

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

// FeedConn abstracts the exchange websocket connection
type FeedConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// FeedDialer opens the streaming connection to the exchange
type FeedDialer interface {
	Dial(url string) (FeedConn, error)
}

// RedisClient abstracts the store operations used by the listener
type RedisClient interface {
	Pipeline() redis.Pipeliner
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// GorillaDialer adapts websocket.DefaultDialer to FeedDialer
type GorillaDialer struct{}

func (GorillaDialer) Dial(url string) (FeedConn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
