package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/pkg/models"
)

const (
	// PricesKey is the hash holding the latest snapshot per trading pair.
	PricesKey = "prices"
	// UpdatesChannel carries each raw batch to the broadcaster verbatim.
	UpdatesChannel = "prices:updates"

	// RestartGraceDelay is how long main waits after a transport failure
	// before exiting, so the supervisor restart is not a tight crash loop.
	RestartGraceDelay = 3 * time.Second
)

// Listener consumes the exchange's all-market ticker stream, upserts one
// snapshot per trading pair into the prices hash and republishes the raw
// batch on the updates channel. It owns no other state: a transport failure
// ends Run and the process is expected to exit and be restarted.
type Listener struct {
	conn   FeedConn
	rdb    RedisClient
	logger *zap.Logger
	now    func() time.Time
}

func New(conn FeedConn, rdb RedisClient, logger *zap.Logger) *Listener {
	return &Listener{
		conn:   conn,
		rdb:    rdb,
		logger: logger,
		now:    time.Now,
	}
}

// Run reads the feed until the connection fails or ctx is cancelled.
// Malformed messages are discarded without terminating the connection;
// a transport error is returned so the caller can crash-and-restart.
func (l *Listener) Run(ctx context.Context) error {
	for {
		_, msg, err := l.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil // shutdown closed the connection
			}
			return fmt.Errorf("feed read: %w", err)
		}
		l.handleMessage(ctx, msg)
	}
}

func (l *Listener) handleMessage(ctx context.Context, msg []byte) {
	var batch []models.RawTick
	if err := json.Unmarshal(msg, &batch); err != nil {
		l.logger.Warn("Discarding malformed feed message", zap.Error(err))
		return
	}
	if len(batch) == 0 {
		return
	}

	now := l.now().UnixMilli()
	pipe := l.rdb.Pipeline()
	stored := 0
	for _, tick := range batch {
		if tick.Symbol == "" || tick.LastPrice == "" {
			continue
		}
		snap := models.AssetSnapshot{
			Symbol:      tick.Symbol,
			Price:       tick.LastPrice,
			PriceChange: tick.PriceChange,
			High:        tick.High,
			Low:         tick.Low,
			Volume:      tick.Volume,
			Timestamp:   now,
		}
		payload, err := json.Marshal(snap)
		if err != nil {
			l.logger.Error("JSON Marshal Error", zap.Error(err), zap.String("symbol", tick.Symbol))
			continue
		}
		pipe.HSet(ctx, PricesKey, tick.Symbol, payload)
		stored++
	}

	// The broadcaster joins the published batch directly; it never re-reads
	// the hash for this cycle, so the two writes need not be atomic.
	pipe.Publish(ctx, UpdatesChannel, msg)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("Redis Pipeline Error", zap.Error(err), zap.Int("ticks", stored))
		return
	}
	l.logger.Debug("Batch ingested", zap.Int("ticks", stored), zap.Int("batch_size", len(batch)))
}
