package broadcaster_test

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/cmd/gateway/internal/broadcaster"
	"github.com/satya1844/cryptrack/cmd/gateway/internal/testutils"
	"github.com/satya1844/cryptrack/pkg/models"
)

func newBroadcaster(sink *testutils.MockSink, provider *testutils.MockTableProvider) *broadcaster.Broadcaster {
	return broadcaster.New(nil, provider, sink, zap.NewNop(), defaultOpts)
}

func TestHandleBatch_SendsEnrichedPayload(t *testing.T) {
	sink := &testutils.MockSink{}
	provider := &testutils.MockTableProvider{Table: tableWith("BTC")}
	b := newBroadcaster(sink, provider)

	b.HandleBatch(`[{"s":"BTCUSDT","c":"65000","P":"1.2","h":"66000","l":"64000","v":"1000"},
	               {"s":"BTCBUSD","c":"64990","P":"1.1","h":"66000","l":"64000","v":"900"}]`)

	if sink.Count() != 1 {
		t.Fatalf("Expected one broadcast, got %d", sink.Count())
	}

	var out []models.EnrichedAsset
	if err := json.Unmarshal([]byte(sink.Payloads[0]), &out); err != nil {
		t.Fatalf("Broadcast payload is not a JSON array: %v", err)
	}
	if len(out) != 1 || out[0].Symbol != "BTCUSDT" {
		t.Errorf("Expected single BTCUSDT entry, got %+v", out)
	}
}

func TestHandleBatch_MalformedPayloadIsDiscarded(t *testing.T) {
	sink := &testutils.MockSink{}
	b := newBroadcaster(sink, &testutils.MockTableProvider{Table: tableWith("BTC")})

	b.HandleBatch(`{"not":"an array"}`)
	b.HandleBatch(`garbage`)

	if sink.Count() != 0 {
		t.Errorf("Malformed payloads must not be broadcast, got %d", sink.Count())
	}
}

func TestHandleBatch_EmptyJoinIsNotBroadcast(t *testing.T) {
	sink := &testutils.MockSink{}
	b := newBroadcaster(sink, &testutils.MockTableProvider{Table: tableWith("BTC")})

	// All ticks untracked: join produces nothing, so nothing is sent.
	b.HandleBatch(`[{"s":"DOGEUSDT","c":"0.12","P":"5","h":"0.2","l":"0.1","v":"100"}]`)

	if sink.Count() != 0 {
		t.Errorf("Empty join result must not be broadcast, got %d", sink.Count())
	}
}
