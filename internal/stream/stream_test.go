package stream

import (
	"btc-dca-dashboard/internal/types"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

const tickerJSON = `{"e":"24hrTicker","E":1672515782136,"s":"BTCUSDT","p":"120.50","P":"0.402","w":"30000.1","c":"30050.25","Q":"0.01","o":"29929.75","h":"30100.00","l":"29800.00","v":"100","q":"3000000","O":1672429382136,"C":1672515782136,"F":1,"L":2,"n":2}`

func TestParseTickerMessage(t *testing.T) {
	now := time.Now()
	tick, err := parseTick([]byte(tickerJSON), "FALLBACK", now)
	if err != nil {
		t.Fatalf("parseTick: %v", err)
	}
	if tick.Price != 30050.25 {
		t.Errorf("expected price 30050.25, got %v", tick.Price)
	}
	if tick.ChangePercent != 0.402 {
		t.Errorf("expected change 0.402, got %v", tick.ChangePercent)
	}
	if tick.Symbol != "BTCUSDT" || !tick.Timestamp.Equal(now) {
		t.Errorf("unexpected tick %+v", tick)
	}
}

func TestParseTradeMessage(t *testing.T) {
	msg := `{"e":"trade","E":1672515782136,"s":"BTCUSDT","t":12345,"p":"29999.99","q":"0.001","T":1672515782136,"m":true,"M":true}`
	tick, err := parseTick([]byte(msg), "BTCUSDT", time.Now())
	if err != nil {
		t.Fatalf("parseTick: %v", err)
	}
	if tick.Price != 29999.99 || tick.ChangePercent != 0 {
		t.Errorf("unexpected tick %+v", tick)
	}
}

func TestParseRejectsMessagesWithoutPrice(t *testing.T) {
	for _, msg := range []string{`{"result":null,"id":1}`, `not json`, `{"e":"trade","p":"0"}`} {
		if _, err := parseTick([]byte(msg), "BTCUSDT", time.Now()); err == nil {
			t.Errorf("expected error for %s", msg)
		}
	}
}

func newStreamServer(t *testing.T, messages []string, connections *int32) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		atomic.AddInt32(connections, 1)

		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestStreamPublishesTicksInOrder(t *testing.T) {
	var connections int32
	server := newStreamServer(t, []string{
		`{"e":"24hrTicker","s":"BTCUSDT","c":"29950","P":"-0.1"}`,
		`{"id":1,"result":null}`,
		`{"e":"24hrTicker","s":"BTCUSDT","c":"30050","P":"0.2"}`,
	}, &connections)
	defer server.Close()

	s := New(wsURL(server), "BTCUSDT", 50*time.Millisecond)
	ticks := s.Subscribe(10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	var got []types.PriceTick
	for len(got) < 2 {
		select {
		case tk := <-ticks:
			got = append(got, tk)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for ticks, got %v", got)
		}
	}

	if got[0].Price != 29950 || got[1].Price != 30050 {
		t.Errorf("expected ticks 29950 then 30050, got %v", got)
	}
	if latest, ok := s.Latest(); !ok || latest.Price != 30050 {
		t.Errorf("expected latest 30050, got %v ok=%v", latest, ok)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}

	if _, open := <-ticks; open {
		t.Error("expected subscriber channel to be closed after Run returns")
	}
	if _, ok := s.Latest(); ok {
		t.Error("expected unknown price after shutdown")
	}
	if _, open := <-s.Subscribe(1); open {
		t.Error("expected subscription after shutdown to be closed")
	}
}

func TestStreamReconnectsAfterDrop(t *testing.T) {
	var connections int32
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		atomic.AddInt32(&connections, 1)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"trade","s":"BTCUSDT","p":"30000"}`))
		// drop the connection right away
		conn.Close()
	}))
	defer server.Close()

	s := New(wsURL(server), "BTCUSDT", 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&connections) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected a reconnect, got %d connections", atomic.LoadInt32(&connections))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStreamStopsWhileWaitingToReconnect(t *testing.T) {
	s := New("ws://127.0.0.1:1/unreachable", "BTCUSDT", time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop during reconnect delay")
	}
}
