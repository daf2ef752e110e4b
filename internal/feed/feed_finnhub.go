package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"stockstream/internal/metrics"
	"stockstream/internal/record"
)

// subscribeMessage asks finnhub to start streaming trades for one symbol.
type subscribeMessage struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

// finnhubTrade is one trade inside a trade payload, field names per the
// finnhub websocket API.
type finnhubTrade struct {
	Symbol    string  `json:"s"`
	Price     float64 `json:"p"`
	Volume    float64 `json:"v"`
	TradeTime int64   `json:"t"`
}

// finnhubMessage covers the three shapes the server sends: a trade payload, a
// keep-alive ping, or an error. The shape is resolved once here at the
// boundary; nothing downstream ever sees an ambiguous message.
type finnhubMessage struct {
	Type string         `json:"type"`
	Data []finnhubTrade `json:"data"`
	Msg  string         `json:"msg"`
}

func (f *Feed) runFinnhub(ctx context.Context, out chan<- record.Tick) error {
	if len(f.symbols) == 0 {
		return fmt.Errorf("finnhub feed requires at least one symbol")
	}
	if f.token == "" {
		return fmt.Errorf("finnhub feed requires a token")
	}

	endpoint := fmt.Sprintf("%s?token=%s", f.url, url.QueryEscape(f.token))
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial finnhub: %w", err)
	}
	defer conn.Close()

	f.log.Info().Str("provider", ProviderFinnhub).Strs("symbols", f.symbols).Msg("connected market data feed")

	for _, sym := range f.symbols {
		if err := conn.WriteJSON(subscribeMessage{Type: "subscribe", Symbol: sym}); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read finnhub stream: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg finnhubMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			f.log.Warn().Err(err).Msg("failed to decode finnhub message")
			continue
		}

		switch msg.Type {
		case "ping":
			// Keep-alive; acknowledge and move on, nothing is persisted.
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.PongMessage, nil); err != nil {
				f.log.Warn().Err(err).Msg("finnhub pong failed")
			}
		case "error":
			metrics.FeedErrors.Inc()
			f.log.Warn().Str("msg", msg.Msg).Msg("finnhub error payload")
		case "trade":
			for _, trade := range msg.Data {
				tick := record.Tick{
					Symbol:    trade.Symbol,
					Price:     trade.Price,
					Timestamp: time.UnixMilli(trade.TradeTime).UTC(),
				}
				select {
				case out <- tick:
					metrics.TicksTotal.WithLabelValues(trade.Symbol).Inc()
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		default:
			f.log.Debug().Str("type", msg.Type).Msg("ignoring finnhub message")
		}
	}
}
