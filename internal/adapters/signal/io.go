package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/core"
)

const writeWait = 5 * time.Second

func (b *Broker) writePump(ctx context.Context, ws *websocket.Conn, out *core.Outbox) {
	defer ws.Close()
	for {
		frame, err := out.Pop(ctx)
		if err != nil {
			log.Info().Str("module", "signal").Msg("writePump done")
			return
		}
		if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
			return
		}
		if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
			return
		}
	}
}

// readPump consumes inbound frames one at a time and feeds them to the
// router. On exit it unregisters the peer, notifies the remaining peers and
// cancels the writer.
func (b *Broker) readPump(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, out *core.Outbox) {
	st := &connState{out: out}
	defer func() {
		b.dropPeer(st)
		out.Close()
		cancel()
		_ = ws.Close()
		log.Info().Str("module", "signal").Str("peer", string(st.registered)).Msg("readPump closing")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := ws.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("peer", string(st.registered)).Msg("readPump read error")
				return
			}
			b.handleFrame(st, data)
		}
	}
}
