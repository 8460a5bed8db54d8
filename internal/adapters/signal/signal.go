package signal

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/core"
	"github.com/dkeye/Signal/internal/domain"
)

// Broker routes signaling frames between registered peers and tracks the
// call sessions they negotiate. All shared state lives in the registry and
// the session tracker; per-connection state is owned by the reader.
type Broker struct {
	Peers    *core.Registry
	Sessions *core.SessionTracker
}

func NewBroker(peers *core.Registry, sessions *core.SessionTracker) *Broker {
	return &Broker{Peers: peers, Sessions: sessions}
}

// connState is owned exclusively by the connection's reader goroutine.
// registered stays empty until a "new" frame arrives.
type connState struct {
	out        *core.Outbox
	registered domain.PeerID
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the connection pumps.
func (b *Broker) HandleSignal(ctx context.Context, c *gin.Context) {
	log.Info().Str("module", "signal").Str("remote", c.Request.RemoteAddr).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	out := core.NewOutbox()
	ctx, cancel := context.WithCancel(ctx)

	go b.writePump(ctx, ws, out)
	go b.readPump(ctx, cancel, ws, out)
}

// handleFrame dispatches one inbound frame. A frame that fails to decode is
// dropped with a log line; the connection is never torn down for it.
func (b *Broker) handleFrame(st *connState, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad frame")
		return
	}

	switch env.Type {
	case kindNew:
		b.handleNew(st, env.Data)
	case kindOffer:
		b.handleOffer(st, env.Data)
	case kindAnswer:
		b.handleAnswer(st, env.Data)
	case kindCandidate:
		b.handleCandidate(st, env.Data)
	case kindBye:
		b.handleBye(st, env.Data)
	case kindKeepalive:
		b.handleKeepalive(st)
	case kindPeers, kindError, kindLeave:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("server-originated kind from client, ignoring")
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

// sendError reports a failed request back to the originating connection.
func (b *Broker) sendError(out *core.Outbox, request, reason string) {
	frame, err := encode(kindError, signalingError{Request: request, Reason: reason})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode error frame")
		return
	}
	if err := out.Push(frame); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("request", request).Msg("error frame not delivered")
	}
}
