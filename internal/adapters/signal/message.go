package signal

import (
	"encoding/json"

	"github.com/dkeye/Signal/internal/core"
	"github.com/dkeye/Signal/internal/domain"
)

// Wire envelope: {"type": "...", "data": ...}. Data stays raw so that
// offer/answer/candidate bodies are forwarded byte-for-byte.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	kindNew       = "new"
	kindBye       = "bye"
	kindOffer     = "offer"
	kindAnswer    = "answer"
	kindCandidate = "candidate"
	kindLeave     = "leave"
	kindKeepalive = "keepalive"
	kindPeers     = "peers"
	kindError     = "error"
)

// negotiation is the routing header every offer/answer/candidate payload
// must carry; any other payload fields pass through untouched.
type negotiation struct {
	From      domain.PeerID    `json:"from"`
	To        domain.PeerID    `json:"to"`
	SessionID domain.SessionID `json:"session_id"`
}

type byebye struct {
	SessionID domain.SessionID `json:"session_id"`
	From      domain.PeerID    `json:"from"`
}

type signalingError struct {
	Request string `json:"request"`
	Reason  string `json:"reason"`
}

// encode marshals data into an envelope of the given kind. A nil data
// yields a bare {"type": kind} frame.
func encode(kind string, data any) (core.Frame, error) {
	env := envelope{Type: kind}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// encodeRaw wraps an already-serialized payload without re-encoding it.
func encodeRaw(kind string, data json.RawMessage) (core.Frame, error) {
	return json.Marshal(envelope{Type: kind, Data: data})
}
