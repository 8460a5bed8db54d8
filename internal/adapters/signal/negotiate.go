package signal

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/domain"
)

func (b *Broker) handleOffer(st *connState, data []byte) {
	var n negotiation
	if err := json.Unmarshal(data, &n); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad offer payload")
		return
	}
	log.Info().Str("module", "signal").Str("from", string(n.From)).Str("to", string(n.To)).
		Str("session", string(n.SessionID)).Msg("call initiated")

	b.Sessions.Create(n.SessionID, n.From, n.To)

	target, ok := b.Peers.Get(n.To)
	if !ok {
		log.Error().Str("module", "signal").Str("to", string(n.To)).Msg("call failed: recipient not found")
		b.Sessions.SetStatus(n.SessionID, domain.CallEnded)
		b.sendError(st.out, kindOffer, fmt.Sprintf("Recipient [%s] not available", n.To))
		return
	}

	frame, err := encodeRaw(kindOffer, data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode offer frame")
		return
	}
	if err := target.Out.Push(frame); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("to", string(n.To)).Msg("offer not delivered")
		b.Sessions.SetStatus(n.SessionID, domain.CallEnded)
		b.sendError(st.out, kindOffer, fmt.Sprintf("Recipient [%s] unreachable", n.To))
		return
	}
	log.Info().Str("module", "signal").Str("to", string(n.To)).Msg("offer delivered")
}

func (b *Broker) handleAnswer(st *connState, data []byte) {
	var n negotiation
	if err := json.Unmarshal(data, &n); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad answer payload")
		return
	}
	log.Info().Str("module", "signal").Str("from", string(n.From)).Str("to", string(n.To)).
		Str("session", string(n.SessionID)).Msg("call answered")

	if _, ok := b.Sessions.Get(n.SessionID); ok {
		b.Sessions.SetStatus(n.SessionID, domain.CallConnected)
	} else {
		log.Warn().Str("module", "signal").Str("session", string(n.SessionID)).Msg("no session found for answer")
	}

	target, ok := b.Peers.Get(n.To)
	if !ok {
		log.Error().Str("module", "signal").Str("to", string(n.To)).Msg("answer failed: caller not found")
		b.Sessions.SetStatus(n.SessionID, domain.CallEnded)
		b.sendError(st.out, kindAnswer, fmt.Sprintf("Caller [%s] no longer available", n.To))
		return
	}

	frame, err := encodeRaw(kindAnswer, data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode answer frame")
		return
	}
	if err := target.Out.Push(frame); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("to", string(n.To)).Msg("answer not delivered")
		b.Sessions.SetStatus(n.SessionID, domain.CallEnded)
		b.sendError(st.out, kindAnswer, fmt.Sprintf("Caller [%s] unreachable", n.To))
		return
	}
	log.Info().Str("module", "signal").Str("to", string(n.To)).Msg("answer delivered")
}

// Candidate relay is best effort: a miss or a closed queue only warns, no
// session mutation, no error reply.
func (b *Broker) handleCandidate(st *connState, data []byte) {
	var n negotiation
	if err := json.Unmarshal(data, &n); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}
	log.Debug().Str("module", "signal").Str("from", string(n.From)).Str("to", string(n.To)).
		Str("session", string(n.SessionID)).Msg("ice candidate")

	target, ok := b.Peers.Get(n.To)
	if !ok {
		log.Warn().Str("module", "signal").Str("to", string(n.To)).Msg("candidate target peer not found")
		return
	}

	frame, err := encodeRaw(kindCandidate, data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode candidate frame")
		return
	}
	if err := target.Out.Push(frame); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("to", string(n.To)).Msg("candidate not relayed")
		return
	}
	log.Debug().Str("module", "signal").Str("to", string(n.To)).Msg("candidate relayed")
}
