package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/domain"
)

func (b *Broker) handleBye(_ *connState, data []byte) {
	var bye byebye
	if err := json.Unmarshal(data, &bye); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad bye payload")
		return
	}
	log.Info().Str("module", "signal").Str("from", string(bye.From)).
		Str("session", string(bye.SessionID)).Msg("call ended")

	b.Sessions.SetStatus(bye.SessionID, domain.CallEnded)

	// Both ends of the call are recovered from the session id itself, not
	// from the session record.
	first, second, ok := bye.SessionID.Participants()
	if !ok {
		log.Warn().Str("module", "signal").Str("session", string(bye.SessionID)).Msg("unexpected session id format for bye")
		return
	}

	frame, err := encode(kindBye, bye)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode bye frame")
		return
	}
	for _, id := range []domain.PeerID{first, second} {
		if id == bye.From {
			// Never echo bye back to its originator.
			continue
		}
		peer, ok := b.Peers.Get(id)
		if !ok {
			log.Warn().Str("module", "signal").Str("peer", string(id)).Msg("peer not found for call end notification")
			continue
		}
		if err := peer.Out.Push(frame); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("peer", string(id)).Msg("call end notification not delivered")
			continue
		}
		log.Info().Str("module", "signal").Str("peer", string(id)).Msg("call end notification sent")
	}
}
