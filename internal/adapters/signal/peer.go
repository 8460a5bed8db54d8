package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/core"
	"github.com/dkeye/Signal/internal/domain"
)

func (b *Broker) handleNew(st *connState, data []byte) {
	var info domain.PeerInfo
	if err := json.Unmarshal(data, &info); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad new payload")
		return
	}
	if info.ID == "" {
		log.Warn().Str("module", "signal").Msg("new payload without peer id")
		return
	}

	// A colliding id silently replaces the earlier registration.
	b.Peers.Register(&core.Peer{Info: info, Out: st.out})
	st.registered = info.ID

	log.Info().Str("module", "signal").Str("peer", string(info.ID)).Str("name", info.Name).
		Str("user_agent", info.UserAgent).Msg("peer registered, notifying all peers")
	b.broadcastPeers()
}

// dropPeer runs on reader exit: unregister and tell everyone who is left.
func (b *Broker) dropPeer(st *connState) {
	if st.registered == "" {
		log.Info().Str("module", "signal").Msg("connection closed before registration")
		return
	}
	b.Peers.Remove(st.registered)
	b.broadcastPeers()
}

// broadcastPeers sends the current peer list to every registered peer,
// including a peer that just joined.
func (b *Broker) broadcastPeers() {
	frame, err := encode(kindPeers, b.Peers.Snapshot())
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode peers frame")
		return
	}
	b.Peers.Each(func(p *core.Peer) {
		if err := p.Out.Push(frame); err != nil {
			log.Warn().Str("module", "signal").Str("peer", string(p.Info.ID)).Msg("peers update not delivered")
		}
	})
}
