package signal

import "github.com/rs/zerolog/log"

// Keepalive is a protocol-level heartbeat: echoed to the sender only.
func (b *Broker) handleKeepalive(st *connState) {
	frame, err := encode(kindKeepalive, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode keepalive frame")
		return
	}
	if err := st.out.Push(frame); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("keepalive not delivered")
	}
}
