package turn

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/config"
)

// allocation is a reserved relay binding for one client. Nothing creates
// allocations yet; the relay branch below is an extension point, not a
// working data path.
type allocation struct {
	clientAddr net.Addr
	relayAddr  net.Addr
	username   string
}

// Responder answers STUN binding requests on a UDP socket and classifies
// everything else as relay traffic against the allocation table.
type Responder struct {
	cfg config.TurnConfig

	mu          sync.Mutex
	allocations map[string]allocation
}

func NewResponder(cfg config.TurnConfig) *Responder {
	return &Responder{cfg: cfg, allocations: make(map[string]allocation)}
}

// Start binds the UDP socket and serves until ctx is done. When the public
// IP is not configured the responder is skipped without error.
func (r *Responder) Start(ctx context.Context) error {
	if r.cfg.PublicIP == "" || strings.Contains(r.cfg.PublicIP, "YOUR PUBLIC IP") {
		log.Warn().Str("module", "turn").Msg("public IP not configured, skipping connectivity responder")
		return nil
	}

	conn, err := net.ListenPacket("udp4", fmt.Sprintf("0.0.0.0:%d", r.cfg.Port))
	if err != nil {
		return fmt.Errorf("bind connectivity responder: %w", err)
	}
	log.Info().Str("module", "turn").Str("addr", conn.LocalAddr().String()).Msg("connectivity responder listening")

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go r.serve(conn)
	return nil
}

func (r *Responder) serve(conn net.PacketConn) {
	buf := make([]byte, 65536)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			// Closed on shutdown.
			log.Info().Err(err).Str("module", "turn").Msg("responder read loop done")
			return
		}
		pkt := buf[:n]
		if isStunMessage(pkt) {
			r.handleBinding(conn, addr, len(pkt))
		} else {
			r.handleRelay(pkt, addr)
		}
	}
}

func (r *Responder) handleBinding(conn net.PacketConn, addr net.Addr, size int) {
	log.Debug().Str("module", "turn").Str("from", addr.String()).Int("bytes", size).Msg("binding request")

	udp, ok := addr.(*net.UDPAddr)
	if !ok {
		log.Warn().Str("module", "turn").Str("from", addr.String()).Msg("binding request from non-UDP source")
		return
	}
	resp := bindingResponse(udp)
	if resp == nil {
		log.Warn().Str("module", "turn").Str("from", addr.String()).Msg("binding request from non-IPv4 source")
		return
	}
	if _, err := conn.WriteTo(resp, addr); err != nil {
		log.Warn().Err(err).Str("module", "turn").Str("to", addr.String()).Msg("binding response write")
		return
	}
	log.Debug().Str("module", "turn").Str("to", addr.String()).Msg("sent binding response")
}

func (r *Responder) handleRelay(pkt []byte, addr net.Addr) {
	r.mu.Lock()
	alloc, ok := r.allocations[addr.String()]
	r.mu.Unlock()
	if !ok {
		return
	}
	// No forwarding yet, only the intent is logged.
	log.Info().Str("module", "turn").Int("bytes", len(pkt)).Str("from", addr.String()).
		Str("relay", alloc.relayAddr.String()).Msg("would relay")
}
