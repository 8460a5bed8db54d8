package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/domain"
)

// Peer is a registered signaling participant: its announced info plus the
// outbound queue its connection writer drains.
type Peer struct {
	Info domain.PeerInfo
	Out  *Outbox
}

// Registry is the shared peer table, mutated concurrently by every
// connection's reader goroutine.
type Registry struct {
	mu    sync.RWMutex
	peers map[domain.PeerID]*Peer
}

func NewRegistry() *Registry {
	return &Registry{peers: make(map[domain.PeerID]*Peer)}
}

// Register inserts or replaces. A later registration under the same id
// silently takes over the entry.
func (r *Registry) Register(p *Peer) {
	r.mu.Lock()
	r.peers[p.Info.ID] = p
	r.mu.Unlock()
	log.Info().Str("module", "core.registry").Str("peer", string(p.Info.ID)).Msg("registered peer")
}

// Remove deletes the entry if present, no-op otherwise.
func (r *Registry) Remove(id domain.PeerID) {
	r.mu.Lock()
	delete(r.peers, id)
	r.mu.Unlock()
	log.Info().Str("module", "core.registry").Str("peer", string(id)).Msg("removed peer")
}

func (r *Registry) Get(id domain.PeerID) (*Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[id]
	return p, ok
}

// Snapshot returns the public info of every registered peer.
func (r *Registry) Snapshot() []domain.PeerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PeerInfo, 0, len(r.peers))
	for _, p := range r.peers {
		out = append(out, p.Info)
	}
	return out
}

// Each calls fn for every registered peer. The peer set is captured under
// the lock and fn runs outside it.
func (r *Registry) Each(fn func(*Peer)) {
	r.mu.RLock()
	peers := make([]*Peer, 0, len(r.peers))
	for _, p := range r.peers {
		peers = append(peers, p)
	}
	r.mu.RUnlock()

	for _, p := range peers {
		fn(p)
	}
}
