// Package domain contains entity without logic, just meta-data
package domain

type PeerID string

// PeerInfo is the public identity a client announces when it registers.
// Field names match the wire protocol.
type PeerInfo struct {
	ID        PeerID `json:"id"`
	Name      string `json:"name"`
	UserAgent string `json:"user_agent"`
}
