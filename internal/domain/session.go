package domain

import (
	"strings"
	"time"
)

type SessionID string

// SessionSeparator joins the two participant ids into a session id ("a-b").
// The bye handler splits on it to recover both ends of a call.
const SessionSeparator = "-"

type CallStatus string

const (
	CallCalling   CallStatus = "calling"   // offer sent, waiting for answer
	CallConnected CallStatus = "connected" // answer received, call in progress
	CallEnded     CallStatus = "ended"     // call terminated
)

type CallSession struct {
	SessionID SessionID
	CallerID  PeerID
	CalleeID  PeerID
	StartedAt time.Time
	Status    CallStatus
}

// Participants splits a session id into its two peer ids. ok is false when
// the id does not hold exactly two parts.
func (id SessionID) Participants() (a, b PeerID, ok bool) {
	parts := strings.Split(string(id), SessionSeparator)
	if len(parts) != 2 {
		return "", "", false
	}
	return PeerID(parts[0]), PeerID(parts[1]), true
}
