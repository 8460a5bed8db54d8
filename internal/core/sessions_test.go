package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Signal/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	tr := NewSessionTracker()
	tr.Create("a-b", "a", "b")

	s, ok := tr.Get("a-b")
	require.True(t, ok)
	require.Equal(t, domain.CallCalling, s.Status)
	require.Equal(t, domain.PeerID("a"), s.CallerID)
	require.Equal(t, domain.PeerID("b"), s.CalleeID)
	require.False(t, s.StartedAt.IsZero())

	tr.SetStatus("a-b", domain.CallConnected)
	s, _ = tr.Get("a-b")
	require.Equal(t, domain.CallConnected, s.Status)

	tr.SetStatus("a-b", domain.CallEnded)
	s, _ = tr.Get("a-b")
	require.Equal(t, domain.CallEnded, s.Status)
}

func TestSessionSetStatusMissingIsNoop(t *testing.T) {
	tr := NewSessionTracker()
	tr.SetStatus("ghost", domain.CallEnded)
	_, ok := tr.Get("ghost")
	require.False(t, ok)
}

func TestSessionCreateOverwrites(t *testing.T) {
	tr := NewSessionTracker()
	tr.Create("a-b", "a", "b")
	tr.SetStatus("a-b", domain.CallEnded)

	tr.Create("a-b", "a", "b")
	s, _ := tr.Get("a-b")
	require.Equal(t, domain.CallCalling, s.Status)
}

// The tracker applies whatever status the router asks for; out-of-order
// frames can legitimately regress a session.
func TestSessionStatusRegressionAllowed(t *testing.T) {
	tr := NewSessionTracker()
	tr.Create("a-b", "a", "b")
	tr.SetStatus("a-b", domain.CallConnected)
	tr.SetStatus("a-b", domain.CallCalling)

	s, _ := tr.Get("a-b")
	require.Equal(t, domain.CallCalling, s.Status)
}

func TestSessionParticipants(t *testing.T) {
	a, b, ok := domain.SessionID("a-b").Participants()
	require.True(t, ok)
	require.Equal(t, domain.PeerID("a"), a)
	require.Equal(t, domain.PeerID("b"), b)

	_, _, ok = domain.SessionID("abc").Participants()
	require.False(t, ok)

	_, _, ok = domain.SessionID("a-b-c").Participants()
	require.False(t, ok)
}
