package signal_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"

	router "github.com/dkeye/Signal/internal/adapters/http"
	signaling "github.com/dkeye/Signal/internal/adapters/signal"
	"github.com/dkeye/Signal/internal/app"
	"github.com/dkeye/Signal/internal/config"
	"github.com/dkeye/Signal/internal/core"
)

type wireMsg struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	in   chan wireMsg
}

func dialClient(t *testing.T, wsURL, id string) *wsClient {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	c := &wsClient{t: t, conn: conn, in: make(chan wireMsg, 64)}
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				close(c.in)
				return
			}
			var m wireMsg
			if json.Unmarshal(data, &m) == nil {
				c.in <- m
			}
		}
	}()

	c.send("new", map[string]string{"id": id, "name": "client " + id, "user_agent": "integration-test"})
	return c
}

func (c *wsClient) send(kind string, data any) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	frame, err := json.Marshal(wireMsg{Type: kind, Data: raw})
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, frame))
}

// next returns the next message of the wanted kind, skipping any number of
// interleaved peers updates (broadcast timing is not deterministic).
func (c *wsClient) next(kind string) wireMsg {
	c.t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case m, ok := <-c.in:
			if !ok {
				c.t.Fatalf("connection closed while waiting for %q", kind)
			}
			if m.Type == kind {
				return m
			}
			if m.Type != "peers" {
				c.t.Fatalf("waiting for %q, got %q", kind, m.Type)
			}
		case <-deadline:
			c.t.Fatalf("timed out waiting for %q", kind)
		}
	}
}

// waitPeers consumes peers updates until the roster has n entries.
func (c *wsClient) waitPeers(n int) {
	c.t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case m, ok := <-c.in:
			if !ok {
				c.t.Fatal("connection closed while waiting for peers update")
			}
			if m.Type != "peers" {
				continue
			}
			var infos []map[string]any
			require.NoError(c.t, json.Unmarshal(m.Data, &infos))
			if len(infos) == n {
				return
			}
		case <-deadline:
			c.t.Fatalf("timed out waiting for a roster of %d peers", n)
		}
	}
}

func startServer(t *testing.T) string {
	t.Helper()
	cfg := &config.Config{
		Mode:       "release",
		StaticPath: t.TempDir(),
		Secret:     "integration-secret",
		Turn:       config.TurnConfig{PublicIP: "127.0.0.1", Port: 19302, SharedSecret: "integration-secret"},
	}
	broker := signaling.NewBroker(core.NewRegistry(), core.NewSessionTracker())
	creds := app.NewCredentials(cfg.Turn)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := httptest.NewServer(router.SetupRouter(ctx, cfg, broker, creds))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

// Two real PeerConnections negotiate through the broker: offer and answer
// SDP travel as opaque payloads with the routing triple attached.
func TestSDPNegotiationEndToEnd(t *testing.T) {
	wsURL := startServer(t)

	alice := dialClient(t, wsURL, "alice")
	alice.waitPeers(1)
	bob := dialClient(t, wsURL, "bob")
	alice.waitPeers(2)
	bob.waitPeers(2)

	pcA, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	require.NoError(t, err)
	defer pcA.Close()
	_, err = pcA.CreateDataChannel("probe", nil)
	require.NoError(t, err)

	offer, err := pcA.CreateOffer(nil)
	require.NoError(t, err)
	gatherA := webrtc.GatheringCompletePromise(pcA)
	require.NoError(t, pcA.SetLocalDescription(offer))
	<-gatherA

	alice.send("offer", map[string]any{
		"from":       "alice",
		"to":         "bob",
		"session_id": "alice-bob",
		"sdp":        pcA.LocalDescription().SDP,
	})

	got := bob.next("offer")
	var offerPayload struct {
		From      string `json:"from"`
		SessionID string `json:"session_id"`
		SDP       string `json:"sdp"`
	}
	require.NoError(t, json.Unmarshal(got.Data, &offerPayload))
	require.Equal(t, "alice", offerPayload.From)
	require.Equal(t, "alice-bob", offerPayload.SessionID)

	pcB, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	require.NoError(t, err)
	defer pcB.Close()
	require.NoError(t, pcB.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  offerPayload.SDP,
	}))

	answer, err := pcB.CreateAnswer(nil)
	require.NoError(t, err)
	gatherB := webrtc.GatheringCompletePromise(pcB)
	require.NoError(t, pcB.SetLocalDescription(answer))
	<-gatherB

	bob.send("answer", map[string]any{
		"from":       "bob",
		"to":         "alice",
		"session_id": "alice-bob",
		"sdp":        pcB.LocalDescription().SDP,
	})

	got = alice.next("answer")
	var answerPayload struct {
		SDP string `json:"sdp"`
	}
	require.NoError(t, json.Unmarshal(got.Data, &answerPayload))
	require.NoError(t, pcA.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answerPayload.SDP,
	}))
}

func TestKeepaliveAndByeOverWebSocket(t *testing.T) {
	wsURL := startServer(t)

	alice := dialClient(t, wsURL, "alice")
	alice.waitPeers(1)
	bob := dialClient(t, wsURL, "bob")
	alice.waitPeers(2)
	bob.waitPeers(2)

	alice.send("keepalive", nil)
	alice.next("keepalive")

	alice.send("offer", map[string]any{
		"from": "alice", "to": "bob", "session_id": "alice-bob",
	})
	bob.next("offer")

	alice.send("bye", map[string]any{"session_id": "alice-bob", "from": "alice"})
	got := bob.next("bye")
	var bye struct {
		SessionID string `json:"session_id"`
		From      string `json:"from"`
	}
	require.NoError(t, json.Unmarshal(got.Data, &bye))
	require.Equal(t, "alice-bob", bye.SessionID)
	require.Equal(t, "alice", bye.From)

	// Closing bob's connection shrinks the roster back to one.
	bob.conn.Close()
	alice.waitPeers(1)
}

func TestUnknownFrameKeepsConnectionOpen(t *testing.T) {
	wsURL := startServer(t)

	alice := dialClient(t, wsURL, "alice")
	alice.waitPeers(1)

	require.NoError(t, alice.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"sideways","data":{}}`)))
	require.NoError(t, alice.conn.WriteMessage(websocket.TextMessage, []byte(`this is not json`)))

	alice.send("keepalive", nil)
	alice.next("keepalive")
}

func TestSessionCollisionSecondRegistrationWins(t *testing.T) {
	wsURL := startServer(t)

	first := dialClient(t, wsURL, "dup")
	first.waitPeers(1)
	second := dialClient(t, wsURL, "dup")
	second.waitPeers(1)

	probe := dialClient(t, wsURL, fmt.Sprintf("probe-%d", time.Now().UnixNano()))
	probe.waitPeers(2)

	// Frames addressed to the id land on the later connection.
	probe.send("offer", map[string]any{
		"from": "probe", "to": "dup", "session_id": "probe-dup",
	})
	second.next("offer")
}
