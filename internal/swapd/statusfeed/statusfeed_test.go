package statusfeed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/hashlockd/swapd/internal/swapfsm"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsToAllByDefault(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	time.Sleep(50 * time.Millisecond) // let registration land before pushing

	swapID := uuid.New()
	hub.Push(swapID, swapfsm.SwapState{Alpha: swapfsm.Deployed, Beta: swapfsm.NotDeployed})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev StatusEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	require.Equal(t, swapID, ev.SwapID)
	require.Equal(t, swapfsm.Deployed, ev.Alpha)
	require.False(t, ev.Terminal)
}

func TestHubFiltersBySubscription(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	watched := uuid.New()
	other := uuid.New()

	sub := Subscription{Action: "subscribe", SwapIDs: []uuid.UUID{watched}}
	payload, err := json.Marshal(sub)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
	time.Sleep(50 * time.Millisecond)

	hub.Push(other, swapfsm.SwapState{})
	hub.Push(watched, swapfsm.SwapState{Alpha: swapfsm.Redeemed, Beta: swapfsm.Redeemed})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev StatusEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	require.Equal(t, watched, ev.SwapID)
	require.True(t, ev.Terminal)
}

func TestHubDropsDisconnectedClientsWithoutBlocking(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	conn.Close()
	time.Sleep(50 * time.Millisecond)

	require.NotPanics(t, func() {
		hub.Push(uuid.New(), swapfsm.SwapState{})
	})
}
