package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lracdim/trazer-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hubServer upgrades every request and registers the connection with the hub
// using the user/role query parameters. Server-side conns are exposed so
// tests can close or unregister them directly.
func hubServer(t *testing.T, hub *Hub) (*httptest.Server, chan *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	conns := make(chan *websocket.Conn, 8)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(r.URL.Query().Get("user"), r.URL.Query().Get("role"), conn)
		conns <- conn
	}))
	t.Cleanup(server.Close)

	return server, conns
}

func dial(t *testing.T, server *httptest.Server, userID, role string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?user=" + userID + "&role=" + role
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var env envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestRegister_GuardsExcludedFromDashboards(t *testing.T) {
	hub := NewHub()
	server, conns := hubServer(t, hub)

	dial(t, server, "supervisor-1", models.RoleSupervisor)
	dial(t, server, "guard-1", models.RoleGuard)
	<-conns
	<-conns

	assert.Equal(t, 1, hub.DashboardCount())
}

func TestBroadcastToDashboards_SkipsGuards(t *testing.T) {
	hub := NewHub()
	server, conns := hubServer(t, hub)

	supervisor := dial(t, server, "supervisor-1", models.RoleSupervisor)
	guard := dial(t, server, "guard-1", models.RoleGuard)
	<-conns
	<-conns

	hub.BroadcastToDashboards("alert:new", map[string]string{"id": "alert-1"})

	env := readEnvelope(t, supervisor)
	assert.Equal(t, "alert:new", env.Event)

	require.NoError(t, guard.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var env2 envelope
	assert.Error(t, guard.ReadJSON(&env2))
}

func TestSendToUser_TargetsOnlyThatUser(t *testing.T) {
	hub := NewHub()
	server, conns := hubServer(t, hub)

	guard1 := dial(t, server, "guard-1", models.RoleGuard)
	guard2 := dial(t, server, "guard-2", models.RoleGuard)
	<-conns
	<-conns

	hub.SendToUser("guard-1", "shift:ended", nil)

	env := readEnvelope(t, guard1)
	assert.Equal(t, "shift:ended", env.Event)

	require.NoError(t, guard2.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var env2 envelope
	assert.Error(t, guard2.ReadJSON(&env2))
}

func TestUnregister_RemovesConnection(t *testing.T) {
	hub := NewHub()
	server, conns := hubServer(t, hub)

	dial(t, server, "supervisor-1", models.RoleSupervisor)
	serverConn := <-conns

	require.Equal(t, 1, hub.DashboardCount())

	hub.Unregister("supervisor-1", serverConn)
	assert.Equal(t, 0, hub.DashboardCount())

	// Second unregister of the same conn is a no-op.
	hub.Unregister("supervisor-1", serverConn)
	assert.Equal(t, 0, hub.DashboardCount())
}

func TestBroadcastToDashboards_EvictsDeadConnections(t *testing.T) {
	hub := NewHub()
	server, conns := hubServer(t, hub)

	dial(t, server, "supervisor-1", models.RoleSupervisor)
	serverConn := <-conns
	serverConn.Close()

	hub.BroadcastToDashboards("dashboard:refresh", nil)
	assert.Equal(t, 0, hub.DashboardCount())
}

func TestBroadcastToDashboards_NoSubscribers(t *testing.T) {
	hub := NewHub()

	// Must not panic or block with an empty registry.
	hub.BroadcastToDashboards("alert:new", nil)
	hub.SendToUser("guard-1", "shift:ended", nil)
}

func TestNoopNotifier(t *testing.T) {
	var notifier Notifier = NoopNotifier{}

	notifier.BroadcastToDashboards("alert:new", nil)
	notifier.SendToUser("guard-1", "shift:ended", nil)
}

func TestBroadcastToDashboards_ConcurrentBroadcasts(t *testing.T) {
	hub := NewHub()
	server, conns := hubServer(t, hub)

	supervisor := dial(t, server, "supervisor-1", models.RoleSupervisor)
	serverConn := <-conns

	const writers = 32
	const perWriter = 20

	received := make(chan int, 1)

	// Pings are interleaved with the broadcasts; the client's read loop
	// consumes the control frames transparently.
	go func() {
		count := 0
		for count < writers*perWriter {
			if err := supervisor.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
				break
			}
			var env envelope
			if err := supervisor.ReadJSON(&env); err != nil {
				break
			}
			count++
		}
		received <- count
	}()

	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				hub.BroadcastToDashboards("guard:location", map[string]string{"shiftId": "shift-1"})
				_ = hub.Ping(serverConn)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, <-received)
	assert.Equal(t, 1, hub.DashboardCount())
}

func TestSendTo(t *testing.T) {
	hub := NewHub()
	server, conns := hubServer(t, hub)

	supervisor := dial(t, server, "supervisor-1", models.RoleSupervisor)
	serverConn := <-conns

	require.NoError(t, hub.SendTo(serverConn, "connected", "WebSocket connection established"))

	env := readEnvelope(t, supervisor)
	assert.Equal(t, "connected", env.Event)
	assert.Equal(t, "WebSocket connection established", env.Data)
}

func TestSendTo_UnregisteredConn(t *testing.T) {
	hub := NewHub()
	server, conns := hubServer(t, hub)

	dial(t, server, "supervisor-1", models.RoleSupervisor)
	serverConn := <-conns

	hub.Unregister("supervisor-1", serverConn)

	assert.Error(t, hub.SendTo(serverConn, "connected", nil))
	assert.Error(t, hub.Ping(serverConn))
}

func TestKeepAlive_ExitsWhenDone(t *testing.T) {
	hub := NewHub()
	server, conns := hubServer(t, hub)

	dial(t, server, "supervisor-1", models.RoleSupervisor)
	serverConn := <-conns

	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		hub.KeepAlive(serverConn, done)
		close(finished)
	}()

	close(done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("keepalive did not stop after done was closed")
	}
}
