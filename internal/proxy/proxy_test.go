package proxy

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuttle-hq/shuttle-sub002/models"
)

type mapLookup map[string]models.TargetAddress

func (m mapLookup) Lookup(project string) (models.TargetAddress, bool) {
	addr, ok := m[project]
	return addr, ok
}

func addrOf(t *testing.T, srv *httptest.Server) models.TargetAddress {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return models.TargetAddress{IP: u.Hostname(), Port: port}
}

func doRequest(t *testing.T, h http.Handler, host string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "http://placeholder/hello", nil)
	req.Host = host
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProxyRejectsForeignHost(t *testing.T) {
	contacted := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contacted = true
	}))
	defer upstream.Close()

	h := NewHandler("shuttleapp.test", mapLookup{"hello": addrOf(t, upstream)}, nil)

	for _, host := range []string{
		"example.com",
		"shuttleapp.test",
		"a.b.shuttleapp.test",
		".shuttleapp.test",
	} {
		rec := doRequest(t, h, host)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "host %s", host)
		assert.Equal(t, ServerHeader, rec.Header().Get("Server"), "host %s", host)
	}
	assert.False(t, contacted)
}

func TestProxyUnknownProject(t *testing.T) {
	h := NewHandler("shuttleapp.test", mapLookup{}, nil)

	rec := doRequest(t, h, "missing.shuttleapp.test")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not find service for host")
	assert.Equal(t, ServerHeader, rec.Header().Get("Server"))
}

func TestProxyForwardsAndBrandsResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hello", r.URL.Path)
		w.Header().Set("Server", "leaky-user-framework/1.0")
		io.WriteString(w, "hi from the project")
	}))
	defer upstream.Close()

	h := NewHandler("shuttleapp.test", mapLookup{"hello": addrOf(t, upstream)}, nil)

	rec := doRequest(t, h, "hello.shuttleapp.test")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi from the project", rec.Body.String())
	assert.Equal(t, ServerHeader, rec.Header().Get("Server"))
}

func TestProxyHostPortStripped(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	h := NewHandler("shuttleapp.test", mapLookup{"hello": addrOf(t, upstream)}, nil)

	rec := doRequest(t, h, "hello.shuttleapp.test:8443")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestProxyUpstreamDown(t *testing.T) {
	// A listener that is closed immediately guarantees a free port with
	// nothing behind it.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	h := NewHandler("shuttleapp.test", mapLookup{
		"hello": {IP: "127.0.0.1", Port: port},
	}, nil)

	rec := doRequest(t, h, "hello.shuttleapp.test")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, ServerHeader, rec.Header().Get("Server"))
}

func TestProxyWebSocketPassthrough(t *testing.T) {
	upgrader := websocket.Upgrader{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		mt, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(mt, msg))
	}))
	defer upstream.Close()

	h := NewHandler("shuttleapp.test", mapLookup{"hello": addrOf(t, upstream)}, nil)
	front := httptest.NewServer(h)
	defer front.Close()

	u, err := url.Parse(front.URL)
	require.NoError(t, err)

	header := http.Header{"Host": []string{"hello.shuttleapp.test"}}
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+u.Host+"/echo", header)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping over ws")))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ping over ws", string(msg))
}
