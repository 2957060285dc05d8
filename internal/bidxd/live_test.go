package bidxd

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialLive(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewLiveServer(newTestApp(t), nil).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads messages until keep accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, keep func(LiveOutput) bool) LiveOutput {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var out LiveOutput
		require.NoError(t, conn.ReadJSON(&out))
		if keep(out) {
			return out
		}
	}
}

func TestLive_QueryPublishesResults(t *testing.T) {
	conn := dialLive(t)

	require.NoError(t, conn.WriteJSON(LiveInput{Type: "group", Value: "gospels"}))
	require.NoError(t, conn.WriteJSON(LiveInput{Type: "query", Value: "world"}))

	out := readUntil(t, conn, func(o LiveOutput) bool {
		return o.Type == "state" && o.State.Query == "world" && !o.State.Searching
	})
	require.Len(t, out.State.Results, 2)
	require.Equal(t, "John 3:16", out.State.Results[0].Reference())
	require.EqualValues(t, "gospels", out.State.Group)
}

func TestLive_InvalidInputReportsError(t *testing.T) {
	conn := dialLive(t)

	require.NoError(t, conn.WriteJSON(LiveInput{Type: "group", Value: "apocrypha"}))
	out := readUntil(t, conn, func(o LiveOutput) bool { return o.Type == "error" })
	require.Contains(t, out.Error, "apocrypha")

	require.NoError(t, conn.WriteJSON(LiveInput{Type: "volume", Value: "11"}))
	out = readUntil(t, conn, func(o LiveOutput) bool { return o.Type == "error" })
	require.Equal(t, "unknown message type volume", out.Error)
}
