package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rpsduel/internal/commentary"
	"github.com/lox/rpsduel/internal/move"
	"github.com/lox/rpsduel/internal/round"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

type testServer struct {
	srv   *Server
	http  *httptest.Server
	clock *quartz.Mock
}

func newTestServer(t *testing.T, opponent move.Move, remark string) *testServer {
	t.Helper()

	mClock := quartz.NewMock(t)
	provider := commentary.ProviderFunc(func(context.Context, commentary.Round) (string, error) {
		return remark, nil
	})
	factory := func(_ string, logger *log.Logger) *round.Engine {
		return round.NewEngine(provider,
			round.WithClock(mClock),
			round.WithOpponent(func() move.Move { return opponent }),
			round.WithLogger(logger),
		)
	}

	srv := NewServer("127.0.0.1:0", factory, testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		ts.Close()
	})

	return &testServer{srv: srv, http: ts, clock: mClock}
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (ts *testServer) advance(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ts.clock.Advance(round.DefaultDecisionDelay).MustWait(ctx)
}

func send(t *testing.T, conn *websocket.Conn, msgType MessageType, data any) {
	t.Helper()
	msg, err := NewMessage(msgType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readState(t *testing.T, conn *websocket.Conn, event string) StateData {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeState, msg.Type, "data: %s", msg.Data)
	var state StateData
	require.NoError(t, json.Unmarshal(msg.Data, &state))
	require.Equal(t, event, state.Event)
	return state
}

func TestServerHealth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, move.Rock, "nice")

	resp, err := http.Get(ts.http.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestServerMetrics(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, move.Rock, "nice")
	_ = ts.dial(t)

	resp, err := http.Get(ts.http.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "rpsduel_active_sessions")
}

func TestInitialState(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, move.Rock, "nice")
	conn := ts.dial(t)

	state := readState(t, conn, "")
	assert.NotEmpty(t, state.SessionID)
	assert.Equal(t, round.Idle, state.Snapshot.Round.Phase)
	assert.Equal(t, round.ScoreBoard{}, state.Snapshot.Score)
	assert.Equal(t, commentary.IdlePlaceholder(move.DefaultLocale), state.Snapshot.Commentary)
}

func TestPlayRound(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, move.Scissors, "剪刀被砸爛了")
	conn := ts.dial(t)
	readState(t, conn, "")

	send(t, conn, MessageTypeSubmitChoice, SubmitChoiceData{Move: move.Rock})

	started := readState(t, conn, round.EventTypeRoundStarted.String())
	assert.Equal(t, round.Deciding, started.Snapshot.Round.Phase)
	assert.Equal(t, move.None, started.Snapshot.Round.PlayerMove, "player move stays hidden while deciding")

	ts.advance(t)

	settled := readState(t, conn, round.EventTypeRoundSettled.String())
	assert.Equal(t, round.Settled, settled.Snapshot.Round.Phase)
	assert.Equal(t, move.Rock, settled.Snapshot.Round.PlayerMove)
	assert.Equal(t, move.Scissors, settled.Snapshot.Round.OpponentMove)
	assert.Equal(t, move.Win, settled.Snapshot.Round.Outcome)
	assert.Equal(t, 1, settled.Snapshot.Score.PlayerWins)

	remark := readState(t, conn, round.EventTypeCommentaryUpdated.String())
	assert.Equal(t, "剪刀被砸爛了", remark.Snapshot.Commentary)
}

func TestSubmitWhileDecidingIsRejected(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, move.Rock, "nice")
	conn := ts.dial(t)
	readState(t, conn, "")

	send(t, conn, MessageTypeSubmitChoice, SubmitChoiceData{Move: move.Paper})
	readState(t, conn, round.EventTypeRoundStarted.String())

	send(t, conn, MessageTypeSubmitChoice, SubmitChoiceData{Move: move.Scissors})
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeRejected, msg.Type)

	ts.advance(t)
	settled := readState(t, conn, round.EventTypeRoundSettled.String())
	assert.Equal(t, move.Paper, settled.Snapshot.Round.PlayerMove)
	assert.Equal(t, 1, settled.Snapshot.Score.Total())
}

func TestInvalidMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		code    string
	}{
		{"unknown move", `{"type":"submit_choice","data":{"move":"lizard"}}`, "invalid_move"},
		{"missing move", `{"type":"submit_choice","data":{}}`, "invalid_move"},
		{"unknown type", `{"type":"join_table"}`, "unknown_message_type"},
		{"not json", `rock!`, "invalid_message"},
		{"wrong type field", `{"type":5}`, "invalid_message"},
		{"bad timestamp", `{"type":"reset_session","timestamp":"nope"}`, "invalid_message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, move.Rock, "nice")
			conn := ts.dial(t)
			readState(t, conn, "")

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)))

			msg := readMessage(t, conn)
			require.Equal(t, MessageTypeError, msg.Type)
			var data ErrorData
			require.NoError(t, json.Unmarshal(msg.Data, &data))
			assert.Equal(t, tt.code, data.Code)

			// The session stays open after bad input.
			send(t, conn, MessageTypeResetSession, nil)
			readState(t, conn, round.EventTypeSessionReset.String())
		})
	}
}

func TestResetSession(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, move.Paper, "nice")
	conn := ts.dial(t)
	readState(t, conn, "")

	send(t, conn, MessageTypeSubmitChoice, SubmitChoiceData{Move: move.Rock})
	readState(t, conn, round.EventTypeRoundStarted.String())
	ts.advance(t)
	settled := readState(t, conn, round.EventTypeRoundSettled.String())
	require.Equal(t, 1, settled.Snapshot.Score.OpponentWins)
	readState(t, conn, round.EventTypeCommentaryUpdated.String())

	send(t, conn, MessageTypeResetSession, nil)
	reset := readState(t, conn, round.EventTypeSessionReset.String())
	assert.Equal(t, round.Idle, reset.Snapshot.Round.Phase)
	assert.Equal(t, round.ScoreBoard{}, reset.Snapshot.Score)
}

func TestSessionsAreIndependent(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, move.Scissors, "nice")
	first := ts.dial(t)
	second := ts.dial(t)

	a := readState(t, first, "")
	b := readState(t, second, "")
	assert.NotEqual(t, a.SessionID, b.SessionID)

	send(t, first, MessageTypeSubmitChoice, SubmitChoiceData{Move: move.Rock})
	readState(t, first, round.EventTypeRoundStarted.String())
	ts.advance(t)
	readState(t, first, round.EventTypeRoundSettled.String())

	// The second session is still idle and accepts a round of its own.
	send(t, second, MessageTypeSubmitChoice, SubmitChoiceData{Move: move.Paper})
	started := readState(t, second, round.EventTypeRoundStarted.String())
	assert.Equal(t, round.ScoreBoard{}, started.Snapshot.Score)
}

func TestDisconnectClosesSession(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, move.Rock, "nice")
	conn := ts.dial(t)
	readState(t, conn, "")
	require.Eventually(t, func() bool { return ts.srv.SessionCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return ts.srv.SessionCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}
