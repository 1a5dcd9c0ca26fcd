// internal/handlers/room_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nyaru01/skyjo/internal/auth"
	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/room"
)

func testServer() *Server {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewServer(logger)
}

// TestCreateRoom checks that /room/create builds a room in memory for an
// authenticated caller.
func TestCreateRoom(t *testing.T) {
	auth.Init() // ephemeral keys, no DB needed
	s := testServer()

	host := uuid.New()
	token, err := auth.CreateJWT(host.String())
	require.NoError(t, err)

	body := `{"options":{"bonusMode":true,"targetScore":80}}`
	req := httptest.NewRequest("POST", "/room/create", bytes.NewBufferString(body))
	req.Header.Set("Cookie", "auth_token="+token)
	w := httptest.NewRecorder()

	s.CreateRoomHandler(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		RoomID string `json:"roomId"`
		HostID string `json:"hostId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, host.String(), resp.HostID)

	roomID, err := uuid.Parse(resp.RoomID)
	require.NoError(t, err)
	rm, ok := s.Rooms.Get(roomID)
	require.True(t, ok)
	assert.Equal(t, host, rm.HostUserID)
	assert.True(t, rm.Options.BonusMode)
	assert.Equal(t, 80, rm.Options.TargetScore)
}

func TestCreateRoomRejectsGet(t *testing.T) {
	auth.Init()
	s := testServer()
	req := httptest.NewRequest("GET", "/room/create", nil)
	w := httptest.NewRecorder()
	s.CreateRoomHandler(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestListRooms(t *testing.T) {
	s := testServer()
	rm := room.NewRoom(uuid.New(), room.DefaultOptions())
	s.Rooms.Add(rm)

	req := httptest.NewRequest("GET", "/room/list", nil)
	w := httptest.NewRecorder()
	s.ListRoomsHandler(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, rm.ID.String(), out[0]["roomId"])
	assert.Equal(t, false, out[0]["inGame"])
}

func TestExtractCookieToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"auth_token=abc123", "abc123"},
		{"other=1; auth_token=abc123; more=2", "abc123"},
		{"other=1", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, extractCookieToken(tc.header, "auth_token"))
	}
}

// TestHandleRoomMessageDispatch drives the packet switch directly against an
// in-memory room.
func TestHandleRoomMessageDispatch(t *testing.T) {
	s := testServer()
	rm := room.NewRoom(uuid.New(), room.DefaultOptions())
	s.Rooms.Add(rm)

	host := &models.User{ID: rm.HostUserID, Username: "host"}
	conn := &room.Connection{UserID: host.ID, OutChan: make(chan interface{}, 64)}
	require.NoError(t, rm.AddConnection(host, conn))

	guest := &models.User{ID: uuid.New(), Username: "guest"}
	guestConn := &room.Connection{UserID: guest.ID, OutChan: make(chan interface{}, 64)}
	require.NoError(t, rm.AddConnection(guest, guestConn))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	left := s.handleRoomMessage(map[string]interface{}{"type": "ready"}, rm, conn, logger)
	assert.False(t, left)
	rm.Mu.Lock()
	assert.True(t, rm.ReadyStates[host.ID])
	rm.Mu.Unlock()

	// Guests cannot start the game; the error comes back on their channel.
	left = s.handleRoomMessage(map[string]interface{}{"type": "start_game"}, rm, guestConn, logger)
	assert.False(t, left)
	var sawError bool
	for len(guestConn.OutChan) > 0 {
		if m, ok := (<-guestConn.OutChan).(map[string]interface{}); ok && m["type"] == "error" {
			sawError = true
		}
	}
	assert.True(t, sawError)

	// Chat fans out to everyone.
	s.handleRoomMessage(map[string]interface{}{"type": "chat", "msg": "hi"}, rm, conn, logger)
	var sawChat bool
	for len(guestConn.OutChan) > 0 {
		if m, ok := (<-guestConn.OutChan).(map[string]interface{}); ok && m["type"] == "chat" {
			sawChat = true
			assert.Equal(t, "hi", m["msg"])
		}
	}
	assert.True(t, sawChat)

	// Unknown types answer with an error instead of dropping the socket.
	s.handleRoomMessage(map[string]interface{}{"type": "bogus"}, rm, conn, logger)
	var sawUnknown bool
	for len(conn.OutChan) > 0 {
		if m, ok := (<-conn.OutChan).(map[string]interface{}); ok && m["type"] == "error" {
			sawUnknown = true
		}
	}
	assert.True(t, sawUnknown)

	// leave_room stops the pump and frees the seat.
	left = s.handleRoomMessage(map[string]interface{}{"type": "leave_room"}, rm, guestConn, logger)
	assert.True(t, left)
	rm.Mu.Lock()
	_, stillThere := rm.Users[guest.ID]
	rm.Mu.Unlock()
	assert.False(t, stillThere)
}

// TestGameActionRequiresGame verifies the action path refuses before a deal.
func TestGameActionRequiresGame(t *testing.T) {
	rm := room.NewRoom(uuid.New(), room.DefaultOptions())
	err := rm.ApplyAction(rm.HostUserID, models.GameAction{ActionType: room.ActionDrawPile})
	assert.ErrorIs(t, err, room.ErrNoGame)
}
