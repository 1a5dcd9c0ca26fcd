// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Nyaru01/skyjo/internal/database"
	"github.com/Nyaru01/skyjo/internal/middleware"
	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/room"
	"github.com/Nyaru01/skyjo/internal/skyjo"
)

// RoomWSHandler upgrades /room/ws/{room_id} to a websocket, authenticates
// the caller (creating a guest if needed), seats them in the room, and runs
// the read/write pumps until the connection drops.
func (s *Server) RoomWSHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/room/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "missing room_id", http.StatusBadRequest)
			return
		}
		roomID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "invalid room_id", http.StatusBadRequest)
			return
		}

		userID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			logger.Warnf("user authentication failed for room %s: %v", roomID, err)
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"skyjo"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "skyjo" {
			c.Close(BadSubprotocolError, "client must speak the skyjo subprotocol")
			return
		}

		rm, exists := s.Rooms.Get(roomID)
		if !exists {
			c.Close(InvalidRoomIDError, "room does not exist")
			return
		}

		user, err := database.GetUserByID(r.Context(), userID)
		if err != nil {
			logger.Warnf("user %s not found for room %s: %v", userID, roomID, err)
			c.Close(InvalidUserIDError, "unknown user")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		conn := &room.Connection{
			UserID:  userID,
			Cancel:  cancel,
			OutChan: make(chan interface{}, 64),
		}

		if err := rm.AddConnection(user, conn); err != nil {
			logger.Warnf("room %s rejected user %s: %v", roomID, userID, err)
			c.Close(websocket.StatusPolicyViolation, err.Error())
			cancel()
			return
		}
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		go writePump(ctx, c, conn, logger)

		left := s.readPump(ctx, c, rm, conn, logger)

		if !left {
			// Socket dropped without an explicit leave: keep the seat and
			// wait for a reconnect.
			rm.MarkDisconnected(userID)
		}
		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, nil)
	}
}

// readPump consumes client messages until the connection closes. Returns
// true when the user left the room explicitly.
func (s *Server) readPump(ctx context.Context, c *websocket.Conn, rm *room.Room, conn *room.Connection, logger *logrus.Logger) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus != websocket.StatusNormalClosure &&
				closeStatus != websocket.StatusGoingAway &&
				!strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("room %s: read error for user %v: %v", rm.ID, conn.UserID, err)
			}
			return false
		}
		if typ != websocket.MessageText {
			continue
		}

		var packet map[string]interface{}
		if err := json.Unmarshal(msg, &packet); err != nil {
			logger.Warnf("room %s: invalid json from user %v: %v", rm.ID, conn.UserID, err)
			conn.WriteError("invalid JSON format")
			continue
		}

		if s.handleRoomMessage(packet, rm, conn, logger) {
			return true
		}
	}
}

// handleRoomMessage interprets one client packet. Returns true when the user
// leaves the room and the pump should stop.
func (s *Server) handleRoomMessage(packet map[string]interface{}, rm *room.Room, conn *room.Connection, logger *logrus.Logger) bool {
	msgType, _ := packet["type"].(string)
	userID := conn.UserID

	switch msgType {
	case "ready":
		rm.MarkReady(userID)
	case "unready":
		rm.MarkUnready(userID)
	case "start_game":
		if err := rm.StartGame(userID); err != nil {
			conn.WriteError(err.Error())
		}
	case "next_round":
		if err := rm.AdvanceRound(userID); err != nil {
			conn.WriteError(err.Error())
		}
	case "rematch":
		if err := rm.Rematch(userID); err != nil {
			conn.WriteError(err.Error())
		}
	case "add_bot":
		if _, err := rm.AddBot(userID); err != nil {
			conn.WriteError(err.Error())
		}
	case "remove_bot":
		botIDStr, _ := packet["botId"].(string)
		botID, err := uuid.Parse(botIDStr)
		if err != nil {
			conn.WriteError("invalid botId")
			return false
		}
		if err := rm.RemoveBot(userID, botID); err != nil {
			conn.WriteError(err.Error())
		}
	case "update_options":
		raw, err := json.Marshal(packet["options"])
		if err != nil {
			conn.WriteError("invalid options payload")
			return false
		}
		var opts room.Options
		if err := json.Unmarshal(raw, &opts); err != nil {
			conn.WriteError("invalid options payload")
			return false
		}
		if err := rm.UpdateOptions(userID, opts); err != nil {
			conn.WriteError(err.Error())
		}
	case "chat":
		text, _ := packet["msg"].(string)
		if text != "" {
			rm.Broadcast(map[string]interface{}{
				"type":   "chat",
				"userId": userID.String(),
				"msg":    text,
			})
		}
	case "resync":
		rm.SendState(userID)
		_ = rm.ApplyAction(userID, models.GameAction{ActionType: room.ActionResync})
	case "action":
		action, _ := packet["action"].(string)
		payload, _ := packet["payload"].(map[string]interface{})
		err := rm.ApplyAction(userID, models.GameAction{
			ActionType: action,
			Payload:    payload,
		})
		if err != nil {
			// Rule violations already reached the player as a private event.
			if _, ok := err.(*skyjo.RuleViolation); !ok {
				conn.WriteError(err.Error())
			}
		}
	case "leave_room":
		rm.RemoveUser(userID)
		return true
	default:
		logger.Warnf("room %s: unknown message type %q from user %v", rm.ID, msgType, userID)
		conn.WriteError("unknown message type: " + msgType)
	}
	return false
}

// writePump drains the connection's outbound channel onto the websocket and
// keeps the connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *room.Connection, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer c.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing msg for user %v: %v", conn.UserID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for user %v: %v", conn.UserID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for user %v, assuming disconnect: %v", conn.UserID, err)
				return
			}
		}
	}
}
