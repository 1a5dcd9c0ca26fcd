// internal/handlers/server.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Nyaru01/skyjo/internal/database"
	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/room"
)

// Server bundles the room store behind the HTTP and websocket handlers.
type Server struct {
	Rooms  *room.Store
	Logger *logrus.Logger
}

// NewServer builds a Server with an empty room store.
func NewServer(logger *logrus.Logger) *Server {
	return &Server{
		Rooms:  room.NewStore(),
		Logger: logger,
	}
}

// newRoomWithPersistence creates a room wired to the archive and progression
// side effects. The callbacks run off the room's goroutines, so slow
// database writes never stall play.
func (s *Server) newRoomWithPersistence(hostID uuid.UUID, opts room.Options) *room.Room {
	r := room.NewRoom(hostID, opts)
	r.OnGameEnd = func(record models.GameRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.ArchiveGame(ctx, record); err != nil {
			s.Logger.Errorf("failed to archive game %s: %v", record.GameID, err)
		}
	}
	r.OnRoundWon = func(userID uuid.UUID, bonusMode bool) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.GrantRoundWin(ctx, userID, bonusMode); err != nil {
			s.Logger.Errorf("failed to grant round win to %s: %v", userID, err)
		}
	}
	s.Rooms.Add(r)
	return r
}

type createRoomRequest struct {
	Options *room.Options `json:"options"`
}

// CreateRoomHandler opens a new room hosted by the caller and returns its ID.
func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	hostID, err := EnsureEphemeralUser(w, r)
	if err != nil {
		s.Logger.Warnf("create room auth failed: %v", err)
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	var req createRoomRequest
	// An empty body means default options.
	_ = json.NewDecoder(r.Body).Decode(&req)
	opts := room.DefaultOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	rm := s.newRoomWithPersistence(hostID, opts)
	s.Logger.Infof("room %s created by %s", rm.ID, hostID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"roomId":  rm.ID.String(),
		"hostId":  hostID.String(),
		"options": opts,
	})
}

// ListRoomsHandler returns a summary of the open rooms.
func (s *Server) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	type roomSummary struct {
		RoomID      string `json:"roomId"`
		Players     int    `json:"players"`
		MaxPlayers  int    `json:"maxPlayers"`
		InGame      bool   `json:"inGame"`
		BonusMode   bool   `json:"bonusMode"`
		TargetScore int    `json:"targetScore"`
	}

	var out []roomSummary
	for _, rm := range s.Rooms.List() {
		rm.Mu.Lock()
		out = append(out, roomSummary{
			RoomID:      rm.ID.String(),
			Players:     len(rm.Users),
			MaxPlayers:  rm.Options.MaxPlayers,
			InGame:      rm.InGame,
			BonusMode:   rm.Options.BonusMode,
			TargetScore: rm.Options.TargetScore,
		})
		rm.Mu.Unlock()
	}
	if out == nil {
		out = []roomSummary{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
