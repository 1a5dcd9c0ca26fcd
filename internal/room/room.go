// Package room owns the multiplayer session around the game engine: who is
// connected, the ready barrier between rounds, cumulative scoring across
// rounds, bot seats, and the host-departure grace period. One mutex guards a
// room; rooms never share state.
package room

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Nyaru01/skyjo/internal/ai"
	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/scoring"
	"github.com/Nyaru01/skyjo/internal/skyjo"
)

// ReadyTimeout is how long the between-rounds barrier waits before the host
// may force-advance past stragglers. HostGracePeriod preserves the room
// after the host drops, allowing a reconnect or a host migration before
// teardown. Both are variables so tests can shrink them.
var (
	ReadyTimeout    = 10 * time.Second
	HostGracePeriod = 30 * time.Second
)

const (
	MinPlayers = 2
	MaxPlayers = 8
)

// Options is the room's configuration surface.
type Options struct {
	BonusMode   bool          `json:"bonusMode"`
	Difficulty  ai.Difficulty `json:"difficulty"`
	TargetScore int           `json:"targetScore"`
	MaxPlayers  int           `json:"maxPlayers"`
}

// DefaultOptions matches a plain two-to-eight player table.
func DefaultOptions() Options {
	return Options{
		Difficulty:  ai.DifficultyNormal,
		TargetScore: scoring.DefaultThreshold,
		MaxPlayers:  MaxPlayers,
	}
}

// Room is one table: lobby membership, the running game and the session
// score sheet.
type Room struct {
	ID         uuid.UUID
	HostUserID uuid.UUID
	Options    Options

	Users       map[uuid.UUID]*models.User
	Connections map[uuid.UUID]*Connection
	ReadyStates map[uuid.UUID]bool

	Game        *skyjo.Game
	InGame      bool
	GameOver    bool
	RoundNumber int

	Totals    map[uuid.UUID]int
	RoundWins map[uuid.UUID]int
	Rounds    []models.Round
	seats     []uuid.UUID

	agents map[uuid.UUID]*ai.Agent

	// roundDone marks the window between a finished round and the next deal,
	// when the ready barrier is open.
	roundDone bool

	// roundEndedAt gates the host force-advance: only legal once
	// ReadyTimeout has elapsed since the round finished.
	roundEndedAt time.Time
	readyTimer   *time.Timer

	graceTimer *time.Timer

	// OnEmpty fires when the last connection leaves, so the store can drop
	// the room.
	OnEmpty func(roomID uuid.UUID)

	// OnGameEnd receives the archive record once per completed session.
	OnGameEnd func(record models.GameRecord)

	// OnRoundWon credits progression for each human round winner.
	OnRoundWon func(userID uuid.UUID, bonusMode bool)

	Logger *logrus.Entry
	Mu     sync.Mutex
}

// NewRoom builds an empty room owned by the host.
func NewRoom(hostID uuid.UUID, opts Options) *Room {
	if opts.TargetScore <= 0 {
		opts.TargetScore = scoring.DefaultThreshold
	}
	if opts.MaxPlayers < MinPlayers || opts.MaxPlayers > MaxPlayers {
		opts.MaxPlayers = MaxPlayers
	}
	if opts.Difficulty == "" {
		opts.Difficulty = ai.DifficultyNormal
	}
	id := uuid.New()
	return &Room{
		ID:          id,
		HostUserID:  hostID,
		Options:     opts,
		Users:       make(map[uuid.UUID]*models.User),
		Connections: make(map[uuid.UUID]*Connection),
		ReadyStates: make(map[uuid.UUID]bool),
		Totals:      make(map[uuid.UUID]int),
		RoundWins:   make(map[uuid.UUID]int),
		agents:      make(map[uuid.UUID]*ai.Agent),
		Logger:      logrus.WithField("room_id", id),
	}
}

// AddConnection registers a user's live connection and sends them the room
// state. Rejoining replaces the previous connection; a reconnecting player
// also gets a fresh game snapshot.
func (r *Room) AddConnection(user *models.User, conn *Connection) error {
	r.Mu.Lock()

	_, known := r.Users[user.ID]
	if !known && len(r.Users) >= r.Options.MaxPlayers {
		r.Mu.Unlock()
		return ErrRoomFull
	}
	if !known {
		r.seats = append(r.seats, user.ID)
	}
	if old, ok := r.Connections[user.ID]; ok && old != conn {
		old.Close()
	}
	conn.Username = user.Username
	conn.IsHost = user.ID == r.HostUserID
	r.Users[user.ID] = user
	r.Connections[user.ID] = conn
	if _, ok := r.ReadyStates[user.ID]; !ok {
		r.ReadyStates[user.ID] = false
	}

	if conn.IsHost {
		r.cancelGraceUnsafe()
	}

	var resync func()
	if r.InGame && r.Game != nil {
		g := r.Game
		if p := g.PlayerByID(user.ID); p != nil {
			p.Connected = true
		}
		resync = func() {
			g.Mu.Lock()
			g.SyncToPlayer(user.ID)
			g.Mu.Unlock()
		}
	}
	statePayload := r.statePayloadUnsafe(user.ID)
	joinPayload := map[string]interface{}{
		"type":     "room_update",
		"userJoin": user.ID.String(),
		"username": user.Username,
		"status":   r.statusPayloadUnsafe(),
	}
	r.Mu.Unlock()

	conn.Write(statePayload)
	r.Broadcast(joinPayload)
	if resync != nil {
		resync()
	}
	r.Logger.Infof("user %s (%s) connected", user.ID, user.Username)
	return nil
}

// RemoveUser drops a user from the room. Mid-game the engine removes the
// seat so play continues; a departing host starts the grace countdown.
func (r *Room) RemoveUser(userID uuid.UUID) {
	r.Mu.Lock()

	conn, ok := r.Connections[userID]
	if !ok {
		r.Mu.Unlock()
		return
	}
	conn.Close()
	delete(r.Connections, userID)
	delete(r.ReadyStates, userID)

	inGame := r.InGame && r.Game != nil
	wasHost := userID == r.HostUserID
	delete(r.Users, userID)
	r.dropSeatUnsafe(userID)

	leavePayload := map[string]interface{}{
		"type":     "room_update",
		"userLeft": userID.String(),
		"status":   r.statusPayloadUnsafe(),
	}
	empty := len(r.Connections) == 0
	onEmpty := r.OnEmpty

	var removeSeat func()
	if inGame {
		g := r.Game
		removeSeat = func() {
			g.Mu.Lock()
			defer g.Mu.Unlock()
			if p := g.PlayerByID(userID); p != nil {
				p.Connected = false
			}
			if g.Phase != skyjo.PhaseFinished {
				g.RemovePlayer(userID)
			}
		}
	}
	if wasHost && !empty {
		r.startGraceUnsafe()
	}
	r.Mu.Unlock()

	r.Broadcast(leavePayload)
	if removeSeat != nil {
		removeSeat()
		go r.driveBots()
	}
	r.Logger.Infof("user %s left", userID)

	if empty {
		r.stopTimers()
		if onEmpty != nil {
			onEmpty(r.ID)
		}
	}
}

// MarkReady records a ready vote for the next-round barrier and advances
// when the table is unanimous.
func (r *Room) MarkReady(userID uuid.UUID) {
	r.Mu.Lock()
	if _, ok := r.Connections[userID]; !ok {
		r.Mu.Unlock()
		return
	}
	r.ReadyStates[userID] = true
	payload := map[string]interface{}{
		"type":    "ready_update",
		"userId":  userID.String(),
		"isReady": true,
	}
	allReady := r.allReadyUnsafe()
	r.Mu.Unlock()

	r.Broadcast(payload)
	if allReady {
		r.AdvanceRound(uuid.Nil)
	}
}

// MarkUnready withdraws a ready vote.
func (r *Room) MarkUnready(userID uuid.UUID) {
	r.Mu.Lock()
	if _, ok := r.Connections[userID]; !ok {
		r.Mu.Unlock()
		return
	}
	r.ReadyStates[userID] = false
	payload := map[string]interface{}{
		"type":    "ready_update",
		"userId":  userID.String(),
		"isReady": false,
	}
	r.Mu.Unlock()
	r.Broadcast(payload)
}

// allReadyUnsafe: every connected human has voted ready. Bots are always
// ready. Lock held.
func (r *Room) allReadyUnsafe() bool {
	if len(r.Connections) == 0 {
		return false
	}
	for id := range r.Connections {
		if !r.ReadyStates[id] {
			return false
		}
	}
	return true
}

// resetReadyUnsafe clears the barrier and arms the force-advance timer.
// Lock held.
func (r *Room) resetReadyUnsafe() {
	for id := range r.ReadyStates {
		r.ReadyStates[id] = false
	}
	r.roundEndedAt = time.Now()
	if r.readyTimer != nil {
		r.readyTimer.Stop()
	}
	r.readyTimer = time.AfterFunc(ReadyTimeout, func() {
		r.Broadcast(map[string]interface{}{
			"type":    "ready_timeout",
			"message": "the host may now start the next round",
		})
	})
}

// startGraceUnsafe arms the host-departure countdown. Lock held.
func (r *Room) startGraceUnsafe() {
	if r.graceTimer != nil {
		return
	}
	r.Logger.Warnf("host %s disconnected, grace period %s started", r.HostUserID, HostGracePeriod)
	r.broadcastUnsafe(map[string]interface{}{
		"type":    "room_teardown_warning",
		"seconds": int(HostGracePeriod.Seconds()),
	})
	r.graceTimer = time.AfterFunc(HostGracePeriod, r.expireGrace)
}

func (r *Room) cancelGraceUnsafe() {
	if r.graceTimer != nil {
		r.graceTimer.Stop()
		r.graceTimer = nil
		r.broadcastUnsafe(map[string]interface{}{
			"type": "room_teardown_cancelled",
		})
	}
}

// expireGrace fires when the host never came back: migrate the host role to
// another connected human if one exists, otherwise tear the room down.
func (r *Room) expireGrace() {
	r.Mu.Lock()
	r.graceTimer = nil
	if _, back := r.Connections[r.HostUserID]; back {
		r.Mu.Unlock()
		return
	}
	var heir uuid.UUID
	for id, u := range r.Users {
		if _, connected := r.Connections[id]; connected && !u.IsEphemeral {
			heir = id
			break
		}
	}
	if heir == uuid.Nil {
		for id := range r.Connections {
			heir = id
			break
		}
	}
	if heir != uuid.Nil {
		r.HostUserID = heir
		if conn, ok := r.Connections[heir]; ok {
			conn.IsHost = true
		}
		payload := map[string]interface{}{
			"type":   "host_migrated",
			"hostId": heir.String(),
		}
		r.Mu.Unlock()
		r.Broadcast(payload)
		r.Logger.Infof("host migrated to %s", heir)
		return
	}
	r.Mu.Unlock()
	r.Teardown("host departed")
}

// Teardown terminates the room for everyone.
func (r *Room) Teardown(reason string) {
	r.Mu.Lock()
	r.broadcastUnsafe(map[string]interface{}{
		"type":   "room_teardown",
		"reason": reason,
	})
	conns := make([]*Connection, 0, len(r.Connections))
	for _, c := range r.Connections {
		conns = append(conns, c)
	}
	r.Connections = make(map[uuid.UUID]*Connection)
	r.ReadyStates = make(map[uuid.UUID]bool)
	onEmpty := r.OnEmpty
	r.Mu.Unlock()

	r.stopTimers()
	for _, c := range conns {
		c.Close()
	}
	if onEmpty != nil {
		onEmpty(r.ID)
	}
	r.Logger.Infof("room torn down: %s", reason)
}

func (r *Room) stopTimers() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.readyTimer != nil {
		r.readyTimer.Stop()
		r.readyTimer = nil
	}
	if r.graceTimer != nil {
		r.graceTimer.Stop()
		r.graceTimer = nil
	}
}

// dropSeatUnsafe removes a user from the seat order. Lock held.
func (r *Room) dropSeatUnsafe(userID uuid.UUID) {
	for i, id := range r.seats {
		if id == userID {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			return
		}
	}
}

// MarkDisconnected records a transient connection drop. The seat survives,
// the engine skips the player until they reconnect, and a dropped host
// starts the grace countdown.
func (r *Room) MarkDisconnected(userID uuid.UUID) {
	r.Mu.Lock()
	conn, ok := r.Connections[userID]
	if !ok {
		r.Mu.Unlock()
		return
	}
	conn.Close()
	delete(r.Connections, userID)
	delete(r.ReadyStates, userID)
	if userID == r.HostUserID && len(r.Connections) > 0 {
		r.startGraceUnsafe()
	}
	var markSeat func()
	if r.InGame && r.Game != nil {
		g := r.Game
		markSeat = func() {
			g.Mu.Lock()
			if p := g.PlayerByID(userID); p != nil {
				p.Connected = false
			}
			if g.CurrentPlayer() != nil && g.CurrentPlayer().ID == userID &&
				(g.Phase == skyjo.PhasePlaying || g.Phase == skyjo.PhaseFinalRound) &&
				g.TurnPhase == skyjo.TurnDraw {
				// Nothing committed yet this turn; skip ahead.
				g.EndTurn()
			}
			g.Mu.Unlock()
		}
	}
	empty := len(r.Connections) == 0
	onEmpty := r.OnEmpty
	payload := map[string]interface{}{
		"type":     "room_update",
		"userDrop": userID.String(),
		"status":   r.statusPayloadUnsafe(),
	}
	r.Mu.Unlock()

	r.Broadcast(payload)
	if markSeat != nil {
		markSeat()
		go r.driveBots()
	}
	if empty {
		r.stopTimers()
		if onEmpty != nil {
			onEmpty(r.ID)
		}
	}
}

// Broadcast fans a message out to every live connection.
func (r *Room) Broadcast(msg interface{}) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.broadcastUnsafe(msg)
}

// broadcastUnsafe fans out without acquiring the lock. Lock held.
func (r *Room) broadcastUnsafe(msg interface{}) {
	for _, conn := range r.Connections {
		conn.Write(msg)
	}
}

// BroadcastToUser sends to one connection if present.
func (r *Room) BroadcastToUser(userID uuid.UUID, msg interface{}) {
	r.Mu.Lock()
	conn, ok := r.Connections[userID]
	r.Mu.Unlock()
	if ok {
		conn.Write(msg)
	}
}

// statusPayloadUnsafe lists seats with their ready and host flags. Lock held.
func (r *Room) statusPayloadUnsafe() map[string]interface{} {
	users := []map[string]interface{}{}
	for id, u := range r.Users {
		_, connected := r.Connections[id]
		users = append(users, map[string]interface{}{
			"id":        id.String(),
			"username":  u.Username,
			"isHost":    id == r.HostUserID,
			"isReady":   r.ReadyStates[id],
			"isBot":     r.agents[id] != nil,
			"connected": connected || r.agents[id] != nil,
		})
	}
	return map[string]interface{}{"users": users}
}

// statePayloadUnsafe is the full room state for one viewer. Lock held.
func (r *Room) statePayloadUnsafe(viewerID uuid.UUID) map[string]interface{} {
	totals := make(map[string]int, len(r.Totals))
	for id, t := range r.Totals {
		totals[id.String()] = t
	}
	return map[string]interface{}{
		"type":        "room_state",
		"roomId":      r.ID.String(),
		"hostId":      r.HostUserID.String(),
		"yourId":      viewerID.String(),
		"inGame":      r.InGame,
		"gameOver":    r.GameOver,
		"roundNumber": r.RoundNumber,
		"options":     r.Options,
		"totals":      totals,
		"status":      r.statusPayloadUnsafe(),
	}
}

// SendState pushes the room state to one user.
func (r *Room) SendState(userID uuid.UUID) {
	r.Mu.Lock()
	conn, ok := r.Connections[userID]
	var payload map[string]interface{}
	if ok {
		payload = r.statePayloadUnsafe(userID)
	}
	r.Mu.Unlock()
	if ok {
		conn.Write(payload)
	}
}

// UpdateOptions applies host configuration changes before the game starts.
func (r *Room) UpdateOptions(userID uuid.UUID, opts Options) error {
	r.Mu.Lock()
	if userID != r.HostUserID {
		r.Mu.Unlock()
		return ErrNotHost
	}
	if r.InGame {
		r.Mu.Unlock()
		return ErrGameInProgress
	}
	if opts.TargetScore <= 0 {
		opts.TargetScore = scoring.DefaultThreshold
	}
	if opts.MaxPlayers < MinPlayers || opts.MaxPlayers > MaxPlayers {
		opts.MaxPlayers = r.Options.MaxPlayers
	}
	if opts.Difficulty == "" {
		opts.Difficulty = r.Options.Difficulty
	}
	r.Options = opts
	payload := map[string]interface{}{
		"type":    "room_options_updated",
		"options": r.Options,
	}
	r.Mu.Unlock()
	r.Broadcast(payload)
	return nil
}
