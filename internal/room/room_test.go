package room

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nyaru01/skyjo/internal/ai"
	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/skyjo"
)

func testUser(name string) *models.User {
	return &models.User{ID: uuid.New(), Username: name}
}

func testConn(userID uuid.UUID) *Connection {
	return &Connection{
		UserID:  userID,
		OutChan: make(chan interface{}, 256),
	}
}

// drain pulls every queued message off a connection.
func drain(c *Connection) []interface{} {
	var out []interface{}
	for {
		select {
		case msg := <-c.OutChan:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestAddConnectionSendsStateAndBroadcastsJoin(t *testing.T) {
	host := testUser("host")
	r := NewRoom(host.ID, DefaultOptions())

	hostConn := testConn(host.ID)
	require.NoError(t, r.AddConnection(host, hostConn))

	msgs := drain(hostConn)
	require.NotEmpty(t, msgs)
	state, ok := msgs[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "room_state", state["type"])
	assert.Equal(t, host.ID.String(), state["hostId"])

	guest := testUser("guest")
	guestConn := testConn(guest.ID)
	require.NoError(t, r.AddConnection(guest, guestConn))

	var sawJoin bool
	for _, m := range drain(hostConn) {
		if mm, ok := m.(map[string]interface{}); ok && mm["userJoin"] == guest.ID.String() {
			sawJoin = true
		}
	}
	assert.True(t, sawJoin, "existing members hear about the join")
}

func TestRoomCapacity(t *testing.T) {
	host := testUser("host")
	opts := DefaultOptions()
	opts.MaxPlayers = 2
	r := NewRoom(host.ID, opts)
	require.NoError(t, r.AddConnection(host, testConn(host.ID)))

	guest := testUser("guest")
	require.NoError(t, r.AddConnection(guest, testConn(guest.ID)))

	third := testUser("third")
	assert.ErrorIs(t, r.AddConnection(third, testConn(third.ID)), ErrRoomFull)
}

func TestHostOnlyControls(t *testing.T) {
	host := testUser("host")
	guest := testUser("guest")
	r := NewRoom(host.ID, DefaultOptions())
	require.NoError(t, r.AddConnection(host, testConn(host.ID)))
	require.NoError(t, r.AddConnection(guest, testConn(guest.ID)))

	assert.ErrorIs(t, r.UpdateOptions(guest.ID, DefaultOptions()), ErrNotHost)
	_, err := r.AddBot(guest.ID)
	assert.ErrorIs(t, err, ErrNotHost)
	assert.ErrorIs(t, r.StartGame(guest.ID), ErrNotHost)
}

func TestStartGameNeedsTwoSeats(t *testing.T) {
	host := testUser("host")
	r := NewRoom(host.ID, DefaultOptions())
	require.NoError(t, r.AddConnection(host, testConn(host.ID)))
	assert.ErrorIs(t, r.StartGame(host.ID), ErrNotEnoughSeats)
}

func TestStartGameWithBotDealsRound(t *testing.T) {
	old := botThinkDelay
	botThinkDelay = time.Millisecond
	defer func() { botThinkDelay = old }()

	host := testUser("host")
	r := NewRoom(host.ID, DefaultOptions())
	hostConn := testConn(host.ID)
	require.NoError(t, r.AddConnection(host, hostConn))

	botID, err := r.AddBot(host.ID)
	require.NoError(t, err)
	require.NoError(t, r.StartGame(host.ID))
	assert.ErrorIs(t, r.StartGame(host.ID), ErrGameInProgress)

	g := r.CurrentGame()
	require.NotNil(t, g)
	assert.Equal(t, 1, r.RoundNumber)

	sawRoundStart := false
	for _, m := range drain(hostConn) {
		if msg, ok := m.(map[string]interface{}); ok && msg["type"] == string(skyjo.EventGameRoundStart) {
			sawRoundStart = true
		}
	}
	assert.True(t, sawRoundStart, "round start is announced with its event type")

	// The bot flips its two initial cards on its own.
	require.Eventually(t, func() bool {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		seat := g.SeatOf(botID)
		return seat >= 0 && !g.ValidActions(seat).InitialReveal
	}, 2*time.Second, 10*time.Millisecond)

	g.Mu.Lock()
	assert.Equal(t, skyjo.PhaseInitialReveal, g.Phase, "waiting on the human flip")
	g.Mu.Unlock()
}

func TestHumanAndBotPlayARoundToCompletion(t *testing.T) {
	old := botThinkDelay
	botThinkDelay = time.Millisecond
	defer func() { botThinkDelay = old }()

	host := testUser("host")
	r := NewRoom(host.ID, DefaultOptions())
	hostConn := testConn(host.ID)
	require.NoError(t, r.AddConnection(host, hostConn))
	_, err := r.AddBot(host.ID)
	require.NoError(t, err)
	require.NoError(t, r.StartGame(host.ID))

	g := r.CurrentGame()
	agent := ai.NewAgent(ai.DifficultyNormal, 1)

	g.Mu.Lock()
	seat := g.SeatOf(host.ID)
	require.Nil(t, agent.RevealInitial(g, seat))
	g.Mu.Unlock()
	go r.driveBots()

	// Play the human seat with the same agent until the round finishes.
	require.Eventually(t, func() bool {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.Phase == skyjo.PhaseFinished {
			return true
		}
		if (g.Phase == skyjo.PhasePlaying || g.Phase == skyjo.PhaseFinalRound) &&
			g.CurrentPlayer().ID == host.ID {
			require.Nil(t, agent.TakeTurn(g))
			go r.driveBots()
		}
		return false
	}, 30*time.Second, time.Millisecond)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.True(t, r.roundDone)
	assert.Len(t, r.Rounds, 1)
	assert.Len(t, r.Totals, 2, "both seats have cumulative totals")
}

func TestAdvanceRoundBarrier(t *testing.T) {
	host := testUser("host")
	guest := testUser("guest")
	r := NewRoom(host.ID, DefaultOptions())
	require.NoError(t, r.AddConnection(host, testConn(host.ID)))
	require.NoError(t, r.AddConnection(guest, testConn(guest.ID)))

	assert.ErrorIs(t, r.AdvanceRound(uuid.Nil), ErrNoGame)

	// Simulate a finished first round.
	r.Mu.Lock()
	r.InGame = true
	r.RoundNumber = 1
	r.startRoundUnsafe()
	r.RoundNumber = 1
	r.roundDone = true
	r.roundEndedAt = time.Now()
	r.Mu.Unlock()

	assert.ErrorIs(t, r.AdvanceRound(guest.ID), ErrNotHost)
	assert.ErrorIs(t, r.AdvanceRound(host.ID), ErrBarrierNotReady,
		"host cannot force before the timeout")

	r.Mu.Lock()
	r.roundEndedAt = time.Now().Add(-ReadyTimeout - time.Second)
	r.Mu.Unlock()
	require.NoError(t, r.AdvanceRound(host.ID))
	assert.Equal(t, 2, r.RoundNumber)
}

func TestUnanimousReadyStartsNextRound(t *testing.T) {
	host := testUser("host")
	guest := testUser("guest")
	r := NewRoom(host.ID, DefaultOptions())
	require.NoError(t, r.AddConnection(host, testConn(host.ID)))
	require.NoError(t, r.AddConnection(guest, testConn(guest.ID)))

	r.Mu.Lock()
	r.InGame = true
	r.startRoundUnsafe()
	r.roundDone = true
	r.roundEndedAt = time.Now()
	r.Mu.Unlock()
	require.Equal(t, 1, r.RoundNumber)

	r.MarkReady(host.ID)
	assert.Equal(t, 1, r.RoundNumber, "one vote is not enough")
	r.MarkReady(guest.ID)
	assert.Equal(t, 2, r.RoundNumber, "unanimous votes deal the next round")
}

func TestHostGraceMigratesOrTearsDown(t *testing.T) {
	oldGrace := HostGracePeriod
	HostGracePeriod = 50 * time.Millisecond
	defer func() { HostGracePeriod = oldGrace }()

	host := testUser("host")
	guest := testUser("guest")
	r := NewRoom(host.ID, DefaultOptions())
	require.NoError(t, r.AddConnection(host, testConn(host.ID)))
	guestConn := testConn(guest.ID)
	require.NoError(t, r.AddConnection(guest, guestConn))

	r.MarkDisconnected(host.ID)

	require.Eventually(t, func() bool {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		return r.HostUserID == guest.ID
	}, 2*time.Second, 10*time.Millisecond, "host role migrates to the remaining player")

	var sawMigration bool
	for _, m := range drain(guestConn) {
		if mm, ok := m.(map[string]interface{}); ok && mm["type"] == "host_migrated" {
			sawMigration = true
		}
	}
	assert.True(t, sawMigration)
}

func TestHostReconnectCancelsGrace(t *testing.T) {
	oldGrace := HostGracePeriod
	HostGracePeriod = 200 * time.Millisecond
	defer func() { HostGracePeriod = oldGrace }()

	host := testUser("host")
	guest := testUser("guest")
	r := NewRoom(host.ID, DefaultOptions())
	require.NoError(t, r.AddConnection(host, testConn(host.ID)))
	require.NoError(t, r.AddConnection(guest, testConn(guest.ID)))

	r.MarkDisconnected(host.ID)
	require.NoError(t, r.AddConnection(host, testConn(host.ID)))

	time.Sleep(400 * time.Millisecond)
	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, host.ID, r.HostUserID, "host kept the room by returning in time")
	assert.Nil(t, r.graceTimer)
}

func TestRemoveUserCleansSeatAndNotifiesStore(t *testing.T) {
	host := testUser("host")
	guest := testUser("guest")
	r := NewRoom(host.ID, DefaultOptions())

	var emptied bool
	r.OnEmpty = func(uuid.UUID) { emptied = true }

	require.NoError(t, r.AddConnection(host, testConn(host.ID)))
	require.NoError(t, r.AddConnection(guest, testConn(guest.ID)))
	require.Len(t, r.seats, 2)

	r.RemoveUser(guest.ID)
	assert.Len(t, r.seats, 1)
	assert.False(t, emptied)

	r.RemoveUser(host.ID)
	assert.True(t, emptied, "last leaver empties the room")
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()
	host := testUser("host")
	r := NewRoom(host.ID, DefaultOptions())
	s.Add(r)

	got, ok := s.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, r, got)
	assert.Len(t, s.List(), 1)

	require.NoError(t, r.AddConnection(host, testConn(host.ID)))
	r.RemoveUser(host.ID)

	_, ok = s.Get(r.ID)
	assert.False(t, ok, "empty rooms self-delete through OnEmpty")
}
