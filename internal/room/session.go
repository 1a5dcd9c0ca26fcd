package room

import (
	"time"

	"github.com/google/uuid"

	"github.com/Nyaru01/skyjo/internal/models"
	"github.com/Nyaru01/skyjo/internal/scoring"
	"github.com/Nyaru01/skyjo/internal/skyjo"
)

// StartGame begins the session: host only, at least two seats, fresh score
// sheet, first round dealt.
func (r *Room) StartGame(userID uuid.UUID) error {
	r.Mu.Lock()
	if userID != r.HostUserID {
		r.Mu.Unlock()
		return ErrNotHost
	}
	if r.InGame {
		r.Mu.Unlock()
		return ErrGameInProgress
	}
	if len(r.seats) < MinPlayers {
		r.Mu.Unlock()
		return ErrNotEnoughSeats
	}
	r.InGame = true
	r.GameOver = false
	r.RoundNumber = 0
	r.Totals = make(map[uuid.UUID]int)
	r.RoundWins = make(map[uuid.UUID]int)
	r.Rounds = nil
	for _, a := range r.agents {
		a.Memory.Reset()
	}
	r.startRoundUnsafe()
	r.Mu.Unlock()

	go r.driveBots()
	return nil
}

// startRoundUnsafe deals the next round and wires the engine to the room.
// Lock held.
func (r *Room) startRoundUnsafe() {
	r.RoundNumber++
	r.roundDone = false

	players := make([]*models.Player, 0, len(r.seats))
	for _, id := range r.seats {
		u, ok := r.Users[id]
		if !ok {
			continue
		}
		p := models.NewPlayer(u)
		if _, botSeat := r.agents[id]; botSeat {
			p.IsBot = true
		} else {
			_, p.Connected = r.Connections[id]
		}
		players = append(players, p)
	}

	g := skyjo.NewRound(players, skyjo.Options{BonusMode: r.Options.BonusMode})
	g.RoomID = r.ID
	g.Logger = r.Logger.Logger
	g.BroadcastFn = r.relayEvent
	g.BroadcastToPlayerFn = r.relayEventToPlayer
	g.OnRoundEnd = r.handleRoundEnd
	r.Game = g

	r.broadcastUnsafe(map[string]interface{}{
		"type":        string(skyjo.EventGameRoundStart),
		"gameId":      g.ID.String(),
		"roundNumber": r.RoundNumber,
		"bonusMode":   r.Options.BonusMode,
	})
	r.Logger.Infof("round %d started, game %s", r.RoundNumber, g.ID)
}

// relayEvent fans an engine event out to every connection. Called with the
// game lock held; takes only the room lock, never the game lock.
func (r *Room) relayEvent(ev skyjo.GameEvent) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	for _, conn := range r.Connections {
		conn.Write(ev)
	}
	for id, agent := range r.agents {
		agent.Observe(id, ev)
	}
}

// relayEventToPlayer delivers a private engine event.
func (r *Room) relayEventToPlayer(playerID uuid.UUID, ev skyjo.GameEvent) {
	r.Mu.Lock()
	conn, ok := r.Connections[playerID]
	r.Mu.Unlock()
	if ok {
		conn.Write(ev)
	}
}

// handleRoundEnd folds a finished round into the session score sheet and
// either opens the ready barrier for the next round or ends the game.
// Called by the engine with the game lock held.
func (r *Room) handleRoundEnd(result skyjo.RoundResult) {
	r.Mu.Lock()
	r.roundDone = true
	round := result.Round
	r.Rounds = append(r.Rounds, round)
	scoring.Accumulate(r.Totals, round)

	winners := scoring.RoundWinners(round)
	for _, id := range winners {
		r.RoundWins[id]++
	}
	onRoundWon := r.OnRoundWon
	bonus := r.Options.BonusMode
	var humanWinners []uuid.UUID
	for _, id := range winners {
		if r.agents[id] == nil {
			humanWinners = append(humanWinners, id)
		}
	}

	totals := make(map[string]int, len(r.Totals))
	for id, t := range r.Totals {
		totals[id.String()] = t
	}
	scoresPayload := map[string]interface{}{
		"type":        "round_scores",
		"roundNumber": r.RoundNumber,
		"scores":      stringKeyed(round.Scores),
		"rawScores":   stringKeyed(round.RawScores),
		"totals":      totals,
		"finisherId":  round.FinisherID.String(),
	}

	over := scoring.GameOver(r.Totals, r.Options.TargetScore)
	if over {
		r.finishGameUnsafe(scoresPayload)
	} else {
		r.broadcastUnsafe(scoresPayload)
		r.resetReadyUnsafe()
	}
	r.Mu.Unlock()

	if onRoundWon != nil {
		for _, id := range humanWinners {
			onRoundWon(id, bonus)
		}
	}
}

// finishGameUnsafe closes the session: final ranking, archive record,
// game-end broadcast. Lock held.
func (r *Room) finishGameUnsafe(scoresPayload map[string]interface{}) {
	r.GameOver = true
	r.InGame = false

	ranked := scoring.RankPlayers(r.seats, r.Totals, r.RoundWins)
	winnerID := uuid.Nil
	if len(ranked) > 0 {
		winnerID = ranked[0]
	}
	record := models.GameRecord{
		GameID:   r.Game.ID,
		Players:  append([]uuid.UUID(nil), r.seats...),
		Rounds:   append([]models.Round(nil), r.Rounds...),
		Totals:   copyTotals(r.Totals),
		WinnerID: winnerID,
	}
	rankedStr := make([]string, len(ranked))
	for i, id := range ranked {
		rankedStr[i] = id.String()
	}

	r.broadcastUnsafe(scoresPayload)
	r.broadcastUnsafe(map[string]interface{}{
		"type":     "game_end",
		"winnerId": winnerID.String(),
		"ranking":  rankedStr,
		"totals":   scoresPayload["totals"],
	})
	r.Logger.Infof("game over after %d rounds, winner %s", r.RoundNumber, winnerID)

	if r.OnGameEnd != nil {
		go r.OnGameEnd(record)
	}
}

// AdvanceRound starts the next round. With byUserID == uuid.Nil it is the
// unanimous-barrier path; otherwise it is the host force-advance, legal only
// once the ready timeout has elapsed.
func (r *Room) AdvanceRound(byUserID uuid.UUID) error {
	r.Mu.Lock()
	if !r.InGame || r.Game == nil {
		r.Mu.Unlock()
		return ErrNoGame
	}
	if !r.roundDone {
		r.Mu.Unlock()
		return ErrGameInProgress
	}
	if byUserID != uuid.Nil {
		if byUserID != r.HostUserID {
			r.Mu.Unlock()
			return ErrNotHost
		}
		if time.Since(r.roundEndedAt) < ReadyTimeout {
			r.Mu.Unlock()
			return ErrBarrierNotReady
		}
	}
	if r.readyTimer != nil {
		r.readyTimer.Stop()
		r.readyTimer = nil
	}
	r.startRoundUnsafe()
	r.Mu.Unlock()

	go r.driveBots()
	return nil
}

// Rematch resets the score sheet after a finished game and starts over.
func (r *Room) Rematch(userID uuid.UUID) error {
	r.Mu.Lock()
	if !r.GameOver {
		r.Mu.Unlock()
		return ErrGameInProgress
	}
	r.Mu.Unlock()
	return r.StartGame(userID)
}

// CurrentGame returns the running engine instance, if any.
func (r *Room) CurrentGame() *skyjo.Game {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.Game
}

func stringKeyed(m map[uuid.UUID]int) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k.String()] = v
	}
	return out
}

func copyTotals(m map[uuid.UUID]int) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
