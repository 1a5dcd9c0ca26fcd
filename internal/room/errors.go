package room

import "errors"

var (
	ErrRoomFull        = errors.New("room is full")
	ErrNotHost         = errors.New("only the host may do that")
	ErrGameInProgress  = errors.New("a game is already in progress")
	ErrNoGame          = errors.New("no game is in progress")
	ErrNotEnoughSeats  = errors.New("at least two players are needed")
	ErrBarrierNotReady = errors.New("waiting for players to ready up")
)
