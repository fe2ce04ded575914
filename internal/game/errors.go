package game

import "errors"

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerExists     = errors.New("player already exists")
	ErrRoomNotWaiting   = errors.New("game has already started")
	ErrRoomFull         = errors.New("room is full")
	ErrWrongPassword    = errors.New("password does not match")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNoHostLocation   = errors.New("host location not available")
	ErrBadTransition    = errors.New("invalid game status transition")
)
