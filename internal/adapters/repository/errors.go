package repository

import "errors"

// Sentinel kinds for room store errors.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
	ErrDuplicate    = errors.New("athlete already in room")
	ErrInvalidRoom  = errors.New("invalid room code")
	ErrInvalidName  = errors.New("invalid athlete name")
	ErrClosed       = errors.New("store closed")
)
