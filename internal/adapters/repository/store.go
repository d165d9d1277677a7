// Package repository persists rooms, their athlete collections and per-player
// streaks.
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/playerhunt/internal/domain/model"
)

// Room describes a room's metadata.
type Room struct {
	Code      string    `json:"code"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"created_at"`
}

// Streak is a player's consecutive-success counter within a room.
type Streak struct {
	Current int `json:"current_streak"`
	Best    int `json:"best_streak"`
}

// Store provides read/write access to room state.
type Store interface {
	// CreateRoom registers a new room. Returns ErrRoomExists if taken.
	CreateRoom(ctx context.Context, code, creator string) (Room, error)
	// Room returns room metadata or ErrRoomNotFound.
	Room(ctx context.Context, code string) (Room, error)
	// RoomExists reports whether code names a room.
	RoomExists(ctx context.Context, code string) bool
	// Rooms returns the number of rooms.
	Rooms(ctx context.Context) int

	// Exists reports whether a name is already in the room, ignoring case
	// and surrounding whitespace.
	Exists(ctx context.Context, room, name string) (bool, error)
	// Collection returns the room's entries, newest first.
	Collection(ctx context.Context, room string) ([]model.CollectionEntry, error)
	// Append adds entry to the room. Returns ErrDuplicate if the name is
	// already present. ID, AddedAt and MatchedName are filled when empty.
	Append(ctx context.Context, room string, entry model.CollectionEntry) (model.CollectionEntry, error)

	// Streak returns the player's streak; unknown players have a zero streak.
	Streak(ctx context.Context, room, player string) (Streak, error)
	// IncrementStreak bumps the current streak and reports whether it set a
	// new best.
	IncrementStreak(ctx context.Context, room, player string) (Streak, bool, error)
	// ResetStreak sets the current streak to zero, keeping the best.
	ResetStreak(ctx context.Context, room, player string) error
	// Players returns every player's streak in the room.
	Players(ctx context.Context, room string) (map[string]Streak, error)

	// Clear removes every entry and streak but keeps the room.
	Clear(ctx context.Context, room string) error

	Close() error
}

// prepare validates entry and fills its defaults.
func (s settings) prepare(entry model.CollectionEntry) (model.CollectionEntry, error) {
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return entry, ErrInvalidName
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = s.now()
	}
	if entry.MatchedName == "" {
		entry.MatchedName = entry.Name
	}
	return entry, nil
}
