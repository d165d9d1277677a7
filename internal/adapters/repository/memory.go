package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/pkg/logger"
)

type memRoom struct {
	meta    Room
	entries []model.CollectionEntry // insertion order
	names   map[string]struct{}
	players map[string]Streak
}

func newMemRoom(meta Room) *memRoom {
	return &memRoom{meta: meta, names: map[string]struct{}{}, players: map[string]Streak{}}
}

// MemoryStore is an in-process Store used when no store path is configured
// and in tests. State is lost on exit.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*memRoom
	cfg   settings
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = logger.OrNamed(cfg.logger, "repository")
	return &MemoryStore{rooms: map[string]*memRoom{}, cfg: cfg}
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// CreateRoom registers a new room.
func (s *MemoryStore) CreateRoom(ctx context.Context, code, creator string) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	code = NormalizeRoomCode(code)
	if code == "" {
		return Room{}, ErrInvalidRoom
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; ok {
		return Room{}, ErrRoomExists
	}
	meta := Room{Code: code, Creator: creator, CreatedAt: s.cfg.now()}
	s.rooms[code] = newMemRoom(meta)
	return meta, nil
}

// Room returns room metadata.
func (s *MemoryStore) Room(ctx context.Context, code string) (Room, error) {
	var meta Room
	err := s.read(ctx, code, func(r *memRoom) error {
		meta = r.meta
		return nil
	})
	return meta, err
}

// RoomExists reports whether code names a room.
func (s *MemoryStore) RoomExists(ctx context.Context, code string) bool {
	return s.read(ctx, code, func(*memRoom) error { return nil }) == nil
}

// Rooms returns the number of rooms.
func (s *MemoryStore) Rooms(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Exists reports whether name is already in the room.
func (s *MemoryStore) Exists(ctx context.Context, room, name string) (bool, error) {
	key := nameKey(name)
	if key == "" {
		return false, nil
	}
	found := false
	err := s.read(ctx, room, func(r *memRoom) error {
		_, found = r.names[key]
		return nil
	})
	return found, err
}

// Collection returns the room's entries, newest first.
func (s *MemoryStore) Collection(ctx context.Context, room string) ([]model.CollectionEntry, error) {
	var out []model.CollectionEntry
	err := s.read(ctx, room, func(r *memRoom) error {
		out = make([]model.CollectionEntry, len(r.entries))
		copy(out, r.entries)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Reverse insertion order, then a stable sort keeps it for equal times.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

// Append adds entry to the room.
func (s *MemoryStore) Append(ctx context.Context, room string, entry model.CollectionEntry) (model.CollectionEntry, error) {
	entry, err := s.cfg.prepare(entry)
	if err != nil {
		return model.CollectionEntry{}, err
	}
	key := nameKey(entry.Name)
	err = s.write(ctx, room, func(r *memRoom) error {
		if _, dup := r.names[key]; dup {
			return ErrDuplicate
		}
		r.names[key] = struct{}{}
		r.entries = append(r.entries, entry)
		return nil
	})
	if err != nil {
		return model.CollectionEntry{}, err
	}
	return entry, nil
}

// Streak returns the player's streak.
func (s *MemoryStore) Streak(ctx context.Context, room, player string) (Streak, error) {
	var st Streak
	err := s.read(ctx, room, func(r *memRoom) error {
		st = r.players[player]
		return nil
	})
	return st, err
}

// IncrementStreak bumps the current streak.
func (s *MemoryStore) IncrementStreak(ctx context.Context, room, player string) (Streak, bool, error) {
	var (
		st     Streak
		record bool
	)
	err := s.write(ctx, room, func(r *memRoom) error {
		st = r.players[player]
		st.Current++
		if st.Current > st.Best {
			st.Best = st.Current
			record = true
		}
		r.players[player] = st
		return nil
	})
	return st, record, err
}

// ResetStreak sets the current streak to zero.
func (s *MemoryStore) ResetStreak(ctx context.Context, room, player string) error {
	return s.write(ctx, room, func(r *memRoom) error {
		st := r.players[player]
		st.Current = 0
		r.players[player] = st
		return nil
	})
}

// Players returns every player's streak in the room.
func (s *MemoryStore) Players(ctx context.Context, room string) (map[string]Streak, error) {
	var out map[string]Streak
	err := s.read(ctx, room, func(r *memRoom) error {
		out = make(map[string]Streak, len(r.players))
		for k, v := range r.players {
			out[k] = v
		}
		return nil
	})
	return out, err
}

// Clear removes every entry and streak but keeps the room.
func (s *MemoryStore) Clear(ctx context.Context, room string) error {
	return s.write(ctx, room, func(r *memRoom) error {
		*r = *newMemRoom(r.meta)
		return nil
	})
}

func (s *MemoryStore) read(ctx context.Context, room string, fn func(*memRoom) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[NormalizeRoomCode(room)]
	if !ok {
		return ErrRoomNotFound
	}
	return fn(r)
}

func (s *MemoryStore) write(ctx context.Context, room string, fn func(*memRoom) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[NormalizeRoomCode(room)]
	if !ok {
		return ErrRoomNotFound
	}
	return fn(r)
}
