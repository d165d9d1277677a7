package repository_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/playerhunt/internal/adapters/repository"
	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickClock advances one second per call so entries get distinct times.
type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type factory func(t *testing.T, opts ...repository.Option) repository.Store

func stores() map[string]factory {
	return map[string]factory{
		"bolt": func(t *testing.T, opts ...repository.Option) repository.Store {
			t.Helper()
			s, err := repository.NewBoltStore(filepath.Join(t.TempDir(), "rooms.db"), opts...)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"memory": func(_ *testing.T, opts ...repository.Option) repository.Store {
			return repository.NewMemoryStore(opts...)
		},
	}
}

func newStore(t *testing.T, f factory) repository.Store {
	t.Helper()
	clock := &tickClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return f(t, repository.WithClock(clock.Now), repository.WithLogger(logger.Nop()))
}

func TestRooms(t *testing.T) {
	ctx := context.Background()
	for name, f := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, f)

			room, err := s.CreateRoom(ctx, " abc123 ", "alice")
			require.NoError(t, err)
			assert.Equal(t, "ABC123", room.Code)
			assert.Equal(t, "alice", room.Creator)
			assert.False(t, room.CreatedAt.IsZero())

			_, err = s.CreateRoom(ctx, "ABC123", "bob")
			assert.ErrorIs(t, err, repository.ErrRoomExists)

			_, err = s.CreateRoom(ctx, "   ", "bob")
			assert.ErrorIs(t, err, repository.ErrInvalidRoom)

			assert.True(t, s.RoomExists(ctx, "abc123"))
			assert.False(t, s.RoomExists(ctx, "ZZZZZZ"))

			got, err := s.Room(ctx, "abc123")
			require.NoError(t, err)
			assert.Equal(t, "alice", got.Creator)

			_, err = s.CreateRoom(ctx, "XYZ789", "carol")
			require.NoError(t, err)
			assert.Equal(t, 2, s.Rooms(ctx))
		})
	}
}

func TestCollection(t *testing.T) {
	ctx := context.Background()
	for name, f := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, f)
			_, err := s.CreateRoom(ctx, "ROOM01", "alice")
			require.NoError(t, err)

			first, err := s.Append(ctx, "ROOM01", model.CollectionEntry{Name: "Messi", Sport: "Football", AddedBy: "alice"})
			require.NoError(t, err)
			assert.NotEmpty(t, first.ID)
			assert.Equal(t, "Messi", first.MatchedName, "matched name defaults to the name")

			_, err = s.Append(ctx, "ROOM01", model.CollectionEntry{
				Name: "Nadal", Sport: "Tennis", Country: "Spain", MatchedName: "Rafael Nadal", AddedBy: "bob", Points: 3,
			})
			require.NoError(t, err)

			_, err = s.Append(ctx, "ROOM01", model.CollectionEntry{Name: "  MESSI ", Sport: "Football"})
			assert.ErrorIs(t, err, repository.ErrDuplicate)

			_, err = s.Append(ctx, "ROOM01", model.CollectionEntry{Name: "  "})
			assert.ErrorIs(t, err, repository.ErrInvalidName)

			exists, err := s.Exists(ctx, "room01", "messi")
			require.NoError(t, err)
			assert.True(t, exists)

			exists, err = s.Exists(ctx, "ROOM01", "Federer")
			require.NoError(t, err)
			assert.False(t, exists)

			entries, err := s.Collection(ctx, "ROOM01")
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "Nadal", entries[0].Name, "newest first")
			assert.Equal(t, "Rafael Nadal", entries[0].MatchedName)
			assert.Equal(t, 3, entries[0].Points)
			assert.Equal(t, "Messi", entries[1].Name)

			_, err = s.Collection(ctx, "NOPE00")
			assert.ErrorIs(t, err, repository.ErrRoomNotFound)
			_, err = s.Append(ctx, "NOPE00", model.CollectionEntry{Name: "Messi"})
			assert.ErrorIs(t, err, repository.ErrRoomNotFound)
		})
	}
}

func TestStreaks(t *testing.T) {
	ctx := context.Background()
	for name, f := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, f)
			_, err := s.CreateRoom(ctx, "ROOM01", "alice")
			require.NoError(t, err)

			st, err := s.Streak(ctx, "ROOM01", "alice")
			require.NoError(t, err)
			assert.Equal(t, repository.Streak{}, st)

			st, record, err := s.IncrementStreak(ctx, "ROOM01", "alice")
			require.NoError(t, err)
			assert.Equal(t, repository.Streak{Current: 1, Best: 1}, st)
			assert.True(t, record)

			st, record, err = s.IncrementStreak(ctx, "ROOM01", "alice")
			require.NoError(t, err)
			assert.Equal(t, repository.Streak{Current: 2, Best: 2}, st)
			assert.True(t, record)

			require.NoError(t, s.ResetStreak(ctx, "ROOM01", "alice"))
			st, err = s.Streak(ctx, "ROOM01", "alice")
			require.NoError(t, err)
			assert.Equal(t, repository.Streak{Current: 0, Best: 2}, st)

			st, record, err = s.IncrementStreak(ctx, "ROOM01", "alice")
			require.NoError(t, err)
			assert.Equal(t, repository.Streak{Current: 1, Best: 2}, st)
			assert.False(t, record)

			other, err := s.Streak(ctx, "ROOM01", "bob")
			require.NoError(t, err)
			assert.Zero(t, other.Current)

			players, err := s.Players(ctx, "ROOM01")
			require.NoError(t, err)
			assert.Equal(t, map[string]repository.Streak{"alice": {Current: 1, Best: 2}}, players)

			_, _, err = s.IncrementStreak(ctx, "NOPE00", "alice")
			assert.ErrorIs(t, err, repository.ErrRoomNotFound)
		})
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	for name, f := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, f)
			_, err := s.CreateRoom(ctx, "ROOM01", "alice")
			require.NoError(t, err)
			_, err = s.Append(ctx, "ROOM01", model.CollectionEntry{Name: "Messi", Sport: "Football"})
			require.NoError(t, err)
			_, _, err = s.IncrementStreak(ctx, "ROOM01", "alice")
			require.NoError(t, err)

			require.NoError(t, s.Clear(ctx, "ROOM01"))

			assert.True(t, s.RoomExists(ctx, "ROOM01"))
			entries, err := s.Collection(ctx, "ROOM01")
			require.NoError(t, err)
			assert.Empty(t, entries)
			st, err := s.Streak(ctx, "ROOM01", "alice")
			require.NoError(t, err)
			assert.Equal(t, repository.Streak{}, st)

			_, err = s.Append(ctx, "ROOM01", model.CollectionEntry{Name: "Messi", Sport: "Football"})
			assert.NoError(t, err, "cleared names can be added again")

			assert.ErrorIs(t, s.Clear(ctx, "NOPE00"), repository.ErrRoomNotFound)
		})
	}
}

func TestConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	for name, f := range stores() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, f)
			_, err := s.CreateRoom(ctx, "ROOM01", "alice")
			require.NoError(t, err)

			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				oks  int
				dups int
			)
			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.Append(ctx, "ROOM01", model.CollectionEntry{Name: "Messi", Sport: "Football"})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						oks++
					case assert.ErrorIs(t, err, repository.ErrDuplicate):
						dups++
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, oks)
			assert.Equal(t, 15, dups)
		})
	}
}

func TestBoltPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rooms.db")

	s, err := repository.NewBoltStore(path, repository.WithLogger(logger.Nop()))
	require.NoError(t, err)
	_, err = s.CreateRoom(ctx, "ROOM01", "alice")
	require.NoError(t, err)
	_, err = s.Append(ctx, "ROOM01", model.CollectionEntry{Name: "Messi", Sport: "Football", Country: "Argentina"})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = s.Collection(ctx, "ROOM01")
	assert.ErrorIs(t, err, repository.ErrClosed)

	reopened, err := repository.NewBoltStore(path, repository.WithLogger(logger.Nop()))
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Collection(ctx, "ROOM01")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Argentina", entries[0].Country)
}

func TestGenerateRoomCode(t *testing.T) {
	seen := map[string]struct{}{}
	for range 50 {
		code := repository.GenerateRoomCode()
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'), "unexpected rune %q", r)
		}
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
	assert.Equal(t, "AB12CD", repository.NormalizeRoomCode(" ab12cd "))
}
