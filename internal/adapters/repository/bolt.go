package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/pkg/logger"
	bolt "go.etcd.io/bbolt"
)

// Bucket layout:
//
//	rooms/<CODE>/meta        Room JSON
//	rooms/<CODE>/athletes/   <added_at ns big-endian><id> -> CollectionEntry JSON
//	rooms/<CODE>/names/      normalized name -> entry id
//	rooms/<CODE>/players/    player name -> Streak JSON
var (
	bucketRooms    = []byte("rooms")
	bucketAthletes = []byte("athletes")
	bucketNames    = []byte("names")
	bucketPlayers  = []byte("players")
	keyMeta        = []byte("meta")
)

// BoltStore implements Store backed by bbolt. Each room gets its own bucket,
// and every mutation is a single transaction.
type BoltStore struct {
	db  *bolt.DB
	cfg settings
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens (or creates) a bbolt database at path.
func NewBoltStore(path string, opts ...Option) (*BoltStore, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = logger.OrNamed(cfg.logger, "repository")

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: cfg.openTimeout})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRooms)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bbolt init: %w", err)
	}
	return &BoltStore{db: db, cfg: cfg}, nil
}

// Close closes the underlying bbolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// CreateRoom registers a new room.
func (s *BoltStore) CreateRoom(ctx context.Context, code, creator string) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	code = NormalizeRoomCode(code)
	if code == "" {
		return Room{}, ErrInvalidRoom
	}
	room := Room{Code: code, Creator: creator, CreatedAt: s.cfg.now()}
	meta, err := json.Marshal(room)
	if err != nil {
		return Room{}, fmt.Errorf("marshal room: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		rooms := tx.Bucket(bucketRooms)
		if rooms.Bucket([]byte(code)) != nil {
			return ErrRoomExists
		}
		rb, err := rooms.CreateBucket([]byte(code))
		if err != nil {
			return err
		}
		if err := createRoomChildren(rb); err != nil {
			return err
		}
		return rb.Put(keyMeta, meta)
	})
	if err != nil {
		return Room{}, err
	}
	s.cfg.logger.Info(ctx, "room created", logger.String("room", code), logger.String("creator", creator))
	return room, nil
}

func createRoomChildren(rb *bolt.Bucket) error {
	for _, name := range [][]byte{bucketAthletes, bucketNames, bucketPlayers} {
		if _, err := rb.CreateBucketIfNotExists(name); err != nil {
			return err
		}
	}
	return nil
}

// Room returns room metadata.
func (s *BoltStore) Room(ctx context.Context, code string) (Room, error) {
	var room Room
	err := s.view(ctx, code, func(rb *bolt.Bucket) error {
		return json.Unmarshal(rb.Get(keyMeta), &room)
	})
	return room, err
}

// RoomExists reports whether code names a room.
func (s *BoltStore) RoomExists(ctx context.Context, code string) bool {
	return s.view(ctx, code, func(*bolt.Bucket) error { return nil }) == nil
}

// Rooms returns the number of rooms.
func (s *BoltStore) Rooms(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	n := 0
	_ = s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRooms).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if v == nil {
				n++
			}
		}
		return nil
	})
	return n
}

// Exists reports whether name is already in the room.
func (s *BoltStore) Exists(ctx context.Context, room, name string) (bool, error) {
	key := nameKey(name)
	if key == "" {
		return false, nil
	}
	found := false
	err := s.view(ctx, room, func(rb *bolt.Bucket) error {
		found = rb.Bucket(bucketNames).Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

// Collection returns the room's entries, newest first.
func (s *BoltStore) Collection(ctx context.Context, room string) ([]model.CollectionEntry, error) {
	var out []model.CollectionEntry
	err := s.view(ctx, room, func(rb *bolt.Bucket) error {
		out = []model.CollectionEntry{}
		c := rb.Bucket(bucketAthletes).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var e model.CollectionEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("unmarshal entry %x: %w", k, err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Append adds entry to the room. The duplicate check and the write share one
// transaction.
func (s *BoltStore) Append(ctx context.Context, room string, entry model.CollectionEntry) (model.CollectionEntry, error) {
	entry, err := s.cfg.prepare(entry)
	if err != nil {
		return model.CollectionEntry{}, err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return model.CollectionEntry{}, fmt.Errorf("marshal entry: %w", err)
	}
	name := []byte(nameKey(entry.Name))

	err = s.update(ctx, room, func(rb *bolt.Bucket) error {
		names := rb.Bucket(bucketNames)
		if names.Get(name) != nil {
			return ErrDuplicate
		}
		if err := rb.Bucket(bucketAthletes).Put(entryKey(entry), data); err != nil {
			return err
		}
		return names.Put(name, []byte(entry.ID))
	})
	if err != nil {
		return model.CollectionEntry{}, err
	}
	return entry, nil
}

// entryKey orders entries by insertion time, with the ID breaking ties.
func entryKey(e model.CollectionEntry) []byte {
	k := make([]byte, 8, 8+len(e.ID))
	binary.BigEndian.PutUint64(k, uint64(e.AddedAt.UnixNano()))
	return append(k, e.ID...)
}

// Streak returns the player's streak.
func (s *BoltStore) Streak(ctx context.Context, room, player string) (Streak, error) {
	var st Streak
	err := s.view(ctx, room, func(rb *bolt.Bucket) error {
		var err error
		st, err = readStreak(rb, player)
		return err
	})
	return st, err
}

// IncrementStreak bumps the current streak.
func (s *BoltStore) IncrementStreak(ctx context.Context, room, player string) (Streak, bool, error) {
	var (
		st     Streak
		record bool
	)
	err := s.update(ctx, room, func(rb *bolt.Bucket) error {
		var err error
		if st, err = readStreak(rb, player); err != nil {
			return err
		}
		st.Current++
		if st.Current > st.Best {
			st.Best = st.Current
			record = true
		}
		return writeStreak(rb, player, st)
	})
	return st, record, err
}

// ResetStreak sets the current streak to zero.
func (s *BoltStore) ResetStreak(ctx context.Context, room, player string) error {
	return s.update(ctx, room, func(rb *bolt.Bucket) error {
		st, err := readStreak(rb, player)
		if err != nil {
			return err
		}
		st.Current = 0
		return writeStreak(rb, player, st)
	})
}

// Players returns every player's streak in the room.
func (s *BoltStore) Players(ctx context.Context, room string) (map[string]Streak, error) {
	out := map[string]Streak{}
	err := s.view(ctx, room, func(rb *bolt.Bucket) error {
		return rb.Bucket(bucketPlayers).ForEach(func(k, v []byte) error {
			var st Streak
			if err := json.Unmarshal(v, &st); err != nil {
				return fmt.Errorf("unmarshal streak %q: %w", k, err)
			}
			out[string(k)] = st
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readStreak(rb *bolt.Bucket, player string) (Streak, error) {
	var st Streak
	v := rb.Bucket(bucketPlayers).Get([]byte(player))
	if v == nil {
		return st, nil
	}
	if err := json.Unmarshal(v, &st); err != nil {
		return st, fmt.Errorf("unmarshal streak: %w", err)
	}
	return st, nil
}

func writeStreak(rb *bolt.Bucket, player string, st Streak) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal streak: %w", err)
	}
	return rb.Bucket(bucketPlayers).Put([]byte(player), data)
}

// Clear removes every entry and streak but keeps the room.
func (s *BoltStore) Clear(ctx context.Context, room string) error {
	err := s.update(ctx, room, func(rb *bolt.Bucket) error {
		for _, name := range [][]byte{bucketAthletes, bucketNames, bucketPlayers} {
			if err := rb.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}
		return createRoomChildren(rb)
	})
	if err == nil {
		s.cfg.logger.Info(ctx, "room cleared", logger.String("room", NormalizeRoomCode(room)))
	}
	return err
}

func (s *BoltStore) view(ctx context.Context, room string, fn func(*bolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	code := []byte(NormalizeRoomCode(room))
	return closed(s.db.View(func(tx *bolt.Tx) error {
		rb := tx.Bucket(bucketRooms).Bucket(code)
		if rb == nil {
			return ErrRoomNotFound
		}
		return fn(rb)
	}))
}

func (s *BoltStore) update(ctx context.Context, room string, fn func(*bolt.Bucket) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	code := []byte(NormalizeRoomCode(room))
	return closed(s.db.Update(func(tx *bolt.Tx) error {
		rb := tx.Bucket(bucketRooms).Bucket(code)
		if rb == nil {
			return ErrRoomNotFound
		}
		return fn(rb)
	}))
}

// closed maps bbolt's not-open error to ErrClosed.
func closed(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}
