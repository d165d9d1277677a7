// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/playerhunt/internal/adapters/mq/queue"
	"github.com/okian/playerhunt/internal/adapters/mq/worker"
	"github.com/okian/playerhunt/internal/adapters/repository"
	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/internal/domain/normalize"
	"github.com/okian/playerhunt/internal/domain/progress"
	"github.com/okian/playerhunt/internal/domain/resolver"
	"github.com/okian/playerhunt/internal/domain/scoring"
	"github.com/okian/playerhunt/internal/domain/types"
	"github.com/okian/playerhunt/pkg/logger"
	"github.com/okian/playerhunt/pkg/metrics"
)

const (
	defaultBatchWorkers = 4
	defaultQueueSize    = 256
	maxBatchSize        = 100
	roomCodeAttempts    = 8
)

// CountryCounter reports how many distinct countries the athlete corpus
// covers; it is the denominator of a room's country progress.
type CountryCounter interface {
	CountCountries(ctx context.Context) int
}

// Service implements the API dependencies for rooms and lookups.
type Service struct {
	mu sync.RWMutex

	// Core components
	lookup    resolver.Lookuper
	store     repository.Store
	scorer    scoring.Scorer
	countries CountryCounter

	// Batch lookups
	queue        *queue.InMemoryQueue
	pool         *worker.Pool
	batchWorkers int
	queueSize    int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLookuper sets the name resolver, usually a cache in front of a
// resolver.Resolver.
func WithLookuper(l resolver.Lookuper) Option {
	return func(s *Service) {
		if l != nil {
			s.lookup = l
		}
	}
}

// WithStore sets the room store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithScorer sets the rarity scorer.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithCountryCounter sets the source of the country-progress denominator.
func WithCountryCounter(c CountryCounter) Option {
	return func(s *Service) {
		s.countries = c
	}
}

// WithBatchWorkers sets the number of goroutines serving batch lookups.
func WithBatchWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchWorkers = n
		}
	}
}

// WithQueueSize sets the maximum number of queued batch lookups.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service. Without a lookuper every name is not found;
// without a store rooms are kept in memory.
func New(opts ...Option) *Service {
	s := &Service{
		batchWorkers: defaultBatchWorkers,
		queueSize:    defaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrNamed(s.logger, "service")
	if s.lookup == nil {
		s.lookup = resolver.New(nil, nil, resolver.WithLogger(s.logger))
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithLogger(s.logger))
	}
	if s.scorer == nil {
		s.scorer = scoring.NewRarityScorer()
	}
	return s
}

// Start launches the batch lookup workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.batchWorkers, s.queue, s.lookup)
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("batchWorkers", s.batchWorkers),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains the batch workers and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "store close", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "service stopped")
}

// CreateRoom allocates a fresh room code for creator.
func (s *Service) CreateRoom(ctx context.Context, creator string) (repository.Room, error) {
	creator = strings.TrimSpace(creator)
	if creator == "" {
		return repository.Room{}, fmt.Errorf("%w: creator must not be empty", ErrInvalidInput)
	}
	for range roomCodeAttempts {
		room, err := s.store.CreateRoom(ctx, repository.GenerateRoomCode(), creator)
		if errors.Is(err, repository.ErrRoomExists) {
			continue
		}
		return room, err
	}
	return repository.Room{}, ErrRoomCode
}

// JoinRoom returns the room's metadata, or repository.ErrRoomNotFound.
func (s *Service) JoinRoom(ctx context.Context, code string) (repository.Room, error) {
	return s.store.Room(ctx, code)
}

// Lookup resolves a single name without touching any room.
func (s *Service) Lookup(ctx context.Context, name string) (types.Athlete, bool) {
	e, ok := s.lookup.Lookup(ctx, name)
	if !ok {
		return types.Athlete{}, false
	}
	return types.FromEntity(e), true
}

// LookupBatch resolves names concurrently on the worker pool and returns
// results in input order. Jobs the queue refuses are resolved inline.
func (s *Service) LookupBatch(ctx context.Context, names []string) ([]types.LookupResult, error) {
	if len(names) > maxBatchSize {
		return nil, fmt.Errorf("%w: at most %d names per batch", ErrInvalidInput, maxBatchSize)
	}

	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()

	results := make([]types.LookupResult, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		results[i].Input = name
		deliver := func(e model.ResolvedEntity, ok bool) {
			defer wg.Done()
			if ok {
				a := types.FromEntity(e)
				results[i].Found = true
				results[i].Athlete = &a
			}
		}
		wg.Add(1)
		if started && q.Enqueue(ctx, queue.Job{Name: name, Deliver: deliver}) {
			continue
		}
		deliver(s.lookup.Lookup(ctx, name))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Submit runs one play: a duplicate leaves the streak untouched, a miss
// resets it, and a hit is scored against the collection before insertion,
// appended, and extends the streak.
func (s *Service) Submit(ctx context.Context, room, player, name string) (types.Outcome, error) {
	name = strings.TrimSpace(name)
	player = strings.TrimSpace(player)
	if name == "" || player == "" {
		return types.Outcome{}, fmt.Errorf("%w: player and name are required", ErrInvalidInput)
	}
	out := types.Outcome{Input: name}

	dup, err := s.store.Exists(ctx, room, name)
	if err != nil {
		return types.Outcome{}, err
	}
	if dup {
		return s.duplicate(ctx, room, player, out)
	}

	start := time.Now()
	entity, found := s.lookup.Lookup(ctx, name)
	if !found {
		if err := s.store.ResetStreak(ctx, room, player); err != nil {
			return types.Outcome{}, err
		}
		st, err := s.store.Streak(ctx, room, player)
		if err != nil {
			return types.Outcome{}, err
		}
		out.Status = types.StatusNotFound
		out.Best = st.Best
		metrics.RecordSubmission(out.Status)
		s.logger.Info(ctx, "athlete not found; streak reset",
			logger.String("room", room), logger.String("player", player), logger.String("name", name))
		return out, nil
	}

	collection, err := s.store.Collection(ctx, room)
	if err != nil {
		return types.Outcome{}, err
	}
	pts := s.scorer.Score(entity.Sport, entity.Country, collection)

	_, err = s.store.Append(ctx, room, model.CollectionEntry{
		Name:        name,
		Sport:       entity.Sport,
		Country:     entity.Country,
		MatchedName: entity.MatchedName,
		AddedBy:     player,
		Points:      pts.Total,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return s.duplicate(ctx, room, player, out)
	}
	if err != nil {
		return types.Outcome{}, err
	}

	st, record, err := s.store.IncrementStreak(ctx, room, player)
	if err != nil {
		return types.Outcome{}, err
	}

	athlete := types.FromEntity(entity)
	out.Status = types.StatusAdded
	out.Athlete = &athlete
	out.Points = &types.Points{Total: pts.Total, SportBonus: pts.SportBonus, CountryBonus: pts.CountryBonus}
	out.Streak = st.Current
	out.Best = st.Best
	out.NewRecord = record

	metrics.RecordSubmission(out.Status)
	metrics.RecordPointsAwarded(pts.Total)
	s.logger.Info(ctx, "athlete added",
		logger.String("room", room),
		logger.String("player", player),
		logger.String("matched", entity.MatchedName),
		logger.String("sport", entity.Sport),
		logger.Int("points", pts.Total),
		logger.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (s *Service) duplicate(ctx context.Context, room, player string, out types.Outcome) (types.Outcome, error) {
	st, err := s.store.Streak(ctx, room, player)
	if err != nil {
		return types.Outcome{}, err
	}
	out.Status = types.StatusDuplicate
	out.Streak = st.Current
	out.Best = st.Best
	metrics.RecordSubmission(out.Status)
	return out, nil
}

// Collection returns the room's entries, newest first.
func (s *Service) Collection(ctx context.Context, room string) ([]model.CollectionEntry, error) {
	return s.store.Collection(ctx, room)
}

// ClearRoom removes every entry and streak from the room.
func (s *Service) ClearRoom(ctx context.Context, room string) error {
	return s.store.Clear(ctx, room)
}

// Streak returns a player's streak in the room.
func (s *Service) Streak(ctx context.Context, room, player string) (repository.Streak, error) {
	return s.store.Streak(ctx, room, player)
}

// RoomStats aggregates the room by sport, country and player, with
// milestone progress and achievements.
func (s *Service) RoomStats(ctx context.Context, room string) (types.RoomStats, error) {
	entries, err := s.store.Collection(ctx, room)
	if err != nil {
		return types.RoomStats{}, err
	}
	players, err := s.store.Players(ctx, room)
	if err != nil {
		return types.RoomStats{}, err
	}

	stats := types.RoomStats{
		Total:     len(entries),
		BySport:   map[string]int{},
		ByCountry: map[string]int{},
		ByPlayer:  map[string]int{},
		Milestone: progress.MilestoneFor(len(entries)),
	}
	for _, e := range entries {
		stats.BySport[e.Sport]++
		country := e.Country
		if country == "" {
			country = progress.UnknownCountry
		}
		stats.ByCountry[country]++
		stats.ByPlayer[e.AddedBy]++
	}

	best := 0
	for _, st := range players {
		best = max(best, st.Best)
	}
	stats.Achievements = progress.Achievements(progress.Summarize(entries, best))
	if s.countries != nil {
		stats.CountryTarget = s.countries.CountCountries(ctx)
	}
	return stats, nil
}

// SupportedSports lists the sport vocabulary.
func (s *Service) SupportedSports() []string {
	return normalize.SupportedSports()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"batchWorkers": s.batchWorkers,
		"queueSize":    s.queueSize,
		"rooms":        s.store.Rooms(ctx),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
	}
	if s.countries != nil {
		stats["countries"] = s.countries.CountCountries(ctx)
	}
	return stats
}
