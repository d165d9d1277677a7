// Package localindex serves exact and last-name lookups from the read-only
// sqlite athlete snapshot.
//
// The snapshot has one table:
//
//	athletes(key TEXT PRIMARY KEY, name TEXT, sport TEXT, country TEXT)
//
// where key is the lower-cased, trimmed name. A missing or unreadable
// snapshot is not an error: every lookup simply reports absent.
package localindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/internal/domain/normalize"
	"github.com/okian/playerhunt/pkg/logger"
	"github.com/okian/playerhunt/pkg/metrics"

	_ "modernc.org/sqlite"
)

const (
	defaultFalsePositiveRate = 0.001
	minBloomCapacity         = 1024

	queryExact = `SELECT name, sport, country FROM athletes WHERE key = ?`
	// Shortest key first; key breaks length ties so results are stable.
	querySuffix = `SELECT name, sport, country FROM athletes
		WHERE key LIKE ? ESCAPE '\'
		ORDER BY length(key) ASC, key ASC LIMIT 1`
	queryKeys      = `SELECT key FROM athletes`
	queryCountries = `SELECT COUNT(DISTINCT country) FROM athletes WHERE country IS NOT NULL AND country <> ''`
)

// Option applies a configuration option to the Index.
type Option func(*Index)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithBloomFilter toggles the in-memory key filter that short-circuits exact
// misses. Enabled by default.
func WithBloomFilter(enabled bool) Option {
	return func(ix *Index) {
		ix.useBloom = enabled
	}
}

// Index is the local athlete matcher. It is safe for concurrent use.
type Index struct {
	db       *sql.DB
	keys     *bloom.BloomFilter
	rows     int
	useBloom bool
	logger   logger.Logger
}

// Open opens the snapshot at path read-only. It always returns a usable
// Index; when the snapshot cannot be used the Index is empty and the reason
// is logged.
func Open(ctx context.Context, path string, opts ...Option) *Index {
	ix := &Index{useBloom: true}
	for _, opt := range opts {
		opt(ix)
	}
	ix.logger = logger.OrNamed(ix.logger, "localindex")

	if err := ix.open(ctx, path); err != nil {
		ix.logger.Warn(ctx, "local athlete index unavailable; local matches disabled",
			logger.String("path", path), logger.Error(err))
		ix.close()
	} else {
		ix.logger.Info(ctx, "local athlete index loaded",
			logger.String("path", path), logger.Int("rows", ix.rows))
	}
	metrics.UpdateLocalIndexRows(ix.rows)
	return ix
}

func (ix *Index) open(ctx context.Context, path string) error {
	if path == "" {
		return ErrUnavailable
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	ix.db = db

	keys, err := ix.loadKeys(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	ix.rows = len(keys)

	if ix.useBloom {
		capacity := uint(len(keys))
		if capacity < minBloomCapacity {
			capacity = minBloomCapacity
		}
		ix.keys = bloom.NewWithEstimates(capacity, defaultFalsePositiveRate)
		for _, k := range keys {
			ix.keys.AddString(k)
		}
	}
	return nil
}

func (ix *Index) loadKeys(ctx context.Context) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx, queryKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Available reports whether the snapshot was loaded.
func (ix *Index) Available() bool { return ix.db != nil }

// Len returns the number of rows in the snapshot.
func (ix *Index) Len() int { return ix.rows }

// Exact returns the row whose key equals the normalized name.
func (ix *Index) Exact(ctx context.Context, name string) (model.ResolvedEntity, bool) {
	if ix.db == nil {
		return model.ResolvedEntity{}, false
	}
	key := normalize.Key(name)
	if key == "" {
		return model.ResolvedEntity{}, false
	}
	if ix.keys != nil && !ix.keys.TestString(key) {
		return model.ResolvedEntity{}, false
	}
	return ix.queryOne(ctx, queryExact, key, model.SourceExact)
}

// Suffix returns, among rows whose key ends with " "+key, the one with the
// shortest key.
func (ix *Index) Suffix(ctx context.Context, name string) (model.ResolvedEntity, bool) {
	if ix.db == nil {
		return model.ResolvedEntity{}, false
	}
	key := normalize.Key(name)
	if key == "" {
		return model.ResolvedEntity{}, false
	}
	return ix.queryOne(ctx, querySuffix, "% "+escapeLike(key), model.SourceSuffix)
}

func (ix *Index) queryOne(ctx context.Context, query, arg string, src model.Source) (model.ResolvedEntity, bool) {
	var (
		name, sport string
		country     sql.NullString
	)
	err := ix.db.QueryRowContext(ctx, query, arg).Scan(&name, &sport, &country)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			metrics.RecordErrorByComponent("localindex", "query")
			ix.logger.Warn(ctx, "local index query failed", logger.String("arg", arg), logger.Error(err))
		}
		return model.ResolvedEntity{}, false
	}

	e := model.ResolvedEntity{Sport: sport, MatchedName: name, Source: src}
	if country.Valid && country.String != "" {
		e.Country = normalize.Country(country.String)
	}
	return e, true
}

// CountCountries returns the number of distinct raw countries in the
// snapshot, or 0 when it is unavailable.
func (ix *Index) CountCountries(ctx context.Context) int {
	if ix.db == nil {
		return 0
	}
	var n int
	if err := ix.db.QueryRowContext(ctx, queryCountries).Scan(&n); err != nil {
		ix.logger.Warn(ctx, "count countries failed", logger.Error(err))
		return 0
	}
	return n
}

// Close releases the database handle.
func (ix *Index) Close() error {
	return ix.close()
}

func (ix *Index) close() error {
	if ix.db == nil {
		return nil
	}
	err := ix.db.Close()
	ix.db = nil
	ix.keys = nil
	ix.rows = 0
	return err
}

// escapeLike escapes LIKE wildcards so the key is matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
