// Package archive keeps every saved best genome of a run in a SQLite database.
package archive

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/baldhumanity/pendulum-neat/neat"
	"github.com/baldhumanity/pendulum-neat/training"
)

// Record is an archived best genome.
type Record struct {
	RunID         string
	Exploration   uint32
	Iteration     uint32
	Score         float64
	Configuration training.IterationConfiguration
	Genome        neat.Genome
}

// Store is a SQLite backed training.Archive.
type Store struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewStore returns a store for the database at path. Init must be called before use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init opens the database and creates the schema.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// ArchiveBest implements training.Archive. Saving the same iteration twice keeps
// the latest record.
func (s *Store) ArchiveBest(ctx context.Context, rec training.BestRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if rec.Genome == nil {
		return errors.New("archive record has no genome")
	}

	payload, err := rec.Genome.MarshalBinary()
	if err != nil {
		return err
	}
	var conf bytes.Buffer
	if _, err := rec.Configuration.WriteTo(&conf); err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO best_genomes (run_id, exploration, iteration, score, gravity, friction, hidden, connections, configuration, genome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, exploration, iteration) DO UPDATE SET
			score = excluded.score,
			gravity = excluded.gravity,
			friction = excluded.friction,
			hidden = excluded.hidden,
			connections = excluded.connections,
			configuration = excluded.configuration,
			genome = excluded.genome
	`, rec.RunID, rec.Exploration, rec.Iteration, rec.Score,
		rec.Configuration.Gravity, rec.Configuration.Friction,
		rec.Genome.Info.Hidden, len(rec.Genome.Connections),
		conf.Bytes(), payload)
	return err
}

// Get returns the record saved for the given run, exploration and iteration.
func (s *Store) Get(ctx context.Context, runID string, exploration, iteration uint32) (Record, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Record{}, false, err
	}
	row := db.QueryRowContext(ctx, `
		SELECT run_id, exploration, iteration, score, configuration, genome
		FROM best_genomes WHERE run_id = ? AND exploration = ? AND iteration = ?
	`, runID, exploration, iteration)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	return rec, true, nil
}

// Best returns the highest scoring record of a run.
func (s *Store) Best(ctx context.Context, runID string) (Record, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Record{}, false, err
	}
	row := db.QueryRowContext(ctx, `
		SELECT run_id, exploration, iteration, score, configuration, genome
		FROM best_genomes WHERE run_id = ?
		ORDER BY score DESC, exploration DESC, iteration DESC LIMIT 1
	`, runID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	return rec, true, nil
}

// List returns every record of a run in save order.
func (s *Store) List(ctx context.Context, runID string) ([]Record, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, exploration, iteration, score, configuration, genome
		FROM best_genomes WHERE run_id = ?
		ORDER BY exploration, iteration
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec     Record
		conf    []byte
		payload []byte
	)
	if err := sc.Scan(&rec.RunID, &rec.Exploration, &rec.Iteration, &rec.Score, &conf, &payload); err != nil {
		return Record{}, err
	}
	if _, err := rec.Configuration.ReadFrom(bytes.NewReader(conf)); err != nil {
		return Record{}, fmt.Errorf("decode configuration: %w", err)
	}
	if err := rec.Genome.UnmarshalBinary(payload); err != nil {
		return Record{}, fmt.Errorf("decode genome: %w", err)
	}
	return rec, nil
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS best_genomes (
			run_id TEXT NOT NULL,
			exploration INTEGER NOT NULL,
			iteration INTEGER NOT NULL,
			score REAL NOT NULL,
			gravity REAL NOT NULL,
			friction REAL NOT NULL,
			hidden INTEGER NOT NULL,
			connections INTEGER NOT NULL,
			configuration BLOB NOT NULL,
			genome BLOB NOT NULL,
			PRIMARY KEY (run_id, exploration, iteration)
		);
	`)
	return err
}
