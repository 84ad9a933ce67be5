package bench

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists benchmark results to a SQLite database so AUC can be
// compared across code changes and parameter sweeps.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the result database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
    CREATE TABLE IF NOT EXISTS benchmark_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        dataset TEXT NOT NULL,
        iteration INTEGER NOT NULL,
        normal_class INTEGER NOT NULL,
        auc REAL NOT NULL,
        created_at DATETIME NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// SaveResult records every run of a benchmark result under datasetName.
func (s *Store) SaveResult(datasetName string, res *Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT INTO benchmark_runs (dataset, iteration, normal_class, auc, created_at)
        VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, run := range res.Runs {
		if _, err := stmt.Exec(datasetName, run.Iteration, run.NormalClass, run.AUC, now); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// MeanAUC returns the mean recorded AUC for datasetName across all saved
// runs, and the number of runs it covers.
func (s *Store) MeanAUC(datasetName string) (float64, int, error) {
	row := s.db.QueryRow(`
        SELECT COALESCE(AVG(auc), 0), COUNT(*)
        FROM benchmark_runs WHERE dataset = ?`, datasetName)

	var mean float64
	var count int
	if err := row.Scan(&mean, &count); err != nil {
		return 0, 0, err
	}
	return mean, count, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
