package pg

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"video-transcript/internal/app/model"
	"video-transcript/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS transcripts (
	id SERIAL PRIMARY KEY,
	video_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	diarized BOOLEAN NOT NULL DEFAULT FALSE,
	duration INTEGER NOT NULL DEFAULT 0,
	transcript TEXT NOT NULL,
	filename TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcripts_video ON transcripts(video_id, diarized, created_at);
`

// PostgresDB stores transcripts in postgres; the optional shared backend
// for multi-instance deployments.
type PostgresDB struct {
	db *sql.DB
}

// NewPostgresDB connects with a lib/pq connection string and ensures the
// schema exists.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pdb := &PostgresDB{db: db}
	if err := pdb.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return pdb, nil
}

// NewWithDB wraps an existing handle without touching the schema. Used by
// tests.
func NewWithDB(db *sql.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

func (pdb *PostgresDB) ensureSchema() error {
	if _, err := pdb.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("create transcripts table: %w", err)
	}
	return nil
}

func (pdb *PostgresDB) Close() error {
	return pdb.db.Close()
}

func (pdb *PostgresDB) Save(rec *model.TranscriptRecord) (int, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	insertSQL := `INSERT INTO transcripts (video_id, title, source, diarized, duration, transcript, filename, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := pdb.db.QueryRow(insertSQL,
		rec.VideoID, rec.Title, rec.Source, rec.Diarized,
		rec.Duration, rec.Transcript, rec.Filename, rec.CreatedAt).Scan(&rec.ID)
	if err != nil {
		return 0, fmt.Errorf("insert transcript: %w", err)
	}
	return rec.ID, nil
}

func (pdb *PostgresDB) FindCached(videoID string, diarized bool) (*model.TranscriptRecord, error) {
	query := `SELECT id, video_id, title, source, diarized, duration, transcript, filename, created_at
		FROM transcripts
		WHERE video_id = $1 AND diarized = $2
		ORDER BY created_at DESC
		LIMIT 1`
	return scanOne(pdb.db.QueryRow(query, videoID, diarized))
}

func (pdb *PostgresDB) GetByID(id int) (*model.TranscriptRecord, error) {
	query := `SELECT id, video_id, title, source, diarized, duration, transcript, filename, created_at
		FROM transcripts WHERE id = $1`
	return scanOne(pdb.db.QueryRow(query, id))
}

func (pdb *PostgresDB) List(limit, offset int) ([]model.TranscriptRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, video_id, title, source, diarized, duration, transcript, filename, created_at
		FROM transcripts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := pdb.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	records := make([]model.TranscriptRecord, 0)
	for rows.Next() {
		var rec model.TranscriptRecord
		err = rows.Scan(&rec.ID, &rec.VideoID, &rec.Title, &rec.Source, &rec.Diarized,
			&rec.Duration, &rec.Transcript, &rec.Filename, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanOne(row *sql.Row) (*model.TranscriptRecord, error) {
	var rec model.TranscriptRecord
	err := row.Scan(&rec.ID, &rec.VideoID, &rec.Title, &rec.Source, &rec.Diarized,
		&rec.Duration, &rec.Transcript, &rec.Filename, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transcript row: %w", err)
	}
	return &rec, nil
}
