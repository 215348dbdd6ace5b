package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"video-transcript/internal/app/model"
	"video-transcript/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS transcripts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	diarized INTEGER NOT NULL DEFAULT 0,
	duration INTEGER NOT NULL DEFAULT 0,
	transcript TEXT NOT NULL,
	filename TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcripts_video ON transcripts(video_id, diarized, created_at);
`

// SQLiteDB stores transcripts in a local sqlite file, the default backend.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (creating if needed) the database at dbFilePath and
// ensures the schema exists.
func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbFilePath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create transcripts table: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

func (sdb *SQLiteDB) Close() error {
	return sdb.db.Close()
}

func (sdb *SQLiteDB) Save(rec *model.TranscriptRecord) (int, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	insertSQL := `INSERT INTO transcripts (video_id, title, source, diarized, duration, transcript, filename, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := sdb.db.Exec(insertSQL,
		rec.VideoID, rec.Title, rec.Source, boolToInt(rec.Diarized),
		rec.Duration, rec.Transcript, rec.Filename, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert transcript: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	rec.ID = int(id)
	return rec.ID, nil
}

func (sdb *SQLiteDB) FindCached(videoID string, diarized bool) (*model.TranscriptRecord, error) {
	query := `SELECT id, video_id, title, source, diarized, duration, transcript, filename, created_at
		FROM transcripts
		WHERE video_id = ? AND diarized = ?
		ORDER BY created_at DESC
		LIMIT 1`
	return scanOne(sdb.db.QueryRow(query, videoID, boolToInt(diarized)))
}

func (sdb *SQLiteDB) GetByID(id int) (*model.TranscriptRecord, error) {
	query := `SELECT id, video_id, title, source, diarized, duration, transcript, filename, created_at
		FROM transcripts WHERE id = ?`
	return scanOne(sdb.db.QueryRow(query, id))
}

func (sdb *SQLiteDB) List(limit, offset int) ([]model.TranscriptRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, video_id, title, source, diarized, duration, transcript, filename, created_at
		FROM transcripts
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := sdb.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	records := make([]model.TranscriptRecord, 0)
	for rows.Next() {
		var rec model.TranscriptRecord
		var diarized int
		err = rows.Scan(&rec.ID, &rec.VideoID, &rec.Title, &rec.Source, &diarized,
			&rec.Duration, &rec.Transcript, &rec.Filename, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		rec.Diarized = diarized != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanOne(row *sql.Row) (*model.TranscriptRecord, error) {
	var rec model.TranscriptRecord
	var diarized int
	err := row.Scan(&rec.ID, &rec.VideoID, &rec.Title, &rec.Source, &diarized,
		&rec.Duration, &rec.Transcript, &rec.Filename, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transcript row: %w", err)
	}
	rec.Diarized = diarized != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
