package labeldb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Video represents a registered video and its extracted pose CSV.
type Video struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Path        string    `json:"path"`
	CSVPath     string    `json:"csv_path"`
	FPS         float64   `json:"fps"`
	TotalFrames int       `json:"total_frames"`
	DurationMS  float64   `json:"duration_ms"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// CreateVideo inserts a new video record. A missing ID is generated
// and written back, as is the upload timestamp.
func (db *DB) CreateVideo(v *Video) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.UploadedAt.IsZero() {
		v.UploadedAt = db.clock.Now().UTC()
	}

	query := `
		INSERT INTO videos (id, filename, path, csv_path, fps, total_frames, duration_ms, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(
		query,
		v.ID,
		v.Filename,
		v.Path,
		v.CSVPath,
		v.FPS,
		v.TotalFrames,
		v.DurationMS,
		formatTime(v.UploadedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

// GetVideo retrieves a video by ID.
func (db *DB) GetVideo(id string) (*Video, error) {
	query := `
		SELECT id, filename, path, csv_path, fps, total_frames, duration_ms, uploaded_at
		FROM videos
		WHERE id = ?
	`

	var v Video
	var uploadedAt string

	err := db.QueryRow(query, id).Scan(
		&v.ID,
		&v.Filename,
		&v.Path,
		&v.CSVPath,
		&v.FPS,
		&v.TotalFrames,
		&v.DurationMS,
		&uploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	if v.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return nil, fmt.Errorf("failed to parse uploaded_at: %w", err)
	}
	return &v, nil
}

// GetAllVideos retrieves all videos, most recently uploaded first.
func (db *DB) GetAllVideos() ([]Video, error) {
	query := `
		SELECT id, filename, path, csv_path, fps, total_frames, duration_ms, uploaded_at
		FROM videos
		ORDER BY uploaded_at DESC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		var v Video
		var uploadedAt string

		err := rows.Scan(
			&v.ID,
			&v.Filename,
			&v.Path,
			&v.CSVPath,
			&v.FPS,
			&v.TotalFrames,
			&v.DurationMS,
			&uploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		if v.UploadedAt, err = parseTime(uploadedAt); err != nil {
			return nil, fmt.Errorf("failed to parse uploaded_at: %w", err)
		}
		videos = append(videos, v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}
	return videos, nil
}

// DeleteVideo removes a video together with its moves and their frame
// tags, in one transaction.
func (db *DB) DeleteVideo(id string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM frame_tags WHERE move_id IN (SELECT id FROM moves WHERE video_id = ?)`, id)
	if err != nil {
		return fmt.Errorf("failed to delete frame tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM moves WHERE video_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete moves: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("video %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}
