package labeldb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Move represents one labeled climbing move: its frame range, type,
// quality answers, and the contextual questionnaire for that type.
type Move struct {
	ID               string  `json:"id"`
	VideoID          string  `json:"video_id"`
	FrameStart       int     `json:"frame_start"`
	FrameEnd         int     `json:"frame_end"`
	TimestampStartMS float64 `json:"timestamp_start_ms"`
	TimestampEndMS   float64 `json:"timestamp_end_ms"`

	MoveType    string `json:"move_type"`
	FormQuality int    `json:"form_quality"`
	EffortLevel int    `json:"effort_level"`

	// ContextualData holds the per-move-type questionnaire answers,
	// for example {"catching_hand": "right_hand"} on a dyno.
	ContextualData     map[string]any `json:"contextual_data"`
	TechniqueModifiers []string       `json:"technique_modifiers"`
	Tags               []string       `json:"tags"`
	Description        string         `json:"description"`

	LabeledAt time.Time `json:"labeled_at"`
}

// FrameCount returns the number of frames the move spans, inclusive.
func (m *Move) FrameCount() int {
	return m.FrameEnd - m.FrameStart + 1
}

// DurationSeconds returns the move duration in seconds.
func (m *Move) DurationSeconds() float64 {
	return (m.TimestampEndMS - m.TimestampStartMS) / 1000.0
}

const moveColumns = `id, video_id, frame_start, frame_end, timestamp_start_ms, timestamp_end_ms,
		move_type, form_quality, effort_level, contextual_data, technique_modifiers,
		tags, description, labeled_at`

// CreateMove inserts a new move. A missing ID is generated and written
// back, as is the label timestamp. Nil collection fields are stored as
// empty, never null.
func (db *DB) CreateMove(m *Move) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.LabeledAt.IsZero() {
		m.LabeledAt = db.clock.Now().UTC()
	}
	normalizeMove(m)

	contextual, err := encodeJSON(m.ContextualData)
	if err != nil {
		return err
	}
	modifiers, err := encodeJSON(m.TechniqueModifiers)
	if err != nil {
		return err
	}
	tags, err := encodeJSON(m.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO moves (` + moveColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(
		query,
		m.ID,
		m.VideoID,
		m.FrameStart,
		m.FrameEnd,
		m.TimestampStartMS,
		m.TimestampEndMS,
		m.MoveType,
		m.FormQuality,
		m.EffortLevel,
		contextual,
		modifiers,
		tags,
		m.Description,
		formatTime(m.LabeledAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create move: %w", err)
	}
	return nil
}

// GetMove retrieves a move by ID.
func (db *DB) GetMove(id string) (*Move, error) {
	row := db.QueryRow(`SELECT `+moveColumns+` FROM moves WHERE id = ?`, id)

	m, err := scanMove(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("move %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get move: %w", err)
	}
	return m, nil
}

// GetMovesForVideo retrieves all moves on a video ordered by their
// start frame.
func (db *DB) GetMovesForVideo(videoID string) ([]Move, error) {
	rows, err := db.Query(`SELECT `+moveColumns+` FROM moves WHERE video_id = ? ORDER BY frame_start`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query moves: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		m, err := scanMove(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		moves = append(moves, *m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moves: %w", err)
	}
	return moves, nil
}

// UpdateMove updates an existing move. The video binding and label
// timestamp are immutable; everything else is replaced.
func (db *DB) UpdateMove(m *Move) error {
	normalizeMove(m)

	contextual, err := encodeJSON(m.ContextualData)
	if err != nil {
		return err
	}
	modifiers, err := encodeJSON(m.TechniqueModifiers)
	if err != nil {
		return err
	}
	tags, err := encodeJSON(m.Tags)
	if err != nil {
		return err
	}

	query := `
		UPDATE moves SET
			frame_start = ?,
			frame_end = ?,
			timestamp_start_ms = ?,
			timestamp_end_ms = ?,
			move_type = ?,
			form_quality = ?,
			effort_level = ?,
			contextual_data = ?,
			technique_modifiers = ?,
			tags = ?,
			description = ?
		WHERE id = ?
	`

	result, err := db.Exec(
		query,
		m.FrameStart,
		m.FrameEnd,
		m.TimestampStartMS,
		m.TimestampEndMS,
		m.MoveType,
		m.FormQuality,
		m.EffortLevel,
		contextual,
		modifiers,
		tags,
		m.Description,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update move: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("move %s: %w", m.ID, ErrNotFound)
	}
	return nil
}

// DeleteMove removes a move and its frame tags.
func (db *DB) DeleteMove(id string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM frame_tags WHERE move_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete frame tags: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM moves WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete move: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("move %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// normalizeMove replaces nil collection fields so they serialize as
// empty JSON instead of null.
func normalizeMove(m *Move) {
	if m.ContextualData == nil {
		m.ContextualData = map[string]any{}
	}
	if m.TechniqueModifiers == nil {
		m.TechniqueModifiers = []string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanMove reads one moves row, decoding the JSON columns.
func scanMove(row rowScanner) (*Move, error) {
	var m Move
	var contextual, modifiers, tags, labeledAt string

	err := row.Scan(
		&m.ID,
		&m.VideoID,
		&m.FrameStart,
		&m.FrameEnd,
		&m.TimestampStartMS,
		&m.TimestampEndMS,
		&m.MoveType,
		&m.FormQuality,
		&m.EffortLevel,
		&contextual,
		&modifiers,
		&tags,
		&m.Description,
		&labeledAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(contextual), &m.ContextualData); err != nil {
		return nil, fmt.Errorf("failed to decode contextual_data: %w", err)
	}
	if err := json.Unmarshal([]byte(modifiers), &m.TechniqueModifiers); err != nil {
		return nil, fmt.Errorf("failed to decode technique_modifiers: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if m.LabeledAt, err = parseTime(labeledAt); err != nil {
		return nil, fmt.Errorf("failed to parse labeled_at: %w", err)
	}
	return &m, nil
}
