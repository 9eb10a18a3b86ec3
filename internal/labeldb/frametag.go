package labeldb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FrameTag represents a tag on a specific frame within a move, used
// for precise sensation tracking. Level is nil for tags without an
// intensity scale.
type FrameTag struct {
	ID          string  `json:"id"`
	MoveID      string  `json:"move_id"`
	FrameNumber int     `json:"frame_number"`
	TimestampMS float64 `json:"timestamp_ms"`

	TagType   string   `json:"tag_type"`
	Level     *int     `json:"level,omitempty"`
	Locations []string `json:"locations"`
	Note      string   `json:"note"`

	TaggedAt time.Time `json:"tagged_at"`
}

const frameTagColumns = `id, move_id, frame_number, timestamp_ms, tag_type, level, locations, note, tagged_at`

// CreateFrameTag inserts a new frame tag. A missing ID is generated
// and written back, as is the tag timestamp.
func (db *DB) CreateFrameTag(tag *FrameTag) error {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	if tag.TaggedAt.IsZero() {
		tag.TaggedAt = db.clock.Now().UTC()
	}
	if tag.Locations == nil {
		tag.Locations = []string{}
	}

	locations, err := encodeJSON(tag.Locations)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO frame_tags (` + frameTagColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(
		query,
		tag.ID,
		tag.MoveID,
		tag.FrameNumber,
		tag.TimestampMS,
		tag.TagType,
		tag.Level,
		locations,
		tag.Note,
		formatTime(tag.TaggedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create frame tag: %w", err)
	}
	return nil
}

// GetFrameTag retrieves a frame tag by ID.
func (db *DB) GetFrameTag(id string) (*FrameTag, error) {
	row := db.QueryRow(`SELECT `+frameTagColumns+` FROM frame_tags WHERE id = ?`, id)

	tag, err := scanFrameTag(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("frame tag %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get frame tag: %w", err)
	}
	return tag, nil
}

// GetFrameTagsForMove retrieves all frame tags on a move ordered by
// frame number.
func (db *DB) GetFrameTagsForMove(moveID string) ([]FrameTag, error) {
	rows, err := db.Query(`SELECT `+frameTagColumns+` FROM frame_tags WHERE move_id = ? ORDER BY frame_number`, moveID)
	if err != nil {
		return nil, fmt.Errorf("failed to query frame tags: %w", err)
	}
	defer rows.Close()

	var tags []FrameTag
	for rows.Next() {
		tag, err := scanFrameTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan frame tag: %w", err)
		}
		tags = append(tags, *tag)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating frame tags: %w", err)
	}
	return tags, nil
}

// DeleteFrameTag removes a frame tag.
func (db *DB) DeleteFrameTag(id string) error {
	result, err := db.Exec(`DELETE FROM frame_tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete frame tag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("frame tag %s: %w", id, ErrNotFound)
	}
	return nil
}

// scanFrameTag reads one frame_tags row, decoding the locations
// column.
func scanFrameTag(row rowScanner) (*FrameTag, error) {
	var tag FrameTag
	var locations, taggedAt string

	err := row.Scan(
		&tag.ID,
		&tag.MoveID,
		&tag.FrameNumber,
		&tag.TimestampMS,
		&tag.TagType,
		&tag.Level,
		&locations,
		&tag.Note,
		&taggedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(locations), &tag.Locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}
	if tag.TaggedAt, err = parseTime(taggedAt); err != nil {
		return nil, fmt.Errorf("failed to parse tagged_at: %w", err)
	}
	return &tag, nil
}
