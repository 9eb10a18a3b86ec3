package labeldb

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jolieabadir/dynalytics/internal/timeutil"
)

// Helper functions

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.db")

	clock := timeutil.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	db, err := OpenWithClock(path, clock)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	return db
}

func createTestVideo(t *testing.T, db *DB) *Video {
	t.Helper()
	v := &Video{
		Filename:    "session.mp4",
		Path:        "data/videos/session.mp4",
		CSVPath:     "data/csv/session.csv",
		FPS:         30,
		TotalFrames: 900,
		DurationMS:  30000,
	}
	if err := db.CreateVideo(v); err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}
	return v
}

func createTestMove(t *testing.T, db *DB, videoID string) *Move {
	t.Helper()
	m := &Move{
		VideoID:          videoID,
		FrameStart:       10,
		FrameEnd:         40,
		TimestampStartMS: 333,
		TimestampEndMS:   1333,
		MoveType:         "dyno",
		FormQuality:      4,
		EffortLevel:      8,
		ContextualData:   map[string]any{"catching_hand": "right_hand"},
		Tags:             []string{"crux"},
		Description:      "big throw to the sloper",
	}
	if err := db.CreateMove(m); err != nil {
		t.Fatalf("CreateMove failed: %v", err)
	}
	return m
}

func intPtr(n int) *int {
	return &n
}

// Migration tests

// TestMigrateUp_FreshDatabase tests that a fresh database migrates to
// the latest version and that a second run is a no-op.
func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := setupTestDB(t)

	version, dirty, err := db.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected schema version 2, got %d", version)
	}
	if dirty {
		t.Error("expected clean migration state")
	}

	if err := db.MigrateUp(); err != nil {
		t.Errorf("second MigrateUp should be a no-op, got %v", err)
	}
}

// TestMigrateDown tests rolling back the most recent migration.
func TestMigrateDown(t *testing.T) {
	db := setupTestDB(t)

	if err := db.MigrateDown(); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}

	version, _, err := db.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected schema version 1 after down, got %d", version)
	}
}

// Video tests

// TestCreateVideo_Success tests creation with generated ID and
// timestamp, and a full round trip through GetVideo.
func TestCreateVideo_Success(t *testing.T) {
	db := setupTestDB(t)

	v := createTestVideo(t, db)
	if v.ID == "" {
		t.Error("expected video ID to be set after creation")
	}
	if v.UploadedAt.IsZero() {
		t.Error("expected UploadedAt timestamp to be set")
	}

	retrieved, err := db.GetVideo(v.ID)
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if retrieved.Filename != "session.mp4" {
		t.Errorf("unexpected filename %q", retrieved.Filename)
	}
	if retrieved.CSVPath != "data/csv/session.csv" {
		t.Errorf("unexpected csv_path %q", retrieved.CSVPath)
	}
	if retrieved.FPS != 30 || retrieved.TotalFrames != 900 || retrieved.DurationMS != 30000 {
		t.Errorf("unexpected metadata: fps=%v frames=%d duration=%v",
			retrieved.FPS, retrieved.TotalFrames, retrieved.DurationMS)
	}
	if !retrieved.UploadedAt.Equal(v.UploadedAt) {
		t.Errorf("UploadedAt did not round-trip: stored %v, got %v", v.UploadedAt, retrieved.UploadedAt)
	}
}

// TestGetVideo_NotFound tests the sentinel for unknown IDs.
func TestGetVideo_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetVideo("no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestGetAllVideos_Order tests most-recent-first ordering.
func TestGetAllVideos_Order(t *testing.T) {
	db := setupTestDB(t)

	older := &Video{
		Filename:   "older.mp4",
		UploadedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	newer := &Video{
		Filename:   "newer.mp4",
		UploadedAt: time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
	}
	if err := db.CreateVideo(older); err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}
	if err := db.CreateVideo(newer); err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}

	videos, err := db.GetAllVideos()
	if err != nil {
		t.Fatalf("GetAllVideos failed: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	if videos[0].Filename != "newer.mp4" || videos[1].Filename != "older.mp4" {
		t.Errorf("unexpected order: %q, %q", videos[0].Filename, videos[1].Filename)
	}
}

// TestDeleteVideo_Cascades tests that deleting a video removes its
// moves and their frame tags.
func TestDeleteVideo_Cascades(t *testing.T) {
	db := setupTestDB(t)

	v := createTestVideo(t, db)
	m := createTestMove(t, db, v.ID)
	tag := &FrameTag{MoveID: m.ID, FrameNumber: 20, TagType: "pumped"}
	if err := db.CreateFrameTag(tag); err != nil {
		t.Fatalf("CreateFrameTag failed: %v", err)
	}

	if err := db.DeleteVideo(v.ID); err != nil {
		t.Fatalf("DeleteVideo failed: %v", err)
	}

	if _, err := db.GetVideo(v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected video gone, got %v", err)
	}
	if _, err := db.GetMove(m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected move gone, got %v", err)
	}
	if _, err := db.GetFrameTag(tag.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected frame tag gone, got %v", err)
	}

	if err := db.DeleteVideo(v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

// Move tests

// TestCreateMove_Success tests creation and a full round trip of the
// JSON-encoded columns.
func TestCreateMove_Success(t *testing.T) {
	db := setupTestDB(t)

	v := createTestVideo(t, db)
	m := createTestMove(t, db, v.ID)
	if m.ID == "" {
		t.Error("expected move ID to be set after creation")
	}
	if m.LabeledAt.IsZero() {
		t.Error("expected LabeledAt timestamp to be set")
	}

	retrieved, err := db.GetMove(m.ID)
	if err != nil {
		t.Fatalf("GetMove failed: %v", err)
	}
	if retrieved.MoveType != "dyno" || retrieved.FormQuality != 4 || retrieved.EffortLevel != 8 {
		t.Errorf("unexpected move fields: %+v", retrieved)
	}
	if retrieved.ContextualData["catching_hand"] != "right_hand" {
		t.Errorf("contextual_data did not round-trip: %v", retrieved.ContextualData)
	}
	if len(retrieved.Tags) != 1 || retrieved.Tags[0] != "crux" {
		t.Errorf("tags did not round-trip: %v", retrieved.Tags)
	}
	if retrieved.FrameCount() != 31 {
		t.Errorf("expected frame count 31, got %d", retrieved.FrameCount())
	}
	if retrieved.DurationSeconds() != 1.0 {
		t.Errorf("expected duration 1s, got %v", retrieved.DurationSeconds())
	}
}

// TestCreateMove_NilCollections tests that nil maps and slices come
// back empty, not null.
func TestCreateMove_NilCollections(t *testing.T) {
	db := setupTestDB(t)

	v := createTestVideo(t, db)
	m := &Move{
		VideoID:     v.ID,
		FrameStart:  0,
		FrameEnd:    10,
		MoveType:    "static",
		FormQuality: 3,
		EffortLevel: 5,
	}
	if err := db.CreateMove(m); err != nil {
		t.Fatalf("CreateMove failed: %v", err)
	}

	retrieved, err := db.GetMove(m.ID)
	if err != nil {
		t.Fatalf("GetMove failed: %v", err)
	}
	if retrieved.ContextualData == nil || len(retrieved.ContextualData) != 0 {
		t.Errorf("expected empty contextual_data, got %v", retrieved.ContextualData)
	}
	if retrieved.TechniqueModifiers == nil || len(retrieved.TechniqueModifiers) != 0 {
		t.Errorf("expected empty technique_modifiers, got %v", retrieved.TechniqueModifiers)
	}
	if retrieved.Tags == nil || len(retrieved.Tags) != 0 {
		t.Errorf("expected empty tags, got %v", retrieved.Tags)
	}
}

// TestUpdateMove tests a full update and the missing-row sentinel.
func TestUpdateMove(t *testing.T) {
	db := setupTestDB(t)

	v := createTestVideo(t, db)
	m := createTestMove(t, db, v.ID)

	m.MoveType = "deadpoint"
	m.FormQuality = 2
	m.TechniqueModifiers = []string{"flagged"}
	m.Description = "reworked label"
	if err := db.UpdateMove(m); err != nil {
		t.Fatalf("UpdateMove failed: %v", err)
	}

	retrieved, err := db.GetMove(m.ID)
	if err != nil {
		t.Fatalf("GetMove failed: %v", err)
	}
	if retrieved.MoveType != "deadpoint" || retrieved.FormQuality != 2 {
		t.Errorf("update not applied: %+v", retrieved)
	}
	if len(retrieved.TechniqueModifiers) != 1 || retrieved.TechniqueModifiers[0] != "flagged" {
		t.Errorf("technique_modifiers not updated: %v", retrieved.TechniqueModifiers)
	}

	missing := &Move{ID: "no-such-id", MoveType: "static"}
	if err := db.UpdateMove(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestGetMovesForVideo_Order tests ordering by start frame.
func TestGetMovesForVideo_Order(t *testing.T) {
	db := setupTestDB(t)

	v := createTestVideo(t, db)
	late := &Move{VideoID: v.ID, FrameStart: 60, FrameEnd: 90, MoveType: "mantle", FormQuality: 3, EffortLevel: 5}
	early := &Move{VideoID: v.ID, FrameStart: 0, FrameEnd: 30, MoveType: "static", FormQuality: 3, EffortLevel: 5}
	if err := db.CreateMove(late); err != nil {
		t.Fatalf("CreateMove failed: %v", err)
	}
	if err := db.CreateMove(early); err != nil {
		t.Fatalf("CreateMove failed: %v", err)
	}

	moves, err := db.GetMovesForVideo(v.ID)
	if err != nil {
		t.Fatalf("GetMovesForVideo failed: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(moves))
	}
	if moves[0].FrameStart != 0 || moves[1].FrameStart != 60 {
		t.Errorf("unexpected order: starts %d, %d", moves[0].FrameStart, moves[1].FrameStart)
	}
}

// TestDeleteMove_RemovesTags tests the frame-tag cascade.
func TestDeleteMove_RemovesTags(t *testing.T) {
	db := setupTestDB(t)

	v := createTestVideo(t, db)
	m := createTestMove(t, db, v.ID)
	tag := &FrameTag{MoveID: m.ID, FrameNumber: 15, TagType: "sharp_pain", Level: intPtr(6)}
	if err := db.CreateFrameTag(tag); err != nil {
		t.Fatalf("CreateFrameTag failed: %v", err)
	}

	if err := db.DeleteMove(m.ID); err != nil {
		t.Fatalf("DeleteMove failed: %v", err)
	}

	if _, err := db.GetFrameTag(tag.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected frame tag gone, got %v", err)
	}
	if err := db.DeleteMove(m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

// Frame tag tests

// TestCreateFrameTag_Success tests round trips with and without the
// optional level.
func TestCreateFrameTag_Success(t *testing.T) {
	db := setupTestDB(t)

	v := createTestVideo(t, db)
	m := createTestMove(t, db, v.ID)

	withLevel := &FrameTag{
		MoveID:      m.ID,
		FrameNumber: 15,
		TimestampMS: 500,
		TagType:     "sharp_pain",
		Level:       intPtr(7),
		Locations:   []string{"left_knee", "lower_back"},
		Note:        "twinge on the rockover",
	}
	if err := db.CreateFrameTag(withLevel); err != nil {
		t.Fatalf("CreateFrameTag failed: %v", err)
	}

	retrieved, err := db.GetFrameTag(withLevel.ID)
	if err != nil {
		t.Fatalf("GetFrameTag failed: %v", err)
	}
	if retrieved.TagType != "sharp_pain" || retrieved.Note != "twinge on the rockover" {
		t.Errorf("unexpected tag fields: %+v", retrieved)
	}
	if retrieved.Level == nil || *retrieved.Level != 7 {
		t.Errorf("level did not round-trip: %v", retrieved.Level)
	}
	if len(retrieved.Locations) != 2 || retrieved.Locations[0] != "left_knee" {
		t.Errorf("locations did not round-trip: %v", retrieved.Locations)
	}
	if retrieved.TaggedAt.IsZero() {
		t.Error("expected TaggedAt timestamp to be set")
	}

	noLevel := &FrameTag{MoveID: m.ID, FrameNumber: 20, TagType: "strong_controlled"}
	if err := db.CreateFrameTag(noLevel); err != nil {
		t.Fatalf("CreateFrameTag failed: %v", err)
	}
	retrieved, err = db.GetFrameTag(noLevel.ID)
	if err != nil {
		t.Fatalf("GetFrameTag failed: %v", err)
	}
	if retrieved.Level != nil {
		t.Errorf("expected nil level, got %v", *retrieved.Level)
	}
	if retrieved.Locations == nil || len(retrieved.Locations) != 0 {
		t.Errorf("expected empty locations, got %v", retrieved.Locations)
	}
}

// TestGetFrameTagsForMove_Order tests ordering by frame number.
func TestGetFrameTagsForMove_Order(t *testing.T) {
	db := setupTestDB(t)

	v := createTestVideo(t, db)
	m := createTestMove(t, db, v.ID)
	for _, frame := range []int{30, 12, 25} {
		tag := &FrameTag{MoveID: m.ID, FrameNumber: frame, TagType: "fatigue"}
		if err := db.CreateFrameTag(tag); err != nil {
			t.Fatalf("CreateFrameTag failed: %v", err)
		}
	}

	tags, err := db.GetFrameTagsForMove(m.ID)
	if err != nil {
		t.Fatalf("GetFrameTagsForMove failed: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	if tags[0].FrameNumber != 12 || tags[1].FrameNumber != 25 || tags[2].FrameNumber != 30 {
		t.Errorf("unexpected order: %d, %d, %d", tags[0].FrameNumber, tags[1].FrameNumber, tags[2].FrameNumber)
	}
}

// TestDeleteFrameTag_NotFound tests the missing-row sentinel.
func TestDeleteFrameTag_NotFound(t *testing.T) {
	db := setupTestDB(t)

	if err := db.DeleteFrameTag("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestClockStampsTimestamps tests that record times come from the
// injected clock.
func TestClockStampsTimestamps(t *testing.T) {
	db := setupTestDB(t)

	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	v := createTestVideo(t, db)
	if !v.UploadedAt.Equal(want) {
		t.Errorf("expected UploadedAt %v from mock clock, got %v", want, v.UploadedAt)
	}

	m := createTestMove(t, db, v.ID)
	if !m.LabeledAt.Equal(want) {
		t.Errorf("expected LabeledAt %v from mock clock, got %v", want, m.LabeledAt)
	}
}
