package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/Jolieabadir/dynalytics/internal/testutil"
)

func TestExportVideo(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)
	move := seedMove(t, srv, video.ID)
	seedFrameTag(t, srv, move["id"].(string), 1, "pumped")

	rec := serve(srv, testutil.NewTestRequest(http.MethodPost, "/api/videos/"+video.ID+"/export"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp struct {
		Path      string `json:"path"`
		Moves     int    `json:"moves"`
		FrameTags int    `json:"frame_tags"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Path != "/data/exports/session_labeled.csv" {
		t.Errorf("path = %q", resp.Path)
	}
	if resp.Moves != 1 || resp.FrameTags != 1 {
		t.Errorf("moves = %d, frame_tags = %d, want 1 and 1", resp.Moves, resp.FrameTags)
	}

	data, err := mfs.ReadFile(resp.Path)
	testutil.AssertNoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("labeled CSV has %d lines, want 4", len(lines))
	}
	if !strings.HasSuffix(lines[0], "tag_note") {
		t.Errorf("header missing label columns: %q", lines[0])
	}
	// Frame 1 carries both the move and its tag.
	if !strings.Contains(lines[2], "dyno") || !strings.Contains(lines[2], "pumped") {
		t.Errorf("frame 1 row missing labels: %q", lines[2])
	}
	// Frame 0 is inside the move but has no tag.
	if !strings.Contains(lines[1], "dyno") || strings.Contains(lines[1], "pumped") {
		t.Errorf("frame 0 row mislabeled: %q", lines[1])
	}
}

func TestExportVideo_DeleteVideoFlag(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)
	testutil.AssertNoError(t, mfs.WriteFile(video.Path, []byte("raw video bytes"), 0644))

	rec := serve(srv, testutil.NewTestRequest(http.MethodPost,
		"/api/videos/"+video.ID+"/export?delete_video=true"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	if mfs.Exists(video.Path) {
		t.Error("video file should have been deleted")
	}
	if !mfs.Exists("/data/exports/session_labeled.csv") {
		t.Error("labeled CSV missing")
	}
}

func TestExportVideo_BadDeleteFlag(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodPost,
		"/api/videos/"+video.ID+"/export?delete_video=maybe"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestExportVideo_MissingCSV(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)
	testutil.AssertNoError(t, mfs.Remove(video.CSVPath))

	rec := serve(srv, testutil.NewTestRequest(http.MethodPost, "/api/videos/"+video.ID+"/export"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestVideoSummary(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet, "/api/videos/"+video.ID+"/summary"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp summaryResponse
	testutil.DecodeJSON(t, rec, &resp)
	if resp.VideoID != video.ID {
		t.Errorf("video_id = %q", resp.VideoID)
	}
	if resp.Units != "pxs" {
		t.Errorf("units = %q, want pxs", resp.Units)
	}
	if resp.Frames != 3 || resp.PoseFrames != 3 {
		t.Errorf("frames = %d, pose_frames = %d, want 3 and 3", resp.Frames, resp.PoseFrames)
	}
	if len(resp.Columns) != 4 {
		t.Fatalf("columns = %d, want 4", len(resp.Columns))
	}

	elbow := resp.Columns[0]
	if elbow.Name != "angle_left_elbow" || elbow.Count != 3 || elbow.Mean != 95 {
		t.Errorf("angle_left_elbow = %+v", elbow)
	}
	wrist := resp.Columns[3]
	if wrist.Name != "speed_left_wrist" || wrist.Count != 2 || wrist.Min != 300 || wrist.Max != 310 {
		t.Errorf("speed_left_wrist = %+v", wrist)
	}
}

func TestVideoSummary_FrameUnits(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet,
		"/api/videos/"+video.ID+"/summary?units=pxf"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp summaryResponse
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Units != "pxf" {
		t.Errorf("units = %q, want pxf", resp.Units)
	}

	for _, col := range resp.Columns {
		switch col.Name {
		case "angle_left_elbow":
			if col.Mean != 95 {
				t.Errorf("angles must not convert, mean = %v", col.Mean)
			}
		case "speed_left_wrist":
			if want := 305.0 / 30.0; col.Mean != want {
				t.Errorf("speed_left_wrist mean = %v, want %v", col.Mean, want)
			}
		}
	}
}

func TestVideoSummary_InvalidUnits(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet,
		"/api/videos/"+video.ID+"/summary?units=mph"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestVideoChart(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet,
		"/api/videos/"+video.ID+"/charts/angles"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "left_elbow") || !strings.Contains(body, "right_elbow") {
		t.Error("chart missing angle series")
	}
}

func TestVideoChart_Speed(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet,
		"/api/videos/"+video.ID+"/charts/speed"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "center_of_mass") {
		t.Error("chart missing speed series")
	}
}

func TestVideoChart_UnknownKind(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet,
		"/api/videos/"+video.ID+"/charts/torque"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestVideoReport_PNG(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet, "/api/videos/"+video.ID+"/report"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("response is not a PNG")
	}
}

func TestVideoReport_SpeedKind(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet,
		"/api/videos/"+video.ID+"/report?kind=speed"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("response is not a PNG")
	}
}

func TestVideoReport_UnknownKind(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	video := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet,
		"/api/videos/"+video.ID+"/report?kind=torque"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}
