package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/Jolieabadir/dynalytics/internal/labeldb"
	"github.com/Jolieabadir/dynalytics/internal/testutil"
)

func TestCreateVideo_Success(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)

	video := seedVideo(t, srv, mfs)
	if video.ID == "" {
		t.Error("expected generated video ID")
	}
	if video.Filename != "session.mp4" {
		t.Errorf("filename = %q, want session.mp4", video.Filename)
	}
	if video.FPS != 30 {
		t.Errorf("fps = %v, want 30", video.FPS)
	}
	if video.UploadedAt.IsZero() {
		t.Error("expected uploaded_at to be set")
	}
}

func TestCreateVideo_Validation(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	testutil.AssertNoError(t, mfs.WriteFile("/data/csv/session.csv", []byte(testCSV), 0644))

	base := func() map[string]interface{} {
		return map[string]interface{}{
			"filename":     "session.mp4",
			"path":         "/data/videos/session.mp4",
			"csv_path":     "/data/csv/session.csv",
			"fps":          30.0,
			"total_frames": 900,
			"duration_ms":  30000.0,
		}
	}

	cases := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"missing filename", func(m map[string]interface{}) { m["filename"] = "" }},
		{"bad extension", func(m map[string]interface{}) { m["filename"] = "session.mkv" }},
		{"missing csv_path", func(m map[string]interface{}) { m["csv_path"] = "" }},
		{"nonexistent csv_path", func(m map[string]interface{}) { m["csv_path"] = "/data/csv/missing.csv" }},
		{"csv_path outside data dir", func(m map[string]interface{}) { m["csv_path"] = "/etc/passwd" }},
		{"video path outside data dir", func(m map[string]interface{}) { m["path"] = "/data/../tmp/session.mp4" }},
		{"zero fps", func(m map[string]interface{}) { m["fps"] = 0.0 }},
		{"negative frames", func(m map[string]interface{}) { m["total_frames"] = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := base()
			tc.mutate(body)
			rec := serve(srv, testutil.NewJSONRequest(t, http.MethodPost, "/api/videos", body))
			testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
		})
	}
}

func TestCreateVideo_ExtensionCaseInsensitive(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	testutil.AssertNoError(t, mfs.WriteFile("/data/csv/session.csv", []byte(testCSV), 0644))

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/videos", map[string]interface{}{
		"filename": "SESSION.MOV",
		"csv_path": "/data/csv/session.csv",
		"fps":      29.97,
	})
	rec := serve(srv, req)
	testutil.AssertStatusCode(t, rec.Code, http.StatusCreated)
}

func TestListVideos(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet, "/api/videos"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var empty struct {
		Videos []labeldb.Video `json:"videos"`
		Count  int             `json:"count"`
	}
	testutil.DecodeJSON(t, rec, &empty)
	if empty.Count != 0 || len(empty.Videos) != 0 {
		t.Errorf("expected empty listing, got count=%d videos=%d", empty.Count, len(empty.Videos))
	}

	seeded := seedVideo(t, srv, mfs)

	rec = serve(srv, testutil.NewTestRequest(http.MethodGet, "/api/videos"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var listing struct {
		Videos []labeldb.Video `json:"videos"`
		Count  int             `json:"count"`
	}
	testutil.DecodeJSON(t, rec, &listing)
	if listing.Count != 1 {
		t.Fatalf("count = %d, want 1", listing.Count)
	}
	if listing.Videos[0].ID != seeded.ID {
		t.Errorf("listed ID = %q, want %q", listing.Videos[0].ID, seeded.ID)
	}
}

func TestGetVideo(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	seeded := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet, "/api/videos/"+seeded.ID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var video labeldb.Video
	testutil.DecodeJSON(t, rec, &video)
	if video.CSVPath != "/data/csv/session.csv" {
		t.Errorf("csv_path = %q", video.CSVPath)
	}
}

func TestGetVideo_NotFound(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet, "/api/videos/no-such-id"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestDeleteVideo(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	seeded := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodDelete, "/api/videos/"+seeded.ID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNoContent)

	rec = serve(srv, testutil.NewTestRequest(http.MethodDelete, "/api/videos/"+seeded.ID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestVideoCSVDownload(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	seeded := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet, "/api/videos/"+seeded.ID+"/csv"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `"session.csv"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Body.String() != testCSV {
		t.Error("downloaded CSV does not match stored CSV")
	}
}

func TestVideoCSVDownload_MissingFile(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	seeded := seedVideo(t, srv, mfs)
	testutil.AssertNoError(t, mfs.Remove("/data/csv/session.csv"))

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet, "/api/videos/"+seeded.ID+"/csv"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestVideoSubrouteRejectsWrongMethod(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	seeded := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodPost, "/api/videos/"+seeded.ID+"/csv"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)

	rec = serve(srv, testutil.NewTestRequest(http.MethodGet, "/api/videos/"+seeded.ID+"/export"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestVideoUnknownSubroute(t *testing.T) {
	t.Parallel()
	srv, mfs := newTestServer(t)
	seeded := seedVideo(t, srv, mfs)

	rec := serve(srv, testutil.NewTestRequest(http.MethodGet, "/api/videos/"+seeded.ID+"/bogus"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}
