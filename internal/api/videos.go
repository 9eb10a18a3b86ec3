package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Jolieabadir/dynalytics/internal/httputil"
	"github.com/Jolieabadir/dynalytics/internal/labeldb"
	"github.com/Jolieabadir/dynalytics/internal/security"
)

// videoExtensions are the accepted video container formats.
var videoExtensions = []string{".mov", ".mp4", ".avi"}

type videoCreateRequest struct {
	Filename    string  `json:"filename"`
	Path        string  `json:"path"`
	CSVPath     string  `json:"csv_path"`
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
	DurationMS  float64 `json:"duration_ms"`
}

// handleVideos serves the video collection: GET lists, POST registers
// a processed video with its feature CSV.
func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listVideos(w, r)
	case http.MethodPost:
		s.createVideo(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) listVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.db.GetAllVideos()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list videos: %v", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"videos": videos,
		"count":  len(videos),
	})
}

// createVideo registers a video whose pose features were already
// extracted. Detection runs out of process, so the record arrives with
// its CSV path and frame metadata instead of a raw upload. Both paths
// must sit inside the server's data directory.
func (s *Server) createVideo(w http.ResponseWriter, r *http.Request) {
	var req videoCreateRequest
	if !httputil.DecodeJSONBody(w, r, &req) {
		return
	}

	if req.Filename == "" {
		httputil.BadRequest(w, "filename is required")
		return
	}
	if !validVideoExtension(req.Filename) {
		httputil.BadRequest(w, fmt.Sprintf("invalid file type %q, must be one of %s",
			filepath.Ext(req.Filename), strings.Join(videoExtensions, ", ")))
		return
	}
	if req.CSVPath == "" {
		httputil.BadRequest(w, "csv_path is required")
		return
	}
	if err := security.WithinDirectory(req.CSVPath, s.dataDir); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("csv_path: %v", err))
		return
	}
	if req.Path != "" {
		if err := security.WithinDirectory(req.Path, s.dataDir); err != nil {
			httputil.BadRequest(w, fmt.Sprintf("path: %v", err))
			return
		}
	}
	if !s.fs.Exists(req.CSVPath) {
		httputil.BadRequest(w, fmt.Sprintf("csv_path %s does not exist", req.CSVPath))
		return
	}
	if req.FPS <= 0 {
		httputil.BadRequest(w, "fps must be positive")
		return
	}
	if req.TotalFrames < 0 || req.DurationMS < 0 {
		httputil.BadRequest(w, "total_frames and duration_ms must not be negative")
		return
	}

	video := &labeldb.Video{
		Filename:    req.Filename,
		Path:        req.Path,
		CSVPath:     req.CSVPath,
		FPS:         req.FPS,
		TotalFrames: req.TotalFrames,
		DurationMS:  req.DurationMS,
	}
	if err := s.db.CreateVideo(video); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to create video: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, video)
}

func validVideoExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range videoExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// handleVideoByID dispatches /api/videos/{id} and its subresources.
func (s *Server) handleVideoByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/videos/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		httputil.BadRequest(w, "missing video ID")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.getVideo(w, r, id)
		case http.MethodDelete:
			s.deleteVideo(w, r, id)
		default:
			httputil.MethodNotAllowed(w)
		}
	case len(parts) == 2 && parts[1] == "csv":
		s.requireGet(w, r, func() { s.serveVideoCSV(w, r, id) })
	case len(parts) == 2 && parts[1] == "moves":
		s.requireGet(w, r, func() { s.listMovesForVideo(w, r, id) })
	case len(parts) == 2 && parts[1] == "export":
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}
		s.exportVideo(w, r, id)
	case len(parts) == 2 && parts[1] == "summary":
		s.requireGet(w, r, func() { s.videoSummary(w, r, id) })
	case len(parts) == 2 && parts[1] == "report":
		s.requireGet(w, r, func() { s.videoReport(w, r, id) })
	case len(parts) == 3 && parts[1] == "charts":
		s.requireGet(w, r, func() { s.videoChart(w, r, id, parts[2]) })
	default:
		httputil.NotFound(w, "not found")
	}
}

// requireGet runs fn for GET requests and rejects everything else.
func (s *Server) requireGet(w http.ResponseWriter, r *http.Request, fn func()) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	fn()
}

func (s *Server) getVideo(w http.ResponseWriter, r *http.Request, id string) {
	video, ok := s.videoOr404(w, id)
	if !ok {
		return
	}
	httputil.WriteJSONOK(w, video)
}

func (s *Server) deleteVideo(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.videoOr404(w, id); !ok {
		return
	}
	if err := s.db.DeleteVideo(id); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to delete video: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// serveVideoCSV downloads the raw feature CSV for a video.
func (s *Server) serveVideoCSV(w http.ResponseWriter, r *http.Request, id string) {
	video, ok := s.videoOr404(w, id)
	if !ok {
		return
	}

	data, err := s.fs.ReadFile(video.CSVPath)
	if err != nil {
		httputil.NotFound(w, "CSV file not found")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", security.SanitizeFilename(filepath.Base(video.CSVPath))))
	w.Write(data)
}
