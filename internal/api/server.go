// Package api serves the labeling and session-analysis HTTP surface:
// video registration, move and frame-tag CRUD, labeled exports, and
// chart rendering over stored feature CSVs.
package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Jolieabadir/dynalytics/internal/fsutil"
	"github.com/Jolieabadir/dynalytics/internal/httputil"
	"github.com/Jolieabadir/dynalytics/internal/labeldb"
	"github.com/Jolieabadir/dynalytics/internal/pose"
	"github.com/Jolieabadir/dynalytics/internal/version"
)

// ANSI escape codes for request logging
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// Server handles the labeling API. Artifact writes (exports, reports)
// go through fs so handlers stay testable without a disk.
type Server struct {
	db      *labeldb.DB
	fs      fsutil.FileSystem
	dataDir string
}

// NewServer builds a server over the given label store. Derived
// artifacts land under dataDir.
func NewServer(db *labeldb.DB, fs fsutil.FileSystem, dataDir string) *Server {
	return &Server{
		db:      db,
		fs:      fs,
		dataDir: dataDir,
	}
}

// ServeMux returns the route table for the labeling API.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHealth)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/videos", s.handleVideos)
	mux.HandleFunc("/api/videos/", s.handleVideoByID)
	mux.HandleFunc("/api/moves", s.handleMoves)
	mux.HandleFunc("/api/moves/", s.handleMoveByID)
	mux.HandleFunc("/api/frame-tags", s.handleFrameTags)
	mux.HandleFunc("/api/frame-tags/", s.handleFrameTagByID)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// handleHealth answers the root health check. Registered on "/", it
// also catches every path no other route claims.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httputil.NotFound(w, "not found")
		return
	}
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]string{
		"status":  "ok",
		"message": "dynalytics API is running",
	})
}

type configResponse struct {
	Version           string                         `json:"version"`
	MoveTypes         []string                       `json:"move_types"`
	MoveTypeQuestions map[string]map[string]Question `json:"move_type_questions"`
	BodyParts         []string                       `json:"body_parts"`
	TagTypes          map[string]string              `json:"tag_types"`
	AngleNames        []string                       `json:"angle_names"`
	PointNames        []string                       `json:"point_names"`
	FormQualityRange  [2]int                         `json:"form_quality_range"`
	EffortLevelRange  [2]int                         `json:"effort_level_range"`
}

// handleConfig serves the vocabularies a labeling client needs to
// build its forms.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	httputil.WriteJSONOK(w, configResponse{
		Version:           version.Version,
		MoveTypes:         MoveTypes,
		MoveTypeQuestions: MoveTypeQuestions,
		BodyParts:         BodyParts,
		TagTypes:          TagTypes,
		AngleNames:        angleNames(),
		PointNames:        pose.PointNames(),
		FormQualityRange:  [2]int{FormQualityMin, FormQualityMax},
		EffortLevelRange:  [2]int{EffortLevelMin, EffortLevelMax},
	})
}

// angleNames lists every angle the default pipeline emits, catalog
// order first, then the midpoint composites.
func angleNames() []string {
	catalog := pose.DefaultCatalog()
	names := make([]string, 0, len(catalog)+2)
	for _, def := range catalog {
		names = append(names, def.Name)
	}
	return append(names, pose.AngleUpperBack, pose.AngleLowerBack)
}

// videoOr404 loads a video or writes the appropriate error response.
// A false return means the response was already written.
func (s *Server) videoOr404(w http.ResponseWriter, id string) (*labeldb.Video, bool) {
	video, err := s.db.GetVideo(id)
	if err != nil {
		if errors.Is(err, labeldb.ErrNotFound) {
			httputil.NotFound(w, fmt.Sprintf("video %s not found", id))
		} else {
			httputil.InternalServerError(w, fmt.Sprintf("failed to load video: %v", err))
		}
		return nil, false
	}
	return video, true
}

// moveOr404 loads a move or writes the appropriate error response.
func (s *Server) moveOr404(w http.ResponseWriter, id string) (*labeldb.Move, bool) {
	move, err := s.db.GetMove(id)
	if err != nil {
		if errors.Is(err, labeldb.ErrNotFound) {
			httputil.NotFound(w, fmt.Sprintf("move %s not found", id))
		} else {
			httputil.InternalServerError(w, fmt.Sprintf("failed to load move: %v", err))
		}
		return nil, false
	}
	return move, true
}
