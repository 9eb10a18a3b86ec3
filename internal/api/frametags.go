package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Jolieabadir/dynalytics/internal/httputil"
	"github.com/Jolieabadir/dynalytics/internal/labeldb"
)

type frameTagCreateRequest struct {
	MoveID      string   `json:"move_id"`
	FrameNumber int      `json:"frame_number"`
	TimestampMS float64  `json:"timestamp_ms"`
	TagType     string   `json:"tag_type"`
	Level       *int     `json:"level"`
	Locations   []string `json:"locations"`
	Note        string   `json:"note"`
}

// handleFrameTags serves POST /api/frame-tags.
func (s *Server) handleFrameTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req frameTagCreateRequest
	if !httputil.DecodeJSONBody(w, r, &req) {
		return
	}

	move, ok := s.moveOr404(w, req.MoveID)
	if !ok {
		return
	}

	if !isValidTagType(req.TagType) {
		httputil.BadRequest(w, fmt.Sprintf("invalid tag type %q", req.TagType))
		return
	}
	if req.Level != nil && (*req.Level < TagLevelMin || *req.Level > TagLevelMax) {
		httputil.BadRequest(w, fmt.Sprintf("level must be between %d and %d", TagLevelMin, TagLevelMax))
		return
	}
	if req.FrameNumber < move.FrameStart || req.FrameNumber > move.FrameEnd {
		httputil.BadRequest(w, fmt.Sprintf("frame_number %d outside move frame range [%d, %d]",
			req.FrameNumber, move.FrameStart, move.FrameEnd))
		return
	}

	tag := &labeldb.FrameTag{
		MoveID:      req.MoveID,
		FrameNumber: req.FrameNumber,
		TimestampMS: req.TimestampMS,
		TagType:     req.TagType,
		Level:       req.Level,
		Locations:   req.Locations,
		Note:        req.Note,
	}
	if err := s.db.CreateFrameTag(tag); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to create frame tag: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tag)
}

// listFrameTagsForMove serves GET /api/moves/{id}/frame-tags, ordered
// by frame number.
func (s *Server) listFrameTagsForMove(w http.ResponseWriter, r *http.Request, moveID string) {
	if _, ok := s.moveOr404(w, moveID); !ok {
		return
	}

	tags, err := s.db.GetFrameTagsForMove(moveID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list frame tags: %v", err))
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"frame_tags": tags,
		"count":      len(tags),
	})
}

// handleFrameTagByID serves DELETE /api/frame-tags/{id}.
func (s *Server) handleFrameTagByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/frame-tags/")
	if id == "" || strings.Contains(id, "/") {
		httputil.BadRequest(w, "missing frame tag ID")
		return
	}
	if r.Method != http.MethodDelete {
		httputil.MethodNotAllowed(w)
		return
	}

	if err := s.db.DeleteFrameTag(id); err != nil {
		if errors.Is(err, labeldb.ErrNotFound) {
			httputil.NotFound(w, fmt.Sprintf("frame tag %s not found", id))
		} else {
			httputil.InternalServerError(w, fmt.Sprintf("failed to delete frame tag: %v", err))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
