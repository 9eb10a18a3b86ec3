package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Jolieabadir/dynalytics/internal/httputil"
	"github.com/Jolieabadir/dynalytics/internal/labeldb"
)

type moveCreateRequest struct {
	VideoID            string                 `json:"video_id"`
	FrameStart         int                    `json:"frame_start"`
	FrameEnd           int                    `json:"frame_end"`
	TimestampStartMS   float64                `json:"timestamp_start_ms"`
	TimestampEndMS     float64                `json:"timestamp_end_ms"`
	MoveType           string                 `json:"move_type"`
	FormQuality        int                    `json:"form_quality"`
	EffortLevel        int                    `json:"effort_level"`
	ContextualData     map[string]interface{} `json:"contextual_data"`
	TechniqueModifiers []string               `json:"technique_modifiers"`
	Tags               []string               `json:"tags"`
	Description        string                 `json:"description"`
}

// moveUpdateRequest carries a partial update; nil fields keep their
// stored values.
type moveUpdateRequest struct {
	FrameStart         *int                   `json:"frame_start"`
	FrameEnd           *int                   `json:"frame_end"`
	TimestampStartMS   *float64               `json:"timestamp_start_ms"`
	TimestampEndMS     *float64               `json:"timestamp_end_ms"`
	MoveType           *string                `json:"move_type"`
	FormQuality        *int                   `json:"form_quality"`
	EffortLevel        *int                   `json:"effort_level"`
	ContextualData     map[string]interface{} `json:"contextual_data"`
	TechniqueModifiers []string               `json:"technique_modifiers"`
	Tags               []string               `json:"tags"`
	Description        *string                `json:"description"`
}

// moveResponse decorates a move with its frame-tag count.
type moveResponse struct {
	*labeldb.Move
	FrameTagCount int `json:"frame_tag_count"`
}

func (s *Server) moveWithTagCount(m *labeldb.Move) (moveResponse, error) {
	tags, err := s.db.GetFrameTagsForMove(m.ID)
	if err != nil {
		return moveResponse{}, err
	}
	return moveResponse{Move: m, FrameTagCount: len(tags)}, nil
}

// validateMove checks a move's fields against the vocabularies and the
// owning video's frame range.
func validateMove(m *labeldb.Move, video *labeldb.Video) error {
	if !isValidMoveType(m.MoveType) {
		return fmt.Errorf("invalid move type %q, must be one of %s",
			m.MoveType, strings.Join(MoveTypes, ", "))
	}
	if m.FormQuality < FormQualityMin || m.FormQuality > FormQualityMax {
		return fmt.Errorf("form_quality must be between %d and %d", FormQualityMin, FormQualityMax)
	}
	if m.EffortLevel < EffortLevelMin || m.EffortLevel > EffortLevelMax {
		return fmt.Errorf("effort_level must be between %d and %d", EffortLevelMin, EffortLevelMax)
	}
	if m.FrameStart < 0 {
		return fmt.Errorf("frame_start must not be negative")
	}
	if m.FrameEnd < m.FrameStart {
		return fmt.Errorf("frame_end %d precedes frame_start %d", m.FrameEnd, m.FrameStart)
	}
	if video.TotalFrames > 0 && m.FrameEnd >= video.TotalFrames {
		return fmt.Errorf("frame_end %d outside video frame range [0, %d)", m.FrameEnd, video.TotalFrames)
	}
	return nil
}

// handleMoves serves POST /api/moves.
func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req moveCreateRequest
	if !httputil.DecodeJSONBody(w, r, &req) {
		return
	}

	video, ok := s.videoOr404(w, req.VideoID)
	if !ok {
		return
	}

	move := &labeldb.Move{
		VideoID:            req.VideoID,
		FrameStart:         req.FrameStart,
		FrameEnd:           req.FrameEnd,
		TimestampStartMS:   req.TimestampStartMS,
		TimestampEndMS:     req.TimestampEndMS,
		MoveType:           req.MoveType,
		FormQuality:        req.FormQuality,
		EffortLevel:        req.EffortLevel,
		ContextualData:     req.ContextualData,
		TechniqueModifiers: req.TechniqueModifiers,
		Tags:               req.Tags,
		Description:        req.Description,
	}
	if err := validateMove(move, video); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	if err := s.db.CreateMove(move); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to create move: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, moveResponse{Move: move})
}

// handleMoveByID dispatches /api/moves/{id} and its frame-tag listing.
func (s *Server) handleMoveByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/moves/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		httputil.BadRequest(w, "missing move ID")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.getMove(w, r, id)
		case http.MethodPut:
			s.updateMove(w, r, id)
		case http.MethodDelete:
			s.deleteMove(w, r, id)
		default:
			httputil.MethodNotAllowed(w)
		}
	case len(parts) == 2 && parts[1] == "frame-tags":
		s.requireGet(w, r, func() { s.listFrameTagsForMove(w, r, id) })
	default:
		httputil.NotFound(w, "not found")
	}
}

func (s *Server) getMove(w http.ResponseWriter, r *http.Request, id string) {
	move, ok := s.moveOr404(w, id)
	if !ok {
		return
	}
	resp, err := s.moveWithTagCount(move)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to count frame tags: %v", err))
		return
	}
	httputil.WriteJSONOK(w, resp)
}

// listMovesForVideo serves GET /api/videos/{id}/moves, ordered by
// start frame.
func (s *Server) listMovesForVideo(w http.ResponseWriter, r *http.Request, videoID string) {
	if _, ok := s.videoOr404(w, videoID); !ok {
		return
	}

	moves, err := s.db.GetMovesForVideo(videoID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list moves: %v", err))
		return
	}

	responses := make([]moveResponse, 0, len(moves))
	for _, m := range moves {
		resp, err := s.moveWithTagCount(&m)
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to count frame tags: %v", err))
			return
		}
		responses = append(responses, resp)
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"moves": responses,
		"count": len(responses),
	})
}

// updateMove applies a partial update, re-validating the merged result
// so an update can never push a stored move outside the vocabulary or
// the video's frame range.
func (s *Server) updateMove(w http.ResponseWriter, r *http.Request, id string) {
	move, ok := s.moveOr404(w, id)
	if !ok {
		return
	}

	var req moveUpdateRequest
	if !httputil.DecodeJSONBody(w, r, &req) {
		return
	}

	if req.FrameStart != nil {
		move.FrameStart = *req.FrameStart
	}
	if req.FrameEnd != nil {
		move.FrameEnd = *req.FrameEnd
	}
	if req.TimestampStartMS != nil {
		move.TimestampStartMS = *req.TimestampStartMS
	}
	if req.TimestampEndMS != nil {
		move.TimestampEndMS = *req.TimestampEndMS
	}
	if req.MoveType != nil {
		move.MoveType = *req.MoveType
	}
	if req.FormQuality != nil {
		move.FormQuality = *req.FormQuality
	}
	if req.EffortLevel != nil {
		move.EffortLevel = *req.EffortLevel
	}
	if req.ContextualData != nil {
		move.ContextualData = req.ContextualData
	}
	if req.TechniqueModifiers != nil {
		move.TechniqueModifiers = req.TechniqueModifiers
	}
	if req.Tags != nil {
		move.Tags = req.Tags
	}
	if req.Description != nil {
		move.Description = *req.Description
	}

	video, ok := s.videoOr404(w, move.VideoID)
	if !ok {
		return
	}
	if err := validateMove(move, video); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	if err := s.db.UpdateMove(move); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to update move: %v", err))
		return
	}

	resp, err := s.moveWithTagCount(move)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to count frame tags: %v", err))
		return
	}
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) deleteMove(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.moveOr404(w, id); !ok {
		return
	}
	if err := s.db.DeleteMove(id); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to delete move: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
