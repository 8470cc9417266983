package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/newsroom-agent/internal/capability"
	"github.com/jonathan/newsroom-agent/internal/protocol"
	"github.com/jonathan/newsroom-agent/internal/registry"
	"github.com/jonathan/newsroom-agent/internal/server/middleware"
	"github.com/jonathan/newsroom-agent/internal/types"
)

// Coordinator actions exposed to callers.
const (
	ActionAssignStory       = "assign_story"
	ActionGetStoryStatus    = "get_story_status"
	ActionGetStatus         = "get_status" // legacy alias
	ActionListActiveStories = "list_active_stories"
	ActionClear             = "clear"
)

// DefaultTargetLength is used when an assignment omits target_length.
const DefaultTargetLength = 800

// maxRequestBody bounds inbound request payloads.
const maxRequestBody = 1 << 20

// dispatch routes one internal-shape call to its action handler. All
// business-level failures come back as typed errors so both the internal
// endpoint and the A2A bridge can map them to stable codes.
func (s *Server) dispatch(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
	switch action {
	case ActionAssignStory:
		return s.assignStory(ctx, params)
	case ActionGetStoryStatus, ActionGetStatus:
		return s.storyStatus(params)
	case ActionListActiveStories:
		return s.listActiveStories(), nil
	case ActionClear:
		return s.clear(), nil
	default:
		return nil, &protocol.UnknownActionError{Action: action}
	}
}

// assignStory registers a new story and launches its pipeline. The story is
// in the assigned state before the call returns, so a status read issued
// immediately after never observes created.
func (s *Server) assignStory(ctx context.Context, params map[string]any) (map[string]any, error) {
	// Callers may nest assignment fields under a story key or send them flat.
	if nested, ok := params["story"].(map[string]any); ok {
		params = nested
	}

	var req types.AssignStoryRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, &capability.RejectedError{Message: fmt.Sprintf("invalid assignment: %v", err)}
	}
	if req.TargetLength == 0 {
		req.TargetLength = DefaultTargetLength
	}

	story := types.NewStory(req.Topic, req.Angle, req.TargetLength, req.Priority)
	if err := s.registry.Add(story); err != nil {
		return nil, err
	}
	if err := s.registry.Transition(story.ID, types.StatusAssigned, ""); err != nil {
		return nil, err
	}

	log.Printf("[coordinator] assigned story %s: %q (priority %s)", story.ID, story.Topic, story.Priority)
	go s.pipeline.Run(context.WithoutCancel(ctx), story.ID)

	return map[string]any{
		"status":       "success",
		"story_id":     story.ID.String(),
		"story_status": string(types.StatusAssigned),
	}, nil
}

// storyStatus returns a point-in-time snapshot of one story.
func (s *Server) storyStatus(params map[string]any) (map[string]any, error) {
	var req types.StatusRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, &capability.RejectedError{Message: fmt.Sprintf("invalid status request: %v", err)}
	}

	id, err := uuid.Parse(req.StoryID)
	if err != nil {
		return nil, &capability.RejectedError{Message: fmt.Sprintf("invalid story_id: %v", err)}
	}

	snap, err := s.registry.Snapshot(id)
	if err != nil {
		return nil, err
	}
	return statusPayload(snap), nil
}

// listActiveStories returns snapshots of every non-terminal story.
func (s *Server) listActiveStories() map[string]any {
	records := s.registry.ListActive()
	stories := make([]map[string]any, 0, len(records))
	for _, record := range records {
		stories = append(stories, statusPayload(record))
	}
	return map[string]any{"active_stories": stories, "count": len(stories)}
}

// clear drops every registered story and returns the coordinator to idle.
func (s *Server) clear() map[string]any {
	dropped := s.registry.Len()
	s.registry.Clear()
	log.Printf("[coordinator] registry cleared, dropped %d stories", dropped)
	return map[string]any{"cleared": true, "dropped": dropped}
}

// statusPayload flattens a registry record into the status response shape.
func statusPayload(record *registry.Record) map[string]any {
	payload := map[string]any{
		"story_id":   record.Story.ID.String(),
		"topic":      record.Story.Topic,
		"status":     string(record.Story.Status),
		"priority":   string(record.Story.Priority),
		"created_at": record.Story.CreatedAt.Format(time.RFC3339),
	}
	if len(record.Story.Warnings) > 0 {
		payload["warnings"] = record.Story.Warnings
	}
	if record.Story.Reason != "" {
		payload["reason"] = record.Story.Reason
	}
	if record.Draft != nil {
		payload["draft_version"] = record.Draft.Version
		payload["word_count"] = record.Draft.WordCount
	}
	if record.Publication != nil {
		payload["published_at"] = record.Publication.PublishedAt.Format(time.RFC3339)
		payload["destinations"] = record.Publication.DestinationIDs
	}
	return payload
}

// decodeParams converts a generic params map into a typed request struct.
func decodeParams(params map[string]any, out any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return &capability.MalformedMessageError{Message: "unencodable params", Cause: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &capability.MalformedMessageError{Message: "params do not match the expected shape", Cause: err}
	}
	return nil
}

// internalCall is the internal request shape served on /agent.
type internalCall struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// handleAgent serves the internal {action, params} shape used by co-located
// workers and operator tooling.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	var call internalCall
	if err := json.Unmarshal(body, &call); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if call.Action == "" {
		s.errorResponse(w, http.StatusBadRequest, "action is required")
		return
	}

	if call.Action == ActionClear && !s.authorizeOperator(r) {
		s.errorResponse(w, http.StatusUnauthorized, "operator token required")
		return
	}

	result, err := s.dispatch(r.Context(), call.Action, call.Params)
	if err != nil {
		log.Printf("[coordinator] %s failed: %v", call.Action, err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleRPC serves the A2A JSONRPC surface. Transport succeeds with 200
// even for business failures; errors travel in the envelope with stable
// codes.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.jsonResponse(w, http.StatusOK, protocol.FormatError(nil, &capability.MalformedMessageError{Message: "unreadable request body"}))
		return
	}

	call, err := protocol.ParseRequest(body)
	if err != nil {
		s.jsonResponse(w, http.StatusOK, protocol.FormatError(nil, err))
		return
	}

	if call.Action == ActionClear && !s.authorizeOperator(r) {
		s.jsonResponse(w, http.StatusOK, protocol.FormatError(call.ID, &capability.RejectedError{Message: "operator token required"}))
		return
	}

	result, err := s.dispatch(r.Context(), call.Action, call.Params)
	if err != nil {
		log.Printf("[coordinator] rpc %s failed: %v", call.Action, err)
		s.jsonResponse(w, http.StatusOK, protocol.FormatError(call.ID, err))
		return
	}
	s.jsonResponse(w, http.StatusOK, protocol.FormatResponse(call.ID, result))
}

// handleCard publishes the coordinator's capability card for discovery.
func (s *Server) handleCard(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.card)
}

// handleListStories serves the read-only story listing.
func (s *Server) handleListStories(w http.ResponseWriter, _ *http.Request) {
	records := s.registry.List()
	stories := make([]map[string]any, 0, len(records))
	for _, record := range records {
		stories = append(stories, statusPayload(record))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"stories": stories, "count": len(stories)})
}

// handleGetStory serves one story snapshot by path ID.
func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid story id")
		return
	}
	snap, err := s.registry.Snapshot(id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, statusPayload(snap))
}

// handleClearStories serves the REST clear route. The auth middleware has
// already validated the operator token when one is required.
func (s *Server) handleClearStories(w http.ResponseWriter, r *http.Request) {
	if operatorID, err := middleware.GetOperatorID(r); err == nil {
		log.Printf("[coordinator] registry clear requested by operator %s", operatorID)
	}
	s.jsonResponse(w, http.StatusOK, s.clear())
}

// authorizeOperator checks the Bearer token guarding destructive actions.
// When no JWT service is configured the guard is disabled.
func (s *Server) authorizeOperator(r *http.Request) bool {
	if s.jwtService == nil {
		return true
	}
	authHeader := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) {
		return false
	}
	_, err := s.jwtService.ValidateToken(authHeader[len(prefix):])
	return err == nil
}
