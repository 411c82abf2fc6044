package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/smarttodo/context-engine/internal/analysis"
)

// Analyze request structure
type AnalyzeRequest struct {
	Content    string `json:"content"`
	SourceType string `json:"source_type"`
}

// Enhance request structure
type EnhanceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Prioritize request structure
type PrioritizeRequest struct {
	Tasks []analysis.TaskItem `json:"tasks"`
}

// POST /api/analyze-context - Analyze content and extract tasks
func (s *Server) handleAnalyzeContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	result := s.engine.AnalyzeContext(r.Context(), req.Content, req.SourceType)
	writeJSON(w, http.StatusOK, result)
}

// POST /api/enhance-task - Suggest priority, deadline and categories
func (s *Server) handleEnhanceTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req EnhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	result := s.engine.EnhanceTask(r.Context(), analysis.EnhancementRequest{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	writeJSON(w, http.StatusOK, result)
}

// POST /api/prioritize-tasks - Score and order a task list
func (s *Server) handlePrioritizeTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req PrioritizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Tasks == nil {
		writeError(w, http.StatusBadRequest, "tasks is required")
		return
	}

	result := s.engine.PrioritizeTasks(r.Context(), req.Tasks)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prioritized_tasks": result,
	})
}

// GET /api/capabilities - Report configured providers and features
func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, s.engine.Capabilities())
}
