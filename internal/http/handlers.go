package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"lunargrid/internal/core"
	"lunargrid/internal/recurrence"
	"lunargrid/internal/services"
	"lunargrid/internal/storage"
)

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTemplate(w, r)
	case http.MethodGet:
		s.handleListTemplates(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

type createTemplateResponse struct {
	Template   core.Template               `json:"template"`
	Validation recurrence.ValidationResult `json:"validation"`
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl core.Template
	if err := decodeJSON(r, &tpl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if tpl.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	created, result, err := s.templates.Create(r.Context(), tpl)
	if err != nil {
		var invalid services.ErrTemplateInvalid
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusUnprocessableEntity, createTemplateResponse{Validation: invalid.Result})
			return
		}
		slog.ErrorContext(r.Context(), "Create template error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	writeJSON(w, http.StatusCreated, createTemplateResponse{Template: created, Validation: result})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	templates, err := s.templates.List(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List templates error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []core.Template{}
	}

	writeJSON(w, http.StatusOK, templates)
}

// handleTemplateByID serves /api/templates/{id} and /api/templates/{id}/deactivate.
func (s *Server) handleTemplateByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/templates/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "template id is required")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, "GET")
			return
		}
		tpl, err := s.templates.Get(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Get template error", "error", err, "template_id", id)
			writeError(w, http.StatusInternalServerError, "failed to get template")
			return
		}
		writeJSON(w, http.StatusOK, tpl)
	case "deactivate":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		if err := s.templates.Deactivate(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "template not found")
				return
			}
			slog.ErrorContext(r.Context(), "Deactivate template error", "error", err, "template_id", id)
			writeError(w, http.StatusInternalServerError, "failed to deactivate template")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "activate":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		if err := s.templates.Activate(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "template not found")
				return
			}
			slog.ErrorContext(r.Context(), "Activate template error", "error", err, "template_id", id)
			writeError(w, http.StatusInternalServerError, "failed to activate template")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusNotFound, "unknown action "+action)
	}
}

func (s *Server) handleValidateTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var tpl core.Template
	if err := decodeJSON(r, &tpl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.templates.Validate(tpl))
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	case http.MethodGet:
		s.handleListTransactions(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.ManualTransaction
	if err := decodeJSON(r, &tx); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := s.transactions.CreateManual(r.Context(), tx)
	if err != nil {
		var invalid services.ErrTransactionInvalid
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: invalid.Error()})
			return
		}
		slog.ErrorContext(r.Context(), "Create transaction error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}
	start, err := core.ParseDate(strings.TrimSpace(r.URL.Query().Get("start_date")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date query parameter must be YYYY-MM-DD")
		return
	}
	end, err := core.ParseDate(strings.TrimSpace(r.URL.Query().Get("end_date")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date query parameter must be YYYY-MM-DD")
		return
	}
	if end.Before(start.Time) {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date")
		return
	}

	window, err := s.transactions.ListWindow(r.Context(), userID, start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	writeJSON(w, http.StatusOK, window)
}

type generateRequest struct {
	UserID    string    `json:"userId"`
	StartDate core.Date `json:"startDate"`
	EndDate   core.Date `json:"endDate"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.StartDate.IsEmpty() || req.EndDate.IsEmpty() {
		writeError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}
	if req.EndDate.Before(req.StartDate.Time) {
		writeError(w, http.StatusBadRequest, "endDate must not be before startDate")
		return
	}

	report, err := s.generation.GenerateForUser(r.Context(), req.UserID, recurrence.Window{
		Start: req.StartDate,
		End:   req.EndDate,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Generation error", "error", err, "user_id", req.UserID)
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
