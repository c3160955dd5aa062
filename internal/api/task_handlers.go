package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tasktracker/internal/apperr"
	"tasktracker/internal/service"
)

// createTaskRequest decodes leniently: a client-supplied owner field is
// ignored and the owner is forced to the authenticated caller.
type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status"`
}

// updateTaskRequest is the whitelist of mutable fields. Update bodies
// are decoded strictly so any other field is rejected rather than
// silently dropped.
type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	DueDate     optionalTime `json:"due_date"`
	Status      *string      `json:"status"`
}

// optionalTime distinguishes an omitted due_date from an explicit
// null: null clears the stored value, absence leaves it unchanged.
type optionalTime struct {
	set  bool
	time *time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.time = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.time = &t
	return nil
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validation(map[string]string{"body": "request body must be valid JSON"}))
		return
	}

	task, err := s.tasks.Create(r.Context(), callerID(r), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := s.tasks.Get(r.Context(), callerID(r), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleUpdateTask is the PUT handler: full replacement, title required.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	s.updateTask(w, r, true)
}

// handlePatchTask is the PATCH handler: omitted fields stay unchanged.
func (s *Server) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	s.updateTask(w, r, false)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, requireTitle bool) {
	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req updateTaskRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, apperr.Validation(map[string]string{"body": "request body contains invalid or unknown fields"}))
		return
	}
	if requireTitle && req.Title == nil {
		writeError(w, apperr.Validation(map[string]string{"title": "title is required"}))
		return
	}

	patch := service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.DueDate.set {
		if req.DueDate.time == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = req.DueDate.time
		}
	}

	task, err := s.tasks.Update(r.Context(), callerID(r), taskID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := taskIDFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.tasks.Delete(r.Context(), callerID(r), taskID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// taskIDFromPath parses the {id} segment. A non-numeric id cannot name
// one of the caller's tasks, so it reports not found.
func taskIDFromPath(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.CodeNotFound, "task not found")
	}
	return uint(id), nil
}
