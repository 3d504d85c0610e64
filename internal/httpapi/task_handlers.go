package httpapi

import (
	"net/http"
	"time"

	"tasknest.org/internal/entity"
)

type taskRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ReminderDate   *time.Time `json:"reminder_date,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	AssignedToID   *int64     `json:"assigned_to_id,omitempty"`
	OrganizationID *int64     `json:"organization_id,omitempty"`
	RowVersion     string     `json:"row_version,omitempty"`
}

type taskResponse struct {
	auditFields
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ReminderDate   *time.Time `json:"reminder_date,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	AssignedToID   *int64     `json:"assigned_to_id,omitempty"`
	OrganizationID *int64     `json:"organization_id,omitempty"`
}

func toTaskResponse(t *entity.Task) taskResponse {
	return taskResponse{
		auditFields:    auditOf(t.Audit),
		Title:          t.Title,
		Description:    t.Description,
		DueDate:        t.DueDate,
		ReminderDate:   t.ReminderDate,
		CompletedAt:    t.CompletedAt,
		AssignedToID:   t.AssignedToID,
		OrganizationID: t.OrganizationID,
	}
}

func (a *API) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req taskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task := &entity.Task{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		ReminderDate:   req.ReminderDate,
		AssignedToID:   req.AssignedToID,
		OrganizationID: req.OrganizationID,
	}
	if err := a.svc.Tasks.Create(r.Context(), task, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (a *API) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := a.svc.Tasks.Get(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (a *API) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	tasks, err := a.svc.Tasks.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (a *API) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req taskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rowVersion, ok := parseRowVersion(req.RowVersion)
	if !ok {
		respondError(w, http.StatusBadRequest, "row_version is required")
		return
	}
	task := &entity.Task{
		Audit:          entity.Audit{ID: id},
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		ReminderDate:   req.ReminderDate,
		CompletedAt:    req.CompletedAt,
		AssignedToID:   req.AssignedToID,
		OrganizationID: req.OrganizationID,
	}
	if err := a.svc.Tasks.Update(r.Context(), task, rowVersion, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (a *API) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.svc.Tasks.Delete(r.Context(), id, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
