package httpapi

import (
	"net/http"
	"time"

	"tasknest.org/internal/entity"
)

type teamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	RowVersion  string `json:"row_version,omitempty"`
}

type teamResponse struct {
	auditFields
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toTeamResponse(t *entity.Team) teamResponse {
	return teamResponse{auditFields: auditOf(t.Audit), Name: t.Name, Description: t.Description}
}

type memberRequest struct {
	UserID   int64  `json:"user_id"`
	Relation string `json:"relation"`
}

type memberResponse struct {
	UserID     int64     `json:"user_id"`
	Relation   string    `json:"relation"`
	AssignedAt time.Time `json:"assigned_at"`
}

func (a *API) CreateTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req teamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	team := &entity.Team{Name: req.Name, Description: req.Description}
	if err := a.svc.Teams.Create(r.Context(), team, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeamResponse(team))
}

func (a *API) GetTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	team, err := a.svc.Teams.Get(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamResponse(team))
}

func (a *API) ListTeams(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teams, err := a.svc.Teams.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	out := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (a *API) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req teamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rowVersion, ok := parseRowVersion(req.RowVersion)
	if !ok {
		respondError(w, http.StatusBadRequest, "row_version is required")
		return
	}
	team := &entity.Team{Audit: entity.Audit{ID: id}, Name: req.Name, Description: req.Description}
	if err := a.svc.Teams.Update(r.Context(), team, rowVersion, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamResponse(team))
}

func (a *API) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.svc.Teams.Delete(r.Context(), id, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	roles, err := a.svc.Teams.Members(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	out := make([]memberResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, memberResponse{UserID: role.UserID, Relation: role.Role, AssignedAt: role.AssignedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (a *API) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req memberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.svc.Teams.AddMember(r.Context(), id, req.UserID, req.Relation, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req memberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.svc.Teams.RemoveMember(r.Context(), id, req.UserID, req.Relation, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
