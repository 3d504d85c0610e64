package httpapi

import (
	"net/http"

	"tasknest.org/internal/entity"
)

type orgRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	RowVersion  string `json:"row_version,omitempty"`
}

type orgResponse struct {
	auditFields
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toOrgResponse(o *entity.Organization) orgResponse {
	return orgResponse{auditFields: auditOf(o.Audit), Name: o.Name, Description: o.Description}
}

func (a *API) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req orgRequest
	if !decodeBody(w, r, &req) {
		return
	}
	org := &entity.Organization{Name: req.Name, Description: req.Description}
	if err := a.svc.Organizations.Create(r.Context(), org, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrgResponse(org))
}

func (a *API) GetOrganization(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	org, err := a.svc.Organizations.Get(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrgResponse(org))
}

func (a *API) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgs, err := a.svc.Organizations.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	out := make([]orgResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, toOrgResponse(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (a *API) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req orgRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rowVersion, ok := parseRowVersion(req.RowVersion)
	if !ok {
		respondError(w, http.StatusBadRequest, "row_version is required")
		return
	}
	org := &entity.Organization{Audit: entity.Audit{ID: id}, Name: req.Name, Description: req.Description}
	if err := a.svc.Organizations.Update(r.Context(), org, rowVersion, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrgResponse(org))
}

func (a *API) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.svc.Organizations.Delete(r.Context(), id, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) ListOrganizationMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	roles, err := a.svc.Organizations.Members(r.Context(), id, userID)
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

func (a *API) AddOrganizationMember(w http.ResponseWriter, r *http.Request) {
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
	if err := a.svc.Organizations.AddMember(r.Context(), id, req.UserID, req.Relation, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) RemoveOrganizationMember(w http.ResponseWriter, r *http.Request) {
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
	if err := a.svc.Organizations.RemoveMember(r.Context(), id, req.UserID, req.Relation, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
