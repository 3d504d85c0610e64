package httpapi

import (
	"net/http"

	"tasknest.org/internal/entity"
)

type userRequest struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	LanguageID *int64 `json:"language_id,omitempty"`
	RowVersion string `json:"row_version,omitempty"`
}

type userResponse struct {
	auditFields
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	LanguageID *int64 `json:"language_id,omitempty"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		auditFields: auditOf(u.Audit),
		Email:       u.Email,
		FullName:    u.FullName,
		LanguageID:  u.LanguageID,
	}
}

func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u := &entity.User{Email: req.Email, FullName: req.FullName, LanguageID: req.LanguageID}
	if err := a.svc.Users.Create(r.Context(), u, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := a.svc.Users.Get(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	users, err := a.svc.Users.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (a *API) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rowVersion, ok := parseRowVersion(req.RowVersion)
	if !ok {
		respondError(w, http.StatusBadRequest, "row_version is required")
		return
	}
	u := &entity.User{
		Audit:      entity.Audit{ID: id},
		Email:      req.Email,
		FullName:   req.FullName,
		LanguageID: req.LanguageID,
	}
	if err := a.svc.Users.Update(r.Context(), u, rowVersion, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.svc.Users.Delete(r.Context(), id, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
