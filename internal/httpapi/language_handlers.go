package httpapi

import (
	"net/http"

	"tasknest.org/internal/entity"
)

type languageRequest struct {
	Name       string `json:"name"`
	RowVersion string `json:"row_version,omitempty"`
}

type languageResponse struct {
	auditFields
	Name string `json:"name"`
}

func toLanguageResponse(l *entity.Language) languageResponse {
	return languageResponse{auditFields: auditOf(l.Audit), Name: l.Name}
}

func (a *API) CreateLanguage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req languageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	lang := &entity.Language{Name: req.Name}
	if err := a.svc.Languages.Create(r.Context(), lang, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLanguageResponse(lang))
}

func (a *API) GetLanguage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	lang, err := a.svc.Languages.Get(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLanguageResponse(lang))
}

func (a *API) ListLanguages(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	langs, err := a.svc.Languages.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	out := make([]languageResponse, 0, len(langs))
	for _, l := range langs {
		out = append(out, toLanguageResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (a *API) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req languageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rowVersion, ok := parseRowVersion(req.RowVersion)
	if !ok {
		respondError(w, http.StatusBadRequest, "row_version is required")
		return
	}
	lang := &entity.Language{Audit: entity.Audit{ID: id}, Name: req.Name}
	if err := a.svc.Languages.Update(r.Context(), lang, rowVersion, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLanguageResponse(lang))
}

func (a *API) DeleteLanguage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.svc.Languages.Delete(r.Context(), id, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
