package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"tasknest.org/internal/obs"
	"tasknest.org/internal/service"
)

// ReadyProbe reports readiness, pinging the database when one is wired.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Services bundles the entity services the API fronts.
type Services struct {
	Tasks         *service.Tasks
	Teams         *service.Teams
	Organizations *service.Organizations
	Languages     *service.Languages
	Users         *service.Users
	Tuples        *service.TupleAudit
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	svc        Services
	readyProbe ReadyProbe
	version    string
}

// New wires routes. The entity services carry all authorization logic; the
// API only translates requests and errors.
func New(svc Services, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		svc:        svc,
		readyProbe: rp,
		version:    version,
	}

	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /v1/tasks", a.CreateTask)
	a.mux.HandleFunc("GET /v1/tasks", a.ListTasks)
	a.mux.HandleFunc("GET /v1/tasks/{id}", a.GetTask)
	a.mux.HandleFunc("PUT /v1/tasks/{id}", a.UpdateTask)
	a.mux.HandleFunc("DELETE /v1/tasks/{id}", a.DeleteTask)

	a.mux.HandleFunc("POST /v1/teams", a.CreateTeam)
	a.mux.HandleFunc("GET /v1/teams", a.ListTeams)
	a.mux.HandleFunc("GET /v1/teams/{id}", a.GetTeam)
	a.mux.HandleFunc("PUT /v1/teams/{id}", a.UpdateTeam)
	a.mux.HandleFunc("DELETE /v1/teams/{id}", a.DeleteTeam)
	a.mux.HandleFunc("GET /v1/teams/{id}/members", a.ListTeamMembers)
	a.mux.HandleFunc("POST /v1/teams/{id}/members", a.AddTeamMember)
	a.mux.HandleFunc("DELETE /v1/teams/{id}/members", a.RemoveTeamMember)

	a.mux.HandleFunc("POST /v1/organizations", a.CreateOrganization)
	a.mux.HandleFunc("GET /v1/organizations", a.ListOrganizations)
	a.mux.HandleFunc("GET /v1/organizations/{id}", a.GetOrganization)
	a.mux.HandleFunc("PUT /v1/organizations/{id}", a.UpdateOrganization)
	a.mux.HandleFunc("DELETE /v1/organizations/{id}", a.DeleteOrganization)
	a.mux.HandleFunc("GET /v1/organizations/{id}/members", a.ListOrganizationMembers)
	a.mux.HandleFunc("POST /v1/organizations/{id}/members", a.AddOrganizationMember)
	a.mux.HandleFunc("DELETE /v1/organizations/{id}/members", a.RemoveOrganizationMember)

	a.mux.HandleFunc("POST /v1/languages", a.CreateLanguage)
	a.mux.HandleFunc("GET /v1/languages", a.ListLanguages)
	a.mux.HandleFunc("GET /v1/languages/{id}", a.GetLanguage)
	a.mux.HandleFunc("PUT /v1/languages/{id}", a.UpdateLanguage)
	a.mux.HandleFunc("DELETE /v1/languages/{id}", a.DeleteLanguage)

	a.mux.HandleFunc("POST /v1/users", a.CreateUser)
	a.mux.HandleFunc("GET /v1/users", a.ListUsers)
	a.mux.HandleFunc("GET /v1/users/{id}", a.GetUser)
	a.mux.HandleFunc("PUT /v1/users/{id}", a.UpdateUser)
	a.mux.HandleFunc("DELETE /v1/users/{id}", a.DeleteUser)

	a.mux.HandleFunc("GET /v1/tuples", a.ListTuples)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler chain.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = obs.Instrument(h)
	h = RateLimit(h, 50, 100)
	h = withTrace(h)
	h = Logging(h)
	h = SecurityHeaders(h)
	return h
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "tasknest-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
