package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasknest.org/internal/acl"
	"tasknest.org/internal/httpapi"
	"tasknest.org/internal/obs"
	"tasknest.org/internal/service"
	"tasknest.org/internal/store/pg"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	dsn := os.Getenv("TASKNEST_PG_DSN")
	if dsn == "" {
		log.Fatal("TASKNEST_PG_DSN is required")
	}
	engineURL := os.Getenv("TASKNEST_ACL_URL")
	if engineURL == "" {
		log.Fatal("TASKNEST_ACL_URL is required")
	}
	storeID := os.Getenv("TASKNEST_ACL_STORE_ID")
	if storeID == "" {
		log.Fatal("TASKNEST_ACL_STORE_ID is required")
	}
	addr := os.Getenv("TASKNEST_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	client, err := acl.NewClient(engineURL, storeID, acl.WithRateLimit(200, 400))
	if err != nil {
		log.Fatalf("acl client: %v", err)
	}

	model := acl.DefaultModel()
	if path := os.Getenv("TASKNEST_ACL_MODEL"); path != "" {
		model, err = acl.LoadModel(path)
		if err != nil {
			log.Fatalf("load authorization model: %v", err)
		}
	}
	authz, err := acl.NewService(client, model)
	if err != nil {
		log.Fatalf("acl service: %v", err)
	}

	svc := httpapi.Services{
		Tasks:         service.NewTasks(store, authz),
		Teams:         service.NewTeams(store, authz),
		Organizations: service.NewOrganizations(store, authz),
		Languages:     service.NewLanguages(store, authz),
		Users:         service.NewUsers(store, authz),
		Tuples:        service.NewTupleAudit(store, storeID),
	}

	api := httpapi.New(svc, httpapi.ReadyProbe{DB: store.DB()}, version)

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting tasknest-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
