package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"mergeq/internal/catalog"
	"mergeq/internal/domain"
	"mergeq/internal/publish"
	"mergeq/internal/queue"
)

// Submitter enqueues jobs. The durable queue satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req queue.SubmitRequest) (string, error)
}

// StatusReader answers status queries. The status resolver satisfies it.
type StatusReader interface {
	GetStatus(ctx context.Context, id string) (domain.JobStatus, error)
}

// App bundles the handler dependencies.
type App struct {
	Queue   Submitter
	Status  StatusReader
	Catalog catalog.Client
	Local   *publish.LocalPublisher
	Logger  zerolog.Logger
}

func NewApp(q Submitter, st StatusReader, cat catalog.Client, local *publish.LocalPublisher, logger zerolog.Logger) *App {
	return &App{Queue: q, Status: st, Catalog: cat, Local: local, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) fail(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"status": false, "message": message})
}
