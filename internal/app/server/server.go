// Package server runs the HTTP API: job submission and tracking,
// paper and locale catalogues, health and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/maposmatic/ocitysmap-go/internal/config"
	"github.com/maposmatic/ocitysmap-go/internal/health"
	"github.com/maposmatic/ocitysmap-go/internal/i18n"
	"github.com/maposmatic/ocitysmap-go/internal/jobs"
	"github.com/maposmatic/ocitysmap-go/internal/metrics"
	mw "github.com/maposmatic/ocitysmap-go/internal/middleware"
	"github.com/maposmatic/ocitysmap-go/internal/paper"
	"github.com/maposmatic/ocitysmap-go/internal/router"
)

// Submitter hands an accepted job to the render workers.
type Submitter interface {
	Submit(jobs.Job) error
}

type api struct {
	cfg      *config.Config
	logger   zerolog.Logger
	store    *jobs.Store
	producer Submitter
	metrics  *metrics.Provider
}

// Run serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger zerolog.Logger, store *jobs.Store, producer Submitter, prov *metrics.Provider) error {
	a := &api{cfg: cfg, logger: logger, store: store, producer: producer, metrics: prov}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http listen")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *api) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(mw.Recover(a.logger))
	r.Use(mw.Logging(a.logger))
	r.Use(mw.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(map[string]health.Check{
		"redis": a.store.Ping,
	}))
	if a.cfg.Metrics.Enabled && a.metrics != nil {
		r.Handle(a.cfg.Metrics.Path, a.metrics.Handler())
	}

	r.Get("/papers", a.handlePapers)
	r.Get("/layouts", a.handleLayouts)
	r.Get("/locales", a.handleLocales)
	r.Post("/jobs", a.handleSubmit)
	r.Get("/jobs", a.handleRecent)
	r.Get("/jobs/{id}", a.handleGet)
	r.Get("/jobs/{id}/download", a.handleDownload)
	return r
}

func (a *api) defaults() router.Defaults {
	return router.Defaults{
		Paper:  a.cfg.Render.DefaultPaper,
		Locale: a.cfg.Render.DefaultLocale,
		Scale:  a.cfg.Render.DefaultScale,
	}
}

func (a *api) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, warn, err := router.ParseJobRequest(r, a.defaults())
	if warn != "" {
		a.logger.Warn().Msg(warn)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := jobs.New(req)

	// identical orders share a fingerprint, so a finished render can
	// be handed back without re-queueing
	if existing, err := a.store.Get(r.Context(), job.ID); err == nil {
		if existing.Status == jobs.StatusDone || existing.Status == jobs.StatusRendering {
			writeJSON(w, http.StatusOK, existing)
			return
		}
	}

	if err := a.store.Put(r.Context(), job); err != nil {
		a.logger.Error().Err(err).Msg("store job")
		http.Error(w, "could not store job", http.StatusInternalServerError)
		return
	}
	if err := a.producer.Submit(job); err != nil {
		a.logger.Error().Err(err).Str("job_id", job.ID).Msg("queue job")
		http.Error(w, "could not queue job", http.StatusInternalServerError)
		return
	}
	if a.metrics != nil {
		a.metrics.JobsSubmitted.Inc()
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (a *api) handleGet(w http.ResponseWriter, r *http.Request) {
	job, err := a.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, jobs.ErrJobNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "could not load job", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (a *api) handleRecent(w http.ResponseWriter, r *http.Request) {
	ids, err := a.store.Recent(r.Context(), 50)
	if err != nil {
		http.Error(w, "could not list jobs", http.StatusInternalServerError)
		return
	}
	out := make([]jobs.Job, 0, len(ids))
	for _, id := range ids {
		job, err := a.store.Get(r.Context(), id)
		if err != nil {
			continue // expired between the index lookup and here
		}
		out = append(out, job)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) handleDownload(w http.ResponseWriter, r *http.Request) {
	job, err := a.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, jobs.ErrJobNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "could not load job", http.StatusInternalServerError)
		return
	}
	if job.Status != jobs.StatusDone || job.OutputPath == "" {
		http.Error(w, "job is not finished", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+job.ID+`.pdf"`)
	http.ServeFile(w, r, job.OutputPath)
}

func (a *api) handlePapers(w http.ResponseWriter, r *http.Request) {
	bbox, pos, err := router.ParsePapersQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if bbox == nil {
		writeJSON(w, http.StatusOK, paper.Sizes)
		return
	}
	writeJSON(w, http.StatusOK, paper.CompatibleSizes(*bbox, paper.DefaultKmInMM, pos))
}

// Layout describes one way of arranging map and index on paper.
type Layout struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Multipage     bool                `json:"multipage"`
	IndexPosition paper.IndexPosition `json:"index_position"`
}

var layouts = []Layout{
	{Name: "plain", Description: "full-page map without an index"},
	{Name: "single_page_index_side", Description: "map with the street index on the side", IndexPosition: paper.IndexSide},
	{Name: "single_page_index_bottom", Description: "map with the street index at the bottom", IndexPosition: paper.IndexBottom},
	{Name: "multi_page", Description: "multi-page booklet with overview and index pages", Multipage: true},
}

func (a *api) handleLayouts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, layouts)
}

func (a *api) handleLocales(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, i18n.Supported())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
