package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appissues "github.com/bryanwahyu/artscan/internal/application/issues"
	appmuseums "github.com/bryanwahyu/artscan/internal/application/museums"
	appscans "github.com/bryanwahyu/artscan/internal/application/scans"
	"github.com/bryanwahyu/artscan/internal/domain/artworks"
	domissues "github.com/bryanwahyu/artscan/internal/domain/issues"
	dommuseums "github.com/bryanwahyu/artscan/internal/domain/museums"
	"github.com/bryanwahyu/artscan/internal/domain/vision"
	"github.com/bryanwahyu/artscan/internal/middleware"
)

type Router struct {
	scansSvc   *appscans.Service
	issuesSvc  *appissues.Service
	museumsSvc *appmuseums.Service
	log        zerolog.Logger
}

type Options struct {
	AdminKey     string
	ScanRPM      int // scans allowed per user-minute, 0 = default
	HealthChecks map[string]middleware.HealthChecker
}

func NewRouter(scansSvc *appscans.Service, issuesSvc *appissues.Service, museumsSvc *appmuseums.Service, log zerolog.Logger, opts Options) http.Handler {
	r := &Router{scansSvc: scansSvc, issuesSvc: issuesSvc, museumsSvc: museumsSvc, log: log}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.Logging(log))
	mux.Use(middleware.Metrics)

	mux.Get("/health", middleware.HealthHandler(opts.HealthChecks))
	mux.Get("/live", middleware.LivenessHandler)
	mux.Handle("/metrics", promhttp.Handler())

	rpm := opts.ScanRPM
	if rpm <= 0 {
		rpm = 30
	}

	mux.Route("/v1", func(rt chi.Router) {
		rt.With(httprate.LimitByIP(rpm, time.Minute)).
			Post("/scan", r.wrap(r.handleScan))
		rt.Get("/artworks/{id}", r.wrap(r.handleArtwork))
		rt.Post("/artworks/{id}/issues", r.wrap(r.handleReportIssue))

		rt.Route("/admin", func(ad chi.Router) {
			ad.Use(middleware.AdminAuth(opts.AdminKey))
			ad.Get("/issues", r.wrap(r.handleOpenIssues))
			ad.Post("/issues/{id}/resolve", r.wrap(r.handleResolveIssue))
			ad.Get("/scans/latest", r.wrap(r.handleLatest))
			ad.Get("/summary", r.wrap(r.handleSummary))
			ad.Get("/museums", r.wrap(r.handleListMuseums))
			ad.Post("/museums", r.wrap(r.handleSaveMuseum))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks caller mistakes so wrap can map them to 400.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, artworks.ErrNotFound),
			errors.Is(err, domissues.ErrNotFound),
			errors.Is(err, dommuseums.ErrNotFound),
			errors.Is(err, sql.ErrNoRows):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, vision.ErrInvalidImage), errors.Is(err, domissues.ErrInvalidAction):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, vision.ErrQuotaExceeded):
			http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
		case errors.Is(err, vision.ErrEmbeddingUnavailable), errors.Is(err, vision.ErrAnalysisUnavailable):
			w.Header().Set("Retry-After", "10")
			http.Error(w, "upstream model unavailable, retry later", http.StatusBadGateway)
		case errors.Is(err, domissues.ErrAlreadyResolved):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			var br badRequestError
			if errors.As(err, &br) {
				http.Error(w, br.msg, http.StatusBadRequest)
				return
			}
			r.log.Error().Err(err).Str("path", req.URL.Path).Msg("handler error")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

// POST /v1/scan
// multipart/form-data: image (file), lat, lon, user_id
func (r *Router) handleScan(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(appscans.MaxImageBytes); err != nil {
		return badRequest("parsing multipart form: %v", err)
	}
	f, _, err := req.FormFile("image")
	if err != nil {
		return badRequest("image file is required")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, appscans.MaxImageBytes+1))
	if err != nil {
		return err
	}

	lat, err := strconv.ParseFloat(req.FormValue("lat"), 64)
	if err != nil {
		return badRequest("lat is required and must be a number")
	}
	lon, err := strconv.ParseFloat(req.FormValue("lon"), 64)
	if err != nil {
		return badRequest("lon is required and must be a number")
	}
	if err := middleware.ValidateCoordinates(lat, lon); err != nil {
		return badRequest("%v", err)
	}
	userID := middleware.SanitizeString(req.FormValue("user_id"))
	if err := middleware.ValidateUserID(userID); err != nil {
		return badRequest("%v", err)
	}

	res, err := r.scansSvc.Submit(req.Context(), appscans.SubmitCommand{
		Image:  data,
		Lat:    lat,
		Lon:    lon,
		UserID: userID,
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

// GET /v1/artworks/{id}
func (r *Router) handleArtwork(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	a, err := r.scansSvc.Artwork(req.Context(), artworks.ArtworkID(id))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// POST /v1/artworks/{id}/issues
// Body: {"user_id": "...", "kind": "wrong_title|wrong_artist|not_artwork", "note": "..."}
func (r *Router) handleReportIssue(w http.ResponseWriter, req *http.Request) error {
	artworkID := chi.URLParam(req, "id")
	var body struct {
		UserID string `json:"user_id"`
		Kind   string `json:"kind"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	userID := middleware.SanitizeString(body.UserID)
	if err := middleware.ValidateUserID(userID); err != nil {
		return badRequest("%v", err)
	}
	if !domissues.ValidKind(domissues.Kind(body.Kind)) {
		return badRequest("invalid issue kind: %s", body.Kind)
	}

	rep, err := r.issuesSvc.Report(req.Context(),
		artworks.ArtworkID(artworkID), userID,
		domissues.Kind(body.Kind), middleware.SanitizeString(body.Note))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(rep)
}

// GET /v1/admin/issues?limit=20
func (r *Router) handleOpenIssues(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.issuesSvc.Open(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// POST /v1/admin/issues/{id}/resolve
func (r *Router) handleResolveIssue(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	var out appissues.Outcome
	if err := json.NewDecoder(req.Body).Decode(&out); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	if err := r.issuesSvc.Resolve(req.Context(), id, out); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]string{"status": "resolved", "id": id})
}

// GET /v1/admin/scans/latest?user_id=&limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	userID := middleware.SanitizeString(req.URL.Query().Get("user_id"))

	list, err := r.scansSvc.Latest(req.Context(), userID, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/admin/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	summary, err := r.scansSvc.Summary(req.Context(), middleware.ValidateDays(days))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// GET /v1/admin/museums
func (r *Router) handleListMuseums(w http.ResponseWriter, req *http.Request) error {
	list, err := r.museumsSvc.List(req.Context())
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// POST /v1/admin/museums
func (r *Router) handleSaveMuseum(w http.ResponseWriter, req *http.Request) error {
	var m dommuseums.Museum
	if err := json.NewDecoder(req.Body).Decode(&m); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	saved, err := r.museumsSvc.Save(req.Context(), &m)
	if err != nil {
		return badRequest("%v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(saved)
}
