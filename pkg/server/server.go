// Package server exposes course search and hole documents over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/1F47E/golf-hole-mapper/pkg/geo"
	"github.com/1F47E/golf-hole-mapper/pkg/geometry"
	"github.com/1F47E/golf-hole-mapper/pkg/index"
	"github.com/1F47E/golf-hole-mapper/pkg/metrics"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/1F47E/golf-hole-mapper/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Searcher finds courses by name.
type Searcher interface {
	SearchCourses(ctx context.Context, query string) ([]models.Course, error)
}

// Deps are the server's collaborators. Search and Index are optional.
type Deps struct {
	Search  Searcher
	Gateway *store.Gateway
	Index   *index.HoleIndex
	Log     *slog.Logger
}

type Server struct {
	search  Searcher
	gateway *store.Gateway
	index   *index.HoleIndex
	log     *slog.Logger
}

func New(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{search: deps.Search, gateway: deps.Gateway, index: deps.Index, log: log}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Get("/courses/search", s.searchCourses)
	r.Route("/courses/{courseName}/{courseID}/holes", func(r chi.Router) {
		r.Get("/", s.listHoles)
		r.Get("/{hole}", s.getHole)
		r.Put("/{hole}", s.putHole)
		r.Get("/{hole}/geojson", s.getHoleGeoJSON)
	})

	r.Get("/pins", s.pinsInRegion)
	r.Get("/pins/nearest", s.nearestPins)
	return r
}

func (s *Server) searchCourses(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		http.Error(w, "Course search is not configured", http.StatusServiceUnavailable)
		return
	}
	courses, err := s.search.SearchCourses(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		http.Error(w, "Course search failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, models.SearchResponse{Courses: courses})
}

func (s *Server) listHoles(w http.ResponseWriter, r *http.Request) {
	course, ok := courseFromPath(w, r)
	if !ok {
		return
	}
	docs, err := s.gateway.List(r.Context(), course)
	if err != nil {
		s.log.Warn("hole_list_failed", "course", course.DocID(), "err", err)
		http.Error(w, "Failed to list holes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) getHole(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromPath(w, r)
	if !ok {
		return
	}
	doc := s.gateway.Load(r.Context(), key)
	if doc == nil {
		http.Error(w, "Hole not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) getHoleGeoJSON(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromPath(w, r)
	if !ok {
		return
	}
	doc := s.gateway.Load(r.Context(), key)
	if doc == nil {
		http.Error(w, "Hole not found", http.StatusNotFound)
		return
	}
	data, err := geo.HoleFeatureCollection(doc).MarshalJSON()
	if err != nil {
		http.Error(w, "Failed to encode GeoJSON", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// putHole replays the submitted geometry through an accumulator so stored documents obey
// the same rules as interactive exports, then overwrites the stored hole.
func (s *Server) putHole(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromPath(w, r)
	if !ok {
		return
	}
	var in models.HoleDocument
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	doc, err := replay(&in, key)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err := s.gateway.Save(r.Context(), key, doc); err != nil {
		if errors.Is(err, models.ErrValidation) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		http.Error(w, "Failed to save hole data", http.StatusInternalServerError)
		return
	}
	if s.index != nil {
		s.index.IndexDocuments(key.Course.DocID(), []*models.HoleDocument{doc})
	}
	writeJSON(w, http.StatusOK, doc)
}

func replay(in *models.HoleDocument, key store.Key) (*models.HoleDocument, error) {
	acc := geometry.NewAccumulator()
	if in.Tee != nil {
		if err := acc.ApplyTap(*in.Tee, models.ModeTee); err != nil {
			return nil, err
		}
	}
	if in.Green != nil {
		if err := acc.ApplyTap(*in.Green, models.ModeGreen); err != nil {
			return nil, err
		}
	}
	for _, p := range in.Fairway {
		if err := acc.ApplyTap(p, models.ModeFairway); err != nil {
			return nil, err
		}
	}
	acc.SetMode(models.ModeHazard)
	for _, h := range in.Hazards {
		for _, p := range h.Points {
			if err := acc.Tap(p); err != nil {
				return nil, err
			}
		}
		if err := acc.FinishHazard(); err != nil {
			return nil, err
		}
	}
	return acc.ToDocument(key.HoleNumber, key.Course.Name)
}

func (s *Server) pinsInRegion(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		http.Error(w, "Pin index is not configured", http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(q.Get("lng"), 64)
	if err := errors.Join(err1, err2); err != nil {
		http.Error(w, "lat and lng are required", http.StatusBadRequest)
		return
	}
	region := geo.RegionAround(models.Coordinate{Latitude: lat, Longitude: lng}, geo.FairwaySpan)
	if v := q.Get("latDelta"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil {
			region.LatitudeDelta = d
		}
	}
	if v := q.Get("lngDelta"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil {
			region.LongitudeDelta = d
		}
	}
	writeJSON(w, http.StatusOK, s.index.QueryRegion(region))
}

func (s *Server) nearestPins(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		http.Error(w, "Pin index is not configured", http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(q.Get("lng"), 64)
	if err := errors.Join(err1, err2); err != nil {
		http.Error(w, "lat and lng are required", http.StatusBadRequest)
		return
	}
	n := 5
	if v := q.Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 100 {
			http.Error(w, "n must be between 1 and 100", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, s.index.Nearest(models.Coordinate{Latitude: lat, Longitude: lng}, n))
}

func courseFromPath(w http.ResponseWriter, r *http.Request) (store.CourseKey, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "courseID"))
	if err != nil {
		http.Error(w, "Invalid course id", http.StatusBadRequest)
		return store.CourseKey{}, false
	}
	return store.CourseKey{Name: chi.URLParam(r, "courseName"), ID: id}, true
}

func keyFromPath(w http.ResponseWriter, r *http.Request) (store.Key, bool) {
	course, ok := courseFromPath(w, r)
	if !ok {
		return store.Key{}, false
	}
	hole, err := strconv.Atoi(chi.URLParam(r, "hole"))
	if err != nil {
		http.Error(w, "Invalid hole number", http.StatusBadRequest)
		return store.Key{}, false
	}
	key := store.Key{Course: course, HoleNumber: hole}
	if err := key.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return store.Key{}, false
	}
	return key, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
