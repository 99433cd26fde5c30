package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/homebound/internal/geo"
	"github.com/UnknownOlympus/homebound/internal/models"
	"github.com/UnknownOlympus/homebound/internal/report"
	"github.com/getsentry/sentry-go"
)

// User-facing alert texts.
const (
	msgMissingEndpoints = "Set both the origin and the destination"
	msgNoRoute          = "No available route"
	msgCheckPermission  = "Check location permission"
	msgNoPosition       = "Current position is unavailable"
	msgSearchFailed     = "Place search is unavailable"
	msgHomeFailed       = "Failed to access the saved home"
	msgNoHome           = "No home saved"
	msgInternal         = "Internal server error"
)

// tripResponse is a comparison with an optional alert for the user.
type tripResponse struct {
	models.TripComparison
	Message string `json:"message,omitempty"`
}

// placeFromQuery reads a place from the prefixed X, Y and Name parameters.
// It reports false when neither coordinate is present.
func placeFromQuery(r *http.Request, prefix string) (models.Place, bool) {
	query := r.URL.Query()
	place := models.Place{
		Name: query.Get(prefix + "Name"),
		Coordinate: models.Coordinate{
			Longitude: query.Get(prefix + "X"),
			Latitude:  query.Get(prefix + "Y"),
		},
	}

	return place, place.Longitude != "" || place.Latitude != ""
}

func (s *Server) tripHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	origin, ok := placeFromQuery(r, "origin")
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, msgMissingEndpoints)
		return
	}

	destination, ok := placeFromQuery(r, "destination")
	if !ok {
		home, err := s.trips.LoadHome(ctx)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to load home for trip", "error", err)
			s.writeError(w, r, http.StatusInternalServerError, msgHomeFailed)
			return
		}
		if home == nil {
			s.writeError(w, r, http.StatusBadRequest, msgMissingEndpoints)
			return
		}
		destination = *home
	}

	comparison, err := s.trips.Compare(ctx, origin, destination)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidInput) {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s.log.ErrorContext(ctx, "Trip comparison failed", "error", err)
		report.ReportError(err)
		s.writeError(w, r, http.StatusInternalServerError, msgInternal)
		return
	}

	resp := tripResponse{TripComparison: comparison}
	if len(comparison.Legs) == 0 {
		resp.Message = msgNoRoute
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) locationHandler(w http.ResponseWriter, r *http.Request) {
	place, err := s.trips.CurrentPlace(r.Context(), requestLocator{r: r})
	switch {
	case err == nil:
		s.writeJSON(w, r, http.StatusOK, place)
	case errors.Is(err, models.ErrPermissionDenied):
		s.writeError(w, r, http.StatusForbidden, msgCheckPermission)
	case errors.Is(err, models.ErrPositionUnavailable):
		s.writeError(w, r, http.StatusUnprocessableEntity, msgNoPosition)
	default:
		s.log.ErrorContext(r.Context(), "Failed to resolve current place", "error", err)
		report.ReportError(err)
		s.writeError(w, r, http.StatusInternalServerError, msgInternal)
	}
}

func (s *Server) placesHandler(w http.ResponseWriter, r *http.Request) {
	places, err := s.trips.SearchPlaces(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		s.writeError(w, r, http.StatusBadGateway, msgSearchFailed)
		return
	}
	s.writeJSON(w, r, http.StatusOK, places)
}

func (s *Server) loadHomeHandler(w http.ResponseWriter, r *http.Request) {
	home, err := s.trips.LoadHome(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to load home", "error", err)
		s.writeError(w, r, http.StatusInternalServerError, msgHomeFailed)
		return
	}
	if home == nil {
		s.writeError(w, r, http.StatusNotFound, msgNoHome)
		return
	}
	s.writeJSON(w, r, http.StatusOK, home)
}

func (s *Server) saveHomeHandler(w http.ResponseWriter, r *http.Request) {
	var place models.Place
	if err := json.NewDecoder(r.Body).Decode(&place); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&place); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.trips.SaveHome(r.Context(), place); err != nil {
		if errors.Is(err, geo.ErrInvalidInput) {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s.log.ErrorContext(r.Context(), "Failed to save home", "error", err)
		report.ReportError(err, sentry.LevelWarning)
		s.writeError(w, r, http.StatusInternalServerError, msgHomeFailed)
		return
	}

	s.log.InfoContext(r.Context(), "Home saved", "name", place.Name)
	s.writeJSON(w, r, http.StatusOK, place)
}

// healthHandler reports whether the home store answers.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	if err := s.health.Ping(ctx); err != nil {
		s.log.WarnContext(ctx, "Store ping failed", "error", err)
		status, body = http.StatusServiceUnavailable, "Store ping failed"
	}
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}

	s.log.DebugContext(ctx, "Health checks completed", "status", status)
}
