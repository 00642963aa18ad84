package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/fieldvisit"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/middleware"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/response"
)

type FieldVisitHandler interface {
	Track(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Route(w http.ResponseWriter, r *http.Request)
	DaySummary(w http.ResponseWriter, r *http.Request)
}

type fieldVisitHandlerImpl struct {
	fieldVisitService fieldvisit.Service
}

func NewFieldVisitHandler(fieldVisitService fieldvisit.Service) FieldVisitHandler {
	return &fieldVisitHandlerImpl{
		fieldVisitService: fieldVisitService,
	}
}

// Track implements FieldVisitHandler.
func (h *fieldVisitHandlerImpl) Track(w http.ResponseWriter, r *http.Request) {
	var req fieldvisit.TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmpCode = middleware.EmpCode(r)

	result, err := h.fieldVisitService.Track(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// History implements FieldVisitHandler.
func (h *fieldVisitHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	result, err := h.fieldVisitService.History(r.Context(), middleware.EmpCode(r), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Route implements FieldVisitHandler.
func (h *fieldVisitHandlerImpl) Route(w http.ResponseWriter, r *http.Request) {
	visitID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid visit id", nil)
		return
	}

	result, err := h.fieldVisitService.Route(r.Context(), middleware.EmpCode(r), visitID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DaySummary implements FieldVisitHandler.
func (h *fieldVisitHandlerImpl) DaySummary(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	result, err := h.fieldVisitService.DaySummary(r.Context(), middleware.EmpCode(r), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// dateParam reads the optional ?date=YYYY-MM-DD query, defaulting to
// today.
func dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		return time.Now(), true
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		response.BadRequest(w, "date must be in YYYY-MM-DD format", nil)
		return time.Time{}, false
	}
	return date, true
}
