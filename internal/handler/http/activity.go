package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/activity"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/middleware"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/response"
)

type ActivityHandler interface {
	Start(w http.ResponseWriter, r *http.Request)
	End(w http.ResponseWriter, r *http.Request)
	MarkDestinationVisited(w http.ResponseWriter, r *http.Request)
	ListToday(w http.ResponseWriter, r *http.Request)
}

type activityHandlerImpl struct {
	activityService activity.Service
}

func NewActivityHandler(activityService activity.Service) ActivityHandler {
	return &activityHandlerImpl{
		activityService: activityService,
	}
}

// Start implements ActivityHandler.
func (h *activityHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	var req activity.StartActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmpCode = middleware.EmpCode(r)

	result, err := h.activityService.Start(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Activity started", result)
}

// End implements ActivityHandler.
func (h *activityHandlerImpl) End(w http.ResponseWriter, r *http.Request) {
	activityID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid activity id", nil)
		return
	}

	result, err := h.activityService.End(r.Context(), activity.EndActivityRequest{
		EmpCode:    middleware.EmpCode(r),
		ActivityID: activityID,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Activity ended", result)
}

// MarkDestinationVisited implements ActivityHandler.
func (h *activityHandlerImpl) MarkDestinationVisited(w http.ResponseWriter, r *http.Request) {
	activityID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid activity id", nil)
		return
	}

	var req activity.MarkDestinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmpCode = middleware.EmpCode(r)
	req.ActivityID = activityID

	result, err := h.activityService.MarkDestinationVisited(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Destination marked visited", result)
}

// ListToday implements ActivityHandler.
func (h *activityHandlerImpl) ListToday(w http.ResponseWriter, r *http.Request) {
	result, err := h.activityService.ListToday(r.Context(), middleware.EmpCode(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
