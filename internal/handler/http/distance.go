package http

import (
	"encoding/json"
	"net/http"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/distance"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/middleware"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/response"
)

type DistanceHandler interface {
	Check(w http.ResponseWriter, r *http.Request)
	ActiveAlert(w http.ResponseWriter, r *http.Request)
	ClearAlert(w http.ResponseWriter, r *http.Request)
}

type distanceHandlerImpl struct {
	distanceService distance.Service
}

func NewDistanceHandler(distanceService distance.Service) DistanceHandler {
	return &distanceHandlerImpl{
		distanceService: distanceService,
	}
}

// Check implements DistanceHandler.
func (h *distanceHandlerImpl) Check(w http.ResponseWriter, r *http.Request) {
	var req distance.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmpCode = middleware.EmpCode(r)

	result, err := h.distanceService.Check(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ActiveAlert implements DistanceHandler.
func (h *distanceHandlerImpl) ActiveAlert(w http.ResponseWriter, r *http.Request) {
	result, err := h.distanceService.ActiveAlert(r.Context(), middleware.EmpCode(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ClearAlert implements DistanceHandler.
func (h *distanceHandlerImpl) ClearAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.distanceService.ClearAlert(r.Context(), middleware.EmpCode(r)); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Distance alert cleared", nil)
}
