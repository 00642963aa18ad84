package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/overtime"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/middleware"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/response"
)

type OvertimeHandler interface {
	Records(w http.ResponseWriter, r *http.Request)
	RequestCompOff(w http.ResponseWriter, r *http.Request)
	ReviewCompOff(w http.ResponseWriter, r *http.Request)
	CancelCompOff(w http.ResponseWriter, r *http.Request)
	MyCompOffRequests(w http.ResponseWriter, r *http.Request)
	TeamCompOffRequests(w http.ResponseWriter, r *http.Request)
}

type overtimeHandlerImpl struct {
	overtimeService overtime.Service
}

func NewOvertimeHandler(overtimeService overtime.Service) OvertimeHandler {
	return &overtimeHandlerImpl{
		overtimeService: overtimeService,
	}
}

// Records implements OvertimeHandler.
func (h *overtimeHandlerImpl) Records(w http.ResponseWriter, r *http.Request) {
	result, err := h.overtimeService.Records(r.Context(), middleware.EmpCode(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// RequestCompOff implements OvertimeHandler.
func (h *overtimeHandlerImpl) RequestCompOff(w http.ResponseWriter, r *http.Request) {
	var req overtime.RequestCompOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmpCode = middleware.EmpCode(r)

	result, err := h.overtimeService.RequestCompOff(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Comp-off request submitted", result)
}

// ReviewCompOff implements OvertimeHandler.
func (h *overtimeHandlerImpl) ReviewCompOff(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid request id", nil)
		return
	}

	var req overtime.ReviewCompOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = requestID
	req.ReviewerID = middleware.EmpCode(r)

	result, err := h.overtimeService.ReviewCompOff(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Comp-off request reviewed", result)
}

// CancelCompOff implements OvertimeHandler.
func (h *overtimeHandlerImpl) CancelCompOff(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid request id", nil)
		return
	}

	result, err := h.overtimeService.CancelCompOff(r.Context(), middleware.EmpCode(r), requestID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Comp-off request cancelled", result)
}

// MyCompOffRequests implements OvertimeHandler.
func (h *overtimeHandlerImpl) MyCompOffRequests(w http.ResponseWriter, r *http.Request) {
	result, err := h.overtimeService.MyCompOffRequests(r.Context(), middleware.EmpCode(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// TeamCompOffRequests implements OvertimeHandler.
func (h *overtimeHandlerImpl) TeamCompOffRequests(w http.ResponseWriter, r *http.Request) {
	result, err := h.overtimeService.TeamCompOffRequests(r.Context(), middleware.EmpCode(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
