package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/exception"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/middleware"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/response"
)

type ExceptionHandler interface {
	CreateLateArrival(w http.ResponseWriter, r *http.Request)
	CreateEarlyLeave(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	My(w http.ResponseWriter, r *http.Request)
	Team(w http.ResponseWriter, r *http.Request)
}

type exceptionHandlerImpl struct {
	exceptionService exception.Service
}

func NewExceptionHandler(exceptionService exception.Service) ExceptionHandler {
	return &exceptionHandlerImpl{
		exceptionService: exceptionService,
	}
}

// CreateLateArrival implements ExceptionHandler.
func (h *exceptionHandlerImpl) CreateLateArrival(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, exception.TypeLateArrival)
}

// CreateEarlyLeave implements ExceptionHandler.
func (h *exceptionHandlerImpl) CreateEarlyLeave(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, exception.TypeEarlyLeave)
}

func (h *exceptionHandlerImpl) create(w http.ResponseWriter, r *http.Request, exceptionType exception.Type) {
	var req exception.CreateExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmpCode = middleware.EmpCode(r)
	req.Type = string(exceptionType)

	result, err := h.exceptionService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Exception filed", result)
}

// Review implements ExceptionHandler.
func (h *exceptionHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	exceptionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid exception id", nil)
		return
	}

	var req exception.ReviewExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = exceptionID
	req.ReviewerID = middleware.EmpCode(r)

	result, err := h.exceptionService.Review(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Exception reviewed", result)
}

// My implements ExceptionHandler.
func (h *exceptionHandlerImpl) My(w http.ResponseWriter, r *http.Request) {
	result, err := h.exceptionService.MyExceptions(r.Context(), middleware.EmpCode(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Team implements ExceptionHandler.
func (h *exceptionHandlerImpl) Team(w http.ResponseWriter, r *http.Request) {
	result, err := h.exceptionService.TeamExceptions(r.Context(), middleware.EmpCode(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
