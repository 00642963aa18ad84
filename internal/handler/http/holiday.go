package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/holiday"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/response"
)

type HolidayHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
}

// The holiday calendar is maintenance-grade CRUD; the handler talks to
// the repository directly.
type holidayHandlerImpl struct {
	holidays holiday.HolidayRepository
}

func NewHolidayHandler(holidays holiday.HolidayRepository) HolidayHandler {
	return &holidayHandlerImpl{
		holidays: holidays,
	}
}

type holidayResponse struct {
	ID   int    `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// List implements HolidayHandler.
func (h *holidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "year must be a number", nil)
			return
		}
		year = parsed
	}

	holidays, err := h.holidays.ListByYear(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]holidayResponse, 0, len(holidays))
	for _, hd := range holidays {
		result = append(result, holidayResponse{
			ID:   hd.ID,
			Date: hd.Date.Format("2006-01-02"),
			Name: hd.Name,
		})
	}
	response.Success(w, result)
}

// Create implements HolidayHandler.
func (h *holidayHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(w, "date must be in YYYY-MM-DD format", nil)
		return
	}
	if req.Name == "" {
		response.BadRequest(w, "name is required", nil)
		return
	}

	created, err := h.holidays.Create(r.Context(), holiday.Holiday{
		Date: date,
		Name: req.Name,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday added", holidayResponse{
		ID:   created.ID,
		Date: created.Date.Format("2006-01-02"),
		Name: created.Name,
	})
}
