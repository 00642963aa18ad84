package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/middleware"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/jwt"
)

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Activity   ActivityHandler
	FieldVisit FieldVisitHandler
	Distance   DistanceHandler
	Exception  ExceptionHandler
	Overtime   OvertimeHandler
	Leave      LeaveHandler
	Holiday    HolidayHandler
}

func NewRouter(jwtService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/request-otp", h.Auth.RequestOTP)
			r.Post("/verify-otp", h.Auth.VerifyOTP)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", h.Attendance.ClockIn)
				r.Post("/clock-out", h.Attendance.ClockOut)
				r.Get("/status", h.Attendance.Status)
				r.Get("/history", h.Attendance.History)
			})

			r.Route("/activities", func(r chi.Router) {
				r.Post("/", h.Activity.Start)
				r.Get("/", h.Activity.ListToday)
				r.Post("/{id}/end", h.Activity.End)
				r.Post("/{id}/destinations/visited", h.Activity.MarkDestinationVisited)
			})

			r.Route("/field-visits", func(r chi.Router) {
				r.Post("/track", h.FieldVisit.Track)
				r.Get("/", h.FieldVisit.History)
				r.Get("/summary", h.FieldVisit.DaySummary)
				r.Get("/{id}/route", h.FieldVisit.Route)
			})

			r.Route("/distance", func(r chi.Router) {
				r.Post("/check", h.Distance.Check)
				r.Get("/alert", h.Distance.ActiveAlert)
				r.Post("/alert/clear", h.Distance.ClearAlert)
			})

			r.Route("/exceptions", func(r chi.Router) {
				r.Post("/late-arrival", h.Exception.CreateLateArrival)
				r.Post("/early-leave", h.Exception.CreateEarlyLeave)
				r.Get("/my", h.Exception.My)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/team", h.Exception.Team)
					r.Post("/{id}/review", h.Exception.Review)
				})
			})

			r.Route("/overtime", func(r chi.Router) {
				r.Get("/records", h.Overtime.Records)
				r.Route("/comp-off", func(r chi.Router) {
					r.Post("/", h.Overtime.RequestCompOff)
					r.Get("/my", h.Overtime.MyCompOffRequests)
					r.Post("/{id}/cancel", h.Overtime.CancelCompOff)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Get("/team", h.Overtime.TeamCompOffRequests)
						r.Post("/{id}/review", h.Overtime.ReviewCompOff)
					})
				})
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", h.Leave.Apply)
				r.Get("/my", h.Leave.My)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/team", h.Leave.Team)
					r.Post("/{id}/review", h.Leave.Review)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.Holiday.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", h.Holiday.Create)
				})
			})
		})
	})
	return r
}
