package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
	appHTTP "github.com/fieldforce-hq/attendance-backend-go/internal/handler/http"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/cron"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geocode"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/jwt"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/whatsapp"
	"github.com/fieldforce-hq/attendance-backend-go/internal/repository/postgresql"
	activityService "github.com/fieldforce-hq/attendance-backend-go/internal/service/activity"
	attendanceService "github.com/fieldforce-hq/attendance-backend-go/internal/service/attendance"
	authService "github.com/fieldforce-hq/attendance-backend-go/internal/service/auth"
	distanceService "github.com/fieldforce-hq/attendance-backend-go/internal/service/distance"
	exceptionService "github.com/fieldforce-hq/attendance-backend-go/internal/service/exception"
	fieldVisitService "github.com/fieldforce-hq/attendance-backend-go/internal/service/fieldvisit"
	leaveService "github.com/fieldforce-hq/attendance-backend-go/internal/service/leave"
	overtimeService "github.com/fieldforce-hq/attendance-backend-go/internal/service/overtime"
	"github.com/fieldforce-hq/attendance-backend-go/internal/service/workday"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
		os.Exit(1)
	}

	loc := cfg.Location()
	dsn := cfg.DatabaseURL()

	if err := database.Migrate(dsn); err != nil {
		fmt.Println("Error applying migrations:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	sessionRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	activityRepo := postgresql.NewActivityRepository(db)
	fieldVisitRepo := postgresql.NewFieldVisitRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	exceptionRepo := postgresql.NewExceptionRepository(db)
	leaveRepo := postgresql.NewLeaveRequestRepository(db)
	otpRepo := postgresql.NewOTPRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)

	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	whatsappSvc := whatsapp.NewService(cfg.WhatsApp)
	geocodeSvc, err := geocode.NewService(cfg.Geocode)
	if err != nil {
		fmt.Println("Error initializing geocoder:", err)
		os.Exit(1)
	}

	classifier := workday.NewClassifier(holidayRepo, loc)
	leaveSvc := leaveService.NewLeaveService(leaveRepo, employeeRepo)
	exceptionSvc := exceptionService.NewExceptionService(
		exceptionRepo, employeeRepo, shiftRepo, leaveSvc, classifier, cfg.Attendance, loc)
	overtimeSvc := overtimeService.NewOvertimeService(
		db, overtimeRepo, employeeRepo, shiftRepo, classifier, cfg.Attendance, loc)
	attendanceSvc := attendanceService.NewAttendanceService(
		db, sessionRepo, employeeRepo, shiftRepo, activityRepo, fieldVisitRepo,
		classifier, exceptionSvc, overtimeSvc, geocodeSvc, cfg.Attendance, loc)
	fieldVisitSvc := fieldVisitService.NewFieldVisitService(fieldVisitRepo, loc)
	activitySvc := activityService.NewActivityService(activityRepo, sessionRepo, fieldVisitRepo, loc)
	distanceSvc := distanceService.NewDistanceService(
		sessionRepo, activityRepo, fieldVisitRepo, classifier, cfg.Attendance, loc)
	authSvc := authService.NewAuthService(
		otpRepo, refreshTokenRepo, employeeRepo, jwtSvc, whatsappSvc, cfg.OTP, cfg.JWT)

	scheduler := cron.NewScheduler(loc)
	jobs := cron.NewJobs(attendanceSvc, fieldVisitSvc, overtimeSvc, authSvc, cfg.Attendance)
	if err := jobs.Register(scheduler); err != nil {
		fmt.Println("Error registering cron jobs:", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(jwtSvc, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc, jwtSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Activity:   appHTTP.NewActivityHandler(activitySvc),
		FieldVisit: appHTTP.NewFieldVisitHandler(fieldVisitSvc),
		Distance:   appHTTP.NewDistanceHandler(distanceSvc),
		Exception:  appHTTP.NewExceptionHandler(exceptionSvc),
		Overtime:   appHTTP.NewOvertimeHandler(overtimeSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Holiday:    appHTTP.NewHolidayHandler(holidayRepo),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}
