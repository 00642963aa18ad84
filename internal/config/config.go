package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	OTP        OTPConfig
	WhatsApp   WhatsAppConfig
	Geocode    GeocodeConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds token issuance configuration. Access tokens are JWTs,
// refresh tokens are opaque and stored hashed.
type JWTConfig struct {
	Secret            string
	AccessExpiration  time.Duration
	RefreshExpiration time.Duration
	// RefreshRetention is how long expired or revoked refresh tokens are
	// kept before the GC job deletes them.
	RefreshRetention time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Timezone string
}

type OTPConfig struct {
	Expiration  time.Duration
	MaxAttempts int
}

type WhatsAppConfig struct {
	APIURL string
	Token  string
}

type GeocodeConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CacheSize int
}

// AttendanceConfig holds the attendance policy: shift windows, grace
// period, comp-off accrual rules, and distance monitoring thresholds.
type AttendanceConfig struct {
	ShiftStart       string // "10:00"
	ShiftEnd         string // "18:30"
	SaturdayShiftEnd string // "13:30"
	GraceMinutes     int

	FullDayThresholdHours float64
	HalfDayThresholdHours float64
	CompOffExpiryDays     int
	RecordingWindowDays   int
	MonthlyDirectLimit    int

	DistanceThresholdKm float64
	MovingSpeedKmh      float64
	DisplacementMeters  float64

	TrackingInterval time.Duration
}

func Load() (*Config, error) {
	// .env is optional outside local development.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "fieldforce-attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "Asia/Kolkata"),
	}

	// JWT configuration
	accessExp, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	refreshExp, err := time.ParseDuration(getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}
	refreshRetention, err := time.ParseDuration(getEnv("JWT_REFRESH_RETENTION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_RETENTION: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration:  accessExp,
		RefreshExpiration: refreshExp,
		RefreshRetention:  refreshRetention,
	}

	// OTP configuration
	otpExp, err := time.ParseDuration(getEnv("OTP_EXPIRATION_TIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_EXPIRATION_TIME: %w", err)
	}
	otpAttempts, err := strconv.Atoi(getEnv("OTP_MAX_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_MAX_ATTEMPTS: %w", err)
	}
	config.OTP = OTPConfig{
		Expiration:  otpExp,
		MaxAttempts: otpAttempts,
	}

	// WhatsApp delivery. Leaving these empty enables the development
	// fallback, which logs OTP codes instead of sending them.
	config.WhatsApp = WhatsAppConfig{
		APIURL: getEnv("WHATSAPP_API_URL", ""),
		Token:  getEnv("WHATSAPP_API_TOKEN", ""),
	}

	// Reverse geocoding
	geocodeTimeout, err := time.ParseDuration(getEnv("GEOCODE_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEOCODE_TIMEOUT: %w", err)
	}
	geocodeCacheSize, err := strconv.Atoi(getEnv("GEOCODE_CACHE_SIZE", "512"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEOCODE_CACHE_SIZE: %w", err)
	}
	config.Geocode = GeocodeConfig{
		BaseURL:   getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		UserAgent: getEnv("GEOCODE_USER_AGENT", "fieldforce-attendance/1.0"),
		Timeout:   geocodeTimeout,
		CacheSize: geocodeCacheSize,
	}

	// Attendance policy
	attendance, err := loadAttendanceConfig()
	if err != nil {
		return nil, err
	}
	config.Attendance = attendance

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendanceConfig() (AttendanceConfig, error) {
	graceMinutes, err := strconv.Atoi(getEnv("ATTENDANCE_GRACE_MINUTES", "15"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid ATTENDANCE_GRACE_MINUTES: %w", err)
	}
	fullDay, err := strconv.ParseFloat(getEnv("COMPOFF_FULL_DAY_HOURS", "6"), 64)
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid COMPOFF_FULL_DAY_HOURS: %w", err)
	}
	halfDay, err := strconv.ParseFloat(getEnv("COMPOFF_HALF_DAY_HOURS", "3"), 64)
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid COMPOFF_HALF_DAY_HOURS: %w", err)
	}
	expiryDays, err := strconv.Atoi(getEnv("COMPOFF_EXPIRY_DAYS", "90"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid COMPOFF_EXPIRY_DAYS: %w", err)
	}
	recordingDays, err := strconv.Atoi(getEnv("COMPOFF_RECORDING_WINDOW_DAYS", "30"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid COMPOFF_RECORDING_WINDOW_DAYS: %w", err)
	}
	monthlyLimit, err := strconv.Atoi(getEnv("COMPOFF_MONTHLY_DIRECT_LIMIT", "3"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid COMPOFF_MONTHLY_DIRECT_LIMIT: %w", err)
	}
	distanceKm, err := strconv.ParseFloat(getEnv("DISTANCE_THRESHOLD_KM", "1.0"), 64)
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid DISTANCE_THRESHOLD_KM: %w", err)
	}
	movingSpeed, err := strconv.ParseFloat(getEnv("MOVING_SPEED_KMH", "5.0"), 64)
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid MOVING_SPEED_KMH: %w", err)
	}
	displacement, err := strconv.ParseFloat(getEnv("DISPLACEMENT_METERS", "50"), 64)
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid DISPLACEMENT_METERS: %w", err)
	}
	trackingInterval, err := time.ParseDuration(getEnv("TRACKING_INTERVAL", "3m"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid TRACKING_INTERVAL: %w", err)
	}

	return AttendanceConfig{
		ShiftStart:            getEnv("SHIFT_START", "10:00"),
		ShiftEnd:              getEnv("SHIFT_END", "18:30"),
		SaturdayShiftEnd:      getEnv("SATURDAY_SHIFT_END", "13:30"),
		GraceMinutes:          graceMinutes,
		FullDayThresholdHours: fullDay,
		HalfDayThresholdHours: halfDay,
		CompOffExpiryDays:     expiryDays,
		RecordingWindowDays:   recordingDays,
		MonthlyDirectLimit:    monthlyLimit,
		DistanceThresholdKm:   distanceKm,
		MovingSpeedKmh:        movingSpeed,
		DisplacementMeters:    displacement,
		TrackingInterval:      trackingInterval,
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	for key, value := range map[string]string{
		"SHIFT_START":        c.Attendance.ShiftStart,
		"SHIFT_END":          c.Attendance.ShiftEnd,
		"SATURDAY_SHIFT_END": c.Attendance.SaturdayShiftEnd,
	} {
		if _, err := time.Parse("15:04", value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}

// Location returns the configured application timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
