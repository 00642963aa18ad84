package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

// Service resolves coordinates to human-readable addresses. Lookups never
// fail hard: any error yields the "lat, lon" string so attendance flows
// keep working when the geocoder is down.
type Service interface {
	ReverseGeocode(ctx context.Context, c geo.Coordinate) string
	CacheLen() int
	ClearCache()
}

type serviceImpl struct {
	cfg    config.GeocodeConfig
	client *http.Client
	cache  *lru.Cache[string, string]
}

func NewService(cfg config.GeocodeConfig) (Service, error) {
	cache, err := lru.New[string, string](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create geocode cache: %w", err)
	}
	return &serviceImpl{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
	}, nil
}

// cacheKey rounds to 5 decimal places, roughly 1 meter, so nearby pings
// share one cache entry.
func cacheKey(c geo.Coordinate) string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

func (s *serviceImpl) ReverseGeocode(ctx context.Context, c geo.Coordinate) string {
	key := cacheKey(c)
	if addr, ok := s.cache.Get(key); ok {
		return addr
	}

	addr, err := s.lookup(ctx, c)
	if err != nil {
		slog.Warn("Reverse geocode failed, using coordinate fallback", "error", err)
		return c.String()
	}

	s.cache.Add(key, addr)
	return addr
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
}

func (s *serviceImpl) lookup(ctx context.Context, c geo.Coordinate) (string, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", c.Lat))
	q.Set("lon", fmt.Sprintf("%f", c.Lon))
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.DisplayName == "" {
		return "", fmt.Errorf("empty display name")
	}
	return body.DisplayName, nil
}

func (s *serviceImpl) CacheLen() int {
	return s.cache.Len()
}

func (s *serviceImpl) ClearCache() {
	s.cache.Purge()
}
