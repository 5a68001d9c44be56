package services

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"agora/internal/utils"

	"github.com/go-resty/resty/v2"
)

// AQIService queries the WAQI feed for the air-quality index of a city.
// Every failure mode (network, non-2xx, malformed body, non-"ok" status,
// missing or non-numeric index) is reported as "no value": the detail
// page renders the same either way.
type AQIService struct {
	client  *resty.Client
	baseURL string
	token   string
}

// waqiResponse is the subset of the WAQI feed payload we read.
// The index comes back as a number for live stations and as "-" for
// stations without data, hence json.Number.
type waqiResponse struct {
	Status string `json:"status"`
	Data   struct {
		AQI json.Number `json:"aqi"`
	} `json:"data"`
}

func NewAQIService() *AQIService {
	baseURL := os.Getenv("WAQI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.waqi.info"
	}
	return &AQIService{
		client:  resty.New().SetTimeout(5 * time.Second),
		baseURL: baseURL,
		token:   os.Getenv("WAQI_API_TOKEN"),
	}
}

var aqiService *AQIService

// GetAQIService returns the service singleton.
func GetAQIService() *AQIService {
	if aqiService == nil {
		aqiService = NewAQIService()
	}
	return aqiService
}

// Lookup returns the AQI for a city, with ok=false when no value is
// available. Results (including "no value") are cached per city so a
// busy detail page does not hammer the upstream feed.
func (s *AQIService) Lookup(city string) (int, bool) {
	if city == "" {
		return 0, false
	}

	cacheKey := "aqi:" + city
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if v, ok := cached.(int); ok {
			if v < 0 {
				return 0, false
			}
			return v, true
		}
	}

	value, ok := s.fetch(city)
	// Negative sentinel caches misses too
	cachedValue := -1
	if ok {
		cachedValue = value
	}
	utils.GetCache().Set(cacheKey, cachedValue, 10*time.Minute)

	return value, ok
}

func (s *AQIService) fetch(city string) (int, bool) {
	endpoint := fmt.Sprintf("%s/feed/%s/?token=%s", s.baseURL, url.PathEscape(city), url.QueryEscape(s.token))

	resp, err := s.client.R().Get(endpoint)
	if err != nil {
		return 0, false
	}
	if resp.StatusCode() != 200 {
		return 0, false
	}

	var payload waqiResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return 0, false
	}
	if payload.Status != "ok" {
		return 0, false
	}

	value, err := payload.Data.AQI.Int64()
	if err != nil {
		return 0, false
	}

	return int(value), true
}
