package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang-stock-sentiment/internal/stocknews/config"
	"golang-stock-sentiment/internal/stocknews/dto"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/metrics"
	"golang-stock-sentiment/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const newsAPIProviderName = "NewsAPI"

type newsAPIRepository struct {
	cfg            config.NewsAPI
	log            *logger.Logger
	metrics        *metrics.Metrics
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewNewsAPIRepository creates a NewsFetcher backed by the NewsAPI "everything" endpoint.
func NewNewsAPIRepository(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) NewsFetcher {
	requestLimiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.NewsAPI.MaxRequestPerMinute > 0 {
		secondsPerRequest := time.Minute / time.Duration(cfg.NewsAPI.MaxRequestPerMinute)
		requestLimiter = rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	}
	timeout := cfg.NewsAPI.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &newsAPIRepository{
		cfg:     cfg.NewsAPI,
		log:     log,
		metrics: m,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		requestLimiter: requestLimiter,
	}
}

func (r *newsAPIRepository) Name() string {
	return newsAPIProviderName
}

// Fetch returns the provider's articles in the order received.
func (r *newsAPIRepository) Fetch(ctx context.Context, symbol string, aliases []string) ([]dto.CandidateHeadline, error) {
	query := BuildQuery(symbol, aliases)
	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(r.cfg.PageSize))
	params.Set("language", r.cfg.Language)
	params.Set("sortBy", r.cfg.SortBy)
	params.Set("apiKey", r.cfg.APIKey)

	fields := []zap.Field{
		zap.String("provider", newsAPIProviderName),
		zap.String("symbol", symbol),
		zap.String("query", query),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	start := time.Now()
	body, statusCode, err := r.sendRequest(ctx, r.cfg.BaseURL+"?"+params.Encode())
	if err != nil {
		r.metrics.ObserveProviderCall(newsAPIProviderName, "transport_error", time.Since(start))
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to NewsAPI", fields...)
		return nil, err
	}

	var response dto.NewsAPIResponse
	decodeErr := json.Unmarshal(body, &response)

	if statusCode != http.StatusOK || response.Status == "error" {
		r.metrics.ObserveProviderCall(newsAPIProviderName, strconv.Itoa(statusCode), time.Since(start))
		providerErr := &ProviderError{
			Provider:   newsAPIProviderName,
			StatusCode: statusCode,
			Code:       response.Code,
			Message:    response.Message,
		}
		fields = append(fields, zap.Int("status_code", statusCode), zap.String("code", response.Code))
		r.log.ErrorContext(ctx, "Received non-OK response from NewsAPI", fields...)
		return nil, providerErr
	}
	if decodeErr != nil {
		r.metrics.ObserveProviderCall(newsAPIProviderName, "decode_error", time.Since(start))
		fields = append(fields, zap.Error(decodeErr))
		r.log.ErrorContext(ctx, "Failed to decode NewsAPI response", fields...)
		return nil, fmt.Errorf("failed to decode newsapi response: %w", decodeErr)
	}
	took := time.Since(start)
	r.metrics.ObserveProviderCall(newsAPIProviderName, strconv.Itoa(statusCode), took)

	headlines := make([]dto.CandidateHeadline, 0, len(response.Articles))
	for _, article := range response.Articles {
		headlines = append(headlines, dto.CandidateHeadline{
			Title:       utils.CleanText(article.Title),
			PublishedAt: strings.TrimSpace(article.PublishedAt),
			Source:      article.Source.Name,
		})
	}

	r.log.DebugContext(ctx, "NewsAPI articles fetched", append(fields,
		zap.Int("total_results", response.TotalResults),
		zap.Int("articles", len(headlines)),
		logger.DurationField("took", took),
	)...)

	return headlines, nil
}

func (r *newsAPIRepository) sendRequest(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create newsapi request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stock-news-sentiment/1.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("newsapi request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read newsapi response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
