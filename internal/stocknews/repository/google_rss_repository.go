package repository

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang-stock-sentiment/internal/stocknews/config"
	"golang-stock-sentiment/internal/stocknews/dto"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/metrics"
	"golang-stock-sentiment/pkg/utils"

	"github.com/mmcdole/gofeed"
)

const googleRSSProviderName = "GoogleRSS"

type googleRSSRepository struct {
	cfg     config.GoogleRSS
	log     *logger.Logger
	metrics *metrics.Metrics
	parser  *gofeed.Parser
}

// NewGoogleRSSRepository creates a NewsFetcher backed by the Google News RSS search feed.
func NewGoogleRSSRepository(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) NewsFetcher {
	timeout := cfg.GoogleRSS.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &googleRSSRepository{
		cfg:     cfg.GoogleRSS,
		log:     log,
		metrics: m,
		parser:  parser,
	}
}

func (r *googleRSSRepository) Name() string {
	return googleRSSProviderName
}

// Fetch returns feed items newest first, capped at MaxItems.
func (r *googleRSSRepository) Fetch(ctx context.Context, symbol string, aliases []string) ([]dto.CandidateHeadline, error) {
	query := BuildQuery(symbol, aliases)
	feedURL := r.cfg.BaseURL + "?q=" + url.QueryEscape(query)
	if r.cfg.Params != "" {
		feedURL += "&" + r.cfg.Params
	}

	r.log.InfoContext(ctx, "Processing RSS feed", logger.StringField("url", feedURL), logger.StringField("symbol", symbol))

	start := time.Now()
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		r.metrics.ObserveProviderCall(googleRSSProviderName, "error", time.Since(start))
		r.log.ErrorContext(ctx, "Failed to parse RSS feed", logger.ErrorField(err), logger.StringField("symbol", symbol))
		if httpErr, ok := err.(gofeed.HTTPError); ok {
			return nil, &ProviderError{
				Provider:   googleRSSProviderName,
				StatusCode: httpErr.StatusCode,
				Message:    httpErr.Status,
			}
		}
		return nil, err
	}
	took := time.Since(start)
	r.metrics.ObserveProviderCall(googleRSSProviderName, "200", took)
	r.log.DebugContext(ctx, "RSS feed fetched",
		logger.StringField("symbol", symbol),
		logger.IntField("items", len(feed.Items)),
		logger.DurationField("took", took),
	)

	items := feed.Items
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PublishedParsed == nil || items[j].PublishedParsed == nil {
			return items[j].PublishedParsed == nil && items[i].PublishedParsed != nil
		}
		return items[i].PublishedParsed.After(*items[j].PublishedParsed)
	})

	if r.cfg.MaxItems > 0 && len(items) > r.cfg.MaxItems {
		items = items[:r.cfg.MaxItems]
	}

	headlines := make([]dto.CandidateHeadline, 0, len(items))
	for _, item := range items {
		publishedAt := ""
		if item.PublishedParsed != nil {
			publishedAt = utils.FormatUTC(*item.PublishedParsed)
		}
		source := ""
		if item.Author != nil {
			source = item.Author.Name
		}
		headlines = append(headlines, dto.CandidateHeadline{
			Title:       utils.CleanText(item.Title),
			PublishedAt: publishedAt,
			Source:      source,
		})
	}

	return headlines, nil
}
