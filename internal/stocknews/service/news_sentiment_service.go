package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/internal/stocknews/config"
	"golang-stock-sentiment/internal/stocknews/dto"
	"golang-stock-sentiment/internal/stocknews/repository"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/metrics"
	"golang-stock-sentiment/pkg/sentiment"
	"golang-stock-sentiment/pkg/utils"
)

// FreshnessWindow is how long cached rows of a symbol are served before refetching.
const FreshnessWindow = 10 * time.Minute

const (
	MessageCached = "Served from cached DB results"
	messageEmpty  = "No recent relevant news found for %s"
)

// NewsSentimentService answers news sentiment queries for a ticker.
type NewsSentimentService interface {
	GetNewsSentiment(ctx context.Context, symbol string) (*dto.NewsSentimentResponse, error)
}

// NewNewsSentimentService creates a new news sentiment service.
func NewNewsSentimentService(
	cfg config.Sentiment,
	logger *logger.Logger,
	stockNewsRepo repository.StockNewsRepository,
	fetcher repository.NewsFetcher,
	classifier sentiment.Classifier,
	aliases *AliasTable,
	publisher repository.SentimentEventPublisher,
	m *metrics.Metrics,
) NewsSentimentService {
	if cfg.MaxNewsAge <= 0 {
		cfg.MaxNewsAge = DefaultMaxNewsAge
	}
	if cfg.MaxHeadlines <= 0 || cfg.MaxHeadlines > config.MaxHeadlinesLimit {
		cfg.MaxHeadlines = config.MaxHeadlinesLimit
	}
	if publisher == nil {
		publisher = repository.NewNopEventPublisher()
	}
	return &newsSentimentService{
		cfg:           cfg,
		logger:        logger,
		stockNewsRepo: stockNewsRepo,
		fetcher:       fetcher,
		classifier:    classifier,
		aliases:       aliases,
		publisher:     publisher,
		metrics:       m,
		now:           utils.TimeNowUTC,
	}
}

type newsSentimentService struct {
	cfg           config.Sentiment
	logger        *logger.Logger
	stockNewsRepo repository.StockNewsRepository
	fetcher       repository.NewsFetcher
	classifier    sentiment.Classifier
	aliases       *AliasTable
	publisher     repository.SentimentEventPublisher
	metrics       *metrics.Metrics
	now           func() time.Time
}

// GetNewsSentiment serves fresh cached rows when present, otherwise refetches from the
// provider, keeps at most MaxHeadlines recent relevant distinct headlines and caches them.
func (s *newsSentimentService) GetNewsSentiment(ctx context.Context, rawSymbol string) (*dto.NewsSentimentResponse, error) {
	symbol := strings.ToUpper(strings.TrimSpace(rawSymbol))
	if symbol == "" {
		return nil, ErrInvalidSymbol
	}

	resp, outcome, err := s.getNewsSentiment(ctx, symbol)
	if err != nil {
		s.metrics.IncRequest(metrics.OutcomeError)
		return nil, err
	}
	s.metrics.IncRequest(outcome)
	s.metrics.ObserveHeadlines(len(resp.Headlines))
	return resp, nil
}

func (s *newsSentimentService) getNewsSentiment(ctx context.Context, symbol string) (*dto.NewsSentimentResponse, string, error) {
	now := s.now().UTC()
	aliases := s.aliases.Lookup(symbol)

	cached, err := s.stockNewsRepo.FindFresh(ctx, symbol, now.Add(-FreshnessWindow))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to look up cached news", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return nil, "", fmt.Errorf("failed to look up cached news: %w", err)
	}
	if len(cached) > 0 {
		s.logger.InfoContext(ctx, "Serving news sentiment from cache", logger.StringField("symbol", symbol), logger.IntField("rows", len(cached)))
		return s.fromCache(symbol, now, cached), metrics.OutcomeCacheHit, nil
	}

	deleted, err := s.stockNewsRepo.DeleteBySymbol(ctx, symbol)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to purge stale news", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return nil, "", fmt.Errorf("failed to purge stale news: %w", err)
	}
	if deleted > 0 {
		s.logger.DebugContext(ctx, "Purged stale news", logger.StringField("symbol", symbol), logger.Field("rows", deleted))
	}

	articles, err := s.fetcher.Fetch(ctx, symbol, aliases)
	if err != nil {
		return nil, "", &FetchError{Provider: s.fetcher.Name(), Err: err}
	}

	headlines, labels := s.selectHeadlines(articles, symbol, aliases, now)

	s.logger.InfoContext(ctx, "Filtered provider articles",
		logger.StringField("symbol", symbol),
		logger.IntField("articles", len(articles)),
		logger.IntField("accepted", len(headlines)),
	)

	resp := &dto.NewsSentimentResponse{
		Symbol:    symbol,
		Timestamp: utils.FormatUTC(now),
		Headlines: headlines,
	}

	if len(headlines) == 0 {
		resp.OverallSentiment = string(sentiment.Neutral)
		resp.Message = fmt.Sprintf(messageEmpty, symbol)
		return resp, metrics.OutcomeEmpty, nil
	}

	rows := make([]entity.StockNews, 0, len(headlines))
	for _, h := range headlines {
		rows = append(rows, entity.StockNews{
			Symbol:    symbol,
			Timestamp: now,
			Title:     h.Title,
			Sentiment: h.Sentiment,
		})
	}
	if err := s.stockNewsRepo.CreateBatch(ctx, rows); err != nil {
		s.logger.ErrorContext(ctx, "Failed to cache news", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return nil, "", fmt.Errorf("failed to cache news: %w", err)
	}

	resp.OverallSentiment = string(sentiment.Aggregate(labels))
	s.publish(ctx, resp)

	return resp, metrics.OutcomeFetched, nil
}

// selectHeadlines walks articles in provider order and keeps the first recent, distinct,
// relevant ones, classifying each as it is accepted.
func (s *newsSentimentService) selectHeadlines(articles []dto.CandidateHeadline, symbol string, aliases []string, now time.Time) ([]dto.HeadlineResponse, []sentiment.Label) {
	headlines := make([]dto.HeadlineResponse, 0, s.cfg.MaxHeadlines)
	labels := make([]sentiment.Label, 0, s.cfg.MaxHeadlines)
	seen := make(map[string]struct{})

	for _, article := range articles {
		if len(headlines) >= s.cfg.MaxHeadlines {
			break
		}
		if !IsRecentAt(article.PublishedAt, now, s.cfg.MaxNewsAge) {
			continue
		}
		title := strings.TrimSpace(article.Title)
		if _, dup := seen[title]; dup {
			continue
		}
		if !IsRelevant(title, symbol, aliases) {
			continue
		}

		label := s.classifier.Classify(title)
		headlines = append(headlines, dto.HeadlineResponse{Title: title, Sentiment: string(label)})
		labels = append(labels, label)
		seen[title] = struct{}{}
	}

	return headlines, labels
}

func (s *newsSentimentService) fromCache(symbol string, now time.Time, rows []entity.StockNews) *dto.NewsSentimentResponse {
	if len(rows) > s.cfg.MaxHeadlines {
		rows = rows[:s.cfg.MaxHeadlines]
	}

	headlines := make([]dto.HeadlineResponse, 0, len(rows))
	labels := make([]sentiment.Label, 0, len(rows))
	for _, row := range rows {
		label := sentiment.Label(row.Sentiment)
		if !label.Valid() {
			label = sentiment.Neutral
		}
		headlines = append(headlines, dto.HeadlineResponse{Title: row.Title, Sentiment: string(label)})
		labels = append(labels, label)
	}

	return &dto.NewsSentimentResponse{
		Symbol:           symbol,
		Timestamp:        utils.FormatUTC(now),
		Headlines:        headlines,
		OverallSentiment: string(sentiment.Aggregate(labels)),
		Message:          MessageCached,
	}
}

func (s *newsSentimentService) publish(ctx context.Context, resp *dto.NewsSentimentResponse) {
	event := &dto.NewsSentimentEvent{
		Symbol:           resp.Symbol,
		Timestamp:        resp.Timestamp,
		Provider:         s.fetcher.Name(),
		Headlines:        resp.Headlines,
		OverallSentiment: resp.OverallSentiment,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish news sentiment event", logger.ErrorField(err), logger.StringField("symbol", resp.Symbol))
	}
}
