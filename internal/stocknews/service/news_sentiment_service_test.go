package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/internal/stocknews/config"
	"golang-stock-sentiment/internal/stocknews/dto"
	"golang-stock-sentiment/internal/stocknews/repository"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/metrics"
	"golang-stock-sentiment/pkg/sentiment"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeStockNewsRepo struct {
	rows        []entity.StockNews
	findErr     error
	deleteErr   error
	createErr   error
	findCalls   int
	deleteCalls int
	created     [][]entity.StockNews
}

func (f *fakeStockNewsRepo) FindFresh(_ context.Context, symbol string, since time.Time) ([]entity.StockNews, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []entity.StockNews
	for _, row := range f.rows {
		if row.Symbol == symbol && !row.Timestamp.Before(since) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStockNewsRepo) DeleteBySymbol(_ context.Context, symbol string) (int64, error) {
	f.deleteCalls++
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	kept := f.rows[:0]
	var deleted int64
	for _, row := range f.rows {
		if row.Symbol == symbol {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return deleted, nil
}

func (f *fakeStockNewsRepo) CreateBatch(_ context.Context, news []entity.StockNews) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, news)
	f.rows = append(f.rows, news...)
	return nil
}

type fakeFetcher struct {
	articles    []dto.CandidateHeadline
	err         error
	calls       int
	lastSymbol  string
	lastAliases []string
}

func (f *fakeFetcher) Fetch(_ context.Context, symbol string, aliases []string) ([]dto.CandidateHeadline, error) {
	f.calls++
	f.lastSymbol = symbol
	f.lastAliases = aliases
	return f.articles, f.err
}

func (f *fakeFetcher) Name() string {
	return "NewsAPI"
}

// keywordClassifier labels "surge"/"gain" positive and "fall"/"loss" negative.
type keywordClassifier struct{}

func (keywordClassifier) Classify(text string) sentiment.Label {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "surge"), strings.Contains(lower, "gain"):
		return sentiment.Positive
	case strings.Contains(lower, "fall"), strings.Contains(lower, "loss"):
		return sentiment.Negative
	default:
		return sentiment.Neutral
	}
}

type fakePublisher struct {
	events []*dto.NewsSentimentEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event *dto.NewsSentimentEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type testDeps struct {
	cfg       config.Sentiment
	repo      *fakeStockNewsRepo
	fetcher   *fakeFetcher
	publisher *fakePublisher
	metrics   *metrics.Metrics
}

func newTestService(deps *testDeps) NewsSentimentService {
	if deps.repo == nil {
		deps.repo = &fakeStockNewsRepo{}
	}
	if deps.fetcher == nil {
		deps.fetcher = &fakeFetcher{}
	}
	if deps.publisher == nil {
		deps.publisher = &fakePublisher{}
	}
	deps.metrics = metrics.NewNop()

	cfg := deps.cfg
	if cfg.MaxNewsAge == 0 {
		cfg.MaxNewsAge = 14 * 24 * time.Hour
	}
	if cfg.MaxHeadlines == 0 {
		cfg.MaxHeadlines = 3
	}
	svc := NewNewsSentimentService(
		cfg,
		logger.NewNop(),
		deps.repo,
		deps.fetcher,
		keywordClassifier{},
		NewAliasTable(DefaultAliases(), nil, nil),
		deps.publisher,
		deps.metrics,
	)
	svc.(*newsSentimentService).now = func() time.Time { return testNow }
	return svc
}

func published(ago time.Duration) string {
	return testNow.Add(-ago).Format("2006-01-02T15:04:05Z")
}

func TestGetNewsSentiment_CacheHit(t *testing.T) {
	repo := &fakeStockNewsRepo{rows: []entity.StockNews{
		{ID: 1, Symbol: "TCS", Timestamp: testNow.Add(-3 * time.Minute), Title: "TCS shares surge", Sentiment: "positive"},
		{ID: 2, Symbol: "TCS", Timestamp: testNow.Add(-3 * time.Minute), Title: "TCS margins fall", Sentiment: "negative"},
		{ID: 3, Symbol: "INFY", Timestamp: testNow.Add(-1 * time.Minute), Title: "Infosys gains", Sentiment: "positive"},
	}}
	deps := &testDeps{repo: repo, fetcher: &fakeFetcher{err: errors.New("must not be called")}}
	svc := newTestService(deps)

	resp, err := svc.GetNewsSentiment(context.Background(), "tcs")
	require.NoError(t, err)

	assert.Equal(t, "TCS", resp.Symbol)
	assert.Equal(t, "2025-06-15T12:00:00Z", resp.Timestamp)
	assert.Equal(t, []dto.HeadlineResponse{
		{Title: "TCS shares surge", Sentiment: "positive"},
		{Title: "TCS margins fall", Sentiment: "negative"},
	}, resp.Headlines)
	assert.Equal(t, "neutral", resp.OverallSentiment)
	assert.Equal(t, MessageCached, resp.Message)

	assert.Equal(t, 0, deps.fetcher.calls)
	assert.Equal(t, 0, repo.deleteCalls)
	assert.Empty(t, repo.created)
	assert.Empty(t, deps.publisher.events)
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.metrics.Requests.WithLabelValues(metrics.OutcomeCacheHit)))
}

func TestGetNewsSentiment_CacheHitCapsRows(t *testing.T) {
	var rows []entity.StockNews
	for i := 0; i < 5; i++ {
		rows = append(rows, entity.StockNews{ID: uint(i + 1), Symbol: "SBIN", Timestamp: testNow, Title: "SBI gains", Sentiment: "positive"})
	}
	svc := newTestService(&testDeps{repo: &fakeStockNewsRepo{rows: rows}})

	resp, err := svc.GetNewsSentiment(context.Background(), "SBIN")
	require.NoError(t, err)

	assert.Len(t, resp.Headlines, 3)
	assert.Equal(t, "positive", resp.OverallSentiment)
}

func TestGetNewsSentiment_CacheHitUnknownLabelIsNeutral(t *testing.T) {
	repo := &fakeStockNewsRepo{rows: []entity.StockNews{
		{ID: 1, Symbol: "HUL", Timestamp: testNow, Title: "HUL update", Sentiment: "mixed"},
		{ID: 2, Symbol: "HUL", Timestamp: testNow, Title: "HUL gains", Sentiment: "positive"},
	}}
	svc := newTestService(&testDeps{repo: repo})

	resp, err := svc.GetNewsSentiment(context.Background(), "HUL")
	require.NoError(t, err)

	assert.Equal(t, "neutral", resp.Headlines[0].Sentiment)
	assert.Equal(t, "positive", resp.OverallSentiment)
}

func TestGetNewsSentiment_CacheMiss(t *testing.T) {
	fetcher := &fakeFetcher{articles: []dto.CandidateHeadline{
		{Title: "TCS shares surge on deal win", PublishedAt: published(time.Hour)},
		{Title: "TCS shares surge on deal win", PublishedAt: published(2 * time.Hour)},
		{Title: "Infosys gains after results", PublishedAt: published(time.Hour)},
		{Title: "Tata Consultancy Services posts loss", PublishedAt: published(20 * 24 * time.Hour)},
		{Title: "  Tata Consultancy Services sees fall in margins ", PublishedAt: published(3 * time.Hour)},
	}}
	deps := &testDeps{fetcher: fetcher}
	svc := newTestService(deps)

	resp, err := svc.GetNewsSentiment(context.Background(), " tcs ")
	require.NoError(t, err)

	assert.Equal(t, "TCS", resp.Symbol)
	assert.Equal(t, []dto.HeadlineResponse{
		{Title: "TCS shares surge on deal win", Sentiment: "positive"},
		{Title: "Tata Consultancy Services sees fall in margins", Sentiment: "negative"},
	}, resp.Headlines)
	assert.Equal(t, "neutral", resp.OverallSentiment)
	assert.Empty(t, resp.Message)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, "TCS", fetcher.lastSymbol)
	assert.Equal(t, []string{"Tata Consultancy Services", "TCS Ltd"}, fetcher.lastAliases)
	assert.Equal(t, 1, deps.repo.deleteCalls)

	require.Len(t, deps.repo.created, 1)
	batch := deps.repo.created[0]
	require.Len(t, batch, 2)
	for _, row := range batch {
		assert.Equal(t, "TCS", row.Symbol)
		assert.True(t, row.Timestamp.Equal(testNow))
	}
	assert.Equal(t, "TCS shares surge on deal win", batch[0].Title)
	assert.Equal(t, "negative", batch[1].Sentiment)

	require.Len(t, deps.publisher.events, 1)
	assert.Equal(t, "TCS", deps.publisher.events[0].Symbol)
	assert.Equal(t, "NewsAPI", deps.publisher.events[0].Provider)
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.metrics.Requests.WithLabelValues(metrics.OutcomeFetched)))
}

func TestGetNewsSentiment_StopsAtThreeHeadlines(t *testing.T) {
	fetcher := &fakeFetcher{articles: []dto.CandidateHeadline{
		{Title: "Infosys gains 1", PublishedAt: published(time.Hour)},
		{Title: "Infosys gains 2", PublishedAt: published(time.Hour)},
		{Title: "Infosys update", PublishedAt: published(time.Hour)},
		{Title: "Infosys falls 4", PublishedAt: published(time.Hour)},
		{Title: "Infosys falls 5", PublishedAt: published(time.Hour)},
	}}
	deps := &testDeps{fetcher: fetcher}
	svc := newTestService(deps)

	resp, err := svc.GetNewsSentiment(context.Background(), "INFY")
	require.NoError(t, err)

	require.Len(t, resp.Headlines, 3)
	assert.Equal(t, "Infosys update", resp.Headlines[2].Title)
	assert.Equal(t, "neutral", resp.Headlines[2].Sentiment)
	assert.Equal(t, "positive", resp.OverallSentiment)
	require.Len(t, deps.repo.created, 1)
	assert.Len(t, deps.repo.created[0], 3)
}

func TestGetNewsSentiment_HeadlineLimitIgnoresLargerConfig(t *testing.T) {
	var articles []dto.CandidateHeadline
	for i := 1; i <= 8; i++ {
		articles = append(articles, dto.CandidateHeadline{Title: "Infosys gains " + strconv.Itoa(i), PublishedAt: published(time.Hour)})
	}
	deps := &testDeps{fetcher: &fakeFetcher{articles: articles}, cfg: config.Sentiment{MaxHeadlines: 10}}
	svc := newTestService(deps)

	resp, err := svc.GetNewsSentiment(context.Background(), "INFY")
	require.NoError(t, err)

	assert.Len(t, resp.Headlines, 3)
	require.Len(t, deps.repo.created, 1)
	assert.Len(t, deps.repo.created[0], 3)
}

func TestGetNewsSentiment_CacheWindowIsTenMinutes(t *testing.T) {
	repo := &fakeStockNewsRepo{rows: []entity.StockNews{
		{ID: 1, Symbol: "ITC", Timestamp: testNow.Add(-10 * time.Minute), Title: "ITC Limited gains", Sentiment: "positive"},
	}}
	deps := &testDeps{repo: repo, fetcher: &fakeFetcher{err: errors.New("must not be called")}}
	svc := newTestService(deps)

	resp, err := svc.GetNewsSentiment(context.Background(), "ITC")
	require.NoError(t, err)

	assert.Equal(t, MessageCached, resp.Message)
	assert.Equal(t, 0, deps.fetcher.calls)
}

func TestGetNewsSentiment_StaleCacheIsPurgedAndRefetched(t *testing.T) {
	repo := &fakeStockNewsRepo{rows: []entity.StockNews{
		{ID: 1, Symbol: "WIPRO", Timestamp: testNow.Add(-11 * time.Minute), Title: "Old Wipro story", Sentiment: "neutral"},
	}}
	fetcher := &fakeFetcher{articles: []dto.CandidateHeadline{
		{Title: "Wipro Ltd shares surge", PublishedAt: published(time.Minute)},
	}}
	deps := &testDeps{repo: repo, fetcher: fetcher}
	svc := newTestService(deps)

	resp, err := svc.GetNewsSentiment(context.Background(), "WIPRO")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.deleteCalls)
	assert.Equal(t, 1, fetcher.calls)
	require.Len(t, repo.rows, 1)
	assert.Equal(t, "Wipro Ltd shares surge", repo.rows[0].Title)
	assert.Equal(t, "positive", resp.OverallSentiment)
}

func TestGetNewsSentiment_EmptyResult(t *testing.T) {
	fetcher := &fakeFetcher{articles: []dto.CandidateHeadline{
		{Title: "Sensex ends higher", PublishedAt: published(time.Hour)},
		{Title: "10 things that will decide market action: ITC Limited", PublishedAt: published(time.Hour)},
		{Title: "ITC Limited surges", PublishedAt: "not-a-date"},
		{Title: "ITC Limited gains", PublishedAt: published(30 * 24 * time.Hour)},
	}}
	deps := &testDeps{fetcher: fetcher}
	svc := newTestService(deps)

	resp, err := svc.GetNewsSentiment(context.Background(), "ITC")
	require.NoError(t, err)

	assert.NotNil(t, resp.Headlines)
	assert.Empty(t, resp.Headlines)
	assert.Equal(t, "neutral", resp.OverallSentiment)
	assert.Equal(t, "No recent relevant news found for ITC", resp.Message)
	assert.Empty(t, deps.repo.created)
	assert.Empty(t, deps.publisher.events)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.metrics.Requests.WithLabelValues(metrics.OutcomeEmpty)))
}

func TestGetNewsSentiment_FetchError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		rateLimited bool
	}{
		{
			name:        "rate limited status",
			err:         &repository.ProviderError{Provider: "NewsAPI", StatusCode: http.StatusTooManyRequests, Code: "rateLimited", Message: "You have been rate limited."},
			rateLimited: true,
		},
		{
			name:        "server error",
			err:         &repository.ProviderError{Provider: "NewsAPI", StatusCode: http.StatusInternalServerError},
			rateLimited: false,
		},
		{
			name:        "transport error",
			err:         errors.New("dial tcp: connection refused"),
			rateLimited: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := &testDeps{fetcher: &fakeFetcher{err: tt.err}}
			svc := newTestService(deps)

			resp, err := svc.GetNewsSentiment(context.Background(), "RELIANCE")
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrFetchFailed)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.rateLimited, IsRateLimited(err))
			assert.True(t, strings.HasPrefix(err.Error(), "NewsAPI error: "))

			assert.Equal(t, 1, deps.fetcher.calls)
			assert.Empty(t, deps.repo.created)
			assert.Equal(t, 1.0, testutil.ToFloat64(deps.metrics.Requests.WithLabelValues(metrics.OutcomeError)))
		})
	}
}

func TestGetNewsSentiment_StorageErrors(t *testing.T) {
	dbErr := errors.New("connection reset")
	recent := []dto.CandidateHeadline{{Title: "HUL gains", PublishedAt: published(time.Hour)}}

	t.Run("lookup", func(t *testing.T) {
		deps := &testDeps{repo: &fakeStockNewsRepo{findErr: dbErr}}
		_, err := newTestService(deps).GetNewsSentiment(context.Background(), "HINDUNILVR")
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrFetchFailed)
		assert.Equal(t, 0, deps.fetcher.calls)
	})

	t.Run("purge", func(t *testing.T) {
		deps := &testDeps{repo: &fakeStockNewsRepo{deleteErr: dbErr}}
		_, err := newTestService(deps).GetNewsSentiment(context.Background(), "HINDUNILVR")
		assert.ErrorIs(t, err, dbErr)
		assert.Equal(t, 0, deps.fetcher.calls)
	})

	t.Run("persist", func(t *testing.T) {
		deps := &testDeps{repo: &fakeStockNewsRepo{createErr: dbErr}, fetcher: &fakeFetcher{articles: recent}}
		_, err := newTestService(deps).GetNewsSentiment(context.Background(), "HINDUNILVR")
		assert.ErrorIs(t, err, dbErr)
		assert.Empty(t, deps.publisher.events)
	})
}

func TestGetNewsSentiment_PublishErrorIsIgnored(t *testing.T) {
	deps := &testDeps{
		fetcher:   &fakeFetcher{articles: []dto.CandidateHeadline{{Title: "Airtel gains subscribers", PublishedAt: published(time.Hour)}}},
		publisher: &fakePublisher{err: errors.New("redis down")},
	}
	resp, err := newTestService(deps).GetNewsSentiment(context.Background(), "BHARTIARTL")

	require.NoError(t, err)
	assert.Len(t, resp.Headlines, 1)
	assert.Len(t, deps.publisher.events, 1)
}

func TestGetNewsSentiment_BlankSymbol(t *testing.T) {
	deps := &testDeps{}
	_, err := newTestService(deps).GetNewsSentiment(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrInvalidSymbol)
	assert.Equal(t, 0, deps.repo.findCalls)
}

func TestGetNewsSentiment_SecondRequestServedFromCache(t *testing.T) {
	fetcher := &fakeFetcher{articles: []dto.CandidateHeadline{
		{Title: "ICICI Bank shares surge", PublishedAt: published(time.Hour)},
	}}
	deps := &testDeps{fetcher: fetcher}
	svc := newTestService(deps)

	first, err := svc.GetNewsSentiment(context.Background(), "ICICIBANK")
	require.NoError(t, err)
	second, err := svc.GetNewsSentiment(context.Background(), "icicibank")
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, first.Headlines, second.Headlines)
	assert.Equal(t, first.OverallSentiment, second.OverallSentiment)
	assert.Empty(t, first.Message)
	assert.Equal(t, MessageCached, second.Message)
}
