package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-stock-sentiment/internal/stocknews/dto"
	"golang-stock-sentiment/pkg/common"
	redisPkg "golang-stock-sentiment/pkg/redis"

	goRedis "github.com/redis/go-redis/v9"
)

// SentimentEventPublisher announces freshly computed sentiment results.
type SentimentEventPublisher interface {
	Publish(ctx context.Context, event *dto.NewsSentimentEvent) error
}

type redisEventPublisher struct {
	redisClient *redisPkg.Client
	maxLen      int64
}

// NewSentimentEventPublisher publishes events to the stock.news.sentiment redis stream.
func NewSentimentEventPublisher(redisClient *redisPkg.Client, maxLen int64) SentimentEventPublisher {
	return &redisEventPublisher{redisClient: redisClient, maxLen: maxLen}
}

func (p *redisEventPublisher) Publish(ctx context.Context, event *dto.NewsSentimentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal sentiment event: %w", err)
	}
	return p.redisClient.XAdd(ctx, &goRedis.XAddArgs{
		Stream: common.RedisStreamNewsSentiment,
		Values: map[string]interface{}{"payload": string(payload), "symbol": event.Symbol},
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
	}).Err()
}

type nopEventPublisher struct{}

// NewNopEventPublisher returns a publisher that drops every event. Used when redis is disabled.
func NewNopEventPublisher() SentimentEventPublisher {
	return nopEventPublisher{}
}

func (nopEventPublisher) Publish(context.Context, *dto.NewsSentimentEvent) error {
	return nil
}
