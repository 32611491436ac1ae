package common

const (
	RedisStreamNewsSentiment = "stock.news.sentiment"

	DateTimeLayoutUTC = "2006-01-02T15:04:05Z"

	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)
