package dto

// NewsSentimentRequest is the body of POST /news-sentiment.
type NewsSentimentRequest struct {
	Symbol string `json:"symbol" example:"TCS"`
}

// HeadlineResponse is one labelled headline.
type HeadlineResponse struct {
	Title     string `json:"title"`
	Sentiment string `json:"sentiment" enums:"positive,negative,neutral"`
}

// NewsSentimentResponse is the result for one ticker.
type NewsSentimentResponse struct {
	Symbol           string             `json:"symbol"`
	Timestamp        string             `json:"timestamp" example:"2025-01-02T03:04:05Z"`
	Headlines        []HeadlineResponse `json:"headlines"`
	OverallSentiment string             `json:"overall_sentiment" enums:"positive,negative,neutral"`
	Message          string             `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
