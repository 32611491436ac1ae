package dto

// CandidateHeadline is an article returned by a news provider before filtering.
type CandidateHeadline struct {
	Title       string
	PublishedAt string
	Source      string
}

// NewsAPIResponse is the body returned by the NewsAPI /v2/everything endpoint.
type NewsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []NewsAPIArticle `json:"articles"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
}

// NewsAPIArticle is a single article entry of NewsAPIResponse.
type NewsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// NewsSentimentEvent is published to the sentiment stream after a fresh fetch.
type NewsSentimentEvent struct {
	Symbol           string             `json:"symbol"`
	Timestamp        string             `json:"timestamp"`
	Provider         string             `json:"provider"`
	Headlines        []HeadlineResponse `json:"headlines"`
	OverallSentiment string             `json:"overall_sentiment"`
}
