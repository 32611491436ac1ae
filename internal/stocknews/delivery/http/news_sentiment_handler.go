package http

import (
	"errors"
	"net/http"

	"golang-stock-sentiment/internal/stocknews/dto"
	"golang-stock-sentiment/internal/stocknews/service"
	"golang-stock-sentiment/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NewsSentimentHandler handles HTTP requests for ticker news sentiment.
type NewsSentimentHandler struct {
	newsSentimentService service.NewsSentimentService
	logger               *logger.Logger
}

// NewNewsSentimentHandler creates a new NewsSentimentHandler.
func NewNewsSentimentHandler(newsSentimentService service.NewsSentimentService, logger *logger.Logger) *NewsSentimentHandler {
	return &NewsSentimentHandler{newsSentimentService: newsSentimentService, logger: logger}
}

// RegisterRoutes registers the news sentiment routes to the Echo group.
func (h *NewsSentimentHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/news-sentiment", h.GetNewsSentiment)
}

// GetNewsSentiment godoc
// @Summary Get news sentiment for a stock symbol
// @Description Returns up to 3 recent headlines about the ticker with per-headline and overall sentiment.
// @Description Results are cached for 10 minutes per symbol.
// @Tags news
// @Accept  json
// @Produce  json
// @Param   request  body    dto.NewsSentimentRequest   true    "Ticker symbol"
// @Success 200 {object} dto.NewsSentimentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /news-sentiment [post]
func (h *NewsSentimentHandler) GetNewsSentiment(c echo.Context) error {
	var req dto.NewsSentimentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	ctx := logger.WithRequestID(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID))

	resp, err := h.newsSentimentService.GetNewsSentiment(ctx, req.Symbol)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSymbol):
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrFetchFailed):
			status := http.StatusInternalServerError
			if service.IsRateLimited(err) {
				status = http.StatusTooManyRequests
			}
			h.logger.ErrorContext(ctx, "News provider call failed", logger.ErrorField(err), logger.StringField("symbol", req.Symbol), logger.IntField("status", status))
			return c.JSON(status, dto.ErrorResponse{Error: err.Error()})
		default:
			h.logger.ErrorContext(ctx, "Failed to get news sentiment", logger.ErrorField(err), logger.StringField("symbol", req.Symbol))
			return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Server error: " + err.Error()})
		}
	}

	return c.JSON(http.StatusOK, resp)
}
