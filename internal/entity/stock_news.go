package entity

import (
	"time"
)

// StockNews is a cached headline for a ticker together with its sentiment label.
// All rows of a symbol are written in one batch and share the same Timestamp.
type StockNews struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"type:varchar(20);not null;index:idx_stock_news_symbol_timestamp,priority:1" json:"symbol"`
	Timestamp time.Time `gorm:"not null;index:idx_stock_news_symbol_timestamp,priority:2" json:"timestamp"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	Sentiment string    `gorm:"type:varchar(10);not null" json:"sentiment"`
}

// TableName specifies the table name for the StockNews model.
func (StockNews) TableName() string {
	return "stock_news"
}
