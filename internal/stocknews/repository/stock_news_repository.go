package repository

import (
	"context"
	"time"

	"golang-stock-sentiment/internal/entity"

	"gorm.io/gorm"
)

// StockNewsRepository is the cache store of labelled headlines keyed by symbol.
type StockNewsRepository interface {
	FindFresh(ctx context.Context, symbol string, since time.Time) ([]entity.StockNews, error)
	DeleteBySymbol(ctx context.Context, symbol string) (int64, error)
	CreateBatch(ctx context.Context, news []entity.StockNews) error
}

// NewStockNewsRepository creates a new instance of StockNewsRepository.
func NewStockNewsRepository(db *gorm.DB) StockNewsRepository {
	return &stockNewsRepository{
		db: db,
	}
}

type stockNewsRepository struct {
	db *gorm.DB
}

// FindFresh returns the rows of symbol written at or after since, in insertion order.
func (r *stockNewsRepository) FindFresh(ctx context.Context, symbol string, since time.Time) ([]entity.StockNews, error) {
	var news []entity.StockNews
	err := r.db.WithContext(ctx).
		Where(`symbol = ? AND "timestamp" >= ?`, symbol, since).
		Order("id ASC").
		Find(&news).Error
	if err != nil {
		return nil, err
	}
	return news, nil
}

// DeleteBySymbol removes every cached row of symbol and reports how many were deleted.
func (r *stockNewsRepository) DeleteBySymbol(ctx context.Context, symbol string) (int64, error) {
	result := r.db.WithContext(ctx).Where("symbol = ?", symbol).Delete(&entity.StockNews{})
	return result.RowsAffected, result.Error
}

// CreateBatch inserts all rows in one transaction.
func (r *stockNewsRepository) CreateBatch(ctx context.Context, news []entity.StockNews) error {
	if len(news) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&news).Error
	})
}
