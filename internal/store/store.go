// Package store persists company profiles. Production runs target
// Postgres; anything that is not a postgres URL is opened as a SQLite
// file, which also backs the tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/sahamkita/idxref/pkg/models"
)

// Store wraps the profiles table.
type Store struct {
	db *gorm.DB
}

// Open connects to the database named by url and migrates the schema.
func Open(url string) (*Store, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		dialector = postgres.Open(url)
	} else {
		dialector = sqlite.Open(url)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return New(db)
}

// New wraps an existing gorm handle and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.CompanyProfile{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// LoadAll returns every stored profile, active and delisted.
func (s *Store) LoadAll(ctx context.Context) ([]models.CompanyProfile, error) {
	var rows []models.CompanyProfile
	if err := s.db.WithContext(ctx).Order("symbol").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return rows, nil
}

// LoadActiveSymbols returns symbol -> company name for every stored row
// without a delisting date. This is the stored side of reconciliation.
func (s *Store) LoadActiveSymbols(ctx context.Context) (map[string]string, error) {
	var rows []models.CompanyProfile
	err := s.db.WithContext(ctx).
		Select("symbol", "company_name").
		Where("delisting_date IS NULL").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load active symbols: %w", err)
	}

	symbols := make(map[string]string, len(rows))
	for _, row := range rows {
		symbols[row.Symbol] = row.CompanyName
	}
	return symbols, nil
}

// LoadCompany returns one profile, or nil when the symbol has never been
// stored.
func (s *Store) LoadCompany(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	var row models.CompanyProfile
	err := s.db.WithContext(ctx).First(&row, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load company %s: %w", symbol, err)
	}
	return &row, nil
}

// UpsertCompanies inserts or fully replaces profile rows by symbol.
func (s *Store) UpsertCompanies(ctx context.Context, rows []models.CompanyProfile) error {
	if len(rows) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			UpdateAll: true,
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert %d companies: %w", len(rows), err)
	}
	return nil
}

// MarkDelisted records a delisting date for the symbol, only when none is
// recorded yet. The first recorded date is authoritative; later runs must
// not move it. Reports whether a row was updated.
func (s *Store) MarkDelisted(ctx context.Context, symbol, date string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.CompanyProfile{}).
		Where("symbol = ? AND delisting_date IS NULL", symbol).
		Update("delisting_date", date)
	if res.Error != nil {
		return false, fmt.Errorf("mark delisted %s: %w", symbol, res.Error)
	}
	return res.RowsAffected > 0, nil
}
