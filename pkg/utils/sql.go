package utils

import "gorm.io/gorm"

type DBOption func(*gorm.DB) *gorm.DB

func ApplyOptions(db *gorm.DB, opts ...DBOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

func WithWhere(query interface{}, args ...interface{}) DBOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// WithPagination applies limit/offset; a non-positive limit falls back to defaultLimit.
func WithPagination(limit, offset, defaultLimit int) DBOption {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			limit = defaultLimit
		}
		if offset < 0 {
			offset = 0
		}
		return db.Limit(limit).Offset(offset)
	}
}
