package specification

import (
	"fmt"

	"gorm.io/gorm"
)

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination converts a 1-based page into limit/offset
type Pagination struct {
	Page  int
	Limit int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	page := s.Page
	if page < 1 {
		page = 1
	}
	return db.Limit(s.Limit).Offset((page - 1) * s.Limit)
}
