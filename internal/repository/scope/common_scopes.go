package scope

import "gorm.io/gorm"

func OrderByStartedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("started_at DESC")
}
