package specification

import "gorm.io/gorm"

// Specification narrows a query. Repositories apply them in the order given,
// so filters go before OrderBy and Pagination.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
