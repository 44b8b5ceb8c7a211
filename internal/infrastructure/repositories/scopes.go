package repositories

import (
	"gorm.io/gorm"

	"avilegal.backend/pkg/utils"
)

func paginate(page utils.PaginationParams) func(*gorm.DB) *gorm.DB {
	p := utils.GetPaginationParams(page.Page, page.Limit)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.CalculateOffset()).Limit(p.Limit)
	}
}
