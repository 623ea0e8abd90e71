package repository

import "gorm.io/gorm"

const defaultListLimit = 10

// applyLimitOffset 应用分页参数，统一处理非法 limit 与 offset。
func applyLimitOffset(query *gorm.DB, limit, offset int) *gorm.DB {
	if query == nil {
		return query
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
