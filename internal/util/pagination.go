package util

import (
	"strconv"

	"github.com/openconf/confreg/internal/constant"
)

func CalculateTotalPage(totalItems int64, pageSize uint) int {
	if pageSize <= 0 {
		pageSize = constant.DefaultPageSize
	}
	if totalItems == 0 {
		return 1
	}
	totalPage := int(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) != 0 {
		totalPage++
	}
	return totalPage
}

// ParsePageParams turns raw page/limit query values into usable
// pagination values. Absent or invalid values fall back to the
// defaults, limit is capped at MaxPageSize and page at MaxPage.
func ParsePageParams(rawPage, rawLimit string) (page uint, pageSize uint) {
	page = constant.DefaultPage
	pageSize = constant.DefaultPageSize

	if p, err := strconv.Atoi(rawPage); err == nil && p >= 1 {
		page = uint(p)
	}

	if l, err := strconv.Atoi(rawLimit); err == nil && l >= 1 {
		pageSize = uint(l)
	}

	if page > constant.MaxPage {
		page = constant.MaxPage
	}

	if pageSize > constant.MaxPageSize {
		pageSize = constant.MaxPageSize
	}

	return page, pageSize
}
