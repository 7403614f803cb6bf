package review

import (
	"net/url"
	"strconv"

	"flavorhood/internal/shared/storage"
)

// ParseListQuery 解析列表查询参数
//
// page 非正数或非法时回退到 1，limit 同理回退到默认页大小；
// 过滤与排序参数原样透传，由存储层翻译为查询条件。
func ParseListQuery(values url.Values) storage.ReviewQuery {
	q := storage.ReviewQuery{
		Category: values.Get("category"),
		Search:   values.Get("search"),
		SortBy:   values.Get("sortBy"),
		Page:     1,
		Limit:    storage.DefaultPageLimit,
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}
	return q
}
