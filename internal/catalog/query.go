// Package catalog 实现课程目录的检索：搜索、筛选、排序与分页。
// 所有函数都是纯函数，相同输入总得到相同输出。
package catalog

import (
	"coursemaster/internal/model"
	"sort"
	"strings"
)

const (
	AllCategories   = "All Categories"
	AllLevels       = "All Levels"
	DefaultPageSize = 6
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPopular   SortKey = "popular"
	SortRating    SortKey = "rating"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortNewest, SortPopular, SortRating, SortPriceLow, SortPriceHigh:
		return true
	}
	return false
}

// Params 检索参数，零值经 Normalize 后即为默认值
type Params struct {
	Search   string  `form:"search" json:"search"`
	Category string  `form:"category" json:"category"`
	Level    string  `form:"level" json:"level"`
	Sort     SortKey `form:"sort" json:"sort"`
	PageSize int     `form:"-" json:"pageSize"`
	Page     int     `form:"page" json:"page"`
}

func (p Params) Normalize() Params {
	if p.Category == "" {
		p.Category = AllCategories
	}
	if p.Level == "" {
		p.Level = AllLevels
	}
	if !p.Sort.Valid() {
		p.Sort = SortPopular
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	return p
}

// ActiveFilters 统计生效的筛选条件数（搜索、分类、难度）
func (p Params) ActiveFilters() int {
	p = p.Normalize()
	n := 0
	if strings.TrimSpace(p.Search) != "" {
		n++
	}
	if p.Category != AllCategories {
		n++
	}
	if p.Level != AllLevels {
		n++
	}
	return n
}

// Changed 筛选或排序条件是否变化；变化时调用方应回到第 1 页
func (p Params) Changed(other Params) bool {
	a, b := p.Normalize(), other.Normalize()
	return a.Search != b.Search || a.Category != b.Category || a.Level != b.Level || a.Sort != b.Sort
}

// Page 一页检索结果
type Page struct {
	Items      []model.Course `json:"items"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// Query 对课程集合依次执行搜索、分类、难度筛选，稳定排序后切出请求的页。
// 不会修改入参，不会失败；页码越界时返回空页。
func Query(courses []model.Course, params Params) Page {
	p := params.Normalize()

	matched := Filter(courses, p)
	Sort(matched, p.Sort)

	total := len(matched)
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.PageSize - 1) / p.PageSize
	}

	start := (p.Page - 1) * p.PageSize
	end := p.Page * p.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      matched[start:end],
		Total:      total,
		TotalPages: totalPages,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
}

// Filter 返回满足全部筛选条件的新切片，保持原有顺序
func Filter(courses []model.Course, params Params) []model.Course {
	p := params.Normalize()
	query := strings.ToLower(strings.TrimSpace(p.Search))

	out := make([]model.Course, 0, len(courses))
	for _, c := range courses {
		if query != "" && !matchesSearch(c, query) {
			continue
		}
		if p.Category != AllCategories && c.Category != p.Category {
			continue
		}
		if p.Level != AllLevels && string(c.Level) != p.Level {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesSearch(c model.Course, query string) bool {
	if strings.Contains(strings.ToLower(c.Title), query) ||
		strings.Contains(strings.ToLower(c.Instructor), query) {
		return true
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Sort 按排序键原地稳定排序；未知键按 popular 处理
func Sort(courses []model.Course, key SortKey) {
	var less func(a, b model.Course) bool
	switch key {
	case SortNewest:
		less = func(a, b model.Course) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortRating:
		less = func(a, b model.Course) bool { return a.Rating > b.Rating }
	case SortPriceLow:
		less = func(a, b model.Course) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b model.Course) bool { return a.Price > b.Price }
	default:
		less = func(a, b model.Course) bool { return a.EnrolledCount > b.EnrolledCount }
	}
	sort.SliceStable(courses, func(i, j int) bool {
		return less(courses[i], courses[j])
	})
}
