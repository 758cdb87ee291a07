package catalog

import (
	"coursemaster/internal/model"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func course(id, title, instructor, category string, level model.CourseLevel, price float64, enrolled int, rating float64, tags ...string) model.Course {
	return model.Course{
		UUIDBase:      model.UUIDBase{ID: id},
		Title:         title,
		Instructor:    instructor,
		Category:      category,
		Level:         level,
		Price:         price,
		EnrolledCount: enrolled,
		Rating:        rating,
		Tags:          tags,
	}
}

func fixtures() []model.Course {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	courses := []model.Course{
		course("1", "Go Fundamentals", "Ada Lovelace", "Development", model.Beginner, 49, 1200, 4.7, "go", "backend"),
		course("2", "Advanced React", "Grace Hopper", "Development", model.Advanced, 89, 3400, 4.9, "react", "frontend"),
		course("3", "UI Design Basics", "Alan Kay", "Design", model.Beginner, 29, 800, 4.2, "figma"),
		course("4", "Data Science with Python", "Ada Lovelace", "Data Science", model.Intermediate, 99, 5000, 4.8, "python", "pandas"),
		course("5", "Marketing 101", "Don Draper", "Marketing", model.Beginner, 0, 150, 3.9),
		course("6", "Kubernetes in Depth", "Kelsey H", "DevOps", model.Advanced, 120, 2200, 4.6, "k8s", "Go"),
	}
	for i := range courses {
		courses[i].CreatedAt = base.AddDate(0, i, 0)
	}
	return courses
}

func ids(courses []model.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.ID
	}
	return out
}

func TestQueryDefaults(t *testing.T) {
	page := Query(fixtures(), Params{})

	assert.Equal(t, 6, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Equal(t, []string{"4", "2", "6", "1", "3", "5"}, ids(page.Items))
}

func TestQuerySearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "title", search: "react", want: []string{"2"}},
		{name: "instructor case-insensitive", search: "ADA", want: []string{"4", "1"}},
		{name: "tag", search: "go", want: []string{"6", "1"}},
		{name: "whitespace matches all", search: "   ", want: []string{"4", "2", "6", "1", "3", "5"}},
		{name: "nothing", search: "cobol", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Query(fixtures(), Params{Search: tt.search})
			assert.Equal(t, tt.want, ids(page.Items))
		})
	}
}

func TestQueryCategoryAndLevel(t *testing.T) {
	page := Query(fixtures(), Params{Category: "Development"})
	assert.Equal(t, []string{"2", "1"}, ids(page.Items))

	page = Query(fixtures(), Params{Category: "Development", Level: "Beginner"})
	assert.Equal(t, []string{"1"}, ids(page.Items))

	page = Query(fixtures(), Params{Category: AllCategories, Level: "Advanced"})
	assert.Equal(t, []string{"2", "6"}, ids(page.Items))
}

func TestQueryResultsSatisfyFilters(t *testing.T) {
	all := fixtures()
	searches := []string{"", "go", "ada", "design"}
	categories := []string{AllCategories, "Development", "Design", "Marketing"}
	levels := []string{AllLevels, "Beginner", "Advanced"}

	for _, s := range searches {
		for _, cat := range categories {
			for _, lvl := range levels {
				p := Params{Search: s, Category: cat, Level: lvl, PageSize: 100}
				page := Query(all, p)
				for _, c := range page.Items {
					if s != "" {
						assert.True(t, matchesSearch(c, strings.ToLower(s)), "search %q kept %s", s, c.ID)
					}
					if cat != AllCategories {
						assert.Equal(t, cat, c.Category)
					}
					if lvl != AllLevels {
						assert.Equal(t, lvl, string(c.Level))
					}
				}
				assert.Len(t, Filter(all, p), page.Total)
			}
		}
	}
}

func TestQuerySortKeys(t *testing.T) {
	tests := []struct {
		sort SortKey
		want []string
	}{
		{sort: SortNewest, want: []string{"6", "5", "4", "3", "2", "1"}},
		{sort: SortPopular, want: []string{"4", "2", "6", "1", "3", "5"}},
		{sort: SortRating, want: []string{"2", "4", "1", "6", "3", "5"}},
		{sort: SortPriceLow, want: []string{"5", "3", "1", "2", "4", "6"}},
		{sort: SortPriceHigh, want: []string{"6", "4", "2", "1", "3", "5"}},
		{sort: "bogus", want: []string{"4", "2", "6", "1", "3", "5"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			page := Query(fixtures(), Params{Sort: tt.sort})
			assert.Equal(t, tt.want, ids(page.Items))
		})
	}
}

func TestSortIsStable(t *testing.T) {
	courses := []model.Course{
		course("a", "A", "x", "c", model.Beginner, 10, 0, 0),
		course("b", "B", "x", "c", model.Beginner, 5, 0, 0),
		course("c", "C", "x", "c", model.Beginner, 10, 0, 0),
		course("d", "D", "x", "c", model.Beginner, 5, 0, 0),
	}

	page := Query(courses, Params{Sort: SortPriceLow})
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(page.Items))
	for i := 1; i < len(page.Items); i++ {
		assert.LessOrEqual(t, page.Items[i-1].Price, page.Items[i].Price)
	}

	// 缺失的时间和数值按零值参与比较
	page = Query(courses, Params{Sort: SortNewest})
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(page.Items))
}

func TestQueryPagination(t *testing.T) {
	courses := make([]model.Course, 13)
	for i := range courses {
		courses[i] = course(fmt.Sprint(i), "T", "I", "C", model.Beginner, float64(i), 0, 0)
	}

	page := Query(courses, Params{Sort: SortPriceLow, PageSize: 6, Page: 1})
	assert.Equal(t, 13, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 6)

	page = Query(courses, Params{Sort: SortPriceLow, PageSize: 6, Page: 3})
	require.Len(t, page.Items, 1)
	assert.Equal(t, "12", page.Items[0].ID)

	page = Query(courses, Params{PageSize: 6, Page: 9})
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)
}

func TestQueryEmpty(t *testing.T) {
	page := Query(nil, Params{Search: "anything"})
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
}

func TestQueryIsPure(t *testing.T) {
	all := fixtures()
	before := ids(all)
	p := Params{Search: "a", Sort: SortPriceHigh}

	first := Query(all, p)
	second := Query(all, p)

	assert.Equal(t, ids(first.Items), ids(second.Items))
	assert.Equal(t, before, ids(all))
}

func TestParamsHelpers(t *testing.T) {
	assert.Equal(t, 0, Params{}.ActiveFilters())
	assert.Equal(t, 2, Params{Search: "go", Level: "Beginner"}.ActiveFilters())
	assert.Equal(t, 3, Params{Search: "go", Category: "Design", Level: "Beginner"}.ActiveFilters())

	assert.False(t, Params{Page: 2}.Changed(Params{Page: 1}))
	assert.False(t, Params{}.Changed(Params{Category: AllCategories, Sort: SortPopular}))
	assert.True(t, Params{}.Changed(Params{Sort: SortRating}))
}
