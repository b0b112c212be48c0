package listing

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/schooldash/core"
)

var examFilters = FilterSpec{
	{Key: "teacherId", Fields: []string{"lesson.teacher_id"}, Coerce: AsString, Op: Equal},
	{Key: "classId", Fields: []string{"lesson.class_id"}, Coerce: AsInt, Op: Equal},
	{Key: SearchParam, Fields: []string{"lesson.subject.name"}, Coerce: AsString, Op: ContainsFold},
}

func TestFilterSpec_Build(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Filter
		wantErr error
	}{
		{name: "no params", query: "", want: Filter{}},
		{name: "unknown key ignored", query: "lol=1&page=2", want: Filter{}},
		{name: "empty value ignored", query: "classId=&search=", want: Filter{}},
		{
			name: "search", query: "search=algebra",
			want: Filter{{Key: "search", Fields: []string{"lesson.subject.name"}, Op: ContainsFold, Value: "algebra"}},
		},
		{
			name: "int coercion", query: "classId=4",
			want: Filter{{Key: "classId", Fields: []string{"lesson.class_id"}, Op: Equal, Value: 4}},
		},
		{
			name: "keys combine", query: "teacherId=t-1&classId=2",
			want: Filter{
				{Key: "teacherId", Fields: []string{"lesson.teacher_id"}, Op: Equal, Value: "t-1"},
				{Key: "classId", Fields: []string{"lesson.class_id"}, Op: Equal, Value: 2},
			},
		},
		{name: "bad int", query: "classId=abc", wantErr: &ParseError{Key: "classId", Value: "abc", Kind: AsInt}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, _ := url.ParseQuery(tt.query)
			got, err := examFilters.Build(params)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePage(t *testing.T) {
	last := strconv.Itoa(MaxPage(DefaultPageSize))
	tests := []struct {
		query   string
		want    Page
		wantErr string
	}{
		{query: "", want: Page{Number: 1, Size: 10}},
		{query: "page=2", want: Page{Number: 2, Size: 10}},
		{query: "page=" + last, want: Page{Number: MaxPage(DefaultPageSize), Size: 10}},
		{query: "page=0", wantErr: `invalid page "0": expected integer >= 1`},
		{query: "page=-3", wantErr: `invalid page "-3": expected integer >= 1`},
		{query: "page=two", wantErr: `invalid page "two": expected integer`},
		{query: "page=922337203685477582", wantErr: `invalid page "922337203685477582": expected integer <= ` + last},
		{query: "page=99999999999999999999", wantErr: `invalid page "99999999999999999999": expected integer`},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			params, _ := url.ParseQuery(tt.query)
			got, err := ParsePage(params, DefaultPageSize)
			if tt.wantErr != "" {
				_, ok := err.(*ParseError)
				assert.True(t, ok, "want *ParseError, got %v", err)
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPage_lastPageBounds(t *testing.T) {
	// the last addressable page never overflows: no rows, no next page
	p := Page{Number: MaxPage(DefaultPageSize), Size: DefaultPageSize}
	assert.True(t, p.Offset() >= 0)
	assert.Equal(t, 0, p.Len(15))
	assert.False(t, p.HasNext(15))
	start, end := p.Slice(15)
	assert.Equal(t, 15, start)
	assert.Equal(t, 15, end)
}

func TestPage_arithmetic(t *testing.T) {
	// page=2, pageSize=10, total=15 -> 5 rows, skip=10
	p := Page{Number: 2, Size: 10}
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, 5, p.Len(15))
	assert.Equal(t, 2, p.Pages(15))
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext(15))

	start, end := p.Slice(15)
	assert.Equal(t, 10, start)
	assert.Equal(t, 15, end)

	// rows = min(size, max(0, total - size*(page-1)))
	for total := 0; total <= 35; total++ {
		for n := 1; n <= 5; n++ {
			p := Page{Number: n, Size: 10}
			want := total - 10*(n-1)
			if want < 0 {
				want = 0
			}
			if want > 10 {
				want = 10
			}
			start, end := p.Slice(total)
			assert.Equal(t, want, p.Len(total))
			assert.Equal(t, want, end-start)
		}
	}

	first := Page{Number: 1, Size: 10}
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext(11))
	assert.False(t, first.HasNext(10))
	assert.Equal(t, 0, first.Pages(0))
}

func TestSortSpec_Parse(t *testing.T) {
	spec := SortSpec{
		Fields:  map[string]string{"title": "title", "startTime": "start_time"},
		Default: []core.DBOrdering{{Field: "start_time", Ascending: false}},
		Key:     "id",
	}
	tests := []struct {
		query string
		want  []core.DBOrdering
	}{
		{query: "", want: []core.DBOrdering{{Field: "start_time"}, {Field: "id", Ascending: true}}},
		{query: "ordering=title", want: []core.DBOrdering{{Field: "title", Ascending: true}, {Field: "id", Ascending: true}}},
		{
			query: "ordering=-title,startTime,lol",
			want:  []core.DBOrdering{{Field: "title"}, {Field: "start_time", Ascending: true}, {Field: "id", Ascending: true}},
		},
		{query: "ordering=lol", want: []core.DBOrdering{{Field: "start_time"}, {Field: "id", Ascending: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			params, _ := url.ParseQuery(tt.query)
			assert.Equal(t, tt.want, spec.Parse(params))
		})
	}
}

func TestParse(t *testing.T) {
	params, _ := url.ParseQuery("page=x&classId=1")
	_, err := Parse(params, examFilters, SortSpec{Key: "id"}, 10)
	assert.EqualError(t, err, `invalid page "x": expected integer`)

	params, _ = url.ParseQuery("page=3&search=Math")
	q, err := Parse(params, examFilters, SortSpec{Key: "id"}, 10)
	assert.NoError(t, err)
	assert.Equal(t, Page{Number: 3, Size: 10}, q.Page)
	assert.Len(t, q.Filter, 1)
	assert.Equal(t, []core.DBOrdering{{Field: "id", Ascending: true}}, q.Ordering)
}
