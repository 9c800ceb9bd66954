package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit mirrors the default page size of the public API.
	DefaultLimit = 6
	maxLimit     = 100
)

// Params is the page/limit pair read from the query string.
type Params struct {
	Page  int
	Limit int
}

// FromQuery reads `page` and `limit`, falling back to defaults on
// missing or malformed values.
func FromQuery(c *gin.Context) Params {
	p := Params{Page: 1, Limit: DefaultLimit}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		p.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		p.Limit = limit
		if p.Limit > maxLimit {
			p.Limit = maxLimit
		}
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is the envelope returned by list endpoints.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// NewPage wraps results with next/previous links derived from the
// request URL.
func NewPage(c *gin.Context, p Params, count int64, results interface{}) Page {
	page := Page{Count: count, Results: results}
	if int64(p.Page*p.Limit) < count {
		page.Next = pageURL(c, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = pageURL(c, p.Page-1)
	}
	return page
}

func pageURL(c *gin.Context, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
