package github

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrTooDeepPagination = errors.New("too deep pagination")

// The search API refuses OR-chains longer than five terms and never serves
// results past the first thousand.
const (
	maxKeywordsPerQuery = 5
	maxSearchResults    = 1000
)

type SearchParameters struct {
	Keywords     []string
	Language     string
	MinStars     int
	UpdatedAfter time.Time
	Page         int
	PerPage      int
}

func (s SearchParameters) Validate() error {

	if s.Page < 1 {
		return fmt.Errorf("page must be positive")
	}

	if s.PerPage < 1 || s.PerPage > 100 {
		return fmt.Errorf("per page must be between 1 and 100")
	}

	maxPage := maxSearchResults / s.PerPage
	if s.Page > maxPage {
		return ErrTooDeepPagination
	}

	return nil
}

// Query builds the search expression. Keyword terms are OR-combined for broad
// retrieval; precision matching happens later in scoring.
func (s SearchParameters) Query() string {

	var parts []string

	keywords := s.Keywords
	if len(keywords) > maxKeywordsPerQuery {
		keywords = make([]string, len(s.Keywords))
		copy(keywords, s.Keywords)
		sort.Slice(keywords, func(i, j int) bool { return len(keywords[i]) < len(keywords[j]) })
		keywords = keywords[:maxKeywordsPerQuery]
	}
	if len(keywords) > 0 {
		parts = append(parts, strings.Join(keywords, " OR "))
	}

	if s.Language != "" {
		parts = append(parts, "language:"+s.Language)
	}

	if s.MinStars > 0 {
		parts = append(parts, fmt.Sprintf("stars:>=%d", s.MinStars))
	}

	if !s.UpdatedAfter.IsZero() {
		parts = append(parts, "pushed:>"+s.UpdatedAfter.Format("2006-01-02"))
	}

	parts = append(parts, "fork:false")

	return strings.Join(parts, " ")
}

func (s SearchParameters) ToUrlParams() url.Values {

	params := url.Values{}
	params.Add("q", s.Query())
	params.Add("sort", "stars")
	params.Add("order", "desc")
	params.Add("page", strconv.Itoa(s.Page))
	params.Add("per_page", strconv.Itoa(s.PerPage))
	return params
}
