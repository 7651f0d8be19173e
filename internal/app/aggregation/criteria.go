package aggregation

import (
	"net/url"
	"strings"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// ParseCriteria reads criteria from query parameters. Missing parameters
// fall back to DefaultCriteria; an empty selection also means "all".
func ParseCriteria(q url.Values) (Criteria, error) {
	c := DefaultCriteria()
	c.SearchTerm = q.Get("search")

	if v := q.Get("category"); v != "" {
		c.SelectedCategory = v
	}
	if v := q.Get("manufacturer"); v != "" {
		c.SelectedManufacturer = v
	}

	if v := strings.ToLower(q.Get("sortBy")); v != "" {
		switch SortBy(v) {
		case SortByName, SortByID, SortByRecent:
			c.SortBy = SortBy(v)
		default:
			return Criteria{}, domain.NewValidationError("sortBy must be one of name, id, recent")
		}
	}

	if v := strings.ToLower(q.Get("sortOrder")); v != "" {
		switch SortOrder(v) {
		case Asc, Desc:
			c.SortOrder = SortOrder(v)
		default:
			return Criteria{}, domain.NewValidationError("sortOrder must be asc or desc")
		}
	}

	return c, nil
}
