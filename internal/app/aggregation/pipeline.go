// Package aggregation turns a product list and filter criteria into the
// filtered list and summary series the dashboard charts are drawn from.
// Every function is pure: inputs are never mutated and nothing is cached.
package aggregation

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mrops-br/catalog-api/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// All is the selection sentinel that disables a category or manufacturer filter.
	All = "all"

	TopManufacturers = 8
	TopCategoryCount = 5
)

type SortBy string

const (
	SortByName   SortBy = "name"
	SortByID     SortBy = "id"
	SortByRecent SortBy = "recent"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Criteria is the filter selection applied to a product list.
type Criteria struct {
	SearchTerm           string
	SelectedCategory     string
	SelectedManufacturer string
	SortBy               SortBy
	SortOrder            SortOrder
}

// DefaultCriteria matches everything and sorts by name ascending.
func DefaultCriteria() Criteria {
	return Criteria{
		SelectedCategory:     All,
		SelectedManufacturer: All,
		SortBy:               SortByName,
		SortOrder:            Asc,
	}
}

// Count is one point of a summary series.
type Count struct {
	Name  string
	Value int
}

// Dashboard bundles every derivation for one criteria selection.
type Dashboard struct {
	Products           []*domain.HydratedProduct
	CategoryCounts     []Count
	ManufacturerCounts []Count
	UserCounts         []Count
	TopCategories      []Count
	Categories         []string
	Manufacturers      []string
	Total              int
}

// Pipeline holds the language used for name comparison.
type Pipeline struct {
	tag language.Tag
}

// New returns a pipeline comparing names under tag.
func New(tag language.Tag) *Pipeline {
	return &Pipeline{tag: tag}
}

// Build filters and sorts products, then derives every series from the
// filtered list. Filter choices come from the unfiltered list.
func (p *Pipeline) Build(products []*domain.HydratedProduct, c Criteria) Dashboard {
	filtered := p.Sort(p.Filter(products, c), c)
	return Dashboard{
		Products:           filtered,
		CategoryCounts:     CategoryCounts(filtered),
		ManufacturerCounts: ManufacturerCounts(filtered),
		UserCounts:         UserCounts(filtered),
		TopCategories:      TopCategories(filtered),
		Categories:         DistinctCategories(products),
		Manufacturers:      DistinctManufacturers(products),
		Total:              len(filtered),
	}
}

// Filter keeps the products matching the search term and both selections.
// The input order is preserved.
func (p *Pipeline) Filter(products []*domain.HydratedProduct, c Criteria) []*domain.HydratedProduct {
	folder := cases.Fold()
	term := folder.String(c.SearchTerm)

	out := make([]*domain.HydratedProduct, 0, len(products))
	for _, product := range products {
		if term != "" && !strings.Contains(folder.String(product.Name), term) {
			continue
		}
		if !matchesAll(c.SelectedCategory) && !hasCategory(product, c.SelectedCategory) {
			continue
		}
		if !matchesAll(c.SelectedManufacturer) && !hasManufacturer(product, c.SelectedManufacturer) {
			continue
		}
		out = append(out, product)
	}
	return out
}

func matchesAll(selection string) bool {
	return selection == All
}

func hasCategory(product *domain.HydratedProduct, name string) bool {
	return slices.ContainsFunc(product.Categories, func(l domain.ProductCategoryLink) bool {
		return l.CategoryName == name
	})
}

func hasManufacturer(product *domain.HydratedProduct, name string) bool {
	return slices.ContainsFunc(product.Manufacturers, func(l domain.ProductManufacturerLink) bool {
		return l.Manufacturer.Name == name
	})
}

// Sort returns a stably sorted copy. SortByRecent keeps the input order.
func (p *Pipeline) Sort(products []*domain.HydratedProduct, c Criteria) []*domain.HydratedProduct {
	out := slices.Clone(products)

	var compare func(a, b *domain.HydratedProduct) int
	switch c.SortBy {
	case SortByName:
		// collators carry scratch buffers, so each call gets its own
		col := collate.New(p.tag)
		compare = func(a, b *domain.HydratedProduct) int {
			return col.CompareString(a.Name, b.Name)
		}
	case SortByID:
		compare = func(a, b *domain.HydratedProduct) int {
			return cmp.Compare(a.ID, b.ID)
		}
	default:
		return out
	}

	if c.SortOrder == Desc {
		asc := compare
		compare = func(a, b *domain.HydratedProduct) int {
			return -asc(a, b)
		}
	}

	slices.SortStableFunc(out, compare)
	return out
}

// tally counts names in first-appearance order
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(name string) {
	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

func (t *tally) series() []Count {
	out := make([]Count, len(t.order))
	for i, name := range t.order {
		out[i] = Count{Name: name, Value: t.counts[name]}
	}
	return out
}

// top sorts by value descending, keeping ties in appearance order, and
// truncates to n entries
func top(series []Count, n int) []Count {
	slices.SortStableFunc(series, func(a, b Count) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if len(series) > n {
		series = series[:n]
	}
	return series
}

// CategoryCounts tallies category links across products.
func CategoryCounts(products []*domain.HydratedProduct) []Count {
	t := newTally()
	for _, p := range products {
		for _, l := range p.Categories {
			t.add(l.CategoryName)
		}
	}
	return t.series()
}

// ManufacturerCounts tallies manufacturer links and keeps the top eight.
func ManufacturerCounts(products []*domain.HydratedProduct) []Count {
	t := newTally()
	for _, p := range products {
		for _, l := range p.Manufacturers {
			t.add(l.Manufacturer.Name)
		}
	}
	return top(t.series(), TopManufacturers)
}

// UserCounts tallies user links by username.
func UserCounts(products []*domain.HydratedProduct) []Count {
	t := newTally()
	for _, p := range products {
		for _, l := range p.Users {
			t.add(l.User.Username)
		}
	}
	return t.series()
}

// TopCategories is CategoryCounts sorted by count and cut to five.
func TopCategories(products []*domain.HydratedProduct) []Count {
	return top(CategoryCounts(products), TopCategoryCount)
}

// DistinctCategories lists category names in order of first appearance.
func DistinctCategories(products []*domain.HydratedProduct) []string {
	t := newTally()
	for _, p := range products {
		for _, l := range p.Categories {
			t.add(l.CategoryName)
		}
	}
	return nonNil(t.order)
}

// DistinctManufacturers lists manufacturer names in order of first appearance.
func DistinctManufacturers(products []*domain.HydratedProduct) []string {
	t := newTally()
	for _, p := range products {
		for _, l := range p.Manufacturers {
			t.add(l.Manufacturer.Name)
		}
	}
	return nonNil(t.order)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
