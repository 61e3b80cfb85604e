package query

import (
	"strings"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/option"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
)

type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "ASC"
	}
	return "DESC"
}

// ParseDirection treats anything but "asc" as descending.
func ParseDirection(token string) Direction {
	if strings.EqualFold(strings.TrimSpace(token), "asc") {
		return Ascending
	}
	return Descending
}

type SortOrder struct {
	// Path is the storage path after alias resolution.
	Path      string
	Direction Direction
}

// Pageable describes one page: a 0-based index, a bounded size and the
// sort orders.
type Pageable struct {
	PageIndex int
	PageSize  int
	Sort      []SortOrder
}

func (p Pageable) Offset() int {
	return p.PageIndex * p.PageSize
}

func (p Pageable) IsSorted() bool {
	return len(p.Sort) > 0
}

// PageLimits bounds the page size. The zero value means the defaults.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

func (l PageLimits) withDefaults() PageLimits {
	if l.MaxSize < 1 {
		l.MaxSize = MaxPageSize
	}
	if l.DefaultSize < 1 {
		l.DefaultSize = DefaultPageSize
	}
	if l.DefaultSize > l.MaxSize {
		l.DefaultSize = l.MaxSize
	}
	return l
}

// BuildPageable builds a Pageable with the default page limits.
func BuildPageable(
	page, size option.Option[int],
	sort option.Option[string],
	allowedSort FieldSet,
	aliases map[string]string,
) Pageable {
	return PageLimits{}.BuildPageable(page, size, sort, allowedSort, aliases)
}

// BuildPageable clamps the 1-based page to at least 1 and the size to
// [1, MaxSize], and parses the sort string.
func (l PageLimits) BuildPageable(
	page, size option.Option[int],
	sort option.Option[string],
	allowedSort FieldSet,
	aliases map[string]string,
) Pageable {
	l = l.withDefaults()
	number := page.UnwrapOr(1)
	if number < 1 {
		number = 1
	}
	pageSize := size.UnwrapOr(l.DefaultSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > l.MaxSize {
		pageSize = l.MaxSize
	}
	return Pageable{
		PageIndex: number - 1,
		PageSize:  pageSize,
		Sort:      ParseSort(sort.UnwrapOr(""), allowedSort, aliases),
	}
}

// ParseSort parses "field[:asc|desc],..." keeping only allowed fields.
// Disallowed fields are dropped silently; nil means unsorted.
func ParseSort(raw string, allowed FieldSet, aliases map[string]string) []SortOrder {
	var orders []SortOrder
	for _, segment := range strings.Split(raw, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		field, dir, _ := strings.Cut(segment, ":")
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		path := resolveAlias(aliases, field)
		if !allowed.Has(field) && !allowed.Has(path) {
			continue
		}
		orders = append(orders, SortOrder{Path: path, Direction: ParseDirection(dir)})
	}
	return orders
}
