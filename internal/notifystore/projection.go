package notifystore

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/nhle/storefront/internal/model"
)

// Filter selects which part of the all view the list page shows.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterUnread Filter = "unread"
	FilterRead   Filter = "read"
)

// Filters lists the filters in the order the list page cycles them.
var Filters = []Filter{FilterAll, FilterUnread, FilterRead}

// ParseFilter converts a user-supplied name into a Filter.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterUnread, FilterRead:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Next returns the filter after f in Filters, wrapping around.
func (f Filter) Next() Filter {
	for i, c := range Filters {
		if c == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// Match reports whether n belongs in the filtered view.
func (f Filter) Match(n model.Notification) bool {
	switch f {
	case FilterUnread:
		return !n.IsRead
	case FilterRead:
		return n.IsRead
	default:
		return true
	}
}

// Filtered lazily yields the records of all that match f, in order.
func Filtered(all []model.Notification, f Filter) iter.Seq[model.Notification] {
	return func(yield func(model.Notification) bool) {
		for _, n := range all {
			if f.Match(n) && !yield(n) {
				return
			}
		}
	}
}

// badgeCap is the largest count the badge shows verbatim.
const badgeCap = 9

// BadgeLabel is the bell badge text for count unread notifications:
// "" for none, the count up to 9, and "9+" beyond.
func BadgeLabel(count int) string {
	switch {
	case count <= 0:
		return ""
	case count > badgeCap:
		return strconv.Itoa(badgeCap) + "+"
	default:
		return strconv.Itoa(count)
	}
}
