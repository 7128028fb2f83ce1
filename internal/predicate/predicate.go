// Package predicate is the closed set of typed filter predicates used by the
// reporting layer: date ranges, id-set membership and string-set membership.
// Each predicate evaluates in memory and can also narrow a gorm query.
package predicate

import (
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Scope is a gorm scope produced from a predicate.
type Scope = func(*gorm.DB) *gorm.DB

func noop(db *gorm.DB) *gorm.DB { return db }

// DateRange matches calendar dates between From and To inclusive.
// From and To are midnight values in the reporting location.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange truncates both bounds to midnight in loc.
func NewDateRange(from, to time.Time, loc *time.Location) DateRange {
	return DateRange{From: Midnight(from, loc), To: Midnight(to, loc)}
}

// Midnight returns t's calendar date at 00:00 in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// CalendarDate keeps t's own year, month and day and places that date at
// 00:00 in loc. Use it for values stored as dates rather than instants.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Contains reports whether t falls on a date inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Midnight(t, r.From.Location())
	return !d.Before(r.From) && !d.After(r.To)
}

// End is the exclusive upper instant of the range.
func (r DateRange) End() time.Time {
	return r.To.AddDate(0, 0, 1)
}

// Days is the inclusive day count.
func (r DateRange) Days() int {
	n := 0
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Scope restricts column to [From, End).
func (r DateRange) Scope(column string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" >= ? AND "+column+" < ?", r.From, r.End())
	}
}

// IDSet is a membership predicate over numeric ids. The empty set matches everything.
type IDSet map[uint]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...uint) IDSet {
	if len(ids) == 0 {
		return nil
	}
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Empty reports whether the set imposes no restriction.
func (s IDSet) Empty() bool { return len(s) == 0 }

// Contains reports membership; an empty set contains every id.
func (s IDSet) Contains(id uint) bool {
	if s.Empty() {
		return true
	}
	_, ok := s[id]
	return ok
}

// ContainsPtr is Contains for nullable references. A nil reference only
// matches an empty set.
func (s IDSet) ContainsPtr(id *uint) bool {
	if s.Empty() {
		return true
	}
	if id == nil {
		return false
	}
	return s.Contains(*id)
}

// Values returns the ids in ascending order.
func (s IDSet) Values() []uint {
	out := make([]uint, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Scope restricts column to the set, or does nothing when empty.
func (s IDSet) Scope(column string) Scope {
	if s.Empty() {
		return noop
	}
	values := s.Values()
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" IN ?", values)
	}
}

// StringSet is a membership predicate over strings, compared case-insensitively.
// The empty set matches everything.
type StringSet map[string]struct{}

// NewStringSet builds a set from values, dropping blanks.
func NewStringSet(values ...string) StringSet {
	var s StringSet
	for _, v := range values {
		v = normalize(v)
		if v == "" {
			continue
		}
		if s == nil {
			s = make(StringSet, len(values))
		}
		s[v] = struct{}{}
	}
	return s
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Empty reports whether the set imposes no restriction.
func (s StringSet) Empty() bool { return len(s) == 0 }

// Contains reports membership; an empty set contains every value.
func (s StringSet) Contains(v string) bool {
	if s.Empty() {
		return true
	}
	_, ok := s[normalize(v)]
	return ok
}

// Values returns the normalized values in ascending order.
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Scope restricts LOWER(column) to the set, or does nothing when empty.
func (s StringSet) Scope(column string) Scope {
	if s.Empty() {
		return noop
	}
	values := s.Values()
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER("+column+") IN ?", values)
	}
}

// ExactSet is a case-sensitive membership predicate, used for status codes
// where the stored spelling matters.
type ExactSet map[string]struct{}

// NewExactSet builds a case-sensitive set.
func NewExactSet(values ...string) ExactSet {
	s := make(ExactSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Contains reports exact membership. An empty ExactSet matches nothing.
func (s ExactSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members in ascending order.
func (s ExactSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Scope restricts column to the set.
func (s ExactSet) Scope(column string) Scope {
	values := s.Values()
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" IN ?", values)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns a free-text search term into a LIKE/ILIKE pattern
// matching the term literally anywhere in the column.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// Any reports whether at least one item satisfies pred.
func Any[T any](items []T, pred func(T) bool) bool {
	for _, item := range items {
		if pred(item) {
			return true
		}
	}
	return false
}
