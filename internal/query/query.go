// Package query turns list parameters into store-agnostic filtered, sorted and
// paged queries. Store adapters translate a Query into their native form.
package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Document fields a filter may reference.
const (
	FieldID         = "_id"
	FieldName       = "name"
	FieldInvoice    = "invoice"
	FieldStatus     = "status"
	FieldFilterDate = "filterDate"
)

// Paging defaults.
const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps Page*Limit within int64 for every accepted limit.
	MaxPage = math.MaxInt64 / MaxLimit
)

// DateLayout is the calendar-day format accepted by the date parameter.
const DateLayout = "2006-01-02"

// Params are the raw list parameters after lenient numeric parsing.
type Params struct {
	Page    int
	Limit   int
	Search  string
	Status  string
	Invoice string
	Date    string
}

// ParseParams reads list parameters from a query string. Malformed or out of
// range page/limit values fall back to their defaults instead of failing.
func ParseParams(v url.Values) Params {
	p := Params{
		Page:    atoiOr(v.Get("page"), 0),
		Limit:   atoiOr(v.Get("limit"), DefaultLimit),
		Search:  strings.TrimSpace(v.Get("search")),
		Status:  strings.TrimSpace(v.Get("status")),
		Invoice: strings.TrimSpace(v.Get("invoice")),
		Date:    strings.TrimSpace(v.Get("date")),
	}
	return p.normalized()
}

func (p Params) normalized() Params {
	if p.Page < 0 {
		p.Page = 0
	}
	if int64(p.Page) > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// Contains is a literal, case-insensitive substring match.
type Contains struct {
	Field string
	Text  string
}

// Equals is an exact match.
type Equals struct {
	Field string
	Value string
}

// TimeRange is the half-open interval [From, To).
type TimeRange struct {
	Field string
	From  time.Time
	To    time.Time
}

// Filter is the conjunction of its non-nil parts. The zero Filter matches all.
type Filter struct {
	Contains *Contains
	Equals   []Equals
	Range    *TimeRange
}

// IsEmpty reports whether the filter matches every document.
func (f Filter) IsEmpty() bool {
	return f.Contains == nil && len(f.Equals) == 0 && f.Range == nil
}

// Page is an offset window. Limit zero means unpaged.
type Page struct {
	Skip  int64
	Limit int64
}

// Sort orders results by one field.
type Sort struct {
	Field string
	Desc  bool
}

// Query is a complete list request against one collection.
type Query struct {
	Filter Filter
	Page   Page
	Sort   Sort
}

// Count returns the total-count form of q: same filter, no paging.
func (q Query) Count() Query {
	return Query{Filter: q.Filter, Sort: q.Sort}
}

// newestFirst orders by internal id descending. Ids are monotonic in insertion
// order, so ties cannot occur and concurrent inserts only ever land in front.
var newestFirst = Sort{Field: FieldID, Desc: true}

// Unpaged returns a query matching f over the whole collection, newest first.
func Unpaged(f Filter) Query {
	return Query{Filter: f, Sort: newestFirst}
}

// Builder builds collection queries. Location is the zone calendar days are
// resolved in.
type Builder struct {
	Location *time.Location
}

// NewBuilder returns a Builder for loc, defaulting to UTC.
func NewBuilder(loc *time.Location) Builder {
	if loc == nil {
		loc = time.UTC
	}
	return Builder{Location: loc}
}

// Phlebotomists builds the roster list query: search matches the name.
func (b Builder) Phlebotomists(p Params) (Query, error) {
	p = p.normalized()
	var f Filter
	if p.Search != "" {
		f.Contains = &Contains{Field: FieldName, Text: p.Search}
	}
	return paged(f, p), nil
}

// Samples builds the sample list query: search matches the invoice, invoice is
// an exact match, status is an exact match and date selects one calendar day.
func (b Builder) Samples(p Params) (Query, error) {
	p = p.normalized()
	var f Filter
	if p.Search != "" {
		f.Contains = &Contains{Field: FieldInvoice, Text: p.Search}
	}
	if p.Invoice != "" {
		f.Equals = append(f.Equals, Equals{Field: FieldInvoice, Value: p.Invoice})
	}
	if p.Status != "" {
		f.Equals = append(f.Equals, Equals{Field: FieldStatus, Value: p.Status})
	}
	if p.Date != "" {
		r, err := b.Day(p.Date)
		if err != nil {
			return Query{}, err
		}
		f.Range = &r
	}
	return paged(f, p), nil
}

// Day resolves a calendar day to [start of day, start of next day) over filterDate.
func (b Builder) Day(date string) (TimeRange, error) {
	loc := b.Location
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return TimeRange{Field: FieldFilterDate, From: start, To: start.AddDate(0, 0, 1)}, nil
}

func paged(f Filter, p Params) Query {
	return Query{
		Filter: f,
		Page:   Page{Skip: int64(p.Page) * int64(p.Limit), Limit: int64(p.Limit)},
		Sort:   newestFirst,
	}
}
