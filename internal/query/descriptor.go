// Package query describes what to fetch from the forecast store and how the
// fetched rows are exposed to the binding layer.
package query

import (
	"fmt"
	"strings"

	"github.com/i474232898/sunshine/internal/weather"
)

// Op is a comparison operator usable in a Filter.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Filter is an optional single-column predicate.
type Filter struct {
	Column weather.Column
	Op     Op
	Value  any
}

// Order is one ordering clause.
type Order struct {
	Column     weather.Column
	Descending bool
}

// Descriptor is an immutable description of a query: where to read from,
// which columns to project and how to filter and order the rows.
type Descriptor struct {
	source  weather.Locator
	columns []weather.Column
	filter  *Filter
	sort    []Order
}

// Option customizes a Descriptor at construction.
type Option func(*Descriptor)

// WithFilter sets the descriptor's predicate.
func WithFilter(f Filter) Option {
	return func(d *Descriptor) {
		d.filter = &f
	}
}

// WithSort appends ordering clauses.
func WithSort(orders ...Order) Option {
	return func(d *Descriptor) {
		d.sort = append(d.sort, orders...)
	}
}

// NewDescriptor builds a descriptor. The column slice is copied.
func NewDescriptor(source weather.Locator, columns []weather.Column, opts ...Option) Descriptor {
	d := Descriptor{
		source:  source,
		columns: append([]weather.Column(nil), columns...),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Source returns the locator the descriptor reads from.
func (d Descriptor) Source() weather.Locator { return d.source }

// Columns returns a copy of the projection.
func (d Descriptor) Columns() []weather.Column {
	return append([]weather.Column(nil), d.columns...)
}

// Filter returns the predicate, if any.
func (d Descriptor) Filter() (Filter, bool) {
	if d.filter == nil {
		return Filter{}, false
	}
	return *d.filter, true
}

// Sort returns a copy of the ordering clauses.
func (d Descriptor) Sort() []Order {
	return append([]Order(nil), d.sort...)
}

// Equal reports whether two descriptors describe the same query.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.String() == other.String()
}

// String renders the descriptor for logs.
func (d Descriptor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [", d.source)
	for i, c := range d.columns {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(string(c))
	}
	b.WriteString("]")
	if d.filter != nil {
		fmt.Fprintf(&b, " where %s %s %v", d.filter.Column, d.filter.Op, d.filter.Value)
	}
	for i, o := range d.sort {
		if i == 0 {
			b.WriteString(" order by ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(string(o.Column))
		if o.Descending {
			b.WriteString(" desc")
		}
	}
	return b.String()
}
