package vectordb

import "time"

// FilterSet groups filter conditions into must (AND), should (OR) and
// mustNot (NOT) clauses. A nil FilterSet means no filtering.
type FilterSet struct {
	Must    []FilterCondition `json:"must,omitempty"`
	Should  []FilterCondition `json:"should,omitempty"`
	MustNot []FilterCondition `json:"mustNot,omitempty"`
}

// FilterCondition is one predicate against a payload field. Exactly one
// of the predicate fields should be set.
type FilterCondition struct {
	// Field is the payload key the predicate applies to.
	Field string `json:"field"`

	// Match requires the field to equal this value.
	Match any `json:"match,omitempty"`

	// MatchAny requires the field to equal one of these values.
	MatchAny []any `json:"matchAny,omitempty"`

	// Range requires the field to fall inside a numeric range.
	Range *NumericRange `json:"range,omitempty"`

	// TimeRange requires the field to fall inside a time range.
	TimeRange *TimeRange `json:"timeRange,omitempty"`
}

// NumericRange bounds a numeric payload field. Nil bounds are open.
type NumericRange struct {
	GTE *float64 `json:"gte,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

// TimeRange bounds a timestamp payload field. Zero bounds are open.
type TimeRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// NewFilterSet returns an empty filter set.
func NewFilterSet() *FilterSet {
	return &FilterSet{}
}

// AddMust appends an AND condition and returns the set for chaining.
func (f *FilterSet) AddMust(cond FilterCondition) *FilterSet {
	f.Must = append(f.Must, cond)
	return f
}

// AddShould appends an OR condition and returns the set for chaining.
func (f *FilterSet) AddShould(cond FilterCondition) *FilterSet {
	f.Should = append(f.Should, cond)
	return f
}

// AddMustNot appends a NOT condition and returns the set for chaining.
func (f *FilterSet) AddMustNot(cond FilterCondition) *FilterSet {
	f.MustNot = append(f.MustNot, cond)
	return f
}

// IsEmpty reports whether the set contains no conditions.
func (f *FilterSet) IsEmpty() bool {
	return f == nil || (len(f.Must) == 0 && len(f.Should) == 0 && len(f.MustNot) == 0)
}

// MatchField builds an equality condition.
func MatchField(field string, value any) FilterCondition {
	return FilterCondition{Field: field, Match: value}
}

// MatchAnyField builds a one-of condition.
func MatchAnyField(field string, values ...any) FilterCondition {
	return FilterCondition{Field: field, MatchAny: values}
}

// RangeField builds a numeric range condition.
func RangeField(field string, gte, lte *float64) FilterCondition {
	return FilterCondition{Field: field, Range: &NumericRange{GTE: gte, LTE: lte}}
}

// TimeRangeField builds a time range condition.
func TimeRangeField(field string, from, to time.Time) FilterCondition {
	return FilterCondition{Field: field, TimeRange: &TimeRange{From: from, To: to}}
}
