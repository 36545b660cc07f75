package qdrant

import (
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/tutuni-ai/backend/internal/vectordb"
)

// ── Filter Conversion ────────────────────────────────────────────────────────

// convertFilterSet converts a vectordb.FilterSet to a Qdrant filter.
func convertFilterSet(filters *vectordb.FilterSet) *qdrant.Filter {
	if filters == nil {
		return nil
	}

	filter := &qdrant.Filter{
		Must:    convertConditions(filters.Must),
		Should:  convertConditions(filters.Should),
		MustNot: convertConditions(filters.MustNot),
	}

	// Return nil if no conditions were added
	if len(filter.Must) == 0 && len(filter.Should) == 0 && len(filter.MustNot) == 0 {
		return nil
	}

	return filter
}

func convertConditions(conds []vectordb.FilterCondition) []*qdrant.Condition {
	var out []*qdrant.Condition
	for _, c := range conds {
		if cond := convertCondition(c); cond != nil {
			out = append(out, cond)
		}
	}
	return out
}

// convertCondition converts a single vectordb.FilterCondition to a Qdrant
// condition. Conditions with no usable predicate convert to nil.
func convertCondition(c vectordb.FilterCondition) *qdrant.Condition {
	switch {
	case c.Match != nil:
		return convertMatch(c.Field, c.Match)
	case len(c.MatchAny) > 0:
		return convertMatchAny(c.Field, c.MatchAny)
	case c.Range != nil:
		return convertRange(c.Field, c.Range)
	case c.TimeRange != nil:
		return convertTimeRange(c.Field, c.TimeRange)
	default:
		return nil
	}
}

func convertMatch(field string, value any) *qdrant.Condition {
	switch v := value.(type) {
	case string:
		return qdrant.NewMatch(field, v)
	case bool:
		return qdrant.NewMatchBool(field, v)
	case int:
		return qdrant.NewMatchInt(field, int64(v))
	case int64:
		return qdrant.NewMatchInt(field, v)
	case float64:
		// Handle JSON numbers which are float64 by default
		return qdrant.NewMatchInt(field, int64(v))
	default:
		return nil
	}
}

func convertMatchAny(field string, values []any) *qdrant.Condition {
	// Detect type from first value
	switch values[0].(type) {
	case string:
		strs := make([]string, len(values))
		for i, v := range values {
			if s, ok := v.(string); ok {
				strs[i] = s
			}
		}
		return qdrant.NewMatchKeywords(field, strs...)
	case int, int64, float64:
		ints := make([]int64, len(values))
		for i, v := range values {
			switch n := v.(type) {
			case int:
				ints[i] = int64(n)
			case int64:
				ints[i] = n
			case float64:
				ints[i] = int64(n)
			}
		}
		return qdrant.NewMatchInts(field, ints...)
	}
	return nil
}

func convertRange(field string, r *vectordb.NumericRange) *qdrant.Condition {
	if r.GTE == nil && r.LTE == nil {
		return nil
	}
	return qdrant.NewRange(field, &qdrant.Range{
		Gte: r.GTE,
		Lte: r.LTE,
	})
}

func convertTimeRange(field string, r *vectordb.TimeRange) *qdrant.Condition {
	dateRange := &qdrant.DatetimeRange{}
	if !r.From.IsZero() {
		dateRange.Gte = timestamppb.New(r.From)
	}
	if !r.To.IsZero() {
		dateRange.Lte = timestamppb.New(r.To)
	}
	if dateRange.Gte == nil && dateRange.Lte == nil {
		return nil
	}
	return qdrant.NewDatetimeRange(field, dateRange)
}

// ── Result Conversion ────────────────────────────────────────────────────────

// parseSearchResults converts a Qdrant response to vectordb.SearchResult slice.
func parseSearchResults(resp []*qdrant.ScoredPoint) ([]vectordb.SearchResult, error) {
	results := make([]vectordb.SearchResult, 0, len(resp))
	for _, r := range resp {
		id, err := extractPointID(r.Id)
		if err != nil {
			return nil, err
		}

		results = append(results, vectordb.SearchResult{
			ID:      id,
			Score:   r.Score,
			Payload: convertPayload(r.Payload),
		})
	}
	return results, nil
}

// extractPointID extracts a string ID from Qdrant's PointId type.
func extractPointID(id *qdrant.PointId) (string, error) {
	if id == nil {
		return "", fmt.Errorf("nil point ID")
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num), nil
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	default:
		return "", fmt.Errorf("unexpected PointId type: %T", v)
	}
}

// convertPayload converts Qdrant's protobuf payload to a generic map.
func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = extractValue(v)
	}
	return result
}

// extractValue recursively converts a Qdrant Value to a Go native type.
func extractValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		return convertPayload(val.StructValue.Fields)
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = extractValue(item)
		}
		return items
	default:
		return nil
	}
}
