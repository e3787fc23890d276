package repository

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// reserved query parameters consumed by the builder itself, never treated as
// filter fields.
var reservedParams = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// comparison operator suffixes accepted in the field[op]=value form.
var filterOperators = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
	"ne":  "$ne",
	"eq":  "$eq",
}

// Features translates flat request query parameters into a composed read
// query: filter, sort order, projected fields and a pagination window.
// Methods mutate the receiver and return it for chaining; the caller executes
// the composed query exactly once.
type Features struct {
	params url.Values

	FilterDoc     bson.M
	SortDoc       bson.D
	ProjectionDoc bson.M
	SkipN         int64
	LimitN        int64
}

// NewFeatures wraps the request's query parameters.
func NewFeatures(params url.Values) *Features {
	return &Features{
		params:    params,
		FilterDoc: bson.M{},
		LimitN:    defaultLimit,
	}
}

// Build runs all four features.
func (f *Features) Build() *Features {
	return f.Filter().Sort().LimitFields().Paginate()
}

// Filter turns every non-reserved parameter into an equality constraint, or a
// comparison constraint when written as field[op]=value with op one of
// gt, gte, lt, lte, ne, eq. Unknown operator suffixes fall back to equality
// on the literal key.
func (f *Features) Filter() *Features {
	for key, values := range f.params {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		value := coerceValue(values[0])

		field, op, ok := splitOperator(key)
		if !ok {
			f.FilterDoc[key] = value
			continue
		}
		if op == "$eq" {
			f.FilterDoc[field] = value
			continue
		}
		constraint, isDoc := f.FilterDoc[field].(bson.M)
		if !isDoc {
			constraint = bson.M{}
			f.FilterDoc[field] = constraint
		}
		constraint[op] = value
	}
	return f
}

// Sort applies the comma-separated sort parameter, a leading '-' meaning
// descending. Without one, newest documents come first.
func (f *Features) Sort() *Features {
	sortParam := f.params.Get("sort")
	if sortParam == "" {
		f.SortDoc = bson.D{{Key: "createdAt", Value: -1}}
		return f
	}
	for _, field := range strings.Split(sortParam, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		order := 1
		if strings.HasPrefix(field, "-") {
			order = -1
			field = field[1:]
		}
		f.SortDoc = append(f.SortDoc, bson.E{Key: field, Value: order})
	}
	return f
}

// LimitFields restricts the projection to the comma-separated fields
// parameter. Without one, the projection is left to the resource's default.
func (f *Features) LimitFields() *Features {
	fieldsParam := f.params.Get("fields")
	if fieldsParam == "" {
		return f
	}
	f.ProjectionDoc = bson.M{}
	for _, field := range strings.Split(fieldsParam, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.HasPrefix(field, "-") {
			f.ProjectionDoc[field[1:]] = 0
		} else {
			f.ProjectionDoc[field] = 1
		}
	}
	return f
}

// Paginate computes the skip/limit window from the page and limit parameters.
// Page defaults to 1, limit to 100 and is clamped to 1000.
func (f *Features) Paginate() *Features {
	page := parsePositive(f.params.Get("page"), 1)
	limit := parsePositive(f.params.Get("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	f.SkipN = (page - 1) * limit
	f.LimitN = limit
	return f
}

// splitOperator parses the field[op] key form.
func splitOperator(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	mongoOp, known := filterOperators[key[open+1:len(key)-1]]
	if !known {
		return "", "", false
	}
	return key[:open], mongoOp, true
}

// coerceValue converts numeric and boolean literals so comparisons work on
// typed document fields; everything else stays a string.
func coerceValue(raw string) interface{} {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if fl, err := strconv.ParseFloat(raw, 64); err == nil {
		return fl
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func parsePositive(raw string, def int64) int64 {
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return def
	}
	return n
}
