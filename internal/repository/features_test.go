package repository

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFeatures_Filter_Equality(t *testing.T) {
	f := NewFeatures(url.Values{"role": {"admin"}}).Filter()

	assert.Equal(t, bson.M{"role": "admin"}, f.FilterDoc)
}

func TestFeatures_Filter_ReservedKeysRemoved(t *testing.T) {
	params := url.Values{
		"page":   {"2"},
		"sort":   {"email"},
		"limit":  {"10"},
		"fields": {"email"},
		"role":   {"user"},
	}
	f := NewFeatures(params).Filter()

	assert.Equal(t, bson.M{"role": "user"}, f.FilterDoc)
}

func TestFeatures_Filter_OperatorSuffix(t *testing.T) {
	f := NewFeatures(url.Values{"age[gte]": {"18"}}).Filter()

	assert.Equal(t, bson.M{"age": bson.M{"$gte": int64(18)}}, f.FilterDoc)
}

func TestFeatures_Filter_MultipleOperatorsOneField(t *testing.T) {
	params := url.Values{
		"age[gte]": {"18"},
		"age[lt]":  {"65"},
	}
	f := NewFeatures(params).Filter()

	assert.Equal(t, bson.M{"age": bson.M{"$gte": int64(18), "$lt": int64(65)}}, f.FilterDoc)
}

func TestFeatures_Filter_EqSuffixIsPlainEquality(t *testing.T) {
	f := NewFeatures(url.Values{"role[eq]": {"guide"}}).Filter()

	assert.Equal(t, bson.M{"role": "guide"}, f.FilterDoc)
}

func TestFeatures_Filter_UnknownSuffixFallsBackToLiteralKey(t *testing.T) {
	f := NewFeatures(url.Values{"name[like]": {"bob"}}).Filter()

	assert.Equal(t, bson.M{"name[like]": "bob"}, f.FilterDoc)
}

func TestFeatures_Filter_OperatorWordInsideValueIsUntouched(t *testing.T) {
	// "gte" inside a plain value must stay literal text.
	f := NewFeatures(url.Values{"fullname": {"gte smith"}}).Filter()

	assert.Equal(t, bson.M{"fullname": "gte smith"}, f.FilterDoc)
}

func TestFeatures_Filter_CoercesNumbersAndBooleans(t *testing.T) {
	params := url.Values{
		"score[gt]": {"4.5"},
		"verified":  {"true"},
	}
	f := NewFeatures(params).Filter()

	assert.Equal(t, bson.M{
		"score":    bson.M{"$gt": 4.5},
		"verified": true,
	}, f.FilterDoc)
}

func TestFeatures_Sort_Default(t *testing.T) {
	f := NewFeatures(url.Values{}).Sort()

	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, f.SortDoc)
}

func TestFeatures_Sort_CommaSeparatedWithDescending(t *testing.T) {
	f := NewFeatures(url.Values{"sort": {"-fullname,email"}}).Sort()

	assert.Equal(t, bson.D{
		{Key: "fullname", Value: -1},
		{Key: "email", Value: 1},
	}, f.SortDoc)
}

func TestFeatures_LimitFields(t *testing.T) {
	f := NewFeatures(url.Values{"fields": {"fullname,email,-role"}}).LimitFields()

	assert.Equal(t, bson.M{"fullname": 1, "email": 1, "role": 0}, f.ProjectionDoc)
}

func TestFeatures_LimitFields_NoneLeavesProjectionNil(t *testing.T) {
	f := NewFeatures(url.Values{}).LimitFields()

	assert.Nil(t, f.ProjectionDoc)
}

func TestFeatures_Paginate_Defaults(t *testing.T) {
	f := NewFeatures(url.Values{}).Paginate()

	assert.Equal(t, int64(0), f.SkipN)
	assert.Equal(t, int64(defaultLimit), f.LimitN)
}

func TestFeatures_Paginate_Window(t *testing.T) {
	f := NewFeatures(url.Values{"page": {"3"}, "limit": {"20"}}).Paginate()

	assert.Equal(t, int64(40), f.SkipN)
	assert.Equal(t, int64(20), f.LimitN)
}

func TestFeatures_Paginate_ClampsLimit(t *testing.T) {
	f := NewFeatures(url.Values{"limit": {"999999"}}).Paginate()

	assert.Equal(t, int64(maxLimit), f.LimitN)
}

func TestFeatures_Paginate_IgnoresGarbage(t *testing.T) {
	f := NewFeatures(url.Values{"page": {"-2"}, "limit": {"abc"}}).Paginate()

	assert.Equal(t, int64(0), f.SkipN)
	assert.Equal(t, int64(defaultLimit), f.LimitN)
}

func TestFeatures_Build_Chains(t *testing.T) {
	params := url.Values{
		"role":     {"user"},
		"sort":     {"-fullname"},
		"limit":    {"2"},
		"page":     {"1"},
		"fields":   {"fullname"},
		"age[gte]": {"21"},
	}
	f := NewFeatures(params).Build()

	assert.Equal(t, bson.M{"role": "user", "age": bson.M{"$gte": int64(21)}}, f.FilterDoc)
	assert.Equal(t, bson.D{{Key: "fullname", Value: -1}}, f.SortDoc)
	assert.Equal(t, bson.M{"fullname": 1}, f.ProjectionDoc)
	assert.Equal(t, int64(0), f.SkipN)
	assert.Equal(t, int64(2), f.LimitN)
}
