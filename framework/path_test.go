package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestLookup(t *testing.T) {
	doc := ldvalue.Parse([]byte(`{"id":7,"data":{"email":"ann@x.io","tags":["a","b"]},"items":[{"id":1},{"id":2}],"gone":null}`))

	for _, p := range []struct {
		path     string
		expected ldvalue.Value
	}{
		{"id", ldvalue.Int(7)},
		{"$.id", ldvalue.Int(7)},
		{"data.email", ldvalue.String("ann@x.io")},
		{"data.tags[1]", ldvalue.String("b")},
		{"$.items[1].id", ldvalue.Int(2)},
		{"gone", ldvalue.Null()},
		{"$", doc},
		{"", doc},
	} {
		t.Run(p.path, func(t *testing.T) {
			v, found, err := Lookup(doc, p.path)
			require.NoError(t, err)
			assert.True(t, found)
			assert.True(t, p.expected.Equal(v), "got %s", v.JSONString())
		})
	}
}

func TestLookupMissing(t *testing.T) {
	doc := ldvalue.Parse([]byte(`{"id":7,"items":[{"id":1}]}`))

	for _, path := range []string{"name", "id.x", "items[3]", "items[0].name", "id[0]"} {
		t.Run(path, func(t *testing.T) {
			v, found, err := Lookup(doc, path)
			require.NoError(t, err)
			assert.False(t, found)
			assert.True(t, v.IsNull())
		})
	}
}

func TestLookupInvalidPath(t *testing.T) {
	for _, path := range []string{"a..b", "items[x]", "items[0", "items[0]x"} {
		t.Run(path, func(t *testing.T) {
			_, _, err := Lookup(ldvalue.ObjectBuild().Build(), path)
			assert.Error(t, err)
		})
	}
}

func TestParamString(t *testing.T) {
	assert.Equal(t, "7", paramString(ldvalue.Int(7)))
	assert.Equal(t, "abc", paramString(ldvalue.String("abc")))
	assert.Equal(t, "true", paramString(ldvalue.Bool(true)))
}
