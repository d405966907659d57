package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReference(t *testing.T) {
	cases := []struct {
		base, ref, want string
	}{
		{"https://tile.example.com/v1/3dtiles/root.json?key=k", "/v1/3dtiles/datasets/A/files/B.json?session=s", "https://tile.example.com/v1/3dtiles/datasets/A/files/B.json?session=s"},
		{"https://example.com/a/tileset.json", "b/0.b3dm", "https://example.com/a/b/0.b3dm"},
		{"https://example.com/a/tileset.json", "https://cdn.example.com/x.glb", "https://cdn.example.com/x.glb"},
		{"file:///data/plateau/tileset.json", "0/1.b3dm", "file:///data/plateau/0/1.b3dm"},
		{"", "relative.json", "relative.json"},
	}

	for _, c := range cases {
		got, err := ResolveReference(c.base, c.ref)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	_, err := ResolveReference("https://example.com/", "%zz")
	assert.Error(t, err)
}

func TestWithQueryParam(t *testing.T) {
	assert.Equal(t, "https://a/b.json?key=k", WithQueryParam("https://a/b.json", "key", "k"))
	assert.Equal(t, "https://a/b.json?session=s&key=k", WithQueryParam("https://a/b.json?session=s", "key", "k"))
	assert.Equal(t, "https://a/b.json?session=old", WithQueryParam("https://a/b.json?session=old", "session", "new"))
	assert.Equal(t, "https://a/b.json", WithQueryParam("https://a/b.json", "key", ""))
}

func TestWithQueryParamKeepsExistingQuery(t *testing.T) {
	assert.Equal(t, "https://a/b.json?z=1&session=AbC%2Fd%3D%3D&key=k",
		WithQueryParam("https://a/b.json?z=1&session=AbC%2Fd%3D%3D", "key", "k"))
	assert.Equal(t, "https://a/b.json?session=a+b;c&key=k#frag",
		WithQueryParam("https://a/b.json?session=a+b;c#frag", "key", "k"))
	assert.Equal(t, "https://a/b.json?key=a%2Fb", WithQueryParam("https://a/b.json?", "key", "a/b"))
	assert.Equal(t, "https://a/b.json?v=1&session=s", WithQueryParam("https://a/b.json?v=1&", "session", "s"))
}

func TestQueryValueAndStrip(t *testing.T) {
	assert.Equal(t, "s1", QueryValue("/files/B.json?session=s1&key=k", "session"))
	assert.Equal(t, "", QueryValue("/files/B.json", "session"))
	assert.Equal(t, "https://a/b.json", StripQuery("https://a/b.json?x=1#f"))
	assert.Equal(t, "/tmp/t.json", LocalPath("file:///tmp/t.json"))
}
