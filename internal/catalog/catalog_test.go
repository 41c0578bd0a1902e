package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/rules"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, DefaultSource, c.Source)
	assert.Equal(t, []string{rules.KakuYatsuGumi8, rules.KongoGumi8}, c.IDs())
	assert.Empty(t, c.Unsupported(rules.DefaultRegistry()))

	kongo, ok := c.Find(rules.KongoGumi8)
	require.True(t, ok)
	assert.Equal(t, 16, kongo.TotalSteps)
	require.Len(t, kongo.Setup, 8)
	for i, s := range kongo.Setup {
		assert.Equal(t, i, s.Position)
	}
}

func TestLoadFile_JSONArray(t *testing.T) {
	c, err := NewLoader().LoadFile(filepath.Join("testdata", "patterns.json"))
	require.NoError(t, err)

	require.Len(t, c.Patterns, 1)
	p := c.Patterns[0]
	assert.Equal(t, "kongo_gumi_8", p.ID)
	assert.Equal(t, "images/kongo.png", p.PreviewImage)
	assert.Equal(t, "#ff0000", p.Setup[0].Color, "colours are lower-cased")
}

func TestLoadFile_YAML(t *testing.T) {
	c, err := NewLoader().LoadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	p, ok := c.Find("kaku_yatsu_gumi_8")
	require.True(t, ok)
	assert.Equal(t, "", p.Description, "description defaults to empty")
	assert.Equal(t, []ir.Strand{
		{ID: "a", Color: "red", Position: 1},
		{ID: "b", Color: "208", Position: 2},
		{ID: "c", Color: "#abc", Position: 5},
	}, p.Setup)
}

func TestLoadFile_CUE(t *testing.T) {
	c, err := NewLoader().LoadFile(filepath.Join("testdata", "catalog.cue"))
	require.NoError(t, err)

	p, ok := c.Find("kongo_gumi_8")
	require.True(t, ok)
	assert.Equal(t, "Kongo from CUE", p.Name)
	assert.Equal(t, "#222222", p.Setup[1].Color)
}

func TestLoadFile_Errors(t *testing.T) {
	l := NewLoader()

	_, err := l.LoadFile(filepath.Join("testdata", "missing.json"))
	assert.True(t, IsLoadError(err, ErrCodeNotFound))

	_, err = l.LoadFile(filepath.Join("testdata", "catalog.txt"))
	assert.True(t, IsLoadError(err, ErrCodeUnsupportedFormat))
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		code LoadErrorCode
	}{
		{
			name: "malformed json",
			data: `[{"id": `,
			code: ErrCodeParseFailed,
		},
		{
			name: "unknown field",
			data: `[{"id":"p","name":"P","totalSteps":1,"bogus":true,"setup":[{"id":"a","color":"red","position":0}]}]`,
			code: ErrCodeSchema,
		},
		{
			name: "position off ring",
			data: `[{"id":"p","name":"P","totalSteps":1,"setup":[{"id":"a","color":"red","position":16}]}]`,
			code: ErrCodeSchema,
		},
		{
			name: "missing total steps",
			data: `[{"id":"p","name":"P","setup":[{"id":"a","color":"red","position":0}]}]`,
			code: ErrCodeSchema,
		},
		{
			name: "empty setup",
			data: `[{"id":"p","name":"P","totalSteps":1,"setup":[]}]`,
			code: ErrCodeSchema,
		},
		{
			name: "bad colour",
			data: `[{"id":"p","name":"P","totalSteps":1,"setup":[{"id":"a","color":"not a colour","position":0}]}]`,
			code: ErrCodeInvalidPattern,
		},
		{
			name: "shared slot",
			data: `[{"id":"p","name":"P","totalSteps":1,"setup":[{"id":"a","color":"red","position":0},{"id":"b","color":"red","position":0}]}]`,
			code: ErrCodeInvalidPattern,
		},
		{
			name: "duplicate pattern",
			data: `{"patterns":[
				{"id":"p","name":"P","totalSteps":1,"setup":[{"id":"a","color":"red","position":0}]},
				{"id":"p","name":"Q","totalSteps":1,"setup":[{"id":"a","color":"red","position":0}]}]}`,
			code: ErrCodeDuplicatePattern,
		},
		{
			name: "empty catalog",
			data: `[]`,
			code: ErrCodeEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatJSON, "inline.json")
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le), "got %T: %v", err, err)
			assert.Equal(t, tt.code, le.Code, le.Error())
		})
	}
}

func TestParse_NormalizesText(t *testing.T) {
	data := `[{"id":"p","name":"  Caf\u00e9  ","totalSteps":1,"setup":[{"id":"a","color":"RED","position":0}]}]`

	c, err := Parse([]byte(data), FormatJSON, "inline.json")
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", c.Patterns[0].Name)
	assert.Equal(t, "red", c.Patterns[0].Setup[0].Color)
}

func TestLookupSuggests(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Lookup("kongo_gumi")
	var upe *rules.UnknownPatternError
	require.True(t, errors.As(err, &upe))
	assert.Equal(t, rules.KongoGumi8, upe.Suggestion)
}

func TestUnsupported(t *testing.T) {
	c, err := NewLoader().LoadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	reg := rules.NewRegistry()
	assert.Equal(t, []string{"kaku_yatsu_gumi_8"}, c.Unsupported(reg))
}

func TestNew(t *testing.T) {
	c, err := New([]ir.Pattern{{
		ID: "p", Name: "P", TotalSteps: 2,
		Setup: []ir.Strand{{ID: "a", Color: "#fff", Position: 3}},
	}}, "store")
	require.NoError(t, err)
	assert.Equal(t, "store", c.Source)

	_, err = New(nil, "store")
	assert.True(t, IsLoadError(err, ErrCodeEmpty))

	_, err = New([]ir.Pattern{{ID: "p", Name: "P", TotalSteps: 0, Setup: []ir.Strand{{ID: "a", Color: "red"}}}}, "store")
	assert.True(t, IsLoadError(err, ErrCodeInvalidPattern))
}

func TestLoadURL(t *testing.T) {
	body := `[{"id":"kongo_gumi_8","name":"K","totalSteps":2,"setup":[{"id":"a","color":"red","position":7}]}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/patterns.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		case "/feed":
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write([]byte("patterns:\n  - {id: q, name: Q, totalSteps: 1, setup: [{id: a, color: red, position: 0}]}\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))

	c, err := l.Load(context.Background(), srv.URL+"/patterns.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"kongo_gumi_8"}, c.IDs())

	c, err = l.Load(context.Background(), srv.URL+"/feed")
	require.NoError(t, err)
	assert.Equal(t, []string{"q"}, c.IDs())

	_, err = l.Load(context.Background(), srv.URL+"/missing.json")
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeHTTPStatus, le.Code)
	assert.Contains(t, le.Message, "404")
}

func TestResolveSource(t *testing.T) {
	env := map[string]string{EnvCatalog: "/etc/kumihimo.yaml"}
	l := NewLoader(WithGetenv(func(k string) string { return env[k] }))

	assert.Equal(t, "flag.json", l.ResolveSource("flag.json"))
	assert.Equal(t, "/etc/kumihimo.yaml", l.ResolveSource(""))

	delete(env, EnvCatalog)
	assert.Equal(t, "", l.ResolveSource(""))

	c, err := l.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSource, c.Source)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"a.YML", FormatYAML, true},
		{"dir/a.yaml", FormatYAML, true},
		{"a.cue", FormatCUE, true},
		{"https://x.test/p.json?v=2", FormatJSON, true},
		{"a.txt", "", false},
	}
	for _, tt := range tests {
		got, ok := DetectFormat(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestValidColor(t *testing.T) {
	for _, c := range []string{"#fff", "#A0B1C2", "red", "0", "255"} {
		assert.True(t, ValidColor(c), c)
	}
	for _, c := range []string{"#ffff", "256", "-1", "rgb(1,2,3)", ""} {
		assert.False(t, ValidColor(c), c)
	}
}
