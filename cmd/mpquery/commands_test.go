package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	q, err := parseParams([]string{"formula=SiO2", "elements=Si", "elements=O", "elements=Li", "band_gap_min=0.5"})
	require.NoError(t, err)
	assert.Equal(t, "SiO2", q["formula"])
	assert.Equal(t, []string{"Si", "O", "Li"}, q["elements"])

	v, err := q.Encode()
	require.NoError(t, err)
	assert.Equal(t, "Si,O,Li", v.Get("elements"))
	assert.Equal(t, "0.5", v.Get("band_gap_min"))

	for _, bad := range []string{"formula", "=SiO2"} {
		_, err := parseParams([]string{bad})
		assert.Error(t, err, "param %q", bad)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"material_id", "band_gap"}, splitList(" material_id, ,band_gap "))
	assert.Empty(t, splitList(""))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****wxyz", maskKey("abcdwxyz"))
	assert.Equal(t, "***", maskKey("abc"))
	assert.Empty(t, maskKey(""))
}

func TestCell(t *testing.T) {
	assert.Equal(t, "", cell(nil))
	assert.Equal(t, "mp-149", cell("mp-149"))
	assert.Equal(t, "0.6123", cell(0.61234))
	assert.Equal(t, "true", cell(true))
	assert.Equal(t, `["Si"]`, cell([]any{"Si"}))

	long := map[string]any{"description": "a very long description that will not fit into a table cell"}
	got := cell(long)
	assert.Len(t, got, 60)
	assert.Contains(t, got, "...")
}

func TestBuildApp(t *testing.T) {
	app := buildApp()
	names := map[string]bool{}
	for _, c := range app.Commands {
		names[c.Name] = true
	}
	for _, want := range []string{"search", "get", "count", "fields", "routes", "settings", "chgcar"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
