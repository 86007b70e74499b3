package output_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/output"
	"github.com/effective-security/toolbox/pkg/llmutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputDefault(t *testing.T) {
	data := map[string]any{"x": 1}
	o := output.New(data)

	assert.Equal(t, output.ModeDefault, o.Mode())
	assert.Equal(t, fmt.Sprint(data), o.String())
	assert.Equal(t, "map[x:1]", o.GetContent())
	assert.Equal(t, data, o.Data())

	got, ok := o.Get(output.DataName)
	require.True(t, ok)
	assert.Equal(t, data, got)

	_, ok = o.Get("")
	assert.False(t, ok)
}

func TestOutputJSON(t *testing.T) {
	data := map[string]any{"x": 1}
	o := output.New(data, output.JSON())

	assert.Equal(t, output.ModeJSON, o.Mode())
	assert.Equal(t, "{\n  \"x\": 1\n}", o.String())

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(o.String()), &parsed))
	assert.Equal(t, map[string]any{"x": 1.0}, parsed)

	// data is not changed by the format
	assert.Equal(t, map[string]any{"x": 1}, o.Data())

	nonASCII := output.New(map[string]string{"city": "Zürich <центр> 北京"}, output.JSON())
	assert.Equal(t, "{\n  \"city\": \"Zürich <центр> 北京\"\n}", nonASCII.String())

	_, err := output.New(make(chan int), output.JSON()).Render()
	assert.Error(t, err)
}

func TestOutputYAML(t *testing.T) {
	o := output.New(map[string]any{"x": 1}, output.YAML())
	assert.Equal(t, "x: 1\n", o.String())
}

type record struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func TestOutputAlias(t *testing.T) {
	docs := []*record{{ID: "1", Text: "first"}}
	o := output.New(docs, output.WithAlias("docs"))

	assert.Equal(t, "docs", o.Alias())
	got, ok := o.Get("docs")
	require.True(t, ok)
	assert.Equal(t, docs, got)

	got, ok = o.Get(output.DataName)
	require.True(t, ok)
	assert.Equal(t, docs, got)

	_, ok = o.Get("records")
	assert.False(t, ok)

	js, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1","text":"first"}]`, string(js))
}

func TestOutputRenderer(t *testing.T) {
	o := output.New("answer",
		output.WithExtra("source", "kb1"),
		output.WithExtras(map[string]any{"score": 0.5}),
		output.WithRenderer(func(o *output.Output) (string, error) {
			src, _ := o.Extra("source")
			score, _ := o.Extra("score")
			return fmt.Sprintf("%v (source=%v, score=%v)", o.Data(), src, score), nil
		}),
	)
	assert.Equal(t, output.ModeCustom, o.Mode())
	assert.Equal(t, "answer (source=kb1, score=0.5)", o.String())
	assert.Equal(t, map[string]any{"source": "kb1", "score": 0.5}, o.Extras())

	// extras is a copy
	o.Extras()["source"] = "changed"
	src, _ := o.Extra("source")
	assert.Equal(t, "kb1", src)

	_, ok := o.Extra("missing")
	assert.False(t, ok)
}

func TestOutputRendererFailure(t *testing.T) {
	o := output.New(1, output.WithRenderer(func(*output.Output) (string, error) {
		return "", errors.New("bad renderer")
	}))
	_, err := o.Render()
	assert.EqualError(t, err, "bad renderer")
	assert.Equal(t, "%!v(output error: bad renderer)", o.String())

	_, err = llmutils.Render(o)
	assert.EqualError(t, err, "bad renderer")

	panicky := output.New(1, output.WithRenderer(func(*output.Output) (string, error) {
		panic("renderer panic")
	}))
	assert.Panics(t, func() { _ = panicky.String() })

	_, err = output.New(1, output.WithRenderer(nil)).Render()
	assert.EqualError(t, err, "renderer is not set")
}

func TestOutputLastFormatWins(t *testing.T) {
	o := output.New(map[string]int{"a": 1},
		output.WithRenderer(func(*output.Output) (string, error) { return "custom", nil }),
		output.JSON(),
	)
	assert.Equal(t, "{\n  \"a\": 1\n}", o.String())
	assert.Empty(t, output.New(1).Extras())
}

func TestOutputTOML(t *testing.T) {
	o := output.New(map[string]any{"x": 1}, output.TOML())
	assert.Equal(t, output.ModeTOML, o.Mode())
	assert.Equal(t, "x = 1\n", o.String())

	type point struct {
		X int `toml:"x"`
	}
	assert.Equal(t, "x = 2\n", output.New(&point{X: 2}, output.TOML()).String())

	_, err := output.New([]int{1, 2}, output.TOML()).Render()
	assert.EqualError(t, err, "failed to render TOML: expected struct or map, got slice")

	_, err = output.New("plain", output.TOML()).Render()
	assert.EqualError(t, err, "failed to render TOML: expected struct or map, got string")

	var nilPoint *point
	_, err = output.New(nilPoint, output.TOML()).Render()
	assert.EqualError(t, err, "failed to render TOML: expected struct or map, got invalid")
}

func TestOutputTemplate(t *testing.T) {
	o := output.New(map[string]int{"a": 1},
		output.Template(`{{ .Data | toJson }} for {{ index .Extras "query" | upper }}`),
		output.WithExtra("query", "q"),
	)
	assert.Equal(t, output.ModeCustom, o.Mode())
	assert.Equal(t, `{"a":1} for Q`, o.String())

	_, err := output.New(1, output.Template(`{{ .Data`)).Render()
	assert.ErrorContains(t, err, "failed to parse template")

	_, err = output.New(1, output.Template(`{{ .Missing }}`)).Render()
	assert.ErrorContains(t, err, "failed to execute template")
}
