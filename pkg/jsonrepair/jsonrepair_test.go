package jsonrepair_test

import (
	"testing"

	"go-resume-screener/pkg/jsonrepair"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindObject(t *testing.T) {
	t.Run("Should skip prose and markdown fences", func(t *testing.T) {
		raw := "Sure! Here is the JSON:\n```json\n{\"name\": \"Jane\", \"skills\": [\"go\"]}\n```\nLet me know."
		span, ok := jsonrepair.FindObject(raw)
		require.True(t, ok)
		assert.Equal(t, `{"name": "Jane", "skills": ["go"]}`, span)
	})

	t.Run("Should ignore braces inside strings", func(t *testing.T) {
		span, ok := jsonrepair.FindObject(`{"summary": "uses {braces}"} trailing {junk}`)
		require.True(t, ok)
		assert.Equal(t, `{"summary": "uses {braces}"}`, span)
	})

	t.Run("Should return the first of several objects", func(t *testing.T) {
		span, ok := jsonrepair.FindObject(`{"a": {"b": 1}} {"c": 2}`)
		require.True(t, ok)
		assert.Equal(t, `{"a": {"b": 1}}`, span)
	})

	t.Run("Should report absence", func(t *testing.T) {
		_, ok := jsonrepair.FindObject("I could not find any candidate information.")
		assert.False(t, ok)
	})
}

func TestRepair(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trailing commas", `{"skills": ["go", "sql",], "name": "Jane",}`, `{"skills": ["go", "sql"], "name": "Jane"}`},
		{"single quotes", `{'name': 'Jane', 'skills': ['go']}`, `{"name": "Jane", "skills": ["go"]}`},
		{"apostrophe inside single quoted value", `{'name': 'Sean O'Brien'}`, `{"name": "Sean O'Brien"}`},
		{"python literals", `{"remote": True, "relocate": False, "phone": None}`, `{"remote": true, "relocate": false, "phone": null}`},
		{"literals inside strings untouched", `{"company": "True North None Ltd"}`, `{"company": "True North None Ltd"}`},
		{"over-escaped object", `{\"name\": \"Jane\"}`, `{"name": "Jane"}`},
		{"over-escaped value", `{"name": \"Jane Doe\", "email": "jane@x.com"}`, `{"name": "Jane Doe", "email": "jane@x.com"}`},
		{"over-escaped last value", `{"name": "Jane", "summary": \"Senior dev\"}`, `{"name": "Jane", "summary": "Senior dev"}`},
		{"double-escaped value", `{"name": \\"Jane\\"}`, `{"name": "Jane"}`},
		{"escaped quote inside a normal string kept", `{"title": "the \"lead\" dev"}`, `{"title": "the \"lead\" dev"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, jsonrepair.Repair(tc.in))
		})
	}
}

func TestExtractObject(t *testing.T) {
	t.Run("Should parse a repairable response", func(t *testing.T) {
		raw := "Here you go: {'name': 'Jane', 'email': 'j@x.io', 'skills': ['Python', 'SQL',], 'experience_years': 5, 'remote': True}"
		obj, repaired, err := jsonrepair.ExtractObject(raw)
		require.NoError(t, err)
		assert.NotEmpty(t, repaired)
		assert.Equal(t, "Jane", obj["name"])
		assert.Equal(t, float64(5), obj["experience_years"])
		assert.Equal(t, []interface{}{"Python", "SQL"}, obj["skills"])
		assert.Equal(t, true, obj["remote"])
	})

	t.Run("Should collapse over-escaped values", func(t *testing.T) {
		obj, _, err := jsonrepair.ExtractObject(`Result: {"name": \"Jane Doe\", "email": "jane@x.com", "summary": \"Senior dev\"} done`)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", obj["name"])
		assert.Equal(t, "jane@x.com", obj["email"])
		assert.Equal(t, "Senior dev", obj["summary"])
	})

	t.Run("Should tolerate unquoted keys", func(t *testing.T) {
		obj, _, err := jsonrepair.ExtractObject(`{name: "Jane"}`)
		require.NoError(t, err)
		assert.Equal(t, "Jane", obj["name"])
	})

	t.Run("Should return the repaired span when parsing fails", func(t *testing.T) {
		_, repaired, err := jsonrepair.ExtractObject(`{"name": "Jane" "email"}`)
		require.Error(t, err)
		assert.Equal(t, `{"name": "Jane" "email"}`, repaired)
	})

	t.Run("Should report a response with no object", func(t *testing.T) {
		_, _, err := jsonrepair.ExtractObject("no json here")
		assert.ErrorIs(t, err, jsonrepair.ErrNotFound)
	})
}

func TestExtractArray(t *testing.T) {
	arr, _, err := jsonrepair.ExtractArray("Skills: ['Go', 'Kubernetes',]")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Go", "Kubernetes"}, arr)
}
