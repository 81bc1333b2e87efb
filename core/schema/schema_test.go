package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaAddFind(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Size())

	s.Add("title", Options{Type: TypeString})
	s.Add("views", Options{Type: TypeInteger, Default: 0})

	assert.Equal(t, 2, s.Size())

	p, ok := s.Find("views")
	require.True(t, ok)
	assert.Equal(t, "views", p.Name)
	assert.Equal(t, TypeInteger, p.Type)
	assert.Equal(t, 0, p.Default)

	_, ok = s.Find("missing")
	assert.False(t, ok)
}

func TestSchemaAdd_Replaces(t *testing.T) {
	s := New()
	s.Add("views", Options{Type: TypeInteger})
	s.Add("title", Options{Type: TypeString})
	s.Add("views", Options{Type: TypeFloat})

	assert.Equal(t, 2, s.Size())
	p, _ := s.Find("views")
	assert.Equal(t, TypeFloat, p.Type)

	// Re-adding keeps the original registration position.
	assert.Equal(t, []string{"views", "title"}, s.Names())
}

func TestSchemaEach(t *testing.T) {
	s := New()
	s.Add("b", Options{})
	s.Add("a", Options{})
	s.Add("c", Options{})

	var names []string
	s.Each(func(p Property) { names = append(names, p.Name) })
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestSchema_NilIsEmpty(t *testing.T) {
	var s *Schema
	assert.Equal(t, 0, s.Size())
	_, ok := s.Find("x")
	assert.False(t, ok)

	got, err := s.Cast("x", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestSchemaCast(t *testing.T) {
	s := New()
	s.Add("views", Options{Type: TypeInteger})

	got, err := s.Cast("views", "42")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = s.Cast("unregistered", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestSchemaCastAttributes(t *testing.T) {
	s := New()
	s.Add("title", Options{Type: TypeString})
	s.Add("views", Options{Type: TypeInteger, Default: "0"})
	s.Add("draft", Options{Type: TypeBoolean, Default: "false"})
	s.Add("summary", Options{Type: TypeString})

	got, err := s.CastAttributes(map[string]any{
		"title": 12,
		"draft": "",
		"extra": 1.5,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"title": "12",
		"views": 0,
		"draft": true,
		"extra": 1.5,
	}, got)
}

func TestSchemaCastAttributes_Error(t *testing.T) {
	s := New()
	s.Add("published_at", Options{Type: TypeTime})

	_, err := s.CastAttributes(map[string]any{"published_at": "yesterday"})
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParse(t *testing.T) {
	data := []byte(`
properties:
  title:        { type: string }
  views:        { type: int, default: 0 }
  published_at: { type: timestamp }
  tags:         { type: custom, caster: csv }
  rating:       { type: custom, caster: stars }
  raw:          {}
`)

	s, err := Parse(data, DefaultCasters())
	require.NoError(t, err)
	assert.Equal(t, 6, s.Size())
	assert.Equal(t, []string{"published_at", "rating", "raw", "tags", "title", "views"}, s.Names())

	p, _ := s.Find("views")
	assert.Equal(t, TypeInteger, p.Type)
	assert.Equal(t, 0, p.Default)

	p, _ = s.Find("published_at")
	assert.Equal(t, TypeTime, p.Type)

	tags, err := s.Cast("tags", "go, json , api")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "json", "api"}, tags)

	raw, err := s.Cast("raw", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, raw)

	// Unknown caster names surface when the value is cast.
	_, err = s.Cast("rating", "5")
	assert.ErrorIs(t, err, ErrMissingCaster)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("properties: [unclosed"), nil)
	assert.Error(t, err)
}

func TestBuiltinCasters(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		got, err := CSV("")
		require.NoError(t, err)
		assert.Equal(t, []string{}, got)

		got, err = CSV([]any{"a"})
		require.NoError(t, err)
		assert.Equal(t, []any{"a"}, got)

		_, err = CSV(12)
		assert.Error(t, err)
	})

	t.Run("json", func(t *testing.T) {
		got, err := JSON(`{"a":[1,2]}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": []any{1.0, 2.0}}, got)

		got, err = JSON(map[string]any{"a": 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1}, got)

		_, err = JSON("{")
		assert.Error(t, err)
	})

	t.Run("duration", func(t *testing.T) {
		got, err := Duration("1h30m")
		require.NoError(t, err)
		assert.Equal(t, 90*time.Minute, got)

		got, err = Duration(1.5)
		require.NoError(t, err)
		assert.Equal(t, 1500*time.Millisecond, got)

		got, err = Duration(2)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, got)

		_, err = Duration("soon")
		assert.Error(t, err)
	})
}
