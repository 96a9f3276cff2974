package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGlossary(t *testing.T) {
	t.Run("Load glossary from JSON file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "terminology.json")
		err := os.WriteFile(path, []byte(`{"DSA": "Digital Services Act", "CCPA": "California Consumer Privacy Act"}`), 0644)
		require.NoError(t, err)

		glossary, err := LoadGlossary(path)
		assert.NoError(t, err, "Expected LoadGlossary to not return an error")
		assert.Len(t, glossary, 2, "Expected two glossary entries")
		assert.Equal(t, "Digital Services Act", glossary["DSA"], "Expected definition to be loaded")
	})

	t.Run("Missing file returns an error", func(t *testing.T) {
		_, err := LoadGlossary(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err, "Expected error for missing glossary file")
	})

	t.Run("Invalid JSON returns an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		err := os.WriteFile(path, []byte(`not json`), 0644)
		require.NoError(t, err)

		_, err = LoadGlossary(path)
		assert.Error(t, err, "Expected error for invalid glossary JSON")
	})
}

func TestExpandAbbreviations(t *testing.T) {
	glossary := Glossary{
		"DSA": "Digital Services Act",
		"SB":  "Senate Bill",
	}

	t.Run("Whole-word abbreviation is expanded", func(t *testing.T) {
		expanded := glossary.ExpandAbbreviations("The DSA applies to large platforms")
		assert.Equal(t, "The DSA (Digital Services Act) applies to large platforms", expanded, "Expected abbreviation followed by definition")
	})

	t.Run("Substrings of longer words are left alone", func(t *testing.T) {
		expanded := glossary.ExpandAbbreviations("SBX is a different identifier than SB")
		assert.Equal(t, "SBX is a different identifier than SB (Senate Bill)", expanded, "Expected only whole-word matches to expand")
	})

	t.Run("Multiple occurrences all expand", func(t *testing.T) {
		expanded := glossary.ExpandAbbreviations("SB 976 supersedes SB 287")
		assert.Equal(t, "SB (Senate Bill) 976 supersedes SB (Senate Bill) 287", expanded, "Expected every occurrence to expand")
	})

	t.Run("Text without abbreviations is unchanged", func(t *testing.T) {
		text := "No known terms appear here"
		assert.Equal(t, text, glossary.ExpandAbbreviations(text), "Expected text without abbreviations to pass through")
	})

	t.Run("Empty glossary is a no-op", func(t *testing.T) {
		text := "The DSA applies"
		assert.Equal(t, text, Glossary{}.ExpandAbbreviations(text), "Expected empty glossary to leave text unchanged")
	})
}
