package prompt

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"

	"github.com/isaacchin12/c8-techJam/helper"
)

// Glossary maps domain abbreviations to their definitions,
// e.g. "DSA" -> "Digital Services Act"
type Glossary map[string]string

// LoadGlossary reads a glossary from a JSON file of abbreviation/definition pairs
func LoadGlossary(path string) (Glossary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read glossary", err)
	}

	glossary := Glossary{}
	err = json.Unmarshal(data, &glossary)
	if err != nil {
		return nil, helper.NewError("parse glossary", err)
	}

	return glossary, nil
}

// ExpandAbbreviations rewrites every whole-word occurrence of a glossary
// abbreviation as "abbr (definition)". Substrings of longer words are left
// alone, so "SB" never matches inside "SBX". Abbreviations are applied in
// sorted order to keep the expansion deterministic.
func (g Glossary) ExpandAbbreviations(text string) string {
	abbrs := make([]string, 0, len(g))
	for abbr := range g {
		abbrs = append(abbrs, abbr)
	}
	sort.Strings(abbrs)

	for _, abbr := range abbrs {
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(abbr) + `\b`)
		text = pattern.ReplaceAllString(text, abbr+" ("+g[abbr]+")")
	}

	return text
}
