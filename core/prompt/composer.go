package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/isaacchin12/c8-techJam/helper"
)

//go:embed template.txt
var defaultTemplate string

// ErrTemplate is returned when a template references a placeholder that no
// value was provided for
var ErrTemplate = errors.New("template placeholder has no value")

// placeholderPattern matches template placeholders like {query} or
// {expanded_query}
var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

// Composer renders prompts from a template with named placeholders
type Composer struct {
	template     string
	placeholders []string
}

// NewComposer creates a composer from a template string
func NewComposer(template string) *Composer {
	matches := placeholderPattern.FindAllString(template, -1)

	seen := make(map[string]bool)
	placeholders := make([]string, 0, len(matches))
	for _, match := range matches {
		name := strings.Trim(match, "{}")
		if !seen[name] {
			seen[name] = true
			placeholders = append(placeholders, name)
		}
	}

	return &Composer{
		template:     template,
		placeholders: placeholders,
	}
}

// NewComposerFromFile creates a composer from a template file
func NewComposerFromFile(path string) (*Composer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read template", err)
	}
	return NewComposer(string(data)), nil
}

// DefaultComposer creates a composer with the built-in compliance
// question template, which expects the placeholders {query},
// {expanded_query} and {context}
func DefaultComposer() *Composer {
	return NewComposer(defaultTemplate)
}

// Placeholders returns the placeholder names the template references
func (c *Composer) Placeholders() []string {
	return c.placeholders
}

// Compose renders the template with the given placeholder values.
// Every placeholder the template references must have a value, a missing
// one returns ErrTemplate instead of leaking the raw placeholder into the
// prompt.
func (c *Composer) Compose(values map[string]string) (string, error) {
	for _, name := range c.placeholders {
		if _, ok := values[name]; !ok {
			return "", helper.NewError("compose prompt", fmt.Errorf("%w: {%s}", ErrTemplate, name))
		}
	}

	rendered := c.template
	for name, value := range values {
		rendered = strings.ReplaceAll(rendered, "{"+name+"}", value)
	}

	return rendered, nil
}
