// Package parser extracts frontmatter and tags from Markdown content.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/notemover/internal/models"
)

var (
	tagRe     = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_][\p{L}\p{N}_/-]*)`)
	fenceRe   = regexp.MustCompile("(?s)```.*?```")
	numericRe = regexp.MustCompile(`^[0-9]+$`)
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Tags        []string
}

// Metadata returns the part of the result the rule engine consumes.
func (r *Result) Metadata() *models.Metadata {
	return &models.Metadata{Frontmatter: r.Frontmatter, Tags: r.Tags}
}

// Parse extracts frontmatter, body, and tags from raw Markdown bytes.
// Invalid YAML is not an error: the whole file is treated as body.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Tags:        extractTags(body, fm),
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// extractTags collects tags from the frontmatter "tags"/"tag" fields and
// inline #tags in the body. Every tag is returned with a leading '#'.
func extractTags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(raw string) {
		t := NormalizeTag(raw)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for _, key := range []string{"tags", "tag"} {
		raw, ok := fm[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case []any:
			for _, item := range v {
				if item == nil {
					continue
				}
				add(fmt.Sprint(item))
			}
		case string:
			for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
				add(s)
			}
		}
	}

	stripped := fenceRe.ReplaceAllString(body, "")
	for _, m := range tagRe.FindAllStringSubmatch(stripped, -1) {
		if numericRe.MatchString(m[1]) {
			continue
		}
		add(m[1])
	}
	return out
}

// NormalizeTag trims whitespace and ensures a single leading '#'.
func NormalizeTag(raw string) string {
	t := strings.TrimLeft(strings.TrimSpace(raw), "#")
	if t == "" {
		return ""
	}
	return "#" + t
}
