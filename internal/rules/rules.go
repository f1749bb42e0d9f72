// Package rules decides where a note belongs. Rules are evaluated in the
// order they are configured and the first matching rule wins; there is no
// reordering and no conflict detection between rules.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notemover/internal/models"
	"github.com/starford/notemover/internal/parser"
	"github.com/starford/notemover/internal/storage"
)

// Frontmatter opt-out marker.
const (
	DisableProperty = "AutoNoteMover"
	DisableValue    = "disable"
)

// IsDisabled reports whether the note opted out of automatic moves.
// Missing metadata is never disabled.
func IsDisabled(meta *models.Metadata) bool {
	if meta == nil || meta.Frontmatter == nil {
		return false
	}
	v, ok := meta.Frontmatter[DisableProperty].(string)
	return ok && v == DisableValue
}

// Rule maps one predicate to a destination folder. Exactly one of Tag,
// Property, Pattern, or Path is the predicate.
type Rule struct {
	Folder   string `yaml:"folder" json:"folder"`
	Tag      string `yaml:"tag,omitempty" json:"tag,omitempty"`
	Property string `yaml:"property,omitempty" json:"property,omitempty"`
	Value    string `yaml:"value,omitempty" json:"value,omitempty"`
	Pattern  string `yaml:"pattern,omitempty" json:"pattern,omitempty"` // regex over the note title
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`       // regex over the vault path
	Template string `yaml:"template,omitempty" json:"template,omitempty"`
}

// Kind names the predicate a rule uses.
func (r Rule) Kind() string {
	switch {
	case r.Tag != "":
		return "tag"
	case r.Property != "":
		return "property"
	case r.Pattern != "":
		return "pattern"
	case r.Path != "":
		return "path"
	default:
		return ""
	}
}

// Validate checks that the rule has a destination and exactly one predicate.
func (r Rule) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Folder, validation.Required),
		validation.Field(&r.Pattern, validation.By(isRegexp)),
		validation.Field(&r.Path, validation.By(isRegexp)),
	); err != nil {
		return err
	}
	n := 0
	for _, s := range []string{r.Tag, r.Property, r.Pattern, r.Path} {
		if s != "" {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("rule for %q: exactly one of tag, property, pattern, path is required (got %d)", r.Folder, n)
	}
	if r.Value != "" && r.Property == "" {
		return fmt.Errorf("rule for %q: value requires property", r.Folder)
	}
	return nil
}

func isRegexp(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if _, err := regexp.Compile(s); err != nil {
		return errors.New("must be a valid regular expression")
	}
	return nil
}

// Options tune how predicates are compared.
type Options struct {
	UseRegexForTags            bool     `yaml:"use_regex_for_tags" json:"use_regex_for_tags"`
	ExcludedFolders            []string `yaml:"excluded_folders" json:"excluded_folders"`
	UseRegexForExcludedFolders bool     `yaml:"use_regex_for_excluded_folders" json:"use_regex_for_excluded_folders"`
}

// Match is the rule selected for a note.
type Match struct {
	Index int
	Rule  Rule
}

// Folder returns the normalized destination folder.
func (m Match) Folder() string {
	return storage.NormalizePath(m.Rule.Folder)
}

type compiled struct {
	rule    Rule
	tag     string
	tagRe   *regexp.Regexp
	valueRe *regexp.Regexp
	re      *regexp.Regexp
}

// Matcher is a compiled, read-only snapshot of an ordered rule list.
type Matcher struct {
	rules    []compiled
	excluded []string
	exclRe   []*regexp.Regexp
	opts     Options
}

// NewMatcher validates and compiles rules. The slice is copied; later edits
// by the caller do not affect the matcher.
func NewMatcher(rules []Rule, opts Options) (*Matcher, error) {
	m := &Matcher{opts: opts}
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rules: rule %d: %w", i, err)
		}
		c := compiled{rule: r}
		var err error
		switch r.Kind() {
		case "tag":
			if opts.UseRegexForTags {
				c.tagRe, err = regexp.Compile(r.Tag)
			} else {
				c.tag = parser.NormalizeTag(r.Tag)
			}
		case "property":
			if opts.UseRegexForTags && r.Value != "" {
				c.valueRe, err = regexp.Compile(r.Value)
			}
		case "pattern":
			c.re, err = regexp.Compile(r.Pattern)
		case "path":
			c.re, err = regexp.Compile(r.Path)
		}
		if err != nil {
			return nil, fmt.Errorf("rules: rule %d: %w", i, err)
		}
		m.rules = append(m.rules, c)
	}
	for _, f := range opts.ExcludedFolders {
		if strings.TrimSpace(f) == "" {
			continue
		}
		if opts.UseRegexForExcludedFolders {
			re, err := regexp.Compile(f)
			if err != nil {
				return nil, fmt.Errorf("rules: excluded folder %q: %w", f, err)
			}
			m.exclRe = append(m.exclRe, re)
			continue
		}
		m.excluded = append(m.excluded, storage.NormalizePath(f))
	}
	return m, nil
}

// Rules returns a copy of the configured rules in priority order.
func (m *Matcher) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	for i, c := range m.rules {
		out[i] = c.rule
	}
	return out
}

// Excluded reports whether notes in folder are ignored. Plain entries match
// the folder itself and everything below it.
func (m *Matcher) Excluded(folder string) bool {
	folder = storage.NormalizePath(folder)
	for _, ex := range m.excluded {
		if folder == ex || strings.HasPrefix(folder, ex+"/") || ex == storage.RootPath {
			return true
		}
	}
	for _, re := range m.exclRe {
		if re.MatchString(folder) {
			return true
		}
	}
	return false
}

// Match returns the first rule whose predicate holds for the note. Notes
// carrying the disable marker never match.
func (m *Matcher) Match(note models.NoteFile, meta *models.Metadata) (Match, bool) {
	if IsDisabled(meta) {
		return Match{}, false
	}
	for i, c := range m.rules {
		if c.matches(note, meta) {
			return Match{Index: i, Rule: c.rule}, true
		}
	}
	return Match{}, false
}

func (c compiled) matches(note models.NoteFile, meta *models.Metadata) bool {
	switch c.rule.Kind() {
	case "tag":
		if meta == nil {
			return false
		}
		for _, t := range meta.Tags {
			if c.tagRe != nil {
				if c.tagRe.MatchString(t) {
					return true
				}
			} else if t == c.tag {
				return true
			}
		}
	case "property":
		if meta == nil || meta.Frontmatter == nil {
			return false
		}
		v, ok := meta.Frontmatter[c.rule.Property]
		if !ok {
			return false
		}
		if c.rule.Value == "" {
			return true
		}
		for _, s := range propertyValues(v) {
			if c.valueRe != nil {
				if c.valueRe.MatchString(s) {
					return true
				}
			} else if s == c.rule.Value {
				return true
			}
		}
	case "pattern":
		return c.re.MatchString(storage.StripMarkdownExt(note.Name))
	case "path":
		return c.re.MatchString(storage.NormalizePath(note.Path))
	}
	return false
}

func propertyValues(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}
