package recommend

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultFilterPatterns excludes talk, news, and variety programming from
// recommendation results. Matching is literal substring, so short patterns
// cast a wide net; false positives are acceptable here.
var DefaultFilterPatterns = []string{
	"tonight show",
	"late show",
	"late late show",
	"late night",
	"daily show",
	"talk show",
	"the view",
	"good morning",
	"nightly news",
	"real time with",
}

// DefaultCreditsPatterns excludes non-narrative appearances from actor
// filmographies. Overlaps with DefaultFilterPatterns but adds the awards and
// promo circuit entries that dominate combined credits.
var DefaultCreditsPatterns = []string{
	"tonight show",
	"late show",
	"late late show",
	"late night",
	"daily show",
	"talk show",
	"saturday night live",
	"live with",
	"awards",
	"red carpet",
	"making of",
	"behind the scenes",
}

// Denylist matches titles against a set of case-insensitive literal
// substrings. Patterns are applied to display titles before any
// normalization.
type Denylist struct {
	patterns []string
}

// NewDenylist builds a denylist from the given patterns. Empty and
// whitespace-only patterns are dropped.
func NewDenylist(patterns []string) Denylist {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return Denylist{patterns: cleaned}
}

// Matches reports whether any pattern occurs within the title.
func (d Denylist) Matches(title string) bool {
	lowered := strings.ToLower(title)
	for _, p := range d.patterns {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

// Len returns the number of active patterns.
func (d Denylist) Len() int {
	return len(d.patterns)
}

type denylistFile struct {
	Patterns []string `yaml:"patterns"`
}

// LoadDenylist reads a YAML pattern file of the form:
//
//	patterns:
//	  - tonight show
//	  - awards
func LoadDenylist(path string) (Denylist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Denylist{}, fmt.Errorf("failed to read denylist: %w", err)
	}
	var file denylistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Denylist{}, fmt.Errorf("failed to parse denylist: %w", err)
	}
	return NewDenylist(file.Patterns), nil
}

// LoadDenylistFile loads the pattern file at path, falling back to defaults
// when path is empty or the file cannot be loaded.
func LoadDenylistFile(path string, defaults []string, logger zerolog.Logger) Denylist {
	if path == "" {
		return NewDenylist(defaults)
	}
	d, err := LoadDenylist(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Falling back to built-in exclusion patterns")
		return NewDenylist(defaults)
	}
	logger.Debug().Int("patterns", d.Len()).Str("path", path).Msg("Loaded exclusion patterns")
	return d
}
