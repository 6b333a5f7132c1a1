// Package overlay derives normalized overlay tags from the opaque property
// bags attached to zoning districts.
package overlay

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-karim/site-sense-architect/internal/models"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// MatchKind selects how a rule tests the observed values of its key.
type MatchKind string

const (
	MatchPresent  MatchKind = "present"
	MatchPositive MatchKind = "positive"
	MatchEquals   MatchKind = "equals"
)

// Rule maps a recognized property key, and optionally a value, to a flag.
type Rule struct {
	Key   string    `yaml:"key"`
	Match MatchKind `yaml:"match"`
	Value string    `yaml:"value,omitempty"`
	Flag  string    `yaml:"flag"`
}

// RuleSet holds the extraction rules of every city.
type RuleSet map[models.City][]Rule

// LoadRules decodes and validates a YAML rule document.
func LoadRules(data []byte) (RuleSet, error) {
	var raw map[string][]Rule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse overlay rules: %w", err)
	}

	rules := make(RuleSet, len(raw))
	for name, list := range raw {
		city, err := models.ParseCity(name)
		if err != nil {
			return nil, fmt.Errorf("overlay rules: %w", err)
		}
		for i, r := range list {
			if err := r.validate(); err != nil {
				return nil, fmt.Errorf("overlay rules for %s, rule %d: %w", city, i, err)
			}
			list[i].Key = strings.ToLower(strings.TrimSpace(r.Key))
		}
		rules[city] = list
	}
	return rules, nil
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return fmt.Errorf("key is required")
	}
	if strings.TrimSpace(r.Flag) == "" {
		return fmt.Errorf("flag is required")
	}
	switch r.Match {
	case MatchPresent, MatchPositive:
	case MatchEquals:
		if r.Value == "" {
			return fmt.Errorf("value is required for equals rules")
		}
	default:
		return fmt.Errorf("unknown match kind %q", r.Match)
	}
	return nil
}

// Deriver applies a RuleSet to property bags. It holds no mutable state and
// is safe for concurrent use.
type Deriver struct {
	rules RuleSet
}

// NewDeriver creates a Deriver over rules.
func NewDeriver(rules RuleSet) *Deriver {
	return &Deriver{rules: rules}
}

// NewDefaultDeriver creates a Deriver over the embedded rule tables.
func NewDefaultDeriver() (*Deriver, error) {
	rules, err := LoadRules(defaultRulesYAML)
	if err != nil {
		return nil, err
	}
	return NewDeriver(rules), nil
}

// Derive returns the overlay flags found in properties for city. Unknown
// cities yield an empty set.
func (d *Deriver) Derive(city models.City, properties interface{}) FlagSet {
	flags := FlagSet{}
	rules, ok := d.rules[city]
	if !ok {
		return flags
	}

	obs := Normalize(properties)
	for _, r := range rules {
		values := obs[r.Key]
		for _, v := range values {
			if r.matches(v) {
				flags.Add(r.Flag)
				break
			}
		}
	}
	return flags
}

func (r Rule) matches(v interface{}) bool {
	switch r.Match {
	case MatchPresent:
		return isPresent(v)
	case MatchPositive:
		n, ok := toNumber(v)
		return ok && n > 0
	case MatchEquals:
		if v == nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(fmt.Sprint(v)), r.Value)
	}
	return false
}

func isPresent(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		s := strings.TrimSpace(t)
		return s != "" && !strings.EqualFold(s, "null")
	case bool:
		return t
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}

func toNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		n, err := t.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	}
	return 0, false
}

// Observations is the canonical form of a property bag: every lowercased key
// mapped to all values observed for it across the collection.
type Observations map[string][]interface{}

// Normalize flattens a single object, a collection of objects, or raw JSON
// of either shape into Observations. Unrecognized shapes contribute nothing.
func Normalize(properties interface{}) Observations {
	obs := Observations{}
	obs.collect(properties)
	return obs
}

func (o Observations) collect(v interface{}) {
	switch t := v.(type) {
	case nil:
	case json.RawMessage:
		o.collectJSON(t)
	case []byte:
		o.collectJSON(t)
	case map[string]interface{}:
		for k, val := range t {
			key := strings.ToLower(strings.TrimSpace(k))
			o[key] = append(o[key], val)
		}
	case []map[string]interface{}:
		for _, m := range t {
			o.collect(m)
		}
	case []interface{}:
		for _, item := range t {
			o.collect(item)
		}
	}
}

func (o Observations) collectJSON(data []byte) {
	if len(data) == 0 {
		return
	}
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return
	}
	o.collect(decoded)
}

// FlagSet is a set of overlay tags.
type FlagSet map[string]struct{}

// Add inserts flag after trimming and lowercasing it. Empty flags are ignored.
func (s FlagSet) Add(flag string) {
	f := strings.ToLower(strings.TrimSpace(flag))
	if f == "" {
		return
	}
	s[f] = struct{}{}
}

// AddAll inserts every flag.
func (s FlagSet) AddAll(flags []string) {
	for _, f := range flags {
		s.Add(f)
	}
}

// Has reports whether flag is in the set.
func (s FlagSet) Has(flag string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(flag))]
	return ok
}

// Union returns a new set containing the members of both sets.
func (s FlagSet) Union(other FlagSet) FlagSet {
	out := make(FlagSet, len(s)+len(other))
	for f := range s {
		out[f] = struct{}{}
	}
	for f := range other {
		out[f] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s FlagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
