package wizard

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/procare-io/srportal/internal/models"
)

// DefaultStepMessage is shown when a failing rule has no message of its own.
const DefaultStepMessage = "Please fill in all required fields"

type RuleKind string

const (
	// RuleRequired holds when every listed field is present.
	RuleRequired RuleKind = "required"
	// RuleAnyOf holds when at least one listed field is present.
	RuleAnyOf RuleKind = "any_of"
	// RuleMinLength holds when every listed field has at least Min characters after trimming.
	RuleMinLength RuleKind = "min_length"
	// RuleDate holds when every listed field is empty or a YYYY-MM-DD date.
	RuleDate RuleKind = "date"
)

// Rule is one conjunct of a step predicate. A rule restricted to request
// types or roles is skipped for drafts and actors outside them.
type Rule struct {
	Kind         RuleKind             `yaml:"kind" json:"kind"`
	Fields       []Field              `yaml:"fields" json:"fields"`
	Min          int                  `yaml:"min,omitempty" json:"min,omitempty"`
	RequestTypes []models.RequestType `yaml:"request_types,omitempty" json:"request_types,omitempty"`
	Roles        []models.UserRole    `yaml:"roles,omitempty" json:"roles,omitempty"`
	Message      string               `yaml:"message,omitempty" json:"message,omitempty"`
}

func (r Rule) appliesTo(rt models.RequestType, role models.UserRole) bool {
	return containsOrEmpty(r.RequestTypes, rt) && containsOrEmpty(r.Roles, role)
}

func (r Rule) holds(d *Draft) bool {
	switch r.Kind {
	case RuleRequired:
		for _, f := range r.Fields {
			if !present(d, f) {
				return false
			}
		}
		return true
	case RuleAnyOf:
		for _, f := range r.Fields {
			if present(d, f) {
				return true
			}
		}
		return false
	case RuleMinLength:
		for _, f := range r.Fields {
			v, _ := d.Get(f)
			if utf8.RuneCountInString(strings.TrimSpace(v)) < r.Min {
				return false
			}
		}
		return true
	case RuleDate:
		for _, f := range r.Fields {
			v, _ := d.Get(f)
			if v = strings.TrimSpace(v); v == "" {
				continue
			}
			if _, err := time.Parse(DateLayout, v); err != nil {
				return false
			}
		}
		return true
	}
	return false
}

func (r Rule) message() string {
	if r.Message != "" {
		return r.Message
	}
	return DefaultStepMessage
}

func present(d *Draft, f Field) bool {
	v, err := d.Get(f)
	if err != nil {
		return false
	}
	return strings.TrimSpace(v) != ""
}

// FieldSpec describes how a step presents one draft field.
type FieldSpec struct {
	Name         Field                `yaml:"name" json:"name"`
	Label        string               `yaml:"label" json:"label"`
	Kind         FieldKind            `yaml:"kind" json:"kind"`
	Source       string               `yaml:"source,omitempty" json:"source,omitempty"`
	Placeholder  string               `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	RequestTypes []models.RequestType `yaml:"request_types,omitempty" json:"request_types,omitempty"`
	Roles        []models.UserRole    `yaml:"roles,omitempty" json:"roles,omitempty"`
}

// Visible reports whether the field is shown for the given request type and role.
func (fs FieldSpec) Visible(rt models.RequestType, role models.UserRole) bool {
	return containsOrEmpty(fs.RequestTypes, rt) && containsOrEmpty(fs.Roles, role)
}

type Step struct {
	ID     string      `yaml:"id" json:"id"`
	Title  string      `yaml:"title" json:"title"`
	Fields []FieldSpec `yaml:"fields,omitempty" json:"fields,omitempty"`
	Rules  []Rule      `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Check evaluates the step predicate and returns the message of the first
// failing rule, or "" when the step is complete.
func (s Step) Check(d *Draft, role models.UserRole) string {
	for _, r := range s.Rules {
		if !r.appliesTo(d.RequestType, role) {
			continue
		}
		if !r.holds(d) {
			return r.message()
		}
	}
	return ""
}

// VisibleFields lists the fields shown for the draft's request type and role.
func (s Step) VisibleFields(rt models.RequestType, role models.UserRole) []FieldSpec {
	var out []FieldSpec
	for _, fs := range s.Fields {
		if fs.Visible(rt, role) {
			out = append(out, fs)
		}
	}
	return out
}

type Flow struct {
	Name  string `yaml:"-" json:"-"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// HasField reports whether any step presents f.
func (f *Flow) HasField(name Field) bool {
	for _, s := range f.Steps {
		for _, fs := range s.Fields {
			if fs.Name == name {
				return true
			}
		}
	}
	return false
}

// Binding maps actors and request types to a named flow.
type Binding struct {
	Roles        []models.UserRole    `yaml:"roles,omitempty" json:"roles,omitempty"`
	RequestTypes []models.RequestType `yaml:"request_types,omitempty" json:"request_types,omitempty"`
	Flow         string               `yaml:"flow" json:"flow"`
}

// FlowSet is the wizard configuration: named flows plus the bindings that
// pick one for a role and request type.
type FlowSet struct {
	Default  string           `yaml:"default" json:"default"`
	Bindings []Binding        `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	Flows    map[string]*Flow `yaml:"flows" json:"flows"`
}

// Select returns the flow bound to role and rt, falling back to the default.
func (fs *FlowSet) Select(role models.UserRole, rt models.RequestType) (*Flow, error) {
	for _, b := range fs.Bindings {
		if containsOrEmpty(b.Roles, role) && containsOrEmpty(b.RequestTypes, rt) {
			return fs.Get(b.Flow)
		}
	}
	return fs.Get(fs.Default)
}

func (fs *FlowSet) Get(name string) (*Flow, error) {
	f, ok := fs.Flows[name]
	if !ok || f == nil {
		return nil, fmt.Errorf("wizard: flow %q is not defined", name)
	}
	return f, nil
}

// Names returns the defined flow names.
func (fs *FlowSet) Names() []string {
	names := make([]string, 0, len(fs.Flows))
	for name := range fs.Flows {
		names = append(names, name)
	}
	return names
}

func (fs *FlowSet) validate() error {
	if len(fs.Flows) == 0 {
		return fmt.Errorf("wizard: no flows defined")
	}
	if _, err := fs.Get(fs.Default); err != nil {
		return fmt.Errorf("default: %w", err)
	}
	for i, b := range fs.Bindings {
		if _, err := fs.Get(b.Flow); err != nil {
			return fmt.Errorf("binding %d: %w", i, err)
		}
	}
	for name, f := range fs.Flows {
		f.Name = name
		if len(f.Steps) == 0 {
			return fmt.Errorf("wizard: flow %q has no steps", name)
		}
		seen := make(map[string]bool)
		for _, s := range f.Steps {
			if seen[s.ID] {
				return fmt.Errorf("wizard: flow %q repeats step %q", name, s.ID)
			}
			seen[s.ID] = true
			for _, r := range s.Rules {
				for _, field := range r.Fields {
					var probe Draft
					if _, err := probe.Get(field); err != nil {
						return fmt.Errorf("flow %q step %q: %w", name, s.ID, err)
					}
				}
			}
		}
	}
	return nil
}

func containsOrEmpty[T comparable](set []T, v T) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
