package domain

import (
	"fmt"
	"sort"
	"strings"
)

// TypeConfig declares how one record type is moderated. It replaces the
// class-level moderator flags of older systems with a plain value object.
type TypeConfig struct {
	Name                string
	Fields              []string
	ModeratedFields     []string
	BypassAfterApproval bool
	VisibilityField     string
}

func (c TypeConfig) HasField(name string) bool {
	for _, f := range c.Fields {
		if f == name {
			return true
		}
	}
	return false
}

func (c TypeConfig) IsModerated(name string) bool {
	for _, f := range c.ModeratedFields {
		if f == name {
			return true
		}
	}
	return false
}

func (c TypeConfig) HasModeratedFields() bool {
	return len(c.ModeratedFields) > 0
}

func (c TypeConfig) HasVisibilityField() bool {
	return c.VisibilityField != ""
}

func (c TypeConfig) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: record type requires a name", ErrConfiguration)
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("%w: record type %q declares no fields", ErrConfiguration, c.Name)
	}
	seen := make(map[string]struct{}, len(c.Fields))
	for _, f := range c.Fields {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: record type %q has an empty field name", ErrConfiguration, c.Name)
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("%w: record type %q declares field %q twice", ErrConfiguration, c.Name, f)
		}
		seen[f] = struct{}{}
	}
	for _, f := range c.ModeratedFields {
		if !c.HasField(f) {
			return fmt.Errorf("%w: moderated field %q is not in the %q schema", ErrConfiguration, f, c.Name)
		}
	}
	if c.VisibilityField != "" && !c.HasField(c.VisibilityField) {
		return fmt.Errorf("%w: visibility field %q is not in the %q schema", ErrConfiguration, c.VisibilityField, c.Name)
	}
	return nil
}

// Registry maps record type names to their moderation configuration. It is
// built once at startup and passed in explicitly; there is no process-wide
// registration.
type Registry struct {
	byName map[string]TypeConfig
}

func NewRegistry(configs ...TypeConfig) (*Registry, error) {
	byName := make(map[string]TypeConfig, len(configs))
	for _, cfg := range configs {
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		if _, dup := byName[cfg.Name]; dup {
			return nil, fmt.Errorf("%w: record type %q registered twice", ErrConfiguration, cfg.Name)
		}
		byName[cfg.Name] = cfg
	}
	return &Registry{byName: byName}, nil
}

func (r *Registry) Lookup(typeName string) (TypeConfig, error) {
	cfg, ok := r.byName[typeName]
	if !ok {
		return TypeConfig{}, fmt.Errorf("%w: record type %q is not monitored", ErrConfiguration, typeName)
	}
	return cfg, nil
}

func (r *Registry) TypeNames() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
