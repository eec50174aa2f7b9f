// Package profile loads the portfolio data rendered on the home page.
package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Profile is the portfolio owner's public résumé.
type Profile struct {
	Name      string `yaml:"name"`
	Headline  string `yaml:"headline"`
	Location  string `yaml:"location"`
	Summary   string `yaml:"summary"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
	LinkedIn  string `yaml:"linkedin"`
	ResumeURL string `yaml:"resume_url"`

	Experience []Experience `yaml:"experience"`
	Projects   []Project    `yaml:"projects"`
	Skills     []SkillGroup `yaml:"skills"`
	Education  []Education  `yaml:"education"`
}

type Experience struct {
	Company    string   `yaml:"company"`
	URL        string   `yaml:"url"`
	Role       string   `yaml:"role"`
	Period     string   `yaml:"period"`
	Highlights []string `yaml:"highlights"`
}

type Project struct {
	Name        string   `yaml:"name"`
	URL         string   `yaml:"url"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// SkillGroup is one tab of the skills section.
type SkillGroup struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

type Education struct {
	School string   `yaml:"school"`
	Degree string   `yaml:"degree"`
	Period string   `yaml:"period"`
	Notes  []string `yaml:"notes"`
}

// Parse decodes a YAML profile. A profile must at least carry a name.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, errors.New("profile: name is required")
	}
	return &p, nil
}

// Load reads the profile at path, or the built-in placeholder when path is empty.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in placeholder profile.
func Default() *Profile {
	p, err := Parse(defaultYAML)
	if err != nil {
		panic("profile: invalid embedded default: " + err.Error())
	}
	return p
}

// Holder gives concurrent readers the current profile while a watcher swaps
// in reloaded versions.
type Holder struct {
	p atomic.Pointer[Profile]
}

// NewHolder returns a Holder initialised with p.
func NewHolder(p *Profile) *Holder {
	h := &Holder{}
	h.p.Store(p)
	return h
}

// Get returns the current profile. Callers must not modify it.
func (h *Holder) Get() *Profile {
	return h.p.Load()
}

// Set replaces the current profile.
func (h *Holder) Set(p *Profile) {
	h.p.Store(p)
}
