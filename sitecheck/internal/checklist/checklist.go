// Package checklist holds the ordered list of structural checks applied to
// the page, and loads replacements from YAML.
package checklist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/sitecheck/sitecheck/finding"
)

const (
	ImagesSelector   = "img"
	NavLinksSelector = ".nav-links a"
)

// List is a complete checklist: the ordered checks, the two ad-hoc checks
// evaluated after the element counts, and the counting selectors.
type List struct {
	Checks   []finding.Check `yaml:"checks"`
	AdHoc    []finding.Check `yaml:"adhoc"`
	Images   string          `yaml:"images"`
	NavLinks string          `yaml:"nav_links"`
}

// Default returns the landing-page checklist.
func Default() List {
	return List{
		Checks: []finding.Check{
			{Selector: ".nav", Label: "Navigation"},
			{Selector: ".hero", Label: "Hero section"},
			{Selector: "#what-we-build", Label: "What We Build section"},
			{Selector: "#featured-products", Label: "Featured Products section"},
			{Selector: "#our-approach", Label: "Our Approach section"},
			{Selector: "#how-we-work", Label: "How We Work section"},
			{Selector: "#transparency", Label: "Transparency section"},
			{Selector: "#about", Label: "About section"},
			{Selector: "#founder", Label: "Founder section"},
			{Selector: "#contact", Label: "Contact section"},
			{Selector: "footer", Label: "Footer"},
		},
		AdHoc: []finding.Check{
			{Selector: "#contact-form", Label: "Contact form"},
			{Selector: ".mobile-menu-btn", Label: "Mobile menu button"},
		},
		Images:   ImagesSelector,
		NavLinks: NavLinksSelector,
	}
}

// Len returns the number of Findings a completed run produces.
func (l List) Len() int { return len(l.Checks) + len(l.AdHoc) }

// Validate rejects checks without a selector or label.
func (l List) Validate() error {
	for i, c := range l.Checks {
		if c.Selector == "" || c.Label == "" {
			return fmt.Errorf("checklist: check %d: selector and label are required", i)
		}
	}
	for i, c := range l.AdHoc {
		if c.Selector == "" || c.Label == "" {
			return fmt.Errorf("checklist: adhoc %d: selector and label are required", i)
		}
	}
	return nil
}

// Load reads a YAML checklist. Sections left out of the file keep their
// default values.
func Load(path string) (List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return List{}, fmt.Errorf("checklist: read: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML checklist and fills missing sections from Default.
func Parse(data []byte) (List, error) {
	var l List
	if err := yaml.Unmarshal(data, &l); err != nil {
		return List{}, fmt.Errorf("checklist: parse: %w", err)
	}
	l.applyDefaults()
	if err := l.Validate(); err != nil {
		return List{}, err
	}
	return l, nil
}

func (l *List) applyDefaults() {
	def := Default()
	if len(l.Checks) == 0 {
		l.Checks = def.Checks
	}
	if len(l.AdHoc) == 0 {
		l.AdHoc = def.AdHoc
	}
	if l.Images == "" {
		l.Images = def.Images
	}
	if l.NavLinks == "" {
		l.NavLinks = def.NavLinks
	}
}
