package definition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cexll/review-checklist/internal/checklist"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the checklist definitions live inside a repository.
const DefaultPath = ".github/self-review-checklist.yml"

// Source kinds selectable by configuration.
const (
	SourceFile = "file"
	SourceRepo = "repo"
)

// Checklist lists the items required when a pull request carries Label.
type Checklist struct {
	Label string   `yaml:"label"`
	Items []string `yaml:"items"`
}

// Definitions is the decoded definitions file, in file order.
type Definitions struct {
	Checklists []Checklist `yaml:"checklists"`
}

// Source loads definitions for a repository ("owner/repo").
type Source interface {
	Load(ctx context.Context, repo string) (*Definitions, error)
}

// Decode reads and validates a definitions file.
func Decode(r io.Reader) (*Definitions, error) {
	var defs Definitions
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		if errors.Is(err, io.EOF) {
			return &Definitions{}, nil
		}
		return nil, fmt.Errorf("decode checklist definitions: %w", err)
	}
	if err := defs.validate(); err != nil {
		return nil, err
	}
	return &defs, nil
}

func (d *Definitions) validate() error {
	labels := make(map[string]struct{}, len(d.Checklists))
	for i, c := range d.Checklists {
		if c.Label == "" {
			return fmt.Errorf("checklists[%d]: label is required", i)
		}
		if _, dup := labels[c.Label]; dup {
			return fmt.Errorf("checklists[%d]: duplicate label %q", i, c.Label)
		}
		labels[c.Label] = struct{}{}

		items := make(map[string]struct{}, len(c.Items))
		for j, item := range c.Items {
			if item == "" {
				return fmt.Errorf("checklists[%d].items[%d]: item is empty", i, j)
			}
			if _, dup := items[item]; dup {
				return fmt.Errorf("checklists[%d]: duplicate item %q", i, item)
			}
			items[item] = struct{}{}
		}
	}
	return nil
}

// Build returns the desired document for a pull request carrying labels.
// Sections follow definition order; every item starts unchecked.
func (d *Definitions) Build(labels []string) checklist.Document {
	present := make(map[string]bool, len(labels))
	for _, l := range labels {
		present[l] = true
	}

	var doc checklist.Document
	for _, c := range d.Checklists {
		if !present[c.Label] {
			continue
		}
		section := doc.Section(c.Label)
		for _, item := range c.Items {
			section.Set(item, false)
		}
	}
	return doc
}

// FileSource reads definitions from the local checkout.
type FileSource struct {
	Path string
}

// Load implements Source. The repository argument is ignored.
func (s FileSource) Load(_ context.Context, _ string) (*Definitions, error) {
	path := s.Path
	if path == "" {
		path = DefaultPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checklist definitions: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
