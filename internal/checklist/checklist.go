package checklist

import (
	"errors"
	"fmt"
	"strings"
)

// Marker is the first line of every body this tool writes. A body is treated
// as generated if and only if it starts with Marker.
const Marker = "<!-- Generated by kasaikou/self-review-checklist-actions, DO NOT EDIT. -->"

const (
	headingPrefix   = "#### "
	checkedPrefix   = "- [x] "
	uncheckedPrefix = "- [ ] "
)

// ErrItemWithoutHeading is returned by Parse when a checkbox line appears
// before the first heading.
var ErrItemWithoutHeading = errors.New("checklist item without preceding heading")

// Item is a single checkbox.
type Item struct {
	Name    string
	Checked bool
}

// Section groups the items rendered under one label heading.
type Section struct {
	Label string
	Items []Item
}

// Set records name with the given state, appending it when absent.
func (s *Section) Set(name string, checked bool) {
	for i := range s.Items {
		if s.Items[i].Name == name {
			s.Items[i].Checked = checked
			return
		}
	}
	s.Items = append(s.Items, Item{Name: name, Checked: checked})
}

// Document is an ordered list of sections.
type Document struct {
	Sections []Section
}

// Section returns the section for label, appending an empty one when absent.
// The returned pointer is valid until the next call that appends a section.
func (d *Document) Section(label string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Label == label {
			return &d.Sections[i]
		}
	}
	d.Sections = append(d.Sections, Section{Label: label})
	return &d.Sections[len(d.Sections)-1]
}

// State is the checked state recovered from a rendered body: label -> item -> checked.
type State map[string]map[string]bool

// Lookup reports the recorded state for an item.
func (s State) Lookup(label, name string) (checked, ok bool) {
	items, found := s[label]
	if !found {
		return false, false
	}
	checked, ok = items[name]
	return checked, ok
}

// IsGenerated reports whether body was written by this tool.
func IsGenerated(body string) bool {
	return strings.HasPrefix(body, Marker)
}

// Parse reads the checkbox state out of a rendered checklist.
func Parse(markdown string) (State, error) {
	state := State{}
	var current map[string]bool

	for i, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSuffix(line, "\r")

		var checked bool
		var name string
		switch {
		case strings.HasPrefix(line, headingPrefix):
			label := strings.TrimPrefix(line, headingPrefix)
			current = state.section(label)
			continue
		case strings.HasPrefix(line, checkedPrefix):
			checked, name = true, strings.TrimPrefix(line, checkedPrefix)
		case strings.HasPrefix(line, uncheckedPrefix):
			checked, name = false, strings.TrimPrefix(line, uncheckedPrefix)
		default:
			continue
		}

		if current == nil {
			return nil, fmt.Errorf("line %d %q: %w", i+1, line, ErrItemWithoutHeading)
		}
		current[name] = checked
	}

	return state, nil
}

func (s State) section(label string) map[string]bool {
	items, ok := s[label]
	if !ok {
		items = map[string]bool{}
		s[label] = items
	}
	return items
}

// Render produces the canonical markdown for doc.
func Render(doc Document) string {
	var b strings.Builder
	b.WriteString(Marker)
	b.WriteString("\n\n")
	for _, section := range doc.Sections {
		b.WriteString(headingPrefix)
		b.WriteString(section.Label)
		b.WriteString("\n\n")
		for _, item := range section.Items {
			if item.Checked {
				b.WriteString(checkedPrefix)
			} else {
				b.WriteString(uncheckedPrefix)
			}
			b.WriteString(item.Name)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Merge returns a copy of desired where every item also present in prior
// takes its prior checked state. Items only present in prior are dropped.
func Merge(desired Document, prior State) Document {
	out := Document{Sections: make([]Section, 0, len(desired.Sections))}
	for _, section := range desired.Sections {
		merged := out.Section(section.Label)
		for _, item := range section.Items {
			checked := item.Checked
			if old, ok := prior.Lookup(section.Label, item.Name); ok {
				checked = old
			}
			merged.Set(item.Name, checked)
		}
	}
	return out
}

// Stats summarizes checklist progress.
type Stats struct {
	Total     int
	Completed int
	Pending   int
	Progress  float64 // 0-100
}

// Summarize counts checked and unchecked items across all sections.
func Summarize(doc Document) Stats {
	var st Stats
	for _, section := range doc.Sections {
		for _, item := range section.Items {
			st.Total++
			if item.Checked {
				st.Completed++
			}
		}
	}
	st.Pending = st.Total - st.Completed
	if st.Total > 0 {
		st.Progress = float64(st.Completed) / float64(st.Total) * 100
	}
	return st
}

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d checked", s.Completed, s.Total)
}
