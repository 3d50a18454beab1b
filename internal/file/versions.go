// Package file implements the versioned file backend for todo.
// The database is a single text file whose first line names the format
// version and whose remaining lines hold one delimited task record each.
// Files written by older builds are upgraded one version at a time when
// the database is opened.
package file

import (
	"fmt"
)

// dataset is the set of tasks as understood by one format version.
type dataset interface {
	// version returns the tag of the format this dataset belongs to.
	version() string
	// records serializes every task to one line, in dataset order.
	records() []string
}

// schema describes one on-disk format revision.
type schema struct {
	seq     int                                  // strictly increasing along the chain
	tag     string                               // literal first line of the file
	parse   func(body []string) (dataset, error) // parses the lines after the tag
	upgrade func(prev dataset) (dataset, error)  // builds this shape from the predecessor; nil for the oldest
}

// chain is the complete schema history, oldest first, ending at the
// version this build writes.
var chain = []schema{
	{seq: 1, tag: tagV1, parse: parseV1},
	{seq: 2, tag: tagV2, parse: parseV2, upgrade: upgradeV2},
	{seq: 3, tag: tagV3, parse: parseV3, upgrade: upgradeV3},
}

func init() {
	if err := validateChain(chain); err != nil {
		panic(err)
	}
}

// CurrentVersion returns the tag written by this build.
func CurrentVersion() string {
	return chain[len(chain)-1].tag
}

// Versions returns every known tag, oldest first.
func Versions() []string {
	tags := make([]string, len(chain))
	for i, s := range chain {
		tags[i] = s.tag
	}
	return tags
}

// validateChain checks the ordering invariants the resolver relies on.
func validateChain(c []schema) error {
	if len(c) == 0 {
		return fmt.Errorf("schema chain is empty")
	}
	seen := make(map[string]bool, len(c))
	for i, s := range c {
		if s.tag == "" {
			return fmt.Errorf("schema %d has an empty tag", s.seq)
		}
		if seen[s.tag] {
			return fmt.Errorf("duplicate schema tag %q", s.tag)
		}
		seen[s.tag] = true
		if s.parse == nil {
			return fmt.Errorf("schema %q has no parser", s.tag)
		}
		if i == 0 {
			if s.upgrade != nil {
				return fmt.Errorf("oldest schema %q must not declare an upgrade", s.tag)
			}
			continue
		}
		if s.seq <= c[i-1].seq {
			return fmt.Errorf("schema %q (seq %d) does not follow %q (seq %d)", s.tag, s.seq, c[i-1].tag, c[i-1].seq)
		}
		if s.upgrade == nil {
			return fmt.Errorf("schema %q has no upgrade from %q", s.tag, c[i-1].tag)
		}
	}
	return nil
}

// detect tries every schema in chain order against the file's tag and
// returns the first dataset that parses. ok is false when no schema
// claims the tag.
func detect(c []schema, tag string, body []string) (dataset, bool, error) {
	for _, s := range c {
		if s.tag != tag {
			continue
		}
		ds, err := s.parse(body)
		if err != nil {
			return nil, true, err
		}
		return ds, true, nil
	}
	return nil, false, nil
}

// serialize renders a dataset as file lines, tag first.
func serialize(ds dataset) []string {
	return append([]string{ds.version()}, ds.records()...)
}
