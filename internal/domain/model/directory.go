package model

import (
	"maps"
	"slices"
)

// UnknownUser is the display name used for ids missing from the directory.
const UnknownUser = "Unknown"

// Directory maps terminal user ids to display names. A Directory is never
// mutated after construction; refreshes build a new one.
type Directory struct {
	names map[string]string
}

// NewDirectory copies names into a new Directory.
func NewDirectory(names map[string]string) Directory {
	return Directory{names: maps.Clone(names)}
}

// Lookup returns the display name for id and whether it is known.
func (d Directory) Lookup(id string) (string, bool) {
	name, ok := d.names[id]
	return name, ok
}

// Name resolves id to a display name, falling back to UnknownUser.
func (d Directory) Name(id string) string {
	if name, ok := d.names[id]; ok {
		return name
	}
	return UnknownUser
}

// IDs returns every known id in ascending order.
func (d Directory) IDs() []string {
	return slices.Sorted(maps.Keys(d.names))
}

// Len returns the number of users.
func (d Directory) Len() int { return len(d.names) }

// Map returns a copy of the id to name mapping.
func (d Directory) Map() map[string]string {
	out := maps.Clone(d.names)
	if out == nil {
		out = map[string]string{}
	}
	return out
}
