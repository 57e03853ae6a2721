package dataset

import (
	"errors"
	"iter"
	"strings"
)

var (
	// ErrEmptyLocation is returned when a lookup is attempted with an empty
	// or whitespace-only location.
	ErrEmptyLocation = errors.New("location must not be empty")
)

// FallbackDescription is the canonical descriptor appended to locations that
// have no curated entry.
const FallbackDescription = "clear, 25°C, light breeze"

// Entry pairs a location with its curated weather description.
type Entry struct {
	Location    string
	Description string
}

// Dataset is an immutable mapping from normalized location names to curated
// weather descriptions. It is constructed once and never mutated afterwards,
// so any number of concurrent callers may share one instance.
type Dataset struct {
	keys []string
	data map[string]string
}

// New builds a Dataset from curated entries. Locations are normalized
// (trimmed, lower-cased) before being used as keys; the first entry for a
// key wins and the original entry order is preserved for iteration.
func New(entries []Entry) *Dataset {
	d := &Dataset{
		keys: make([]string, 0, len(entries)),
		data: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		key := Normalize(e.Location)
		if key == "" {
			continue
		}
		if _, ok := d.data[key]; ok {
			continue
		}
		d.keys = append(d.keys, key)
		d.data[key] = e.Description
	}
	return d
}

// Normalize returns the canonical lookup key for a location.
func Normalize(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

// Lookup returns the weather description for a location.
//
// A location matching a curated entry (after normalization) returns that
// entry verbatim. Any other non-empty location returns a deterministic
// synthetic description built from the trimmed location and
// FallbackDescription, so Lookup never fails for well-formed input.
func (d *Dataset) Lookup(location string) (string, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return "", ErrEmptyLocation
	}

	if desc, ok := d.data[strings.ToLower(trimmed)]; ok {
		return desc, nil
	}

	return trimmed + ": " + FallbackDescription, nil
}

// Locations returns a restartable sequence over the curated location keys in
// their original entry order. Synthetic fallback results are never included.
func (d *Dataset) Locations() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, k := range d.keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Len reports the number of curated entries.
func (d *Dataset) Len() int { return len(d.keys) }

var defaultDataset = New([]Entry{
	{Location: "beijing", Description: "Beijing: cloudy, 22°C, northeast wind force 3"},
	{Location: "shanghai", Description: "Shanghai: light rain, 28°C, humidity 80%"},
	{Location: "guangzhou", Description: "Guangzhou: showers, 30°C, southwest wind force 2"},
	{Location: "shenzhen", Description: "Shenzhen: overcast, 29°C, humidity 70%"},
	{Location: "chengdu", Description: "Chengdu: light rain, 24°C, west wind force 1"},
})

// Default returns the built-in simulated dataset.
func Default() *Dataset { return defaultDataset }
