package state

import "sort"

// SeenSet holds the listing ids recorded by the previous run
type SeenSet map[string]struct{}

// NewSeenSet builds a set from a list of ids
func NewSeenSet(ids ...string) SeenSet {
	s := make(SeenSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set
func (s SeenSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add records an id
func (s SeenSet) Add(id string) {
	s[id] = struct{}{}
}

// IDs returns the ids sorted, for stable files and logs
func (s SeenSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store persists the seen-set between runs
type Store interface {
	// Load returns the previously saved set. A missing file yields an
	// empty set and no error; a corrupt file yields an empty set and an
	// error so the caller can warn and carry on.
	Load() (SeenSet, error)

	// Save replaces the stored set with exactly the given one
	Save(set SeenSet) error
}
