package genres

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// noGenres is the placeholder some datasets use for movies without genres.
const noGenres = "(no genres listed)"

var titleCaser = cases.Title(language.Und)

// Split parses a pipe-delimited genre string into a deduplicated list of
// canonical names, preserving first-seen order. Empty input and the
// "(no genres listed)" placeholder yield an empty list, never an error.
func Split(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, noGenres) {
		return nil
	}

	seen := make(map[string]struct{})
	var names []string
	for _, part := range strings.Split(raw, "|") {
		name := Canonical(part)
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Canonical trims a genre name and normalizes its display case. Hyphenated
// names like "sci-fi" become "Sci-Fi".
func Canonical(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" || strings.EqualFold(name, noGenres) {
		return ""
	}
	return titleCaser.String(name)
}

// Registry assigns stable surrogate ids to genre names. Ids grow
// monotonically: a name never seen before gets the next id, a known name
// reuses its id. Matching is case-insensitive.
type Registry struct {
	ids    map[string]int64
	names  map[int64]string
	nextID int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:    make(map[string]int64),
		names:  make(map[int64]string),
		nextID: 1,
	}
}

// Load seeds the registry from previously persisted name→id rows so ids stay
// stable across runs. The next id continues after the highest seen.
func (r *Registry) Load(rows map[string]int64) {
	for name, id := range rows {
		canonical := Canonical(name)
		if canonical == "" || id <= 0 {
			continue
		}
		r.ids[strings.ToLower(canonical)] = id
		r.names[id] = canonical
		if id >= r.nextID {
			r.nextID = id + 1
		}
	}
}

// ID returns the surrogate id for a genre name, assigning the next id on
// first sight.
func (r *Registry) ID(name string) int64 {
	canonical := Canonical(name)
	if canonical == "" {
		return 0
	}
	key := strings.ToLower(canonical)
	if id, ok := r.ids[key]; ok {
		return id
	}
	id := r.nextID
	r.nextID++
	r.ids[key] = id
	r.names[id] = canonical
	return id
}

// Name returns the display name for a surrogate id.
func (r *Registry) Name(id int64) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}

// All returns every (name, id) pair ordered by id.
func (r *Registry) All() []Genre {
	out := make([]Genre, 0, len(r.names))
	for id, name := range r.names {
		out = append(out, Genre{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Genre pairs a surrogate id with its canonical display name.
type Genre struct {
	ID   int64
	Name string
}
