// internal/store/store.go
package store

// PageSection is the reserved section holding per-document state. It is
// cleared at the start of every document.
const PageSection = "page"

// Entry is a single key in a section. A nil Value means the key is present
// but unset, which is different from the key being absent.
type Entry struct {
	Key     string
	Value   *string
	Comment *string
}

// String returns the entry value, or "" when unset.
func (e Entry) String() string {
	if e.Value == nil {
		return ""
	}
	return *e.Value
}

type section struct {
	name    string
	entries []Entry
	index   map[string]int
}

func newSection(name string) *section {
	return &section{name: name, index: make(map[string]int)}
}

// Store is an ordered collection of sections, each an ordered collection of
// entries. It is mutated in place while documents are processed and is not
// safe for concurrent use; use Clone to give each worker its own copy.
type Store struct {
	sections []*section
	index    map[string]int
}

// New returns an empty store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

func (s *Store) section(name string) *section {
	if i, ok := s.index[name]; ok {
		return s.sections[i]
	}
	return nil
}

func (s *Store) ensureSection(name string) *section {
	if sec := s.section(name); sec != nil {
		return sec
	}
	sec := newSection(name)
	s.index[name] = len(s.sections)
	s.sections = append(s.sections, sec)
	return sec
}

// Size is the number of bytes held in values across all sections.
func (s *Store) Size() int {
	n := 0
	for _, sec := range s.sections {
		for _, e := range sec.entries {
			if e.Value != nil {
				n += len(*e.Value)
			}
		}
	}
	return n
}

// Lookup searches (section, key) and then (fallback, key). It reports false
// when neither holds a non-nil value.
func (s *Store) Lookup(sectionName, key, fallback string) (string, bool) {
	for _, name := range []string{sectionName, fallback} {
		if name == "" {
			continue
		}
		sec := s.section(name)
		if sec == nil {
			continue
		}
		if i, ok := sec.index[key]; ok && sec.entries[i].Value != nil {
			return *sec.entries[i].Value, true
		}
	}
	return "", false
}

// GetString returns the value at (section, key), falling back to
// (fallback, key), and finally to the empty string.
func (s *Store) GetString(sectionName, key, fallback string) string {
	v, _ := s.Lookup(sectionName, key, fallback)
	return v
}

// Has reports whether key exists in section, set or not.
func (s *Store) Has(sectionName, key string) bool {
	sec := s.section(sectionName)
	if sec == nil {
		return false
	}
	_, ok := sec.index[key]
	return ok
}

// SetString sets (section, key) to value, keeping any existing comment.
func (s *Store) SetString(sectionName, key, value string) {
	s.SetEntry(sectionName, key, &value, nil)
}

// SetEntry creates or overwrites (section, key). An existing key keeps its
// position. A nil comment leaves the current comment untouched.
func (s *Store) SetEntry(sectionName, key string, value, comment *string) {
	sec := s.ensureSection(sectionName)
	if i, ok := sec.index[key]; ok {
		sec.entries[i].Value = value
		if comment != nil {
			sec.entries[i].Comment = comment
		}
		return
	}
	sec.index[key] = len(sec.entries)
	sec.entries = append(sec.entries, Entry{Key: key, Value: value, Comment: comment})
}

// RemoveSection deletes a section and all of its entries.
func (s *Store) RemoveSection(name string) {
	i, ok := s.index[name]
	if !ok {
		return
	}
	s.sections = append(s.sections[:i], s.sections[i+1:]...)
	delete(s.index, name)
	for j := i; j < len(s.sections); j++ {
		s.index[s.sections[j].name] = j
	}
}

// ClearSection drops every entry of a section but keeps the section itself.
func (s *Store) ClearSection(name string) {
	sec := s.ensureSection(name)
	sec.entries = nil
	sec.index = make(map[string]int)
}

// Section returns a copy of the entries of a section, in insertion order.
func (s *Store) Section(name string) []Entry {
	sec := s.section(name)
	if sec == nil {
		return []Entry{}
	}
	out := make([]Entry, len(sec.entries))
	copy(out, sec.entries)
	return out
}

func (s *Store) ContainsSection(name string) bool {
	return s.section(name) != nil
}

// Sections returns the section names in insertion order.
func (s *Store) Sections() []string {
	names := make([]string, 0, len(s.sections))
	for _, sec := range s.sections {
		names = append(names, sec.name)
	}
	return names
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	c := New()
	for _, sec := range s.sections {
		cs := c.ensureSection(sec.name)
		for _, e := range sec.entries {
			cs.index[e.Key] = len(cs.entries)
			cs.entries = append(cs.entries, Entry{Key: e.Key, Value: clonePtr(e.Value), Comment: clonePtr(e.Comment)})
		}
	}
	return c
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
