package template

import (
	"sort"
	"strings"
	"sync"
)

// Library is a named collection of templates organized by category. It is
// safe for concurrent use; the HTTP API reads from it while definitions may
// be reloaded.
type Library struct {
	mu         sync.RWMutex
	templates  map[string]*VideoTemplate
	categories map[string][]string
}

func NewLibrary() *Library {
	return &Library{
		templates:  make(map[string]*VideoTemplate),
		categories: make(map[string][]string),
	}
}

// Add registers the template under its info name. An empty category maps to
// "general". Re-adding a name replaces the previous template.
func (l *Library) Add(t *VideoTemplate, category string) {
	if category == "" {
		category = "general"
	}
	name := t.Info.Name

	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[name] = t
	for _, existing := range l.categories[category] {
		if existing == name {
			return
		}
	}
	l.categories[category] = append(l.categories[category], name)
}

// Get returns the template registered under name.
func (l *Library) Get(name string) (*VideoTemplate, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.templates[name]
	return t, ok
}

// Names returns every template name, sorted.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamesInCategory returns the template names in a category, sorted.
func (l *Library) NamesInCategory(category string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := append([]string(nil), l.categories[category]...)
	sort.Strings(names)
	return names
}

// Categories returns every category name, sorted.
func (l *Library) Categories() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cats := make([]string, 0, len(l.categories))
	for c := range l.categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// CategoryOf returns the category a template was registered under.
func (l *Library) CategoryOf(name string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for category, names := range l.categories {
		for _, n := range names {
			if n == name {
				return category, true
			}
		}
	}
	return "", false
}

// Len returns the number of registered templates.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.templates)
}

// Search returns the names of templates whose name, tags or description
// contain the query, case-insensitively, sorted.
func (l *Library) Search(query string) []string {
	q := strings.ToLower(query)

	l.mu.RLock()
	defer l.mu.RUnlock()
	var matches []string
	for name, t := range l.templates {
		if strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, name)
			continue
		}
		tagged := false
		for _, tag := range t.Info.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				tagged = true
				break
			}
		}
		if tagged || strings.Contains(strings.ToLower(t.Info.Description), q) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches
}
