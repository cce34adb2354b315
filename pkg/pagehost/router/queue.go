package router

import (
	"net/url"
	"strings"
)

// Entry is one segment of a navigation path: a view identifier and the raw
// query string that segment carried.
type Entry struct {
	View        string
	QueryString string
}

// Queue is the ordered list of entries parsed from one navigation path.
// Entries compose left to right: every entry but the last is an
// intermediate step recorded in history, the last is the destination.
type Queue []Entry

// Last returns the destination entry. The zero Entry is returned for an
// empty queue.
func (q Queue) Last() Entry {
	if len(q) == 0 {
		return Entry{}
	}
	return q[len(q)-1]
}

func (q Queue) String() string {
	parts := make([]string, len(q))
	for i, e := range q {
		if e.QueryString == "" {
			parts[i] = e.View
		} else {
			parts[i] = e.View + "?" + e.QueryString
		}
	}
	return strings.Join(parts, "/")
}

// Parse splits a navigation path such as "ViewA/ViewB?key=value" into a
// Queue. When registry is non-nil every view must be registered in it.
// A "scheme://host" prefix is ignored. Empty segments are skipped.
func Parse(path string, registry *Registry) (Queue, error) {
	raw := strings.TrimSpace(path)
	if raw == "" {
		return nil, &ParseError{Path: path, Reason: "empty path"}
	}

	if i := strings.Index(raw, "://"); i >= 0 {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, &ParseError{Path: path, Reason: "invalid uri", Err: err}
		}
		raw = strings.TrimPrefix(u.EscapedPath(), "/")
		if u.RawQuery != "" {
			raw += "?" + u.RawQuery
		}
	}

	var queue Queue
	for _, segment := range strings.Split(raw, "/") {
		if segment == "" {
			continue
		}
		view, query, _ := strings.Cut(segment, "?")
		if view == "" {
			return nil, &ParseError{Path: path, Reason: "segment without view: " + segment}
		}
		if _, err := ParseParameters(query); err != nil {
			return nil, &ParseError{Path: path, Reason: "invalid query in " + view, Err: err}
		}
		if registry != nil {
			if _, ok := registry.Lookup(view); !ok {
				return nil, &ParseError{Path: path, Reason: "unknown view " + view, Err: ErrNotRegistered}
			}
		}
		queue = append(queue, Entry{View: view, QueryString: query})
	}

	if len(queue) == 0 {
		return nil, &ParseError{Path: path, Reason: "no views in path"}
	}
	return queue, nil
}
