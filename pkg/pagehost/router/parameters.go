package router

import (
	"net/url"
	"strings"
)

// Parameters is an insertion-ordered bag of string key/value pairs passed
// with a navigation. Its String form is the URI query wire format:
// URI-escaped key=value pairs joined by '&'. A nil *Parameters reads as empty.
type Parameters struct {
	keys   []string
	values map[string]string
}

// NewParameters returns an empty bag.
func NewParameters() *Parameters {
	return &Parameters{values: make(map[string]string)}
}

// ParseParameters decodes a query string produced by String. A leading '?'
// is ignored. A pair without '=' is a key with an empty value; a repeated
// key keeps its first position and its last value.
func ParseParameters(query string) (*Parameters, error) {
	p := NewParameters()
	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return p, nil
	}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, &ParseError{Path: query, Reason: "bad key escape", Err: err}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, &ParseError{Path: query, Reason: "bad value escape", Err: err}
		}
		p.Set(key, value)
	}
	return p, nil
}

// Set stores value under key. An existing key keeps its position.
func (p *Parameters) Set(key, value string) *Parameters {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

func (p *Parameters) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

func (p *Parameters) Delete(key string) {
	if p == nil {
		return
	}
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (p *Parameters) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

func (p *Parameters) Clone() *Parameters {
	c := NewParameters()
	if p == nil {
		return c
	}
	for _, k := range p.keys {
		c.Set(k, p.values[k])
	}
	return c
}

// Merge copies every pair of other into p, overwriting existing keys.
func (p *Parameters) Merge(other *Parameters) *Parameters {
	if other == nil {
		return p
	}
	for _, k := range other.keys {
		p.Set(k, other.values[k])
	}
	return p
}

// Equal reports whether both bags hold the same pairs in the same order.
func (p *Parameters) Equal(other *Parameters) bool {
	return p.String() == other.String()
}

func (p *Parameters) String() string {
	if p == nil || len(p.keys) == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.values[k]))
	}
	return b.String()
}
