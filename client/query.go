package client

import (
	"net/url"
	"slices"
	"strings"
)

type Query map[string][]string

func NewQuery() Query {
	return make(Query)
}

func (q Query) WithValue(key string, values ...string) Query {
	q[key] = append(q[key], values...)
	return q
}

// Encode returns the query in the URL-encoded form, sorted by key.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}

	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, key := range keys {
		for _, value := range q[key] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}

			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}

	return b.String()
}
