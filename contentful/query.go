package contentful

import (
	"net/url"
	"sort"
	"strconv"
)

// Query describes an entries request. Zero values are omitted.
type Query struct {
	ContentType string
	// Order is a comma separated list of fields, prefixed with "-" for
	// descending order, e.g. "-fields.publishDate".
	Order string
	// Fields filters on entry fields. Keys may carry an operator suffix,
	// e.g. "slug" becomes fields.slug=v and "tags[in]" becomes fields.tags[in]=v.
	Fields  map[string]string
	Skip    int
	Limit   int
	Include int // link resolution depth, 0..10
	Locale  string
}

// Values encodes q as URL query parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.ContentType != "" {
		v.Set("content_type", q.ContentType)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	keys := make([]string, 0, len(q.Fields))
	for k := range q.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set("fields."+k, q.Fields[k])
	}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Include > 0 {
		v.Set("include", strconv.Itoa(q.Include))
	}
	if q.Locale != "" {
		v.Set("locale", q.Locale)
	}
	return v
}
