package contentful

import (
	"bytes"
	"encoding/json"
	"time"
)

// Link types used in Sys.LinkType.
const (
	LinkEntry = "Entry"
	LinkAsset = "Asset"
)

// Sys is the system metadata block carried by every resource and link.
type Sys struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	LinkType    string     `json:"linkType,omitempty"`
	ContentType *Reference `json:"contentType,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Reference is a link to another resource.
type Reference struct {
	Sys Sys `json:"sys"`
}

// Entry is an entry or an asset as returned by the API. Field values are kept
// raw and decoded on access.
type Entry struct {
	Sys    Sys                        `json:"sys"`
	Fields map[string]json.RawMessage `json:"fields"`

	links linkIndex
}

// Collection is a page of entries.
type Collection struct {
	Total    int      `json:"total"`
	Skip     int      `json:"skip"`
	Limit    int      `json:"limit"`
	Items    []*Entry `json:"items"`
	Includes struct {
		Entry []*Entry `json:"Entry"`
		Asset []*Entry `json:"Asset"`
	} `json:"includes"`
}

type linkIndex map[string]map[string]*Entry

func (idx linkIndex) add(linkType string, entries []*Entry) {
	if idx[linkType] == nil {
		idx[linkType] = make(map[string]*Entry)
	}
	for _, e := range entries {
		if e == nil || e.Sys.ID == "" {
			continue
		}
		idx[linkType][e.Sys.ID] = e
	}
}

// resolve indexes every resource in the collection and attaches the index to
// each of them so links can be followed at any depth.
func (c *Collection) resolve() {
	idx := make(linkIndex)
	idx.add(LinkEntry, c.Items)
	idx.add(LinkEntry, c.Includes.Entry)
	idx.add(LinkAsset, c.Includes.Asset)
	for _, group := range [][]*Entry{c.Items, c.Includes.Entry, c.Includes.Asset} {
		for _, e := range group {
			if e != nil {
				e.links = idx
			}
		}
	}
}

// ContentType returns the id of the entry's content type.
func (e *Entry) ContentType() string {
	if e.Sys.ContentType == nil {
		return ""
	}
	return e.Sys.ContentType.Sys.ID
}

func (e *Entry) raw(key string) (json.RawMessage, bool) {
	if e == nil {
		return nil, false
	}
	raw, ok := e.Fields[key]
	if !ok || len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

// Has reports whether the field is present and not null.
func (e *Entry) Has(key string) bool {
	_, ok := e.raw(key)
	return ok
}

// Decode unmarshals the field into v. It reports false when the field is
// absent, null, or does not decode into v.
func (e *Entry) Decode(key string, v any) bool {
	raw, ok := e.raw(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// String returns a string field.
func (e *Entry) String(key string) (string, bool) {
	var s string
	if !e.Decode(key, &s) {
		return "", false
	}
	return s, true
}

// Strings returns a list-of-symbols field, or nil when absent.
func (e *Entry) Strings(key string) []string {
	var out []string
	if !e.Decode(key, &out) {
		return nil
	}
	return out
}

// Object returns a JSON object field such as an asset's file description.
func (e *Entry) Object(key string) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if !e.Decode(key, &obj) {
		return nil, false
	}
	return obj, true
}

// Link follows a link field. It reports false when the field is absent, is
// not a link, or points at a resource missing from the response.
func (e *Entry) Link(key string) (*Entry, bool) {
	var ref Reference
	if !e.Decode(key, &ref) {
		return nil, false
	}
	if ref.Sys.Type != "Link" || e.links == nil {
		return nil, false
	}
	target, ok := e.links[ref.Sys.LinkType][ref.Sys.ID]
	return target, ok
}
