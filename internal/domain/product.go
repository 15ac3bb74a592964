package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ProductID identifies a product. Catalog sources emit it either as a JSON
// number or a string; both decode to the same value.
type ProductID string

// String returns the identifier as text.
func (id ProductID) String() string { return string(id) }

// MarshalJSON writes integer identifiers as JSON numbers and anything else as
// a string, so persisted snapshots keep the shape the catalog used.
func (id ProductID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a number, a string or null. Any other JSON value
// decodes to the empty id, which catalog sources drop.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			*id = ""
			return nil
		}
		*id = ProductID(n.String())
	}
	return nil
}

// Number is a float64 that also decodes from numeric strings and null.
// Malformed values decode to 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// Specifications holds the known product specification keys. Vendor
// specific keys the storefront does not model are kept in Extra.
type Specifications struct {
	CPU             string
	Battery         string
	ScreenSize      string
	Camera          string
	Screen          string
	BatteryCapacity string
	ScreenType      string
	ScreenDiagonal  string
	ProtectionClass string
	BuiltInMemory   string

	Extra map[string]string
}

// specField binds a JSON key to its struct field.
type specField struct {
	key string
	ptr func(*Specifications) *string
}

var specFields = []specField{
	{"CPU", func(s *Specifications) *string { return &s.CPU }},
	{"battery", func(s *Specifications) *string { return &s.Battery }},
	{"screen_size", func(s *Specifications) *string { return &s.ScreenSize }},
	{"camera", func(s *Specifications) *string { return &s.Camera }},
	{"screen", func(s *Specifications) *string { return &s.Screen }},
	{"batteryCapacity", func(s *Specifications) *string { return &s.BatteryCapacity }},
	{"screenType", func(s *Specifications) *string { return &s.ScreenType }},
	{"screenDiagonal", func(s *Specifications) *string { return &s.ScreenDiagonal }},
	{"protectionClass", func(s *Specifications) *string { return &s.ProtectionClass }},
	{"builtInMemory", func(s *Specifications) *string { return &s.BuiltInMemory }},
}

// Get returns the value for a specification key, known or extra.
func (s Specifications) Get(key string) (string, bool) {
	for _, f := range specFields {
		if f.key == key {
			v := *f.ptr(&s)
			return v, v != ""
		}
	}
	v, ok := s.Extra[key]
	return v, ok
}

// MarshalJSON emits a flat object with known keys first, then extra keys
// in sorted order. Empty values are omitted.
func (s Specifications) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(k, v string) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(v)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}

	for _, f := range specFields {
		if v := *f.ptr(&s); v != "" {
			write(f.key, v)
		}
	}
	keys := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(k, s.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object whose values are strings, numbers or
// booleans. Other value kinds and null are skipped; a non-object yields
// empty specifications.
func (s *Specifications) UnmarshalJSON(data []byte) error {
	*s = Specifications{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil
	}

outer:
	for k, rv := range raw {
		v, ok := scalarString(rv)
		if !ok {
			continue
		}
		for _, f := range specFields {
			if f.key == k {
				*f.ptr(s) = v
				continue outer
			}
		}
		if s.Extra == nil {
			s.Extra = make(map[string]string)
		}
		s.Extra[k] = v
	}
	return nil
}

func scalarString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return "", false
		}
		return v, true
	case 't', 'f':
		return string(raw), string(raw) == "true" || string(raw) == "false"
	case 'n', '{', '[':
		return "", false
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", false
		}
		return n.String(), true
	}
}

// Product is a read-only catalog record.
type Product struct {
	ID             ProductID      `json:"id"`
	Category       string         `json:"category"`
	Brand          string         `json:"brand"`
	Model          string         `json:"model"`
	Price          float64        `json:"price"`
	Color          string         `json:"color,omitempty"`
	Images         []string       `json:"images"`
	Details        string         `json:"details,omitempty"`
	Specifications Specifications `json:"specifications"`
	Rating         float64        `json:"rating"`
	Value          string         `json:"value,omitempty"` // home tab: new, bestseller or featured
	CreatedAt      time.Time      `json:"created_at,omitzero"`
}

// Identified drops products without an id. A record the decoder could not
// identify is skipped rather than failing the whole catalog.
func Identified(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasCreatedAt reports whether the source supplied a creation timestamp.
func (p Product) HasCreatedAt() bool { return !p.CreatedAt.IsZero() }

// productWire is the permissive decoding shape of a Product.
type productWire struct {
	ID             ProductID       `json:"id"`
	Category       *string         `json:"category"`
	Brand          *string         `json:"brand"`
	Model          *string         `json:"model"`
	Price          Number          `json:"price"`
	Color          *string         `json:"color"`
	Images         json.RawMessage `json:"images"`
	Details        *string         `json:"details"`
	Specifications Specifications  `json:"specifications"`
	Rating         Number          `json:"rating"`
	Value          *string         `json:"value"`
	CreatedAt      *string         `json:"created_at"`
	CreatedAtCamel *string         `json:"createdAt"`
}

// UnmarshalJSON defaults missing or malformed optional fields instead of
// failing: arrays become empty, numbers 0, strings empty.
func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode product: %w", err)
	}

	*p = Product{
		ID:             w.ID,
		Category:       deref(w.Category),
		Brand:          deref(w.Brand),
		Model:          deref(w.Model),
		Price:          float64(w.Price),
		Color:          deref(w.Color),
		Images:         stringList(w.Images),
		Details:        deref(w.Details),
		Specifications: w.Specifications,
		Rating:         float64(w.Rating),
		Value:          strings.ToLower(strings.TrimSpace(deref(w.Value))),
	}

	ts := deref(w.CreatedAt)
	if ts == "" {
		ts = deref(w.CreatedAtCamel)
	}
	p.CreatedAt = parseTimestamp(ts)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringList(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, it := range items {
		var s string
		if json.Unmarshal(it, &s) == nil && s != "" {
			out = append(out, s)
		}
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// parseTimestamp understands the timestamp shapes Postgres and JavaScript
// emit. Unparseable input yields the zero time, which sorts as the epoch.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Timestamp returns the creation time for ordering; missing timestamps
// count as the Unix epoch.
func (p Product) Timestamp() time.Time {
	if p.CreatedAt.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return p.CreatedAt
}
