package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ReasonTaxonomy maps each main reason to its sub reasons, keeping the
// display order of the main reasons. It encodes as a JSON object whose keys
// appear in that order.
type ReasonTaxonomy struct {
	order []string
	subs  map[string][]string
}

// NewReasonTaxonomy groups rows that are already sorted by display order.
func NewReasonTaxonomy(rows []IssueReason) *ReasonTaxonomy {
	t := &ReasonTaxonomy{subs: make(map[string][]string)}
	for _, row := range rows {
		t.Add(row.MainReason, row.SubReason)
	}
	return t
}

// Add registers main (once) and appends sub when it is not empty.
func (t *ReasonTaxonomy) Add(main, sub string) {
	if t.subs == nil {
		t.subs = make(map[string][]string)
	}
	if _, ok := t.subs[main]; !ok {
		t.order = append(t.order, main)
		t.subs[main] = []string{}
	}
	if sub != "" {
		t.subs[main] = append(t.subs[main], sub)
	}
}

// MainReasons returns the main reasons in display order.
func (t *ReasonTaxonomy) MainReasons() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// SubReasons returns the sub reasons of main, or nil when main is unknown.
func (t *ReasonTaxonomy) SubReasons(main string) []string {
	if t == nil {
		return nil
	}
	subs, ok := t.subs[main]
	if !ok {
		return nil
	}
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}

func (t *ReasonTaxonomy) HasMain(main string) bool {
	if t == nil {
		return false
	}
	_, ok := t.subs[main]
	return ok
}

// BelongsTo reports whether sub is listed under main.
func (t *ReasonTaxonomy) BelongsTo(main, sub string) bool {
	if t == nil {
		return false
	}
	for _, s := range t.subs[main] {
		if s == sub {
			return true
		}
	}
	return false
}

func (t *ReasonTaxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

func (t ReasonTaxonomy) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, main := range t.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(main)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(t.subs[main])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *ReasonTaxonomy) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("reason taxonomy: expected object, got %v", tok)
	}
	t.order = nil
	t.subs = make(map[string][]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		main, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("reason taxonomy: unexpected key %v", keyTok)
		}
		var subs []string
		if err := dec.Decode(&subs); err != nil {
			return fmt.Errorf("reason taxonomy: sub reasons of %q: %w", main, err)
		}
		t.Add(main, "")
		for _, sub := range subs {
			t.Add(main, sub)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
