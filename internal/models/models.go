package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Schedule types known to the upstream
const (
	TypeTimetable   = "tt"
	TypeAttestation = "att"
)

// Dict is a keyed mapping as emitted by the upstream.
// The upstream is PHP-backed: an empty mapping arrives as [] and a mapping
// with sequential integer keys arrives as a JSON list.
type Dict[V any] map[string]V

// UnmarshalJSON accepts an object, a list (keyed by position) or null
func (d *Dict[V]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = Dict[V]{}
		return nil
	}

	if trimmed[0] == '[' {
		var list []V
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("decode list mapping: %w", err)
		}
		out := make(Dict[V], len(list))
		for i, v := range list {
			out[strconv.Itoa(i)] = v
		}
		*d = out
		return nil
	}

	var m map[string]V
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return fmt.Errorf("decode mapping: %w", err)
	}
	*d = Dict[V](m)
	return nil
}

// Groups maps a group key to its display name
type Groups = Dict[string]

// TimetableMeta is the metadata tree returned by getTimetableMeta
type TimetableMeta struct {
	Level Dict[Level] `json:"level"`
}

// Level is a top tier of program classification (bachelor, master, ...)
type Level struct {
	Title string     `json:"title"`
	Form  Dict[Form] `json:"form"`
}

// Form is a mode of study under a level
type Form struct {
	Title     string         `json:"title"`
	FullTitle *string        `json:"full_title"`
	Type      Dict[TypeNode] `json:"type"`
}

// TypeNode holds either years (type tt) or streams (type att)
type TypeNode struct {
	Years   []Year   `json:"years,omitempty"`
	Streams []Stream `json:"streams,omitempty"`
}

// Year is a study year of a regular timetable
type Year struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Groups Groups `json:"groups"`
}

// Stream is the assessment-schedule counterpart of Year
type Stream struct {
	Title  string `json:"title"`
	Groups Groups `json:"groups"`
}

// WeekNum is the payload of getWeekNum
type WeekNum struct {
	WeekNum int `json:"weeknum"`
}

// TimetableQuery identifies a single group's timetable.
// Exactly one of Year or Stream is set, matching Type.
type TimetableQuery struct {
	Level  string
	Form   string
	Type   string
	Year   string
	Stream string
	Group  string
}

// LookupLevel returns the level stored under key
func (m *TimetableMeta) LookupLevel(key string) (Level, bool) {
	if m == nil {
		return Level{}, false
	}
	l, ok := m.Level[key]
	return l, ok
}

// LookupForm returns the form stored under key
func (l Level) LookupForm(key string) (Form, bool) {
	f, ok := l.Form[key]
	return f, ok
}

// LookupType returns the schedule type stored under key
func (f Form) LookupType(key string) (TypeNode, bool) {
	t, ok := f.Type[key]
	return t, ok
}

// FindYear returns the first year whose index equals index
func (t TypeNode) FindYear(index int) (Year, bool) {
	for _, y := range t.Years {
		if y.Index == index {
			return y, true
		}
	}
	return Year{}, false
}

// FindStream returns the first stream titled title
func (t TypeNode) FindStream(title string) (Stream, bool) {
	for _, s := range t.Streams {
		if s.Title == title {
			return s, true
		}
	}
	return Stream{}, false
}
