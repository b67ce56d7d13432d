// Package navigator extracts the slices of the timetable metadata tree the
// HTTP surface exposes, validating each step of the level, form, type and
// year/stream path.
package navigator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/jusunglee/penzgtu-go/internal/models"
)

// Display labels for schedule types
const (
	LabelTimetable   = "Расписание занятий"
	LabelAttestation = "Промежуточная аттестация"
	LabelUnknown     = "Неизвестный тип расписания"
)

// Levels maps each level key to its title
func Levels(meta *models.TimetableMeta) map[string]string {
	levels := make(map[string]string)
	if meta == nil {
		return levels
	}
	for key, level := range meta.Level {
		levels[key] = level.Title
	}
	return levels
}

// Forms maps each form of level to its title
func Forms(meta *models.TimetableMeta, level string) (map[string]string, error) {
	l, err := lookupLevel(meta, level)
	if err != nil {
		return nil, err
	}

	forms := make(map[string]string, len(l.Form))
	for key, form := range l.Form {
		forms[key] = form.Title
	}
	return forms, nil
}

// Types maps each schedule type of level/form to its display label
func Types(meta *models.TimetableMeta, level, form string) (map[string]string, error) {
	f, err := lookupForm(meta, level, form)
	if err != nil {
		return nil, err
	}

	types := make(map[string]string, len(f.Type))
	for key := range f.Type {
		types[key] = TypeLabel(key)
	}
	return types, nil
}

// TypeLabel returns the display label of a schedule type
func TypeLabel(typ string) string {
	switch typ {
	case models.TypeTimetable:
		return LabelTimetable
	case models.TypeAttestation:
		return LabelAttestation
	default:
		return LabelUnknown
	}
}

// Years maps each year index of a tt schedule to its title
func Years(meta *models.TimetableMeta, level, form, typ string) (map[string]string, error) {
	if typ != models.TypeTimetable {
		return nil, usageError("/getYears is reserved for type=tt")
	}
	node, err := lookupType(meta, level, form, typ)
	if err != nil {
		return nil, err
	}

	years := make(map[string]string, len(node.Years))
	for _, y := range node.Years {
		years[strconv.Itoa(y.Index)] = y.Title
	}
	return years, nil
}

// Streams maps each stream title of an att schedule to itself
func Streams(meta *models.TimetableMeta, level, form, typ string) (map[string]string, error) {
	if typ != models.TypeAttestation {
		return nil, usageError("/getStreams is reserved for type=att")
	}
	node, err := lookupType(meta, level, form, typ)
	if err != nil {
		return nil, err
	}

	streams := make(map[string]string, len(node.Streams))
	for _, s := range node.Streams {
		streams[s.Title] = s.Title
	}
	return streams, nil
}

// Groups returns the groups of the year or stream selected by q.
// The year is read by its leading integer, so "1.0" and " 1" select index 1;
// a year with no leading digits matches nothing.
func Groups(meta *models.TimetableMeta, q models.TimetableQuery) (models.Groups, error) {
	node, err := lookupType(meta, q.Level, q.Form, q.Type)
	if err != nil {
		return nil, err
	}

	var groups models.Groups
	if q.Year != "" {
		if index, ok := leadingInt(q.Year); ok {
			if y, ok := node.FindYear(index); ok {
				groups = y.Groups
			}
		}
	} else if s, ok := node.FindStream(q.Stream); ok {
		groups = s.Groups
	}

	if len(groups) == 0 {
		return nil, ErrNoGroups
	}
	return groups, nil
}

// leadingInt parses the optionally signed integer prefix of s after leading
// whitespace, ignoring whatever follows it.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupLevel(meta *models.TimetableMeta, level string) (models.Level, error) {
	l, ok := meta.LookupLevel(level)
	if !ok {
		return models.Level{}, fmt.Errorf("level %q %w", level, ErrNotFound)
	}
	return l, nil
}

func lookupForm(meta *models.TimetableMeta, level, form string) (models.Form, error) {
	l, err := lookupLevel(meta, level)
	if err != nil {
		return models.Form{}, err
	}
	f, ok := l.LookupForm(form)
	if !ok {
		return models.Form{}, fmt.Errorf("form %q %w", form, ErrNotFound)
	}
	return f, nil
}

func lookupType(meta *models.TimetableMeta, level, form, typ string) (models.TypeNode, error) {
	f, err := lookupForm(meta, level, form)
	if err != nil {
		return models.TypeNode{}, err
	}
	node, ok := f.LookupType(typ)
	if !ok {
		return models.TypeNode{}, fmt.Errorf("type %q %w", typ, ErrNotFound)
	}
	return node, nil
}
