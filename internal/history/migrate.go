package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// CurrentVersion is the history document version written by this build.
//
// Version 1 is the bare JSON array of the first releases, whose records may
// lack "id" and "type". Version 2 wraps canonical entries in a document.
const CurrentVersion = 2

type historyDocument struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// legacyEntry accepts any version 1 record shape.
type legacyEntry struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Topic   string    `json:"topic"`
	Title   string    `json:"title"`
	Content []Message `json:"content"`
}

// decodeHistory parses a stored history of any known version into canonical
// entries.
func decodeHistory(data []byte) ([]Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Entry{}, nil
	}

	switch data[0] {
	case '[':
		var legacy []legacyEntry
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("decode v1 history: %w", err)
		}
		return migrateV1(legacy), nil
	case '{':
		var doc historyDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode history document: %w", err)
		}
		if doc.Version != CurrentVersion {
			return nil, fmt.Errorf("unknown history version %d", doc.Version)
		}
		return normalize(doc.Entries), nil
	default:
		return nil, fmt.Errorf("history is neither an array nor a document")
	}
}

// migrateV1 classifies untyped records and assigns deterministic ids.
func migrateV1(legacy []legacyEntry) []Entry {
	entries := make([]Entry, len(legacy))
	for i, l := range legacy {
		e := Entry{ID: l.ID, Topic: l.Topic, Title: l.Title, Transcript: l.Content}
		switch Kind(l.Type) {
		case KindChat, KindLesson:
			e.Kind = Kind(l.Type)
		default:
			e.Kind = KindLesson
			if len(l.Content) > 0 {
				e.Kind = KindChat
			}
		}
		entries[i] = e
	}
	return normalize(entries)
}

// normalize fills missing kinds and ids, and makes ids unique. Two loads of
// the same data produce the same ids.
func normalize(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	used := make(map[string]bool, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.Kind != KindChat && e.Kind != KindLesson {
			e.Kind = KindLesson
			if len(e.Transcript) > 0 {
				e.Kind = KindChat
			}
		}
		if e.ID == "" {
			if e.Kind == KindLesson && e.Topic != "" {
				e.ID = lessonID(e.Topic)
			} else {
				e.ID = "history-" + strconv.Itoa(i)
			}
		}
		e.ID = uniqueID(e.ID, used)
		used[e.ID] = true
	}
	return entries
}
