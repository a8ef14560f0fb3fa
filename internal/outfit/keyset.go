package outfit

import "encoding/json"

// KeySet is an insertion-ordered set of identity keys. Its JSON form is a
// plain array of strings.
type KeySet struct {
	keys  []string
	index map[string]struct{}
}

// NewKeySet builds a set from keys, dropping duplicates.
func NewKeySet(keys ...string) *KeySet {
	s := &KeySet{index: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// ParseKeySet decodes a persisted key array. Anything that is not a JSON
// array yields an empty set, and non-string members are skipped.
func ParseKeySet(raw string) *KeySet {
	s := NewKeySet()
	if raw == "" {
		return s
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return s
	}
	for _, item := range items {
		if string(item) == "null" {
			continue
		}
		var key string
		if err := json.Unmarshal(item, &key); err != nil {
			continue
		}
		s.Add(key)
	}
	return s
}

// Add inserts key and reports whether it was new.
func (s *KeySet) Add(key string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = struct{}{}
	s.keys = append(s.keys, key)
	return true
}

func (s *KeySet) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

func (s *KeySet) Len() int {
	return len(s.keys)
}

// Keys returns a copy of the keys in insertion order.
func (s *KeySet) Keys() []string {
	return append([]string(nil), s.keys...)
}

func (s *KeySet) MarshalJSON() ([]byte, error) {
	if s.keys == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.keys)
}
