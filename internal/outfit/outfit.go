// Package outfit holds the outfit record shared by the swipe queue, the
// curated results view and the backend client, plus the identity helpers
// used to deduplicate records.
package outfit

import (
	"encoding/json"
	"fmt"
)

// Outfit is a single recommended outfit as returned by the backend.
// Fields the client does not know about are kept in Extra and written back
// unchanged when the record is encoded again.
type Outfit struct {
	Name      string
	Image     string
	Tags      []string
	SourceURL string
	Extra     map[string]json.RawMessage
}

const (
	fieldName      = "name"
	fieldImage     = "image"
	fieldTags      = "tags"
	fieldSourceURL = "source_url"
)

// UnmarshalJSON decodes the known fields and keeps everything else in Extra.
// A known field whose value has an unexpected type is kept as an extra
// rather than rejected.
func (o *Outfit) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode outfit: %w", err)
	}

	*o = Outfit{}
	for key, value := range raw {
		var ok bool
		switch key {
		case fieldName:
			ok = decodeString(value, &o.Name)
		case fieldImage:
			ok = decodeString(value, &o.Image)
		case fieldSourceURL:
			ok = decodeString(value, &o.SourceURL)
		case fieldTags:
			ok = decodeTags(value, &o.Tags)
		}
		if ok {
			continue
		}
		if o.Extra == nil {
			o.Extra = make(map[string]json.RawMessage)
		}
		o.Extra[key] = value
	}
	return nil
}

// MarshalJSON writes the known fields merged over the extras. Keys are
// emitted in sorted order, which IdentityKey relies on.
func (o Outfit) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(o.Extra)+4)
	for k, v := range o.Extra {
		out[k] = v
	}
	if o.Name != "" {
		out[fieldName] = mustString(o.Name)
	}
	if o.Image != "" {
		out[fieldImage] = mustString(o.Image)
	}
	if o.SourceURL != "" {
		out[fieldSourceURL] = mustString(o.SourceURL)
	}
	if o.Tags != nil {
		tags, err := json.Marshal(o.Tags)
		if err != nil {
			return nil, err
		}
		out[fieldTags] = tags
	}
	return json.Marshal(out)
}

// Clone returns a deep copy so callers can hand records across goroutines.
func (o Outfit) Clone() Outfit {
	c := o
	if o.Tags != nil {
		c.Tags = append([]string(nil), o.Tags...)
	}
	if o.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(o.Extra))
		for k, v := range o.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

func decodeString(value json.RawMessage, dst *string) bool {
	if string(value) == "null" {
		return true
	}
	return json.Unmarshal(value, dst) == nil
}

func decodeTags(value json.RawMessage, dst *[]string) bool {
	if string(value) == "null" {
		return true
	}
	var tags []string
	if err := json.Unmarshal(value, &tags); err != nil {
		return false
	}
	if tags == nil {
		tags = []string{}
	}
	*dst = tags
	return true
}

func mustString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
