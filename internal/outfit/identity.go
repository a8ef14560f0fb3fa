package outfit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// IdentityKey returns the string used to decide whether two records are the
// same outfit: the image URL when present, then the name, then the whole
// record in canonical JSON form.
func IdentityKey(o Outfit) string {
	if image := strings.TrimSpace(o.Image); image != "" {
		return "image:" + image
	}
	if name := strings.TrimSpace(o.Name); name != "" {
		return "name:" + name
	}
	data, err := json.Marshal(o)
	if err != nil {
		// Only hand-built records with invalid raw extras get here.
		return rawKey(o)
	}
	return string(data)
}

// rawKey spells out a record field by field without validating the extras.
func rawKey(o Outfit) string {
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "record:%q|%q", o.Tags, o.SourceURL)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%q=%q", k, o.Extra[k])
	}
	return b.String()
}

// Dedupe keeps the first record for each identity key, preserving order.
func Dedupe(records []Outfit) []Outfit {
	seen := make(map[string]struct{}, len(records))
	out := make([]Outfit, 0, len(records))
	for _, rec := range records {
		key := IdentityKey(rec)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// InferFilename picks the wardrobe filename for a record: its name, else the
// last path segment of the image URL, else fallback.
func InferFilename(o Outfit, fallback string) string {
	if name := strings.TrimSpace(o.Name); name != "" {
		return name
	}
	image := strings.TrimSpace(o.Image)
	if image == "" {
		return fallback
	}
	if u, err := url.Parse(image); err == nil && u.Scheme != "" && u.Host != "" {
		if last := lastSegment(u.Path); last != "" {
			return last
		}
	}
	last := lastSegment(image)
	if last == "" {
		return fallback
	}
	if i := strings.Index(last, "?"); i >= 0 {
		last = last[:i]
	}
	if last == "" {
		return fallback
	}
	return last
}

func lastSegment(path string) string {
	parts := strings.Split(path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}
