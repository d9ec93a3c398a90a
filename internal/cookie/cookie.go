// Package cookie defines the session-cookie descriptor stored alongside each
// tool record and the tolerant decoder for the persisted bundle formats.
package cookie

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Descriptor is one browser cookie as stored in a tool's cookie bundle.
type Descriptor struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain,omitempty"`
	Path           string  `json:"path,omitempty"`
	Secure         bool    `json:"secure,omitempty"`
	HTTPOnly       bool    `json:"httpOnly,omitempty"`
	ExpirationDate float64 `json:"expirationDate,omitempty"`
	SameSite       string  `json:"sameSite,omitempty"`
	StoreID        string  `json:"storeId,omitempty"`
}

// MalformedBundleError reports a bundle that does not normalize to a list of
// cookie descriptors. It is a data error on the stored record, not a crash.
type MalformedBundleError struct {
	Reason string
}

func (e *MalformedBundleError) Error() string {
	return "malformed cookie bundle: " + e.Reason
}

// ParseBundle decodes a stored cookie bundle. The bundle is either a JSON
// array of descriptor objects or a JSON array whose elements are themselves
// JSON-encoded descriptor strings. Elements without a name are dropped and
// counted in skipped rather than failing the whole bundle.
func ParseBundle(raw string) (descriptors []Descriptor, skipped int, err error) {
	root := gjson.Parse(raw)
	if !root.IsArray() {
		return nil, 0, &MalformedBundleError{Reason: "not a JSON array"}
	}

	for _, elem := range root.Array() {
		if elem.Type == gjson.String {
			// Double-encoded variant: the element is a JSON string holding
			// the descriptor object.
			elem = gjson.Parse(elem.String())
		}
		if !elem.IsObject() {
			skipped++
			continue
		}

		var d Descriptor
		if err := json.Unmarshal([]byte(elem.Raw), &d); err != nil || d.Name == "" {
			skipped++
			continue
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, skipped, nil
}
