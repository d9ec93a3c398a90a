package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// RenewalPackage is one purchasable duration/price tier of a tool.
type RenewalPackage struct {
	Title string  `json:"title,omitempty"`
	Days  int     `json:"days"`
	Price float64 `json:"price"`
}

// Label returns the package title, falling back to its duration.
func (p RenewalPackage) Label() string {
	if p.Title != "" {
		return p.Title
	}
	return fmt.Sprintf("%d days", p.Days)
}

// MalformedPackageError reports a package list that does not normalize to a
// JSON array.
type MalformedPackageError struct {
	Reason string
}

func (e *MalformedPackageError) Error() string {
	return "malformed package list: " + e.Reason
}

// ParsePackages decodes a tool's renewal package list. The stored value is
// either a JSON array of {title?, days, price} objects, a JSON array whose
// elements are JSON-encoded strings of that shape, or a JSON string wrapping
// either form. Entries without numeric days and price are dropped and counted
// in dropped. An empty or absent value means the tool has no renewal options.
func ParsePackages(raw json.RawMessage) (packages []RenewalPackage, dropped int, err error) {
	if len(raw) == 0 {
		return nil, 0, nil
	}

	root := gjson.ParseBytes(raw)
	if root.Type == gjson.String {
		inner := strings.TrimSpace(root.String())
		if inner == "" || inner == "[]" {
			return nil, 0, nil
		}
		root = gjson.Parse(inner)
	}
	if root.Type == gjson.Null {
		return nil, 0, nil
	}
	if !root.IsArray() {
		return nil, 0, &MalformedPackageError{Reason: "not a JSON array"}
	}

	for _, elem := range root.Array() {
		if elem.Type == gjson.String {
			elem = gjson.Parse(elem.String())
		}
		if !elem.IsObject() ||
			elem.Get("days").Type != gjson.Number ||
			elem.Get("price").Type != gjson.Number {
			dropped++
			continue
		}

		var p RenewalPackage
		if err := json.Unmarshal([]byte(elem.Raw), &p); err != nil {
			dropped++
			continue
		}
		packages = append(packages, p)
	}
	return packages, dropped, nil
}
