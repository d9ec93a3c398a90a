package util

import (
	"encoding/json"
	"fmt"
)

// PrintPrettyJSON prints a value as indented JSON. Slices print as arrays,
// so callers can pass document lists directly.
func PrintPrettyJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
