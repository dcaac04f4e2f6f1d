package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// VariantRef names a product variant. Clients send either the bare label
// or the variant object they were shown ({"label"}, {"size"} or {"name"}).
type VariantRef struct {
	Label string
}

func (v *VariantRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		v.Label = ""
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v.Label = strings.TrimSpace(s)
		return nil
	case '{':
		var obj struct {
			Label string `json:"label"`
			Size  string `json:"size"`
			Name  string `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		for _, s := range []string{obj.Label, obj.Size, obj.Name} {
			if s = strings.TrimSpace(s); s != "" {
				v.Label = s
				return nil
			}
		}
		v.Label = ""
		return nil
	default:
		return fmt.Errorf("variant must be a label or an object")
	}
}

func (v VariantRef) MarshalJSON() ([]byte, error) {
	if v.Label == "" {
		return []byte("null"), nil
	}
	return json.Marshal(v.Label)
}

// variantKey is the variant part of the merge key; "" means no variant.
func variantKey(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
