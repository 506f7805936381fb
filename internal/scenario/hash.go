package scenario

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// DomainScenario is the domain prefix for scenario fingerprints. The
// version suffix enables future algorithm migration.
const DomainScenario = "gdose/scenario/v1"

// Hash computes a stable content fingerprint of a scenario for the run
// ledger. Two scenarios hash equal iff their canonical JSON is
// byte-identical: object keys sorted by UTF-16 code units, strings NFC
// normalized, no HTML escaping, floats in shortest round-trip form.
func Hash(s *Scenario) (string, error) {
	// Round-trip through encoding/json to get a tree of
	// map/slice/string/float64/bool values honoring the struct tags.
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("scenario hash: %w", err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return "", fmt.Errorf("scenario hash: %w", err)
	}

	canonical, err := marshalCanonical(tree)
	if err != nil {
		return "", fmt.Errorf("scenario hash: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(DomainScenario))
	h.Write([]byte{0x00}) // separator prevents domain/data boundary ambiguity
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case string:
		return marshalCanonicalString(val)
	case float64:
		// Shortest representation that round-trips; integral values
		// render without a decimal point.
		return []byte(strconv.FormatFloat(val, 'g', -1, 64)), nil
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			enc, err := marshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(enc)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sortUTF16(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encKey, err := marshalCanonicalString(k)
			if err != nil {
				return nil, fmt.Errorf("object key %q: %w", k, err)
			}
			buf.Write(encKey)
			buf.WriteByte(':')
			encVal, err := marshalCanonical(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			buf.Write(encVal)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString NFC-normalizes and JSON-encodes a string
// without HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	// Encode appends a newline.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// sortUTF16 sorts keys by UTF-16 code units, the canonical-JSON key
// order.
func sortUTF16(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a := utf16.Encode([]rune(keys[i]))
		b := utf16.Encode([]rune(keys[j]))
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}
