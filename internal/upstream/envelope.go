package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The proxy and the service behind it disagree on response shapes: the same
// operation may answer with a raw scalar, a numeric string, `{value: ...}`,
// `{data: ...}`, or both nested. Every decode below funnels through
// unwrapEnvelope so call sites never branch on shape themselves.

// unwrapEnvelope strips `{value: ...}` OData envelopes and `{data: ...}`
// wrappers, repeatedly, and returns the innermost payload.
func unwrapEnvelope(raw []byte) json.RawMessage {
	payload := json.RawMessage(bytes.TrimSpace(raw))
	for {
		if inner, ok := objectField(payload, "value"); ok {
			payload = inner
			continue
		}
		if inner, ok := objectField(payload, "data"); ok {
			payload = inner
			continue
		}
		return payload
	}
}

func objectField(raw json.RawMessage, key string) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	inner, ok := obj[key]
	if !ok || string(bytes.TrimSpace(inner)) == "null" {
		return nil, false
	}
	return bytes.TrimSpace(inner), true
}

// IsSuccess reports whether a response body carries the recognized success
// signal: after unwrapping, the number 1, the numeral string "1", or an
// object with success == true. Anything else is a failure.
func IsSuccess(raw []byte) bool {
	payload := unwrapEnvelope(raw)

	var n float64
	if err := json.Unmarshal(payload, &n); err == nil {
		return n == 1
	}
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		return strings.TrimSpace(s) == "1"
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err == nil {
		if v, ok := obj["success"]; ok {
			var b bool
			if err := json.Unmarshal(v, &b); err == nil {
				return b
			}
		}
	}
	return false
}

// numericSignal extracts the integer convention used by the cancel
// operation (1 = success, 0 = failure), tolerating quoted numbers.
func numericSignal(raw []byte) (int, error) {
	payload := unwrapEnvelope(raw)

	var n float64
	if err := json.Unmarshal(payload, &n); err == nil {
		return int(n), nil
	}
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("numeric signal: parse %q: %w", s, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("numeric signal: unrecognized payload %q", truncate(payload, 80))
}

// decodeList normalizes the list shapes the service emits: an array, a
// single object (wrapped into a one-element list), or nothing.
func decodeList[T any](raw []byte) ([]T, error) {
	payload := bytes.TrimSpace(unwrapEnvelope(raw))
	if len(payload) == 0 || string(payload) == "null" {
		return nil, nil
	}
	switch payload[0] {
	case '[':
		var out []T
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return out, nil
	case '{':
		var one T
		if err := json.Unmarshal(payload, &one); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return []T{one}, nil
	default:
		return nil, nil
	}
}

// decodeFirst returns the first element of a list response, or nil when the
// response is empty.
func decodeFirst[T any](raw []byte) (*T, error) {
	items, err := decodeList[T](raw)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
