package intent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/motorbot/internal/core"
)

type wirePayload struct {
	Category string          `json:"category"`
	Params   json.RawMessage `json:"params"`
	Followup string          `json:"followup"`
}

// Parse decodes the model's JSON answer into an Intent. Models love to
// wrap their JSON in markdown fences or lead-in prose, so the payload
// is cut out of the surrounding text first. Anything that still fails
// to decode, or decodes outside the category contract, is a
// ValidationError.
func Parse(raw string) (core.Intent, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return core.Intent{}, &core.ValidationError{Reason: "no JSON object in classifier output"}
	}

	var payload wirePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return core.Intent{}, &core.ValidationError{Reason: fmt.Sprintf("malformed classifier JSON: %v", err)}
	}

	category, ok := core.ParseCategory(payload.Category)
	if !ok {
		return core.Intent{}, &core.ValidationError{Reason: fmt.Sprintf("unknown category %q", payload.Category)}
	}

	filters, err := parseFilters(payload.Params)
	if err != nil {
		return core.Intent{}, err
	}

	return core.Intent{
		Category: category,
		Filters:  filters,
		Followup: payload.Followup,
	}, nil
}

func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// parseFilters walks the params object token by token so the emitted
// filters keep the model's key order; unmarshalling into a map would
// scramble it.
func parseFilters(raw json.RawMessage) ([]core.Filter, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, &core.ValidationError{Reason: fmt.Sprintf("malformed params: %v", err)}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &core.ValidationError{Reason: "params is not an object"}
	}

	var filters []core.Filter
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &core.ValidationError{Reason: fmt.Sprintf("malformed params: %v", err)}
		}
		field := keyTok.(string)

		f, err := parseValue(dec, field)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func parseValue(dec *json.Decoder, field string) (core.Filter, error) {
	tok, err := dec.Token()
	if err != nil {
		return core.Filter{}, &core.ValidationError{Reason: fmt.Sprintf("malformed params value for %q: %v", field, err)}
	}

	switch v := tok.(type) {
	case json.Delim:
		if v != '{' {
			return core.Filter{}, &core.ValidationError{Reason: fmt.Sprintf("unsupported params value for %q", field)}
		}
		return parseConstraint(dec, field)
	case string:
		return core.Filter{Field: field, Value: v}, nil
	case json.Number:
		return core.Filter{Field: field, Value: numberValue(v)}, nil
	case nil:
		return core.Filter{Field: field, Value: nil}, nil
	case bool:
		return core.Filter{Field: field, Value: fmt.Sprintf("%t", v)}, nil
	}
	return core.Filter{}, &core.ValidationError{Reason: fmt.Sprintf("unsupported params value for %q", field)}
}

// parseConstraint reads a {"gte": n} style object. The first known
// operator key wins; extra keys are ignored.
func parseConstraint(dec *json.Decoder, field string) (core.Filter, error) {
	filter := core.Filter{Field: field}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return core.Filter{}, &core.ValidationError{Reason: fmt.Sprintf("malformed constraint for %q: %v", field, err)}
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return core.Filter{}, &core.ValidationError{Reason: fmt.Sprintf("malformed constraint for %q: %v", field, err)}
		}
		if delim, ok := valTok.(json.Delim); ok {
			if err := skipNested(dec, delim); err != nil {
				return core.Filter{}, &core.ValidationError{Reason: fmt.Sprintf("malformed constraint for %q: %v", field, err)}
			}
			continue
		}

		op, known := operatorFor(key)
		if !known || filter.Op != "" {
			continue
		}
		filter.Op = op
		switch v := valTok.(type) {
		case string:
			filter.Value = v
		case json.Number:
			filter.Value = numberValue(v)
		}
	}
	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return core.Filter{}, &core.ValidationError{Reason: fmt.Sprintf("malformed constraint for %q: %v", field, err)}
	}

	if filter.Op == "" {
		return core.Filter{}, &core.ValidationError{Reason: fmt.Sprintf("constraint for %q has no gte/lte/eq", field)}
	}
	return filter, nil
}

func operatorFor(key string) (core.Operator, bool) {
	switch key {
	case "gte":
		return core.OpGte, true
	case "lte":
		return core.OpLte, true
	case "eq":
		return core.OpEq, true
	}
	return "", false
}

// skipNested drains an unexpected nested object or array.
func skipNested(dec *json.Decoder, open json.Delim) error {
	if open != '{' && open != '[' {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, _ := n.Float64()
	return f
}
