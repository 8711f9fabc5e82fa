package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"invoicedesk/internal/domain"
)

// DecodeRawFields converts a JSON object into a RawFieldMap.
func DecodeRawFields(body []byte) (*domain.RawFieldMap, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}

	m := domain.NewRawFieldMap()
	for k, v := range fields {
		m.Set(k, toRawValue(v))
	}
	return m, nil
}

func toRawValue(v any) domain.RawValue {
	switch tv := v.(type) {
	case nil:
		return domain.RawValue{Kind: domain.RawKindNull}
	case string:
		return domain.RawValue{Kind: domain.RawKindString, Str: tv}
	case json.Number:
		f, err := tv.Float64()
		if err != nil {
			return domain.RawValue{Kind: domain.RawKindString, Str: tv.String()}
		}
		return domain.RawValue{Kind: domain.RawKindNumber, Num: f}
	case bool:
		return domain.RawValue{Kind: domain.RawKindBool, Bool: tv}
	}
	return domain.RawValue{Kind: domain.RawKindOther}
}
