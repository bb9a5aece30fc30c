package data

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"settlement-compare/internal/model"
)

// DecodeRecords parses a BMRS JSON payload into raw records.
//
// The payload may be a bare list, {"data": [...]} or {"data": {"data": [...]}}.
// valueField names the numeric field ("quantity", "indicatedImbalance"); when
// it is missing, null or non-numeric the record is kept with HasValue=false.
// Items without a usable settlementPeriod are skipped.
func DecodeRecords(body []byte, valueField string) ([]model.RawRecord, error) {
	items, err := extractList(body)
	if err != nil {
		return nil, err
	}
	out := make([]model.RawRecord, 0, len(items))
	for _, raw := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		period, ok := parseNumber(fields["settlementPeriod"])
		if !ok || period != math.Trunc(period) {
			continue
		}
		rec := model.RawRecord{
			SettlementDate:   parseString(fields["settlementDate"]),
			SettlementPeriod: model.SettlementPeriod(period),
			Category:         parseString(fields["psrType"]),
		}
		rec.Value, rec.HasValue = parseNumber(fields[valueField])
		if ts := parseString(fields["startTime"]); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				rec.StartTime = t
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func extractList(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var outer struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &outer); err != nil {
		return nil, err
	}
	inner := bytes.TrimSpace(outer.Data)
	switch {
	case len(inner) == 0:
		return nil, nil
	case inner[0] == '[':
		var list []json.RawMessage
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, err
		}
		return list, nil
	case inner[0] == '{':
		var nested struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(inner, &nested); err != nil {
			return nil, nil
		}
		return nested.Data, nil
	default:
		return nil, nil
	}
}

// parseNumber coerces a JSON number or numeric string. Anything else,
// including NaN and infinities, is treated as absent.
func parseNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
	} else {
		s = string(raw)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
