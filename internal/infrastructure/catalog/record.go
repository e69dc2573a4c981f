// Package catalog loads the scheme catalogue from JSON or XLSX files.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kirillkom/panchayat-sahayika/internal/core/domain"
)

// fieldAliases maps accepted column/key spellings to scheme fields.
var fieldAliases = map[string]string{
	"id":             "id",
	"scheme_id":      "id",
	"name_hi":        "name_hi",
	"name_hindi":     "name_hi",
	"name_en":        "name_en",
	"name_english":   "name_en",
	"name":           "name_en",
	"category":       "category",
	"department":     "department",
	"description_hi": "description_hi",
	"description_en": "description_en",
	"description":    "description_en",
	"eligibility":    "eligibility",
	"benefit":        "benefit",
	"benefits":       "benefit",
	"apply_process":  "apply_process",
	"how_to_apply":   "apply_process",
	"apply_link":     "apply_link",
	"link":           "apply_link",
	"url":            "apply_link",
	"type":           "type",
	"tags":           "tags",
}

func normalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	return k
}

// schemeFromRecord builds a scheme from loosely typed values. Unknown keys
// are ignored; missing keys become empty strings.
func schemeFromRecord(record map[string]any) domain.Scheme {
	var s domain.Scheme
	for rawKey, value := range record {
		field, ok := fieldAliases[normalizeKey(rawKey)]
		if !ok {
			continue
		}
		if field == "tags" {
			s.Tags = toTags(value)
			continue
		}
		text := toString(value)
		switch field {
		case "id":
			s.ID = text
		case "name_hi":
			s.NameHI = text
		case "name_en":
			s.NameEN = firstSet(s.NameEN, text, normalizeKey(rawKey) == "name")
		case "category":
			s.Category = text
		case "department":
			s.Department = text
		case "description_hi":
			s.DescriptionHI = text
		case "description_en":
			s.DescriptionEN = firstSet(s.DescriptionEN, text, normalizeKey(rawKey) == "description")
		case "eligibility":
			s.Eligibility = text
		case "benefit":
			s.Benefit = text
		case "apply_process":
			s.ApplyProcess = text
		case "apply_link":
			s.ApplyLink = text
		case "type":
			s.Type = text
		}
	}
	return s.Normalized()
}

// firstSet lets the canonical key win over a looser alias regardless of map order.
func firstSet(current, next string, isAlias bool) string {
	if isAlias && current != "" {
		return current
	}
	return next
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func toTags(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, item := range t {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
