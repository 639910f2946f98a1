package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

// Condition evaluation is pure over the document snapshot. Malformed values
// and unknown field/operator combinations fail closed: the condition is false
// and the pass continues with a diagnostic.

func evaluateRule(doc *domain.Document, rule *domain.WorkflowRule, now time.Time) (bool, []string) {
	// A rule with zero conditions never fires.
	if len(rule.Conditions) == 0 {
		return false, nil
	}

	matched := true
	var diags []string
	for _, cond := range rule.Conditions {
		ok, diag := evaluateCondition(doc, cond, now)
		if diag != "" {
			diags = append(diags, diag)
		}
		if !ok {
			matched = false
		}
	}
	return matched, diags
}

func evaluateCondition(doc *domain.Document, cond domain.Condition, now time.Time) (bool, string) {
	if entityType, ok := cond.Field.EntityField(); ok {
		return evaluateEntityCondition(doc, entityType, cond)
	}

	switch cond.Field {
	case domain.FieldClassification:
		return compareString(doc.Classification, cond)
	case domain.FieldMimeType:
		return compareString(doc.MimeType, cond)
	case domain.FieldTag:
		return anyStringMatches(doc.Tags, cond)
	case domain.FieldFileSize:
		return compareNumeric(float64(doc.FileSize), cond)
	case domain.FieldConfidence:
		return compareNumeric(doc.Confidence, cond)
	case domain.FieldAgeDays:
		days := int(now.Sub(doc.CreatedAt).Hours() / 24)
		return compareNumeric(float64(days), cond)
	default:
		return false, fmt.Sprintf("unknown condition field %q", cond.Field)
	}
}

func evaluateEntityCondition(doc *domain.Document, entityType domain.EntityType, cond domain.Condition) (bool, string) {
	values := doc.EntityValues(entityType)
	if len(values) == 0 {
		return false, ""
	}

	switch cond.Operator {
	case domain.OpEquals, domain.OpNotEquals, domain.OpContains, domain.OpIn:
		return anyStringMatches(values, cond)
	case domain.OpGreaterThan, domain.OpLessThan:
		threshold, err := parseAmount(cond.Value)
		if err != nil {
			return false, fmt.Sprintf("condition value %q is not numeric: %v", cond.Value, err)
		}
		parsedAny := false
		for _, v := range values {
			amount, err := parseAmount(v)
			if err != nil {
				continue
			}
			parsedAny = true
			if cond.Operator == domain.OpGreaterThan && amount > threshold {
				return true, ""
			}
			if cond.Operator == domain.OpLessThan && amount < threshold {
				return true, ""
			}
		}
		if !parsedAny {
			return false, fmt.Sprintf("no parsable %s entity value", entityType)
		}
		return false, ""
	default:
		return false, fmt.Sprintf("operator %q not supported for entity field", cond.Operator)
	}
}

// anyStringMatches applies a string operator across candidate values:
// true if any candidate satisfies it. not_equals holds only when no
// candidate equals the condition value.
func anyStringMatches(values []string, cond domain.Condition) (bool, string) {
	switch cond.Operator {
	case domain.OpEquals:
		for _, v := range values {
			if v == cond.Value {
				return true, ""
			}
		}
		return false, ""
	case domain.OpNotEquals:
		for _, v := range values {
			if v == cond.Value {
				return false, ""
			}
		}
		return true, ""
	case domain.OpContains:
		needle := strings.ToLower(cond.Value)
		for _, v := range values {
			if strings.Contains(strings.ToLower(v), needle) {
				return true, ""
			}
		}
		return false, ""
	case domain.OpIn:
		allowed := splitList(cond.Value)
		for _, v := range values {
			if _, ok := allowed[v]; ok {
				return true, ""
			}
		}
		return false, ""
	default:
		return false, fmt.Sprintf("operator %q not applicable to string field %q", cond.Operator, cond.Field)
	}
}

func compareString(value string, cond domain.Condition) (bool, string) {
	return anyStringMatches([]string{value}, cond)
}

func compareNumeric(value float64, cond domain.Condition) (bool, string) {
	threshold, err := parseAmount(cond.Value)
	if err != nil {
		return false, fmt.Sprintf("condition value %q is not numeric for field %q", cond.Value, cond.Field)
	}
	switch cond.Operator {
	case domain.OpEquals:
		return value == threshold, ""
	case domain.OpNotEquals:
		return value != threshold, ""
	case domain.OpGreaterThan:
		return value > threshold, ""
	case domain.OpLessThan:
		return value < threshold, ""
	default:
		return false, fmt.Sprintf("operator %q not applicable to numeric field %q", cond.Operator, cond.Field)
	}
}

var amountPattern = regexp.MustCompile(`[-+]?\d+(\.\d+)?`)

// parseAmount extracts the numeric magnitude from a monetary or numeric
// string: "$12,500.00" parses as 12500.00. Currency symbols, commas and spaces
// are stripped before the first decimal run is parsed.
func parseAmount(raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	match := amountPattern.FindString(cleaned)
	if match == "" {
		return 0, fmt.Errorf("no numeric value in %q", raw)
	}
	return strconv.ParseFloat(match, 64)
}

func splitList(raw string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out[part] = struct{}{}
		}
	}
	return out
}
