// Package conditions evaluates field/operator/target comparisons for
// condition nodes and loop guards.
package conditions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Operator names a supported comparison.
type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorContains    Operator = "contains"
	OperatorStartsWith  Operator = "starts_with"
	OperatorEndsWith    Operator = "ends_with"
	OperatorRegex       Operator = "regex"
	OperatorGreaterThan Operator = "greater_than"
	OperatorLessThan    Operator = "less_than"
	OperatorInRange     Operator = "in_range"
	OperatorNotEmpty    Operator = "not_empty"
	OperatorIsEmpty     Operator = "is_empty"
)

// Operators lists every supported operator.
func Operators() []Operator {
	return []Operator{
		OperatorEquals,
		OperatorContains,
		OperatorStartsWith,
		OperatorEndsWith,
		OperatorRegex,
		OperatorGreaterThan,
		OperatorLessThan,
		OperatorInRange,
		OperatorNotEmpty,
		OperatorIsEmpty,
	}
}

// ParseOperator decodes an operator from node configuration.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)

	for _, known := range Operators() {
		if op == known {
			return op, nil
		}
	}

	return "", fmt.Errorf("unknown operator %q", s)
}

// Evaluate compares fieldValue against target. String operators lower-case
// both operands when caseSensitive is false. Numeric operators coerce both
// sides to float64, evaluating to false when either side is non-numeric.
// Only regex returns an error, on an invalid pattern.
func Evaluate(fieldValue any, operator Operator, target any, caseSensitive bool) (bool, error) {
	switch operator {
	case OperatorEquals:
		return evaluateEquals(fieldValue, target, caseSensitive), nil
	case OperatorContains:
		field, match := stringOperands(fieldValue, target, caseSensitive)

		return strings.Contains(field, match), nil
	case OperatorStartsWith:
		field, match := stringOperands(fieldValue, target, caseSensitive)

		return strings.HasPrefix(field, match), nil
	case OperatorEndsWith:
		field, match := stringOperands(fieldValue, target, caseSensitive)

		return strings.HasSuffix(field, match), nil
	case OperatorRegex:
		return evaluateRegex(fieldValue, target)
	case OperatorGreaterThan:
		field, ok1 := toFloat(fieldValue)
		limit, ok2 := toFloat(target)

		return ok1 && ok2 && field > limit, nil
	case OperatorLessThan:
		field, ok1 := toFloat(fieldValue)
		limit, ok2 := toFloat(target)

		return ok1 && ok2 && field < limit, nil
	case OperatorInRange:
		return evaluateInRange(fieldValue, target), nil
	case OperatorNotEmpty:
		return !isEmpty(fieldValue), nil
	case OperatorIsEmpty:
		return isEmpty(fieldValue), nil
	default:
		return false, fmt.Errorf("unknown operator %q", operator)
	}
}

func evaluateEquals(fieldValue, target any, caseSensitive bool) bool {
	fieldNum, fieldOK := toFloat(fieldValue)
	targetNum, targetOK := toFloat(target)

	if fieldOK && targetOK {
		return fieldNum == targetNum
	}

	field, match := stringOperands(fieldValue, target, caseSensitive)

	return field == match
}

func evaluateRegex(fieldValue, target any) (bool, error) {
	pattern, err := regexp.Compile(asString(target))
	if err != nil {
		return false, fmt.Errorf("invalid regex pattern %q: %w", asString(target), err)
	}

	return pattern.MatchString(asString(fieldValue)), nil
}

// evaluateInRange accepts a [min, max] pair as a two-element slice, a
// {"min": x, "max": y} map, or a "min,max" string. Bounds are inclusive.
func evaluateInRange(fieldValue, target any) bool {
	field, ok := toFloat(fieldValue)
	if !ok {
		return false
	}

	low, high, ok := rangeBounds(target)
	if !ok {
		return false
	}

	return field >= low && field <= high
}

func rangeBounds(target any) (float64, float64, bool) {
	switch v := target.(type) {
	case []any:
		if len(v) != 2 {
			return 0, 0, false
		}

		low, ok1 := toFloat(v[0])
		high, ok2 := toFloat(v[1])

		return low, high, ok1 && ok2
	case map[string]any:
		low, ok1 := toFloat(v["min"])
		high, ok2 := toFloat(v["max"])

		return low, high, ok1 && ok2
	case string:
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			return 0, 0, false
		}

		low, ok1 := toFloat(strings.TrimSpace(parts[0]))
		high, ok2 := toFloat(strings.TrimSpace(parts[1]))

		return low, high, ok1 && ok2
	default:
		return 0, 0, false
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func stringOperands(fieldValue, target any, caseSensitive bool) (string, string) {
	field := asString(fieldValue)
	match := asString(target)

	if !caseSensitive {
		field = strings.ToLower(field)
		match = strings.ToLower(match)
	}

	return field, match
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)

		return parsed, err == nil
	default:
		return 0, false
	}
}
