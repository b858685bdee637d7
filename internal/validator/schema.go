package validator

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// Type is the declared type of a schema field.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
	TypeEnum    Type = "enum"
)

// Rule describes the accepted shape of one value. Rules are built with the
// constructor functions and refined with the chaining methods; a Rule must not
// be modified after it is attached to a Schema.
type Rule struct {
	typ        Type
	required   bool
	hasDefault bool
	def        any
	min        *float64
	max        *float64
	integer    bool
	allowed    []any
	keys       []Key
}

// Key binds a name to a rule inside an object rule.
type Key struct {
	Name string
	Rule *Rule
}

// Field is shorthand for constructing a Key.
func Field(name string, rule *Rule) Key {
	return Key{Name: name, Rule: rule}
}

// String returns a string rule. Min and Max bound the length.
func String() *Rule { return &Rule{typ: TypeString} }

// Number returns a number rule. Numeric strings are converted.
func Number() *Rule { return &Rule{typ: TypeNumber} }

// Integer returns a number rule that only accepts whole numbers within
// the int32 range and normalizes them to int.
func Integer() *Rule { return &Rule{typ: TypeNumber, integer: true} }

// Boolean returns a boolean rule. "true" and "false" strings are converted.
func Boolean() *Rule { return &Rule{typ: TypeBoolean} }

// Object returns an object rule with the given keys. Keys not declared are
// kept untouched.
func Object(keys ...Key) *Rule { return &Rule{typ: TypeObject, keys: keys} }

// Enum returns a rule accepting exactly one of values.
func Enum(values ...any) *Rule { return &Rule{typ: TypeEnum, allowed: values} }

// Required marks the value as mandatory.
func (r *Rule) Required() *Rule {
	r.required = true
	return r
}

// Default sets the value used when the field is absent.
func (r *Rule) Default(v any) *Rule {
	r.hasDefault = true
	r.def = v
	return r
}

// Min sets the lower bound (length for strings, value for numbers).
func (r *Rule) Min(n float64) *Rule {
	r.min = &n
	return r
}

// Max sets the upper bound (length for strings, value for numbers).
func (r *Rule) Max(n float64) *Rule {
	r.max = &n
	return r
}

// Valid restricts the value to the listed values.
func (r *Rule) Valid(values ...any) *Rule {
	r.allowed = values
	return r
}

// Type returns the declared type.
func (r *Rule) Type() Type { return r.typ }

// IsRequired reports whether the rule is mandatory.
func (r *Rule) IsRequired() bool { return r.required }

// Schema maps top-level names (the parameter names of an operation) to rules.
type Schema map[string]*Rule

// Validate checks record against the schema without stopping at the first
// failure. It returns the normalized record (coerced values, defaults filled,
// unknown keys preserved) or every violation found. order lists names whose
// violations should be reported first, in that order; remaining schema names
// follow alphabetically.
func (s Schema) Validate(record map[string]any, order ...string) (map[string]any, []apperrors.FieldViolation) {
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}

	var violations []apperrors.FieldViolation
	for _, name := range s.names(order) {
		value, present := lookup(record, name)
		normalized, set, vs := s[name].apply([]string{name}, value, present)
		violations = append(violations, vs...)
		if set {
			out[name] = normalized
		}
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return out, nil
}

func (s Schema) names(order []string) []string {
	seen := make(map[string]bool, len(s))
	names := make([]string, 0, len(s))
	for _, n := range order {
		if _, ok := s[n]; ok && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	var rest []string
	for n := range s {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func lookup(m map[string]any, key string) (any, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// apply validates one value. set reports whether the normalized value should
// be written back (false when the value is absent and has no default).
func (r *Rule) apply(path []string, value any, present bool) (normalized any, set bool, violations []apperrors.FieldViolation) {
	if !present {
		if r.hasDefault && r.typ == TypeObject && r.def != nil {
			// objects are rebuilt from their default so nested defaults apply
			return r.apply(path, r.def, true)
		}
		if r.hasDefault {
			return r.def, true, nil
		}
		if r.required {
			return nil, false, []apperrors.FieldViolation{violation(path, "is required")}
		}
		return nil, false, nil
	}

	switch r.typ {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, false, []apperrors.FieldViolation{violation(path, "must be a string")}
		}
		if msg := checkTag(s, r.boundsTag()); msg != "" {
			return nil, false, []apperrors.FieldViolation{violation(path, msg)}
		}
		if msg := r.checkAllowed(s); msg != "" {
			return nil, false, []apperrors.FieldViolation{violation(path, msg)}
		}
		return s, true, nil

	case TypeNumber:
		n, msg := r.toNumber(value)
		if msg != "" {
			return nil, false, []apperrors.FieldViolation{violation(path, msg)}
		}
		if msg := checkTag(n, r.boundsTag()); msg != "" {
			return nil, false, []apperrors.FieldViolation{violation(path, msg)}
		}
		if r.integer {
			if msg := r.checkAllowed(int(n)); msg != "" {
				return nil, false, []apperrors.FieldViolation{violation(path, msg)}
			}
			return int(n), true, nil
		}
		if msg := r.checkAllowed(n); msg != "" {
			return nil, false, []apperrors.FieldViolation{violation(path, msg)}
		}
		return n, true, nil

	case TypeBoolean:
		b, err := toBool(value)
		if err != nil {
			return nil, false, []apperrors.FieldViolation{violation(path, "must be a boolean")}
		}
		return b, true, nil

	case TypeEnum:
		for _, allowed := range r.allowed {
			if v, ok := coerceLike(value, allowed); ok {
				return v, true, nil
			}
		}
		return nil, false, []apperrors.FieldViolation{violation(path, "must be one of "+formatAllowed(r.allowed))}

	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, false, []apperrors.FieldViolation{violation(path, "must be an object")}
		}
		out := make(map[string]any, len(obj))
		for k, v := range obj {
			out[k] = v
		}
		for _, key := range r.keys {
			child, childPresent := lookup(obj, key.Name)
			childPath := append(append([]string(nil), path...), key.Name)
			normalized, childSet, vs := key.Rule.apply(childPath, child, childPresent)
			violations = append(violations, vs...)
			if childSet {
				out[key.Name] = normalized
			}
		}
		if len(violations) > 0 {
			return nil, false, violations
		}
		return out, true, nil
	}

	return value, true, nil
}

func (r *Rule) toNumber(value any) (float64, string) {
	if _, isBool := value.(bool); isBool {
		return 0, "must be a number"
	}
	if s, isString := value.(string); isString {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, "must be a number"
		}
		value = s
	}
	n, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, "must be a number"
	}
	if r.integer && n != math.Trunc(n) {
		return 0, "must be an integer"
	}
	if r.integer && (n < math.MinInt32 || n > math.MaxInt32) {
		return 0, "must be a safe integer"
	}
	return n, ""
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	}
	return false, fmt.Errorf("not a boolean: %T", value)
}

// coerceLike converts value to the dynamic type of target and reports
// whether the converted value equals target.
func coerceLike(value, target any) (any, bool) {
	switch t := target.(type) {
	case string:
		s, err := cast.ToStringE(value)
		return t, err == nil && s == t
	case int:
		if _, isBool := value.(bool); isBool {
			return nil, false
		}
		n, err := cast.ToFloat64E(value)
		return t, err == nil && n == float64(t)
	case float64:
		n, err := cast.ToFloat64E(value)
		return t, err == nil && n == t
	case bool:
		b, err := toBool(value)
		return t, err == nil && b == t
	}
	return value, value == target
}

func (r *Rule) checkAllowed(value any) string {
	if len(r.allowed) == 0 {
		return ""
	}
	for _, a := range r.allowed {
		if _, ok := coerceLike(value, a); ok {
			return ""
		}
	}
	return "must be one of " + formatAllowed(r.allowed)
}

func formatAllowed(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// boundsTag renders min/max as a go-playground/validator tag.
func (r *Rule) boundsTag() string {
	var tags []string
	if r.min != nil {
		tags = append(tags, "min="+strconv.FormatFloat(*r.min, 'f', -1, 64))
	}
	if r.max != nil {
		tags = append(tags, "max="+strconv.FormatFloat(*r.max, 'f', -1, 64))
	}
	return strings.Join(tags, ",")
}

// checkTag runs a single-value validation and returns the message of the
// first failing constraint.
func checkTag(value any, tag string) string {
	if tag == "" {
		return ""
	}
	err := V.Var(value, tag)
	if err == nil {
		return ""
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return getErrorMessage(errs[0])
	}
	return err.Error()
}

func violation(path []string, msg string) apperrors.FieldViolation {
	return apperrors.FieldViolation{
		Path:    path,
		Message: fmt.Sprintf("%q %s", path[len(path)-1], msg),
	}
}
