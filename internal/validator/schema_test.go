package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

func paths(vs []apperrors.FieldViolation) [][]string {
	out := make([][]string, len(vs))
	for i, v := range vs {
		out[i] = v.Path
	}
	return out
}

func TestSchemaValidate_CollectsEveryViolation(t *testing.T) {
	schema := Schema{
		"payload": Object(
			Field("name", String().Max(5).Required()),
			Field("role", Enum(1, 2, 3).Required()),
			Field("username", String().Required()),
			Field("password", String().Required()),
		),
	}

	_, violations := schema.Validate(map[string]any{
		"payload": map[string]any{
			"name":     "too long name",
			"role":     7,
			"username": "a",
		},
	})

	require.Len(t, violations, 3)
	assert.Equal(t, [][]string{
		{"payload", "name"},
		{"payload", "role"},
		{"payload", "password"},
	}, paths(violations))
	assert.Equal(t, `"name" must be at most 5 characters`, violations[0].Message)
	assert.Equal(t, `"role" must be one of [1, 2, 3]`, violations[1].Message)
	assert.Equal(t, `"password" is required`, violations[2].Message)
}

func TestSchemaValidate_Normalizes(t *testing.T) {
	schema := Schema{
		"criteria": Object(
			Field("page", Integer().Min(0).Default(0)),
			Field("pageSize", Integer().Min(1).Default(20)),
			Field("query", String()),
			Field("active", Boolean()),
		),
	}

	out, violations := schema.Validate(map[string]any{
		"criteria": map[string]any{
			"pageSize": "5",
			"active":   "true",
			"extra":    "kept",
		},
	})

	require.Empty(t, violations)
	criteria := out["criteria"].(map[string]any)
	assert.Equal(t, 0, criteria["page"])
	assert.Equal(t, 5, criteria["pageSize"])
	assert.Equal(t, true, criteria["active"])
	assert.Equal(t, "kept", criteria["extra"])
	assert.NotContains(t, criteria, "query")
}

func TestSchemaValidate_ObjectDefault(t *testing.T) {
	schema := Schema{
		"criteria": Object(
			Field("page", Integer().Default(0)),
			Field("pageSize", Integer().Default(20)),
		).Default(map[string]any{}),
	}

	out, violations := schema.Validate(map[string]any{})
	require.Empty(t, violations)
	assert.Equal(t, map[string]any{"page": 0, "pageSize": 20}, out["criteria"])

	// the default itself is never handed out
	out["criteria"].(map[string]any)["page"] = 9
	out, _ = schema.Validate(map[string]any{})
	assert.Equal(t, 0, out["criteria"].(map[string]any)["page"])
}

func TestSchemaValidate_TopLevel(t *testing.T) {
	schema := Schema{
		"id": Integer().Required(),
	}

	tests := []struct {
		name    string
		record  map[string]any
		want    any
		message string
	}{
		{name: "numeric string is converted", record: map[string]any{"id": "42"}, want: 42},
		{name: "float id", record: map[string]any{"id": 42.0}, want: 42},
		{name: "fractional rejected", record: map[string]any{"id": 4.5}, message: `"id" must be an integer`},
		{name: "garbage rejected", record: map[string]any{"id": "abc"}, message: `"id" must be a number`},
		{name: "bool rejected", record: map[string]any{"id": true}, message: `"id" must be a number`},
		{name: "exponent beyond int64 rejected", record: map[string]any{"id": "1e19"}, message: `"id" must be a safe integer`},
		{name: "beyond int4 rejected", record: map[string]any{"id": "2147483648"}, message: `"id" must be a safe integer`},
		{name: "int4 max accepted", record: map[string]any{"id": "2147483647"}, want: 2147483647},
		{name: "missing", record: map[string]any{}, message: `"id" is required`},
		{name: "nil counts as missing", record: map[string]any{"id": nil}, message: `"id" is required`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, violations := schema.Validate(tt.record)
			if tt.message != "" {
				require.Len(t, violations, 1)
				assert.Equal(t, tt.message, violations[0].Message)
				assert.Equal(t, []string{"id"}, violations[0].Path)
				assert.Nil(t, out)
				return
			}
			require.Empty(t, violations)
			assert.Equal(t, tt.want, out["id"])
		})
	}
}

func TestSchemaValidate_TypeMismatch(t *testing.T) {
	schema := Schema{
		"payload": Object(
			Field("name", String()),
			Field("flag", Boolean()),
			Field("nested", Object(Field("x", Number().Max(10)))),
		),
	}

	_, violations := schema.Validate(map[string]any{
		"payload": map[string]any{
			"name":   12,
			"flag":   "maybe",
			"nested": map[string]any{"x": 11},
		},
	})

	require.Len(t, violations, 3)
	assert.Equal(t, `"name" must be a string`, violations[0].Message)
	assert.Equal(t, `"flag" must be a boolean`, violations[1].Message)
	assert.Equal(t, `"x" must be at most 10`, violations[2].Message)
	assert.Equal(t, []string{"payload", "nested", "x"}, violations[2].Path)

	_, violations = schema.Validate(map[string]any{"payload": "nope"})
	require.Len(t, violations, 1)
	assert.Equal(t, `"payload" must be an object`, violations[0].Message)
}

func TestSchemaValidate_OrderAndUnknownTopLevel(t *testing.T) {
	schema := Schema{
		"b": String().Required(),
		"a": String().Required(),
		"c": String().Required(),
	}

	out, violations := schema.Validate(map[string]any{"unknown": 1}, "c", "b")
	assert.Nil(t, out)
	assert.Equal(t, [][]string{{"c"}, {"b"}, {"a"}}, paths(violations))

	out, violations = schema.Validate(map[string]any{"a": "1", "b": "2", "c": "3", "unknown": 1})
	require.Empty(t, violations)
	assert.Equal(t, 1, out["unknown"])
}

func TestSchemaValidate_AllowedStrings(t *testing.T) {
	schema := Schema{"kind": String().Valid("a", "b")}

	_, violations := schema.Validate(map[string]any{"kind": "c"})
	require.Len(t, violations, 1)
	assert.Equal(t, `"kind" must be one of [a, b]`, violations[0].Message)

	out, violations := schema.Validate(map[string]any{"kind": "b"})
	require.Empty(t, violations)
	assert.Equal(t, "b", out["kind"])
}

func TestValidateStruct(t *testing.T) {
	type server struct {
		Port int    `mapstructure:"port" validate:"min=1,max=65535"`
		Env  string `mapstructure:"env" validate:"oneof=development production test"`
	}
	type cfg struct {
		Server server `mapstructure:"server"`
	}

	err := Validate(&cfg{Server: server{Port: 0, Env: "staging"}})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	require.Len(t, appErr.Violations, 2)
	assert.Equal(t, []string{"server", "port"}, appErr.Violations[0].Path)
	assert.Equal(t, `"port" must be at least 1`, appErr.Violations[0].Message)
	assert.Equal(t, `"env" must be one of: development production test`, appErr.Violations[1].Message)

	assert.NoError(t, Validate(&cfg{Server: server{Port: 8080, Env: "test"}}))
}
