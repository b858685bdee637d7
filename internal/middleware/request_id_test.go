package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestIDApp(cfg ...RequestIDConfig) (*fiber.App, *string) {
	var seen string
	app := fiber.New()
	app.Use(RequestID(cfg...))
	app.Get("/companies", func(c *fiber.Ctx) error {
		seen = GetRequestID(c)
		return c.SendStatus(fiber.StatusOK)
	})
	return app, &seen
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{name: "generated when absent", incoming: "", reused: false},
		{name: "caller value reused", incoming: "req-42", reused: true},
		{name: "too long value replaced", incoming: strings.Repeat("a", maxRequestIDLength+1), reused: false},
		{name: "value with spaces replaced", incoming: "bad id", reused: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, seen := requestIDApp()

			req := httptest.NewRequest(fiber.MethodGet, "/companies", nil)
			if tt.incoming != "" {
				req.Header.Set(fiber.HeaderXRequestID, tt.incoming)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			echoed := resp.Header.Get(fiber.HeaderXRequestID)
			assert.Equal(t, echoed, *seen)
			if tt.reused {
				assert.Equal(t, tt.incoming, echoed)
			} else {
				assert.NotEqual(t, tt.incoming, echoed)
				assert.Len(t, echoed, 36)
			}
		})
	}
}

func TestRequestID_PartialConfig(t *testing.T) {
	calls := 0
	app, seen := requestIDApp(RequestIDConfig{
		Generator: func() string {
			calls++
			return "fixed"
		},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/companies", nil))
	require.NoError(t, err)
	assert.Equal(t, "fixed", resp.Header.Get(fiber.HeaderXRequestID))
	assert.Equal(t, "fixed", *seen)

	req := httptest.NewRequest(fiber.MethodGet, "/companies", nil)
	req.Header.Set(fiber.HeaderXRequestID, "given")
	_, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRequestID_CustomHeader(t *testing.T) {
	app, _ := requestIDApp(RequestIDConfig{Header: "X-Correlation-ID"})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/companies", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
	assert.Empty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
