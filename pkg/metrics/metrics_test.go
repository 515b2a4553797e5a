package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndEndpoint(t *testing.T) {
	FormsSubmittedTotal.Inc()
	ChecklistsCapturedTotal.WithLabelValues("true").Inc()

	app := fiber.New()
	app.Use(Middleware())
	app.Get("/ping/:id", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, "p2h_forms_submitted_total"))
	assert.True(t, strings.Contains(text, `p2h_checklists_captured_total{has_issues="true"}`))
	assert.True(t, strings.Contains(text, `route="/ping/:id"`))
}
