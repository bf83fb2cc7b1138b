package parser

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queryParams struct {
	Field     string `form:"field"`
	PageLimit int    `form:"page_limit"`
	Fresh     *bool  `form:"fresh"`
	Skipped   string
}

func TestParseQuery(t *testing.T) {
	app := fiber.New()

	var got queryParams
	var parseErr error
	app.Get("/", func(c *fiber.Ctx) error {
		got = queryParams{}
		parseErr = ParseQuery(c, &got)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/?field=IT%2C+EDV&page_limit=5&fresh=true", nil))
	require.NoError(t, err)
	require.NoError(t, parseErr)

	assert.Equal(t, "IT, EDV", got.Field)
	assert.Equal(t, 5, got.PageLimit)
	require.NotNil(t, got.Fresh)
	assert.True(t, *got.Fresh)
	assert.Empty(t, got.Skipped, "fields without a form tag are ignored")

	// Missing params keep zero values.
	_, err = app.Test(httptest.NewRequest("GET", "/?field=IT", nil))
	require.NoError(t, err)
	require.NoError(t, parseErr)
	assert.Equal(t, 0, got.PageLimit)
	assert.Nil(t, got.Fresh)

	// Malformed ints surface an error.
	_, err = app.Test(httptest.NewRequest("GET", "/?page_limit=abc", nil))
	require.NoError(t, err)
	assert.Error(t, parseErr)
}

func TestParseQueryRejectsNonStruct(t *testing.T) {
	app := fiber.New()
	var parseErr error
	app.Get("/", func(c *fiber.Ctx) error {
		var s string
		parseErr = ParseQuery(c, &s)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Error(t, parseErr)
}
