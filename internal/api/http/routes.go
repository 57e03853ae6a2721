package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weather-agent/internal/dataset"
	"weather-agent/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, resolver *weather.Resolver) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		req, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		description, err := resolver.Resolve(c.Context(), req.Location)
		if err != nil {
			if errors.Is(err, dataset.ErrEmptyLocation) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to resolve weather")
		}

		return c.JSON(fiber.Map{
			"location":    req.Location,
			"description": description,
		})
	})

	v1.Get("/locations", func(c *fiber.Ctx) error {
		locations := []string{}
		for loc := range resolver.Locations() {
			locations = append(locations, loc)
		}
		return c.JSON(fiber.Map{
			"locations": locations,
		})
	})
}

// weatherQuery holds query parameters for the weather endpoint.
type weatherQuery struct {
	Location string `validate:"required"`
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	var q weatherQuery

	q.Location = strings.TrimSpace(c.Query("location"))

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}
