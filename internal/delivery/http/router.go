package http

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, svc Services) {
	handler := NewHandler(svc)

	app.Get("/", handler.Root)
	app.Get("/health", handler.HealthCheck)

	api := app.Group("/api")
	{
		api.Get("/dashboard", handler.GetDashboard)

		traffic := api.Group("/traffic")
		traffic.Get("/status", handler.GetTrafficStatus)
		traffic.Get("/roads", handler.GetRoads)
		traffic.Get("/roads/:id", handler.GetRoad)
		traffic.Get("/junctions", handler.GetJunctions)
		traffic.Get("/incidents", handler.GetIncidents)
		traffic.Get("/prediction", handler.GetTrafficPrediction)
		traffic.Get("/model", handler.GetTrafficModel)
		traffic.Get("/history", handler.GetTrafficHistory)

		weather := api.Group("/weather")
		weather.Get("/current", handler.GetCurrentWeather)
		weather.Get("/forecast", handler.GetForecast)
		weather.Get("/history", handler.GetWeatherHistory)

		air := api.Group("/air-quality")
		air.Get("/current", handler.GetCurrentAirQuality)
		air.Get("/history", handler.GetAirQualityHistory)

		sensors := api.Group("/sensors")
		sensors.Get("/", handler.ListSensors)
		sensors.Get("/:id", handler.GetSensor)

		waste := api.Group("/waste")
		waste.Get("/", handler.ListWasteBins)
		waste.Get("/:id", handler.GetWasteBin)

		solar := api.Group("/solar")
		solar.Get("/estimate", handler.GetSolarEstimate)
		solar.Get("/history/:size", handler.GetSolarHistory)

		transit := api.Group("/transit")
		transit.Get("/routes", handler.ListTransitRoutes)
		transit.Get("/routes/:id", handler.GetTransitRoute)
		transit.Get("/stops", handler.GetNearbyStops)

		// static paths before /:id
		alerts := api.Group("/alerts")
		alerts.Get("/", handler.ListAlerts)
		alerts.Get("/categories", handler.GetAlertCategories)
		alerts.Get("/severity-levels", handler.GetSeverityLevels)
		alerts.Get("/summary/active", handler.GetActiveAlertSummary)
		alerts.Get("/:id", handler.GetAlert)

		reports := api.Group("/reports")
		reports.Get("/", handler.ListReports)
		reports.Post("/", handler.CreateReport)
		reports.Get("/categories", handler.GetReportCategories)
		reports.Get("/:id", handler.GetReport)
		reports.Patch("/:id/status", handler.UpdateReportStatus)
		reports.Post("/:id/upvote", handler.UpvoteReport)
		reports.Post("/:id/comments", handler.AddReportComment)

		chat := api.Group("/chatbot")
		chat.Post("/chat", handler.Chat)
		chat.Get("/sessions/:id", handler.GetChatSession)
		chat.Delete("/sessions/:id", handler.ClearChatSession)
		chat.Get("/suggested-prompts", handler.GetSuggestedPrompts)
	}
}
