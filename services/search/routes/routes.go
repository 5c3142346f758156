// Copyright (C) 2026 Meridian OSS (oss@meridian-oss.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meridian-oss/aisearch/services/search/handlers"
)

func SetupRoutes(router *gin.Engine, searchHandler handlers.SearchHandler, uiDir string) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.StaticFS("/ui", http.Dir(uiDir))

	// Add a friendly redirect from /search to the actual HTML file
	router.GET("/search", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/ui/search.html")
	})

	// API group
	api := router.Group("/api")
	{
		api.GET("/ai-search", searchHandler.HandleAISearch)
	}
}
