package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/auth"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/httpapi"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/reporting"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/telephony"
	"github.com/nickalves75-netizen/ai-receptionist-sub000/pkg/utils"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, db *sql.DB, webhooks *telephony.WebhookHandlers, reports *reporting.Service, authMW gin.HandlerFunc) {
	// public; reports degraded when the session database is unreachable
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.Ping(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider webhooks (public; protected by Twilio signature validation).
	r.POST("/webhooks/twilio/voice", webhooks.HandleVoiceTurn)
	r.POST("/webhooks/twilio/status", webhooks.HandleStatusCallback)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		h := httpapi.Handlers{Reports: reports}

		v1.GET("/reports/intake", auth.RequireAnyRole(auth.RoleViewer), h.IntakeSummary)
	}
}
