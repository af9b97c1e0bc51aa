package main

import (
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *ImageAPIServer) SetupRoute() {
	s.route.Use(gin.CustomRecovery(HandlePanics()))

	s.route.Use(sentrygin.New(sentrygin.Options{
		Repanic: true,
	}))

	s.route.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}))

	s.route.Use(RequestLogger())

	s.route.GET("/healthz", s.Healthz)
	if s.metricsHandler != nil {
		s.route.GET("/metrics", gin.WrapH(s.metricsHandler))
	}

	s.route.POST("/images", s.UploadImage)
	s.route.GET("/images", s.ListImages)
	s.route.PUT("/images/:id", s.RenameImage)
	s.route.DELETE("/images/:id", s.DeleteImage)
}

func (s *ImageAPIServer) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": 1})
}
