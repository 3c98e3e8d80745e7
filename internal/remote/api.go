// ABOUTME: HTTP routes for the control server
// ABOUTME: Serves the websocket endpoint plus JSON trigger, release and state endpoints
package remote

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frostbloom/frostbloom-go/pkg/audio"
	"github.com/frostbloom/frostbloom-go/pkg/session"
)

// newRouter creates the gin engine for s
func (s *Server) newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET(Path, func(c *gin.Context) {
		s.handleWebSocket(c.Writer, c.Request)
	})

	api := r.Group("/api")
	{
		api.GET("/state", s.apiState)
		api.POST("/trigger", s.apiTrigger)
		api.POST("/release", s.apiRelease)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "name": s.config.Name})
	})

	return r
}

func (s *Server) apiState(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.Status())
}

func (s *Server) apiTrigger(c *gin.Context) {
	log.Printf("[API] Trigger request from %s", c.ClientIP())

	ctx, cancel := context.WithTimeout(c.Request.Context(), triggerTimeout)
	defer cancel()

	if err := s.controller.Trigger(ctx); err != nil {
		update := s.controller.Status()
		update.Error = err.Error()
		c.JSON(statusFor(err), update)
		return
	}
	c.JSON(http.StatusOK, s.controller.Status())
}

func (s *Server) apiRelease(c *gin.Context) {
	log.Printf("[API] Release request from %s", c.ClientIP())

	s.controller.Release()
	c.JSON(http.StatusOK, s.controller.Status())
}

// statusFor maps trigger errors onto HTTP status codes. A resume that ran
// out of time is also ErrPlaybackUnavailable, so timeouts are checked first.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	case errors.Is(err, session.ErrPlaybackUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, audio.ErrInvalidParameter):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// corsMiddleware lets browser pages on the local network call the API
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
