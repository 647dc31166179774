package httpx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	ContextRID      = "rid"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ContextRID, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rid, _ := c.Get(ContextRID)
		status := c.Writer.Status()
		line := fmt.Sprintf("[http] rid=%v %s %s status=%d dur=%s",
			rid, c.Request.Method, c.Request.URL.Path, status, time.Since(start))
		if status >= http.StatusInternalServerError {
			logger.Warn("%s", line)
			return
		}
		logger.Info("%s", line)
	}
}

// Recovery turns a panic into the standard 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				rid, _ := c.Get(ContextRID)
				logger.Error(fmt.Sprintf("panic recovered rid=%v path=%s", rid, c.Request.URL.Path), fmt.Errorf("%v", r))
				Abort(c, http.StatusInternalServerError, CodeInternal, "Internal server error")
			}
		}()
		c.Next()
	}
}

func NoRoute(c *gin.Context) {
	Fail(c, http.StatusNotFound, CodeNotFound, "Route not found")
}

// NewRouter returns a gin engine with the standard middleware chain.
func NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), AccessLog(), Recovery())
	router.NoRoute(NoRoute)
	router.GET("/health", func(c *gin.Context) {
		OK(c, http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}
