package profiler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenHeader is the response header carrying the token of the request's profile.
const TokenHeader = "X-Debug-Token"

// Middleware collects a profile for every request it handles.
func Middleware(c *Collector) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := uuid.NewString()
		ctx.Header(TokenHeader, token)

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "not-found"
		}
		c.Collect(ctx.Request.Context(), Request{
			Token:  token,
			Method: ctx.Request.Method,
			Route:  route,
			Status: ctx.Writer.Status(),
		})
	}
}

// Register mounts the routes serving the collected profiles.
func Register(r gin.IRoutes, c *Collector) {
	r.GET("/_profiler", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"profiles": c.Summaries(),
		})
	})

	r.GET("/_profiler/:token", func(ctx *gin.Context) {
		p, ok := c.Profile(ctx.Param("token"))
		if !ok {
			ctx.JSON(http.StatusNotFound, gin.H{
				"message": "profile not found",
			})
			return
		}
		ctx.JSON(http.StatusOK, p)
	})
}
