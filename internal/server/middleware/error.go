package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ErrorHandler creates an error handling middleware
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			log.Printf("ERROR: request processing error: %v", err.Err)

			statusCode := http.StatusInternalServerError
			message := "Internal server error"

			switch err.Type {
			case gin.ErrorTypeBind:
				statusCode = http.StatusBadRequest
				message = "Invalid request format"
			case gin.ErrorTypePublic:
				statusCode = http.StatusBadRequest
				message = err.Error()
			}

			if c.Writer.Status() != http.StatusOK {
				statusCode = c.Writer.Status()
			}

			if !c.Writer.Written() {
				c.JSON(statusCode, ErrorResponse{
					Error:   http.StatusText(statusCode),
					Message: message,
					Code:    statusCode,
				})
			}
		}
	}
}
