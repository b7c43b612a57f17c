package api

import (
	"os"

	"github.com/gin-gonic/gin"
)

// SetGinMode switches gin out of debug mode unless GIN_MODE asks for a
// mode or the service logs at debug level or below.
func SetGinMode(logLevel string) {
	gin.SetMode(ginMode(os.Getenv(gin.EnvGinMode), logLevel))
}

func ginMode(env, logLevel string) string {
	switch env {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return env
	}
	switch logLevel {
	case "debug", "trace":
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
