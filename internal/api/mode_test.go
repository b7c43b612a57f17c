package api

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGinMode(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		env, level, want string
	}{
		{"", "info", gin.ReleaseMode},
		{"", "warn", gin.ReleaseMode},
		{"", "", gin.ReleaseMode},
		{"", "debug", gin.DebugMode},
		{"", "trace", gin.DebugMode},
		{gin.DebugMode, "info", gin.DebugMode},
		{gin.ReleaseMode, "debug", gin.ReleaseMode},
		{"bogus", "info", gin.ReleaseMode},
	} {
		assert.Equal(t, tc.want, ginMode(tc.env, tc.level), "env=%q level=%q", tc.env, tc.level)
	}
}
