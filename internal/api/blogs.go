package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/gkg/tripexpo/internal/gateway"
	"example.com/gkg/tripexpo/internal/views"
)

type statusRequest struct {
	Status interface{} `json:"status"`
}

// handleUpdateStatus approves or rejects a blog by setting blogStatus.
func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err))
		return
	}
	id := c.Param("id")
	ack, err := s.blogs.UpdateField(c.Request.Context(), id, gateway.BlogStatusField, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Str("id", id).Interface("status", req.Status).Int64("modified", ack.ModifiedCount).Msg("blog status updated")
	c.JSON(http.StatusOK, ack)
}

func (s *Server) onBlogRead(ctx context.Context, id string) {
	views.Publish(ctx, s.queue, id)
}

func (s *Server) handleListViews(c *gin.Context) {
	counts, err := views.List(c.Request.Context(), s.counts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) handleGetViews(c *gin.Context) {
	count, err := views.Lookup(c.Request.Context(), s.counts, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}
