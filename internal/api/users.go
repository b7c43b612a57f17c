package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/gkg/tripexpo/internal/gateway"
	"example.com/gkg/tripexpo/internal/store"
)

// handleUpsertUser creates the user or overwrites its fields, keyed on email.
func (s *Server) handleUpsertUser(c *gin.Context) {
	var user store.Record
	if err := c.ShouldBindJSON(&user); err != nil {
		respondError(c, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err))
		return
	}
	match := store.Filter{gateway.EmailField: user[gateway.EmailField]}
	ack, err := s.users.Upsert(c.Request.Context(), match, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

type adminRequest struct {
	Email string `json:"email"`
}

// handleMakeAdmin promotes an existing user. Unknown emails match nothing.
func (s *Server) handleMakeAdmin(c *gin.Context) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err))
		return
	}
	ack, err := s.users.UpdateFieldWhere(c.Request.Context(),
		store.Filter{gateway.EmailField: req.Email}, gateway.RoleField, gateway.AdminRole)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Str("email", req.Email).Int64("matched", ack.MatchedCount).Msg("make admin")
	c.JSON(http.StatusOK, ack)
}

func (s *Server) handleCheckAdmin(c *gin.Context) {
	isAdmin, err := s.users.CheckRole(c.Request.Context(), gateway.EmailField, c.Param("email"), gateway.AdminRole)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": isAdmin})
}
