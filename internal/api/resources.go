package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"example.com/gkg/tripexpo/internal/gateway"
	"example.com/gkg/tripexpo/internal/store"
)

// defaultPageSize applies when page is given without size.
const defaultPageSize = 10

var errBadRequest = errors.New("bad request")

// queryFilter maps an optional query parameter onto an equality match.
// numeric also matches the value as a number when it parses as one.
type queryFilter struct {
	param   string
	field   string
	numeric bool
}

func createHandler(g *gateway.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doc store.Record
		if err := c.ShouldBindJSON(&doc); err != nil {
			respondError(c, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err))
			return
		}
		ack, err := g.Create(c.Request.Context(), doc)
		if err != nil {
			respondError(c, err)
			return
		}
		log.Debug().Str("collection", g.Collection()).Interface("id", ack.InsertedID).Msg("created")
		c.JSON(http.StatusOK, ack)
	}
}

// listHandler lists a collection. Each filter whose query parameter is
// present and non-empty narrows the result.
func listHandler(g *gateway.Gateway, filters ...queryFilter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var match store.Filter
		for _, f := range filters {
			raw := c.Query(f.param)
			if raw == "" {
				continue
			}
			if match == nil {
				match = store.Filter{}
			}
			if f.numeric {
				match[f.field] = scalarMatch(raw)
			} else {
				match[f.field] = raw
			}
		}
		recs, err := g.ListAll(c.Request.Context(), match)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, recs)
	}
}

// scalarMatch matches raw either as sent or, when it is numeric, as a
// number, since clients store ratings both ways.
func scalarMatch(raw string) interface{} {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return bson.M{"$in": bson.A{raw, n}}
	}
	return raw
}

// pageHandler serves {count, <itemsKey>}. page is zero-based.
func pageHandler(g *gateway.Gateway, itemsKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, size, err := parsePage(c)
		if err != nil {
			respondError(c, err)
			return
		}
		p, err := g.ListPage(c.Request.Context(), page, size)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": p.Count, itemsKey: p.Items})
	}
}

func parsePage(c *gin.Context) (*int64, int64, error) {
	rawPage := c.Query("page")
	if rawPage == "" {
		return nil, 0, nil
	}
	page, err := strconv.ParseInt(rawPage, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: page must be an integer", errBadRequest)
	}
	size := int64(defaultPageSize)
	if rawSize := c.Query("size"); rawSize != "" {
		size, err = strconv.ParseInt(rawSize, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: size must be an integer", errBadRequest)
		}
	}
	return &page, size, nil
}

// getHandler serves one record by id, or null when absent. onFound, when
// set, runs after a record was found.
func getHandler(g *gateway.Gateway, onFound func(ctx context.Context, id string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		rec, found, err := g.GetOne(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if !found {
			c.JSON(http.StatusOK, nil)
			return
		}
		if onFound != nil {
			onFound(c.Request.Context(), id)
		}
		c.JSON(http.StatusOK, rec)
	}
}

func deleteHandler(g *gateway.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		ack, err := g.DeleteOne(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		log.Info().Str("collection", g.Collection()).Str("id", id).Int64("deleted", ack.DeletedCount).Msg("deleted")
		c.JSON(http.StatusOK, ack)
	}
}

// respondError maps gateway and store errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, store.ErrInvalidID):
		status, msg = http.StatusBadRequest, "invalid id"
	case errors.Is(err, errBadRequest),
		errors.Is(err, gateway.ErrBadPage),
		errors.Is(err, gateway.ErrEmptyUpdate):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrUnavailable):
		status, msg = http.StatusServiceUnavailable, "store unavailable"
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Str(ctxRequestID, c.GetString(ctxRequestID)).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
