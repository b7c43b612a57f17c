// Package api serves the Trip Expo REST surface.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/gkg/tripexpo/internal/gateway"
	"example.com/gkg/tripexpo/internal/store"
	"example.com/gkg/tripexpo/internal/views"
)

const (
	livenessText    = "Running Trip Expo Server."
	shutdownTimeout = 5 * time.Second
)

type Options struct {
	Port        string
	CORSOrigins []string
}

type Server struct {
	router *gin.Engine
	port   string

	blogs    *gateway.Gateway
	users    *gateway.Gateway
	reviews  *gateway.Gateway
	tips     *gateway.Gateway
	products *gateway.Gateway
	counts   *gateway.Gateway

	queue views.Queue
}

// NewServer wires one gateway per collection onto s. A nil queue disables
// view counting.
func NewServer(s store.Store, q views.Queue, opts Options) *Server {
	if q == nil {
		q = views.NopQueue{}
	}
	router := gin.New()
	router.Use(RequestID(), Logger(), Recovery(), CORS(opts.CORSOrigins))

	srv := &Server{
		router:   router,
		port:     opts.Port,
		blogs:    gateway.New(s, gateway.Blogs),
		users:    gateway.New(s, gateway.Users),
		reviews:  gateway.New(s, gateway.Reviews),
		tips:     gateway.New(s, gateway.Tips),
		products: gateway.New(s, gateway.Products),
		counts:   gateway.New(s, gateway.Views),
		queue:    q,
	}
	srv.setupRoutes()
	return srv
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.port),
		Handler: s.router,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", s.port).Msg("Welcome to PORT")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRoutes() {
	r := s.router

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, livenessText)
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// blogs
	r.POST("/blogs", createHandler(s.blogs))
	r.GET("/blogs", listHandler(s.blogs, queryFilter{param: "cost", field: gateway.BlogCostField}))
	r.GET("/blogspagination", pageHandler(s.blogs, "blogs"))
	r.GET("/blogs/:id", getHandler(s.blogs, s.onBlogRead))
	r.PUT("/updateStatus/:id", s.handleUpdateStatus)
	r.DELETE("/blogs/:id", deleteHandler(s.blogs))
	r.GET("/toptrip", listHandler(s.blogs, queryFilter{param: "rating", field: gateway.BlogRatingField, numeric: true}))
	r.GET("/longtrip", listHandler(s.blogs, queryFilter{param: "category", field: gateway.BlogCategoryField}))

	// users
	r.POST("/users", createHandler(s.users))
	r.GET("/users", listHandler(s.users))
	r.PUT("/users", s.handleUpsertUser)
	r.PUT("/users/admin", s.handleMakeAdmin)
	r.GET("/users/:email", s.handleCheckAdmin)

	r.POST("/reviews", createHandler(s.reviews))
	r.GET("/reviews", listHandler(s.reviews))

	r.POST("/tips", createHandler(s.tips))
	r.GET("/tips", listHandler(s.tips))
	r.GET("/tips/:id", getHandler(s.tips, nil))

	r.POST("/products", createHandler(s.products))
	r.GET("/products", listHandler(s.products))
	r.GET("/products/:id", getHandler(s.products, nil))
	r.DELETE("/products/:id", deleteHandler(s.products))

	r.GET("/views", s.handleListViews)
	r.GET("/views/:id", s.handleGetViews)
}
