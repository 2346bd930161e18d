// Package api contains the HTTP handlers for the contract service REST API
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pushpam22priya/contract-management-sub000/internal/auth"
	"github.com/pushpam22priya/contract-management-sub000/internal/logging"
	"github.com/pushpam22priya/contract-management-sub000/internal/services"
)

// Server holds the dependencies for the API server.
type Server struct {
	engine *services.ContractService
	logger *logging.Logger
}

// NewServer creates a new Server.
func NewServer(engine *services.ContractService, logger *logging.Logger) *Server {
	return &Server{engine: engine, logger: logger}
}

// Register mounts the contract endpoints on the given (auth-gated) group.
func (s *Server) Register(g *echo.Group) {
	g.POST("/contracts", s.CreateContract)
	g.GET("/contracts", s.ListContracts)
	g.GET("/contracts/:id", s.GetContract)
	g.PUT("/contracts/:id", s.UpdateContract)
	g.DELETE("/contracts/:id", s.DeleteContract)

	g.POST("/contracts/:id/submit-for-review", s.SubmitForReview)
	g.POST("/contracts/:id/mark-reviewed", s.MarkReviewed)
	g.POST("/contracts/:id/further-review", s.SubmitForFurtherReview)
	g.POST("/contracts/:id/approve", s.ApproveContract)
	g.POST("/contracts/:id/request-modification", s.RequestModification)
	g.POST("/contracts/:id/sign", s.SignContract)
	g.PUT("/contracts/:id/xfdf", s.UpdateXfdf)

	g.GET("/review-queue", s.ReviewQueue)
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK)
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "contract-management",
		Version:   "1.0.0",
	})
}

// respond writes the engine result with the HTTP status its error kind
// maps to. The result body itself is the wire contract: success flag,
// message, optional contract.
func (s *Server) respond(c echo.Context, res services.Result, successStatus int) error {
	return c.JSON(statusFor(res, successStatus), res)
}

func statusFor(res services.Result, successStatus int) int {
	if res.Success {
		return successStatus
	}
	switch res.Kind {
	case services.ErrNotFound:
		return http.StatusNotFound
	case services.ErrValidation:
		return http.StatusBadRequest
	case services.ErrNotAssignedReviewer:
		return http.StatusForbidden
	case services.ErrNoReviewersAssigned, services.ErrReviewersIncomplete, services.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// userEmail returns the authenticated identity injected by the auth
// middleware, or "" when the request is unauthenticated.
func userEmail(c echo.Context) string {
	email, _ := c.Request().Context().Value(auth.UserEmailContextKey).(string)
	return email
}
