package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pushpam22priya/contract-management-sub000/internal/repository"
	"github.com/pushpam22priya/contract-management-sub000/internal/services"
	"github.com/pushpam22priya/contract-management-sub000/pkg/models"
)

// CreateContract creates a new draft contract
// (POST /api/v1/contracts)
func (s *Server) CreateContract(c echo.Context) error {
	var input services.CreateContractInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if input.CreatedBy == "" {
		input.CreatedBy = userEmail(c)
	}
	res := s.engine.CreateContract(c.Request().Context(), input)
	return s.respond(c, res, http.StatusCreated)
}

// ListContracts returns all contracts, most-recent-first, with their
// date-derived display status
// (GET /api/v1/contracts)
func (s *Server) ListContracts(c echo.Context) error {
	contracts, err := s.engine.ListContracts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	now := time.Now()
	views := make([]models.ContractView, 0, len(contracts))
	for _, contract := range contracts {
		views = append(views, models.NewContractView(contract, now))
	}
	return c.JSON(http.StatusOK, views)
}

// GetContract returns a single contract with its display status
// (GET /api/v1/contracts/:id)
func (s *Server) GetContract(c echo.Context) error {
	contract, err := s.engine.GetContractByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Contract not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, models.NewContractView(*contract, time.Now()))
}

// UpdateContract edits a draft contract
// (PUT /api/v1/contracts/:id)
func (s *Server) UpdateContract(c echo.Context) error {
	var input services.UpdateContractInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	res := s.engine.UpdateContract(c.Request().Context(), c.Param("id"), input)
	return s.respond(c, res, http.StatusOK)
}

// DeleteContract removes a contract (admin cleanup path)
// (DELETE /api/v1/contracts/:id)
func (s *Server) DeleteContract(c echo.Context) error {
	res := s.engine.DeleteContract(c.Request().Context(), c.Param("id"))
	return s.respond(c, res, http.StatusOK)
}

// SubmitForReview starts the review/approval round
// (POST /api/v1/contracts/:id/submit-for-review)
func (s *Server) SubmitForReview(c echo.Context) error {
	var body struct {
		Reviewers []string `json:"reviewers"`
		Approver  string   `json:"approver"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	res := s.engine.SubmitForReview(c.Request().Context(), c.Param("id"), body.Reviewers, body.Approver)
	return s.respond(c, res, http.StatusOK)
}

// MarkReviewed records the caller's (or the named reviewer's) review
// (POST /api/v1/contracts/:id/mark-reviewed)
func (s *Server) MarkReviewed(c echo.Context) error {
	var body struct {
		Reviewer string `json:"reviewer"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if body.Reviewer == "" {
		body.Reviewer = userEmail(c)
	}
	res := s.engine.MarkAsReviewed(c.Request().Context(), c.Param("id"), body.Reviewer)
	return s.respond(c, res, http.StatusOK)
}

// SubmitForFurtherReview appends additional reviewers
// (POST /api/v1/contracts/:id/further-review)
func (s *Server) SubmitForFurtherReview(c echo.Context) error {
	var body struct {
		Reviewers   []string `json:"reviewers"`
		SubmittedBy string   `json:"submitted_by"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if body.SubmittedBy == "" {
		body.SubmittedBy = userEmail(c)
	}
	res := s.engine.SubmitForFurtherReview(c.Request().Context(), c.Param("id"), body.Reviewers, body.SubmittedBy)
	return s.respond(c, res, http.StatusOK)
}

// ApproveContract moves a fully reviewed contract to the signature stage
// (POST /api/v1/contracts/:id/approve)
func (s *Server) ApproveContract(c echo.Context) error {
	var body struct {
		Approver string `json:"approver"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if body.Approver == "" {
		body.Approver = userEmail(c)
	}
	res := s.engine.ApproveContract(c.Request().Context(), c.Param("id"), body.Approver)
	return s.respond(c, res, http.StatusOK)
}

// RequestModification files a rejection and resets the workflow to draft
// (POST /api/v1/contracts/:id/request-modification)
func (s *Server) RequestModification(c echo.Context) error {
	var body struct {
		RequestedBy string                 `json:"requested_by"`
		Role        models.ParticipantRole `json:"role"`
		Comments    string                 `json:"comments"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if body.RequestedBy == "" {
		body.RequestedBy = userEmail(c)
	}
	res := s.engine.RequestModification(c.Request().Context(), c.Param("id"), body.RequestedBy, body.Role, body.Comments)
	return s.respond(c, res, http.StatusOK)
}

// SignContract records the signature artifact
// (POST /api/v1/contracts/:id/sign)
func (s *Server) SignContract(c echo.Context) error {
	var body struct {
		Signer         string `json:"signer"`
		SignatureImage string `json:"signature_image"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if body.Signer == "" {
		body.Signer = userEmail(c)
	}
	res := s.engine.SignContract(c.Request().Context(), c.Param("id"), body.Signer, body.SignatureImage)
	return s.respond(c, res, http.StatusOK)
}

// UpdateXfdf stores the viewer's annotation overlay
// (PUT /api/v1/contracts/:id/xfdf)
func (s *Server) UpdateXfdf(c echo.Context) error {
	var body struct {
		Xfdf string `json:"xfdf"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	res := s.engine.UpdateContractXfdf(c.Request().Context(), c.Param("id"), body.Xfdf)
	return s.respond(c, res, http.StatusOK)
}

// ReviewQueue returns the contracts awaiting action from the caller
// (GET /api/v1/review-queue)
func (s *Server) ReviewQueue(c echo.Context) error {
	identity := userEmail(c)
	if identity == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Identity not found in context")
	}
	contracts, err := s.engine.GetContractsForReview(c.Request().Context(), identity)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	now := time.Now()
	views := make([]models.ContractView, 0, len(contracts))
	for _, contract := range contracts {
		views = append(views, models.NewContractView(contract, now))
	}
	return c.JSON(http.StatusOK, views)
}
