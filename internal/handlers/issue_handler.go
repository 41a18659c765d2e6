package handlers

import (
	"net/http"
	"strconv"

	"civicreport-be/internal/middleware"
	"civicreport-be/internal/models"
	"civicreport-be/internal/query"
	"civicreport-be/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// IssueHandler exposes the issue endpoints.
type IssueHandler struct {
	queries   *service.IssueQueryService
	mutations *service.IssueMutationService
	log       *zap.Logger
}

// NewIssueHandler wires the issue handler.
func NewIssueHandler(queries *service.IssueQueryService, mutations *service.IssueMutationService, log *zap.Logger) *IssueHandler {
	return &IssueHandler{queries: queries, mutations: mutations, log: log}
}

func filterParamsFrom(c *gin.Context) query.FilterParams {
	return query.FilterParams{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		Category:  c.Query("category"),
		UserID:    c.Query("userId"),
		Search:    c.Query("search"),
		Latitude:  c.Query("latitude"),
		Longitude: c.Query("longitude"),
		Radius:    c.Query("radius"),
		From:      c.Query("from"),
		To:        c.Query("to"),
		HasImages: c.Query("hasImages"),
	}
}

// List handles GET /api/issues.
func (h *IssueHandler) List(c *gin.Context) {
	filter, err := query.ParseFilter(filterParamsFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	page := query.ParsePage(c.Query("page"), c.Query("limit"))
	result, err := h.queries.List(c.Request.Context(), filter, page, c.DefaultQuery("sort", "newest"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondPage(c, "Issues retrieved successfully", result.Items, result.Meta)
}

// Nearby handles GET /api/issues/nearby.
func (h *IssueHandler) Nearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		respondError(c, h.log, models.NewValidationError("latitude", "must be a number"))
		return
	}
	lng, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		respondError(c, h.log, models.NewValidationError("longitude", "must be a number"))
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "5"), 64)
	if err != nil {
		respondError(c, h.log, models.NewValidationError("radius", "must be a number"))
		return
	}

	page := query.ParsePage(c.Query("page"), c.Query("limit"))
	result, err := h.queries.Nearby(c.Request.Context(), lat, lng, radius, page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondPage(c, "Nearby issues retrieved successfully", result.Items, result.Meta)
}

// Mine handles GET /api/issues/my.
func (h *IssueHandler) Mine(c *gin.Context) {
	actorID, _, ok := currentObjectID(c)
	if !ok {
		respondError(c, h.log, models.ErrUnauthorized)
		return
	}

	filter, err := query.ParseFilter(filterParamsFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	page := query.ParsePage(c.Query("page"), c.Query("limit"))
	result, err := h.queries.Mine(c.Request.Context(), actorID, filter, page, c.DefaultQuery("sort", "newest"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondPage(c, "Your issues retrieved successfully", result.Items, result.Meta)
}

// Get handles GET /api/issues/:id.
func (h *IssueHandler) Get(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.log, models.NewValidationError("id", "invalid issue id"))
		return
	}

	var viewer *primitive.ObjectID
	if id, _, ok := currentObjectID(c); ok {
		viewer = &id
	}

	detail, err := h.queries.Get(c.Request.Context(), issueID, viewer)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Issue retrieved successfully", detail)
}

// Overview handles GET /api/issues/admin/overview.
func (h *IssueHandler) Overview(c *gin.Context) {
	_, role, ok := currentObjectID(c)
	if !ok {
		respondError(c, h.log, models.ErrUnauthorized)
		return
	}

	overview, err := h.queries.Overview(c.Request.Context(), role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Analytics retrieved successfully", overview)
}

type createIssueRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	Images      []string `json:"images"`
	Priority    *string  `json:"priority"`
}

// Create handles POST /api/issues.
func (h *IssueHandler) Create(c *gin.Context) {
	actorID, _, ok := currentObjectID(c)
	if !ok {
		respondError(c, h.log, models.ErrUnauthorized)
		return
	}

	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	in := service.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Images:      req.Images,
	}
	if req.Priority != nil {
		p := models.IssuePriority(*req.Priority)
		in.Priority = &p
	}

	issue, err := h.mutations.Create(c.Request.Context(), actorID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, "Issue created successfully", issue)
}

type updateIssueRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Location    *string   `json:"location"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Images      *[]string `json:"images"`
	Priority    *string   `json:"priority"`
	Status      *string   `json:"status"`
}

// Update handles PUT /api/issues/:id.
func (h *IssueHandler) Update(c *gin.Context) {
	actorID, role, ok := currentObjectID(c)
	if !ok {
		respondError(c, h.log, models.ErrUnauthorized)
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.log, models.NewValidationError("id", "invalid issue id"))
		return
	}

	var req updateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	issue, err := h.mutations.Update(c.Request.Context(), actorID, role, issueID, service.UpdateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Images:      req.Images,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Issue updated successfully", issue)
}

// Delete handles DELETE /api/issues/:id.
func (h *IssueHandler) Delete(c *gin.Context) {
	actorID, role, ok := currentObjectID(c)
	if !ok {
		respondError(c, h.log, models.ErrUnauthorized)
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.log, models.NewValidationError("id", "invalid issue id"))
		return
	}

	ref, err := h.mutations.Delete(c.Request.Context(), actorID, role, issueID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Issue deleted successfully", ref)
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus handles PATCH /api/issues/:id/status.
func (h *IssueHandler) ChangeStatus(c *gin.Context) {
	_, role, ok := currentObjectID(c)
	if !ok {
		respondError(c, h.log, models.ErrUnauthorized)
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.log, models.NewValidationError("id", "invalid issue id"))
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	issue, err := h.mutations.ChangeStatus(c.Request.Context(), role, issueID, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, "Issue status updated successfully", issue)
}

// Vote handles POST /api/issues/:id/vote.
func (h *IssueHandler) Vote(c *gin.Context) {
	actorID, _, ok := currentObjectID(c)
	if !ok {
		respondError(c, h.log, models.ErrUnauthorized)
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.log, models.NewValidationError("id", "invalid issue id"))
		return
	}

	result, err := h.mutations.ToggleVote(c.Request.Context(), actorID, issueID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := "Vote cast successfully"
	if !result.Voted {
		message = "Vote removed successfully"
	}
	respond(c, http.StatusOK, message, result)
}

// currentObjectID reads the authenticated caller and parses the id.
func currentObjectID(c *gin.Context) (primitive.ObjectID, models.Role, bool) {
	idStr, role, ok := middleware.CurrentUser(c)
	if !ok {
		return primitive.NilObjectID, role, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return primitive.NilObjectID, role, false
	}
	return id, role, true
}
