package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	portfolioUC "github.com/anhtran/folio-api/internal/application/usecase/portfolio"
	"github.com/anhtran/folio-api/internal/domain/portfolio"
	"github.com/anhtran/folio-api/pkg/apperror"
	"github.com/anhtran/folio-api/pkg/logger"
)

type PortfolioHandler struct {
	manager *portfolioUC.StateManager
	editor  *portfolioUC.Editor
	cache   *portfolioUC.PublicCache
	logger  logger.Logger
}

func NewPortfolioHandler(
	manager *portfolioUC.StateManager,
	editor *portfolioUC.Editor,
	cache *portfolioUC.PublicCache,
	log logger.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		manager: manager,
		editor:  editor,
		cache:   cache,
		logger:  log,
	}
}

func (h *PortfolioHandler) adminResponse() AdminPortfolioResponse {
	return AdminPortfolioResponse{
		PortfolioData: h.manager.Current(),
		Revision:      h.manager.Revision(),
		Loading:       h.manager.Loading(),
	}
}

func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, h.adminResponse())
}

// PatchPortfolio accepts a raw sparse patch touching one or more top-level
// keys. A key supplied with a sequence value replaces that whole sequence.
func (h *PortfolioHandler) PatchPortfolio(c *gin.Context) {
	var patch portfolio.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for portfolio patch", err))
		return
	}
	if patch.IsZero() {
		c.Error(apperror.NewInvalidInput("patch must name at least one portfolio key", nil))
		return
	}

	if err := h.manager.Update(c.Request.Context(), patch); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.adminResponse())
}

func (h *PortfolioHandler) UpdatePersonalInfo(c *gin.Context) {
	var req UpdatePersonalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for personal info", err))
		return
	}

	if err := h.editor.UpdatePersonalInfo(c.Request.Context(), req.ToDomain()); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.adminResponse())
}

func (h *PortfolioHandler) CreateProject(c *gin.Context) {
	var req SaveProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for project", err))
		return
	}

	project, err := h.editor.SaveProject(c.Request.Context(), req.ToDomain(""))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *PortfolioHandler) UpdateProject(c *gin.Context) {
	var req SaveProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for project", err))
		return
	}

	project, err := h.editor.SaveProject(c.Request.Context(), req.ToDomain(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *PortfolioHandler) DeleteProject(c *gin.Context) {
	if err := h.editor.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PortfolioHandler) CreateEducation(c *gin.Context) {
	var req SaveEducationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for education", err))
		return
	}

	entry, err := h.editor.SaveEducation(c.Request.Context(), req.ToDomain(""))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *PortfolioHandler) UpdateEducation(c *gin.Context) {
	var req SaveEducationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for education", err))
		return
	}

	entry, err := h.editor.SaveEducation(c.Request.Context(), req.ToDomain(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *PortfolioHandler) DeleteEducation(c *gin.Context) {
	if err := h.editor.DeleteEducation(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PortfolioHandler) AddSkill(c *gin.Context) {
	var req SkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for skill", err))
		return
	}

	if err := h.editor.AddSkill(c.Request.Context(), req.Skill); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"skills": h.manager.Current().Skills})
}

// RemoveSkill deletes by value: duplicates of the value go together, skills
// carry no id of their own.
func (h *PortfolioHandler) RemoveSkill(c *gin.Context) {
	var req SkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for skill", err))
		return
	}

	if err := h.editor.RemoveSkill(c.Request.Context(), req.Skill); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": h.manager.Current().Skills})
}

// GetPublicPortfolio serves the visitor-facing aggregate, cache-aside
// through redis.
func (h *PortfolioHandler) GetPublicPortfolio(c *gin.Context) {
	if data, ok := h.cache.Cached(c.Request.Context()); ok {
		c.JSON(http.StatusOK, data)
		return
	}

	data := h.manager.Current()
	if err := h.cache.Store(c.Request.Context(), data); err != nil {
		h.logger.Warn("Failed to prime portfolio cache", zap.Error(err))
	}
	c.JSON(http.StatusOK, data)
}
