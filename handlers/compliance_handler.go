package handlers

import (
	"net/http"

	"clausecheck-backend/models"
	"clausecheck-backend/repository"
	"clausecheck-backend/service"

	"github.com/gin-gonic/gin"
)

// ComplianceHandler handles HTTP requests for compliance evaluation and
// knowledge-base queries
type ComplianceHandler struct {
	complianceService *service.ComplianceService
	reportRepo        *repository.ReportRepository
}

// NewComplianceHandler creates a new compliance handler. reportRepo may be
// nil when persistence is not configured.
func NewComplianceHandler(complianceService *service.ComplianceService, reportRepo *repository.ReportRepository) *ComplianceHandler {
	return &ComplianceHandler{
		complianceService: complianceService,
		reportRepo:        reportRepo,
	}
}

// ClauseInput is one analyzed clause in an evaluation request
type ClauseInput struct {
	ClauseID   string    `json:"clause_id" binding:"required"`
	ClauseType string    `json:"clause_type"`
	ClauseText string    `json:"clause_text"`
	Embeddings []float64 `json:"embeddings"`
}

// EvaluateRequest is the request body for document evaluation
type EvaluateRequest struct {
	Frameworks []string      `json:"frameworks" binding:"required"`
	Clauses    []ClauseInput `json:"clauses" binding:"required"`
}

// EvaluateDocument handles POST /api/documents/:id/evaluate
func (h *ComplianceHandler) EvaluateDocument(c *gin.Context) {
	documentID := c.Param("id")

	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	frameworks := make([]models.Framework, 0, len(req.Frameworks))
	for _, name := range req.Frameworks {
		framework, ok := models.ParseFramework(name)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_FRAMEWORK",
					"message": "Unknown framework: " + name,
				},
			})
			return
		}
		frameworks = append(frameworks, framework)
	}

	clauses := make([]*models.ClauseAnalysis, len(req.Clauses))
	for i, in := range req.Clauses {
		clauses[i] = &models.ClauseAnalysis{
			ClauseID:   in.ClauseID,
			ClauseType: in.ClauseType,
			ClauseText: in.ClauseText,
			Embedding:  in.Embeddings,
		}
	}

	report, err := h.complianceService.EvaluateDocument(c.Request.Context(), documentID, clauses, frameworks)
	if err != nil {
		status := http.StatusInternalServerError
		code := "EVALUATION_FAILED"
		switch err {
		case service.ErrNoFrameworks, service.ErrInvalidThreshold:
			status = http.StatusBadRequest
			code = "INVALID_REQUEST"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// ListRequirements handles GET /api/requirements
// Query params: framework (required), clause_type (optional)
func (h *ComplianceHandler) ListRequirements(c *gin.Context) {
	framework, ok := models.ParseFramework(c.Query("framework"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FRAMEWORK",
				"message": "Unknown or missing framework",
			},
		})
		return
	}

	index := h.complianceService.Index()
	var reqs []*models.RegulatoryRequirement
	if clauseType := c.Query("clause_type"); clauseType != "" {
		reqs = index.RequirementsByClauseType(clauseType, framework)
	} else {
		reqs = index.Requirements(framework)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reqs,
	})
}

// SearchRequirements handles GET /api/requirements/search?q=term&framework=GDPR
func (h *ComplianceHandler) SearchRequirements(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Query parameter 'q' is required",
			},
		})
		return
	}

	var framework models.Framework
	if name := c.Query("framework"); name != "" {
		f, ok := models.ParseFramework(name)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_FRAMEWORK",
					"message": "Unknown framework: " + name,
				},
			})
			return
		}
		framework = f
	}

	matches := h.complianceService.Index().SearchByKeyword(term, framework)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    matches,
	})
}

// GetRequirement handles GET /api/requirements/:id
func (h *ComplianceHandler) GetRequirement(c *gin.Context) {
	req := h.complianceService.Index().RequirementByID(c.Param("id"))
	if req == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Requirement not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    req,
	})
}

// GetStatistics handles GET /api/statistics
func (h *ComplianceHandler) GetStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.complianceService.Index().Statistics(),
	})
}

// GetLatestReport handles GET /api/reports/:document_id
func (h *ComplianceHandler) GetLatestReport(c *gin.Context) {
	if h.reportRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PERSISTENCE_DISABLED",
				"message": "Report persistence is not configured",
			},
		})
		return
	}

	stored, err := h.reportRepo.GetLatestByDocumentID(c.Request.Context(), c.Param("document_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "No report found for document",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stored,
	})
}
