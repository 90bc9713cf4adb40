package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leadpilot/lead-management-api/internal/constants"
	"github.com/leadpilot/lead-management-api/internal/dto"
	"github.com/leadpilot/lead-management-api/internal/models"
	"github.com/leadpilot/lead-management-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AnalyticsHandlerTestSuite defines the test suite for AnalyticsHandler
type AnalyticsHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *AnalyticsHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Lead{},
		&models.Workflow{},
		&models.Document{},
		&models.ScrapingJob{},
	)
	suite.Require().NoError(err)

	handler := NewAnalyticsHandler(
		repository.NewLeadRepository(suite.db),
		repository.NewWorkflowRepository(suite.db),
		repository.NewDocumentRepository(suite.db),
		repository.NewScrapingJobRepository(suite.db),
	)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	// Authenticate every request as user 1
	suite.router.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, uint64(1))
		c.Next()
	})

	suite.router.GET("/api/analytics/summary", handler.GetSummary)
}

// TearDownTest runs after each test
func (suite *AnalyticsHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AnalyticsHandlerTestSuite) getSummary() dto.AnalyticsSummary {
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Require().Equal(http.StatusOK, w.Code)

	var summary dto.AnalyticsSummary
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &summary))
	return summary
}

func (suite *AnalyticsHandlerTestSuite) TestGetSummary() {
	score60, score80 := 60, 80
	leads := []*models.Lead{
		{Name: "James Whitfield", Source: models.SourceTaxDelinquent, Status: models.LeadStatusNew, MotivationScore: &score80, UserID: 1},
		{Name: "Maria Gonzales", Source: models.SourceTaxDelinquent, Status: models.LeadStatusNew, MotivationScore: &score60, UserID: 1},
		{Name: "Harold Jennings", Source: models.SourceWebsite, Status: models.LeadStatusContacted, UserID: 1},
		{Name: "Angela Pratt", Source: models.SourceFSBO, Status: models.LeadStatusNew, UserID: 2},
	}
	for _, lead := range leads {
		suite.Require().NoError(suite.db.Create(lead).Error)
	}

	workflows := []*models.Workflow{
		{Name: "Qualifier", Trigger: models.WorkflowLeadQualifier, Actions: models.Actions{{Type: models.ActionScore}}, Active: true, UserID: 1},
		{Name: "Paused outreach", Trigger: models.WorkflowOutreach, Actions: models.Actions{{Type: models.ActionEmail}}, Active: false, UserID: 1},
	}
	for _, workflow := range workflows {
		suite.Require().NoError(suite.db.Create(workflow).Error)
	}

	suite.Require().NoError(suite.db.Create(&models.Document{
		Name: "Offer - James Whitfield", Type: models.DocumentOffer, Status: models.DocumentStatusDraft, UserID: 1,
	}).Error)

	jobs := []*models.ScrapingJob{
		{Name: "County tax list", Source: models.SourceTaxDelinquent, Status: models.JobStatusCompleted, UserID: 1},
		{Name: "Probate filings", Source: models.SourceProbate, Status: models.JobStatusPending, UserID: 1},
	}
	for _, job := range jobs {
		suite.Require().NoError(suite.db.Create(job).Error)
	}

	summary := suite.getSummary()

	// User 2's lead must not leak into the aggregates
	assert.Equal(suite.T(), int64(3), summary.TotalLeads)
	assert.Equal(suite.T(), map[string]int64{"new": 2, "contacted": 1}, summary.LeadsByStatus)
	assert.Equal(suite.T(), map[string]int64{"tax_delinquent": 2, "website": 1}, summary.LeadsBySource)
	assert.InDelta(suite.T(), 70.0, summary.AvgMotivation, 0.001)
	assert.Equal(suite.T(), int64(1), summary.TotalDocuments)
	assert.Equal(suite.T(), int64(2), summary.TotalWorkflows)
	assert.Equal(suite.T(), int64(1), summary.ActiveWorkflows)
	assert.Equal(suite.T(), int64(2), summary.TotalScrapeJobs)
	assert.Equal(suite.T(), int64(1), summary.CompletedJobRuns)
}

func (suite *AnalyticsHandlerTestSuite) TestGetSummary_EmptyPipeline() {
	summary := suite.getSummary()

	assert.Equal(suite.T(), int64(0), summary.TotalLeads)
	assert.Empty(suite.T(), summary.LeadsByStatus)
	assert.Empty(suite.T(), summary.LeadsBySource)
	assert.Zero(suite.T(), summary.AvgMotivation)
	assert.Zero(suite.T(), summary.TotalWorkflows)
	assert.Zero(suite.T(), summary.TotalDocuments)
	assert.Zero(suite.T(), summary.TotalScrapeJobs)
}

func TestAnalyticsHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsHandlerTestSuite))
}
