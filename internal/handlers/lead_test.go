package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leadpilot/lead-management-api/internal/constants"
	"github.com/leadpilot/lead-management-api/internal/database"
	"github.com/leadpilot/lead-management-api/internal/models"
	"github.com/leadpilot/lead-management-api/internal/repository"
	"github.com/leadpilot/lead-management-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// LeadHandlerTestSuite defines the test suite for LeadHandler
type LeadHandlerTestSuite struct {
	suite.Suite
	db       *gorm.DB
	leadRepo repository.LeadRepository
	handler  *LeadHandler
	router   *gin.Engine
}

// SetupTest runs before each test
func (suite *LeadHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Lead{})
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.leadRepo = repository.NewLeadRepository(suite.db)
	suite.handler = NewLeadHandler(suite.leadRepo, services.NewScoringService(nil))

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	// Authenticate every request as user 1
	suite.router.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, uint64(1))
		c.Next()
	})

	suite.router.GET("/api/leads", suite.handler.ListLeads)
	suite.router.POST("/api/leads", suite.handler.CreateLead)
	suite.router.GET("/api/leads/:id", suite.handler.GetLead)
	suite.router.PATCH("/api/leads/:id", suite.handler.UpdateLead)
	suite.router.DELETE("/api/leads/:id", suite.handler.DeleteLead)
	suite.router.PATCH("/api/leads/:id/score", suite.handler.ScoreLead)
	suite.router.POST("/api/ai/score-lead", suite.handler.ScoreAdHoc)
}

// TearDownTest runs after each test
func (suite *LeadHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *LeadHandlerTestSuite) seedLead(userID uint64, name string, status models.LeadStatus) *models.Lead {
	lead := &models.Lead{
		Name:   name,
		Source: models.SourceWebsite,
		Status: status,
		UserID: userID,
	}
	suite.Require().NoError(suite.leadRepo.Create(lead))
	return lead
}

func (suite *LeadHandlerTestSuite) doJSON(method, path string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LeadHandlerTestSuite) TestCreateLead() {
	w := suite.doJSON(http.MethodPost, "/api/leads", map[string]any{
		"name":        "James Whitfield",
		"address":     "412 Maple St",
		"source":      "tax_delinquent",
		"amount_owed": "$4,350.00",
	})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var lead models.Lead
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &lead))
	assert.Equal(suite.T(), "James Whitfield", lead.Name)
	assert.Equal(suite.T(), models.LeadStatusNew, lead.Status)
	assert.Equal(suite.T(), uint64(1), lead.UserID)
}

func (suite *LeadHandlerTestSuite) TestCreateLead_MissingName() {
	w := suite.doJSON(http.MethodPost, "/api/leads", map[string]any{
		"source": "probate",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *LeadHandlerTestSuite) TestListLeads_StatusFilter() {
	suite.seedLead(1, "New One", models.LeadStatusNew)
	suite.seedLead(1, "Contacted One", models.LeadStatusContacted)
	suite.seedLead(2, "Other Tenant", models.LeadStatusNew)

	w := suite.doJSON(http.MethodGet, "/api/leads?status=new", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Leads      []models.Lead `json:"leads"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Leads, 1)
	assert.Equal(suite.T(), "New One", response.Leads[0].Name)
	assert.Equal(suite.T(), int64(1), response.Pagination.Total)
}

func (suite *LeadHandlerTestSuite) TestGetLead_ForeignTenantAnswersNotFound() {
	other := suite.seedLead(2, "Other Tenant", models.LeadStatusNew)

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/leads/%d", other.ID), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *LeadHandlerTestSuite) TestUpdateLead_PartialUpdate() {
	lead := suite.seedLead(1, "James Whitfield", models.LeadStatusNew)

	w := suite.doJSON(http.MethodPatch, fmt.Sprintf("/api/leads/%d", lead.ID), map[string]any{
		"status": "contacted",
		"notes":  "left voicemail",
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var updated models.Lead
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(suite.T(), models.LeadStatusContacted, updated.Status)
	assert.Equal(suite.T(), "left voicemail", updated.Notes)
	assert.Equal(suite.T(), "James Whitfield", updated.Name)
}

func (suite *LeadHandlerTestSuite) TestUpdateLead_ScoreOutOfRange() {
	lead := suite.seedLead(1, "James Whitfield", models.LeadStatusNew)

	w := suite.doJSON(http.MethodPatch, fmt.Sprintf("/api/leads/%d", lead.ID), map[string]any{
		"motivation_score": 250,
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *LeadHandlerTestSuite) TestDeleteLead() {
	lead := suite.seedLead(1, "James Whitfield", models.LeadStatusNew)

	w := suite.doJSON(http.MethodDelete, fmt.Sprintf("/api/leads/%d", lead.ID), nil)
	assert.Equal(suite.T(), http.StatusNoContent, w.Code)

	w = suite.doJSON(http.MethodGet, fmt.Sprintf("/api/leads/%d", lead.ID), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *LeadHandlerTestSuite) TestScoreLead_PersistsScore() {
	lead := suite.seedLead(1, "James Whitfield", models.LeadStatusNew)
	suite.Require().NoError(suite.db.Model(&models.Lead{}).
		Where("id = ?", lead.ID).
		Updates(map[string]any{"source": "tax_delinquent", "amount_owed": "$4,350.00"}).Error)

	w := suite.doJSON(http.MethodPatch, fmt.Sprintf("/api/leads/%d/score", lead.ID), map[string]any{})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Score  int `json:"score"`
		Result struct {
			Motivators []string `json:"motivators"`
		} `json:"result"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.GreaterOrEqual(suite.T(), response.Score, 1)
	assert.LessOrEqual(suite.T(), response.Score, 100)

	stored, err := suite.leadRepo.FindByID(lead.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.MotivationScore)
	assert.Equal(suite.T(), response.Score, *stored.MotivationScore)
}

func (suite *LeadHandlerTestSuite) TestScoreAdHoc_LeadIDPersistsScore() {
	lead := suite.seedLead(1, "James Whitfield", models.LeadStatusNew)
	suite.Require().NoError(suite.db.Model(&models.Lead{}).
		Where("id = ?", lead.ID).
		Update("source", "tax_delinquent").Error)

	w := suite.doJSON(http.MethodPost, "/api/ai/score-lead", map[string]any{
		"lead_id": lead.ID,
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var result services.ScoreResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))

	stored, err := suite.leadRepo.FindByID(lead.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.MotivationScore)
	assert.Equal(suite.T(), result.Score, *stored.MotivationScore)
}

func (suite *LeadHandlerTestSuite) TestScoreAdHoc_ForeignLeadAnswersNotFound() {
	other := suite.seedLead(2, "Other Tenant", models.LeadStatusNew)

	w := suite.doJSON(http.MethodPost, "/api/ai/score-lead", map[string]any{
		"lead_id": other.ID,
	})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *LeadHandlerTestSuite) TestScoreAdHoc_InlineFields() {
	w := suite.doJSON(http.MethodPost, "/api/ai/score-lead", map[string]any{
		"source": "probate",
		"notes":  "inherited estate sale",
	})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var result services.ScoreResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	assert.GreaterOrEqual(suite.T(), result.Score, 1)
	assert.LessOrEqual(suite.T(), result.Score, 100)

	// Nothing was persisted
	var count int64
	suite.Require().NoError(suite.db.Model(&models.Lead{}).Count(&count).Error)
	assert.Equal(suite.T(), int64(0), count)
}

func TestLeadHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LeadHandlerTestSuite))
}
