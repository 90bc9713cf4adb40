package services

import (
	"context"
	"testing"

	"github.com/leadpilot/lead-management-api/internal/metrics"
	"github.com/leadpilot/lead-management-api/internal/models"
	"github.com/leadpilot/lead-management-api/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type scraperTestEnv struct {
	service  *ScraperService
	jobRepo  repository.ScrapingJobRepository
	leadRepo repository.LeadRepository
}

func setupScraperTest(t *testing.T) scraperTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Lead{}, &models.ScrapingJob{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	jobRepo := repository.NewScrapingJobRepository(db)
	leadRepo := repository.NewLeadRepository(db)

	return scraperTestEnv{
		service:  NewScraperService(jobRepo, leadRepo, nil, ""),
		jobRepo:  jobRepo,
		leadRepo: leadRepo,
	}
}

func TestExtractWithRegex_TaxSample(t *testing.T) {
	records := extractWithRegex(taxSampleHTML, models.SourceTaxDelinquent)
	require.Len(t, records, 4)

	first := records[0]
	require.Equal(t, "James Whitfield", first.Name)
	require.Equal(t, "412 Maple St", first.Address)
	require.Equal(t, "$4,350.00", first.Amount)
	require.Contains(t, first.Notes, "TX-2231")
}

func TestExtractWithRegex_ProbateSample(t *testing.T) {
	records := extractWithRegex(probateSampleHTML, models.SourceProbate)
	require.Len(t, records, 3)
	require.Equal(t, "Robert Caldwell", records[0].Name)
	require.Equal(t, "230 Willow Ln", records[0].Address)
}

func TestExtractWithRegex_FSBOSampleHasPhones(t *testing.T) {
	records := extractWithRegex(fsboSampleHTML, models.SourceFSBO)
	require.Len(t, records, 3)
	for _, record := range records {
		require.NotEmpty(t, record.Contact)
	}
	require.Equal(t, "(555) 301-4477", records[0].Contact)
}

func TestExtractWithRegex_UnknownOwnerPlaceholder(t *testing.T) {
	records := extractWithRegex("<div>55 Elm St</div>", models.SourceFSBO)
	require.Len(t, records, 1)
	require.Equal(t, "Unknown Owner 1", records[0].Name)
}

func TestRunJob_SampleContentFallback(t *testing.T) {
	env := setupScraperTest(t)

	job := &models.ScrapingJob{
		Name:   "County tax list",
		Source: models.SourceTaxDelinquent,
		Status: models.JobStatusPending,
		UserID: 1,
	}
	require.NoError(t, env.jobRepo.Create(job))

	results, err := env.service.RunJob(context.Background(), job.ID, 1)
	require.NoError(t, err)
	require.Len(t, results, 4)

	seen := map[string]bool{}
	for _, result := range results {
		require.NotEmpty(t, result.ID)
		require.False(t, seen[result.ID], "result ids must be unique")
		seen[result.ID] = true
		require.Equal(t, models.SourceTaxDelinquent, result.Source)
	}

	stored, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobStatusCompleted, stored.Status)
	require.NotNil(t, stored.LastRun)
	require.Len(t, stored.Results, 4)
}

func TestRunJob_DegradedAIFallsBackToRegex(t *testing.T) {
	env := setupScraperTest(t)
	// AIService without a configured client fails extraction, so the run
	// degrades to the regex path and records the fallback.
	env.service.ai = &AIService{}

	job := &models.ScrapingJob{
		Name:   "Probate filings",
		Source: models.SourceProbate,
		Status: models.JobStatusPending,
		UserID: 1,
	}
	require.NoError(t, env.jobRepo.Create(job))

	before := testutil.ToFloat64(metrics.AIFallbacks.WithLabelValues("extraction"))

	results, err := env.service.RunJob(context.Background(), job.ID, 1)
	require.NoError(t, err)
	require.Len(t, results, 3)

	after := testutil.ToFloat64(metrics.AIFallbacks.WithLabelValues("extraction"))
	require.Equal(t, before+1, after)
}

func TestRunJob_ForeignJobAnswersNotFound(t *testing.T) {
	env := setupScraperTest(t)

	job := &models.ScrapingJob{
		Name:   "Someone else's",
		Source: models.SourceProbate,
		Status: models.JobStatusPending,
		UserID: 2,
	}
	require.NoError(t, env.jobRepo.Create(job))

	_, err := env.service.RunJob(context.Background(), job.ID, 1)
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestPromoteResult_TaxDelinquent(t *testing.T) {
	env := setupScraperTest(t)

	job := &models.ScrapingJob{
		Name:   "Tax list",
		Source: models.SourceTaxDelinquent,
		Status: models.JobStatusCompleted,
		Results: models.ScrapeResults{
			{ID: "r1", Name: "James Whitfield", Address: "412 Maple St", Amount: "$4,350.00", Notes: "Case No. TX-2231"},
		},
		UserID: 1,
	}
	require.NoError(t, env.jobRepo.Create(job))

	lead, err := env.service.PromoteResult(job.ID, "r1", 1)
	require.NoError(t, err)

	require.Equal(t, "James Whitfield", lead.Name)
	require.Equal(t, "412 Maple St", lead.Address)
	require.Equal(t, models.SourceTaxDelinquent, lead.Source)
	require.Equal(t, models.LeadStatusNew, lead.Status)
	require.Equal(t, "$4,350.00", lead.AmountOwed)
	require.Contains(t, lead.Notes, "TX-2231")
}

func TestPromoteResult_FSBOContactRouting(t *testing.T) {
	env := setupScraperTest(t)

	job := &models.ScrapingJob{
		Name:   "FSBO",
		Source: models.SourceFSBO,
		Status: models.JobStatusCompleted,
		Results: models.ScrapeResults{
			{ID: "email", Name: "Angela Pratt", Address: "35 Dogwood Way", Contact: "angela@example.com"},
			{ID: "phone", Name: "Tom Becker", Address: "672 Prairie Rose Ln", Contact: "(555) 887-2210"},
		},
		UserID: 1,
	}
	require.NoError(t, env.jobRepo.Create(job))

	withEmail, err := env.service.PromoteResult(job.ID, "email", 1)
	require.NoError(t, err)
	require.Equal(t, "angela@example.com", withEmail.Email)
	require.Empty(t, withEmail.Phone)

	withPhone, err := env.service.PromoteResult(job.ID, "phone", 1)
	require.NoError(t, err)
	require.Equal(t, "(555) 887-2210", withPhone.Phone)
	require.Empty(t, withPhone.Email)
}

func TestPromoteResult_NoDedupe(t *testing.T) {
	env := setupScraperTest(t)

	job := &models.ScrapingJob{
		Name:   "Probate",
		Source: models.SourceProbate,
		Status: models.JobStatusCompleted,
		Results: models.ScrapeResults{
			{ID: "r1", Name: "Robert Caldwell", Address: "230 Willow Ln", Notes: "Case No. PR-1182"},
		},
		UserID: 1,
	}
	require.NoError(t, env.jobRepo.Create(job))

	_, err := env.service.PromoteResult(job.ID, "r1", 1)
	require.NoError(t, err)
	_, err = env.service.PromoteResult(job.ID, "r1", 1)
	require.NoError(t, err)

	leads, err := env.leadRepo.ListByUser(1)
	require.NoError(t, err)
	require.Len(t, leads, 2)
}

func TestPromoteResult_UnknownResult(t *testing.T) {
	env := setupScraperTest(t)

	job := &models.ScrapingJob{
		Name:    "Empty",
		Source:  models.SourceProbate,
		Status:  models.JobStatusCompleted,
		Results: models.ScrapeResults{},
		UserID:  1,
	}
	require.NoError(t, env.jobRepo.Create(job))

	_, err := env.service.PromoteResult(job.ID, "missing", 1)
	require.ErrorIs(t, err, ErrResultNotFound)
}

func TestSetSchedule(t *testing.T) {
	env := setupScraperTest(t)

	job := &models.ScrapingJob{
		Name:   "Weekly tax pull",
		Source: models.SourceTaxDelinquent,
		Status: models.JobStatusPending,
		UserID: 1,
	}
	require.NoError(t, env.jobRepo.Create(job))

	updated, err := env.service.SetSchedule(job.ID, 1, "0 9 * * 1")
	require.NoError(t, err)
	require.Equal(t, "0 9 * * 1", updated.Schedule)

	updated, err = env.service.SetSchedule(job.ID, 1, "@daily")
	require.NoError(t, err)
	require.Equal(t, "@daily", updated.Schedule)

	_, err = env.service.SetSchedule(job.ID, 1, "every tuesday")
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestSampleContent_URLSniffing(t *testing.T) {
	require.Equal(t, taxSampleHTML, sampleContent("https://county.gov/tax-sale", models.SourceFSBO))
	require.Equal(t, probateSampleHTML, sampleContent("https://court.gov/probate-filings", models.SourceFSBO))
	require.Equal(t, fsboSampleHTML, sampleContent("https://listings.example.com", models.SourceTaxDelinquent))
	require.Equal(t, taxSampleHTML, sampleContent("", models.SourceTaxDelinquent))
}
