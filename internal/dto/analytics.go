package dto

// AnalyticsSummary aggregates the current user's pipeline for the dashboard.
type AnalyticsSummary struct {
	TotalLeads       int64            `json:"total_leads"`
	LeadsByStatus    map[string]int64 `json:"leads_by_status"`
	LeadsBySource    map[string]int64 `json:"leads_by_source"`
	AvgMotivation    float64          `json:"avg_motivation_score"`
	TotalDocuments   int64            `json:"total_documents"`
	TotalWorkflows   int64            `json:"total_workflows"`
	TotalScrapeJobs  int64            `json:"total_scraping_jobs"`
	ActiveWorkflows  int64            `json:"active_workflows"`
	CompletedJobRuns int64            `json:"completed_job_runs"`
}
