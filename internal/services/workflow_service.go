package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/leadpilot/lead-management-api/internal/models"
	"github.com/leadpilot/lead-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrNoLeads          = errors.New("no leads available to run this workflow against")
)

// Action statuses reported in run results. "simulated" is the only signal
// separating a fabricated outcome from a persisted one; clients must not
// treat a simulated action as a real external effect.
const (
	ActionStatusCompleted = "completed"
	ActionStatusSimulated = "simulated"
	ActionStatusError     = "error"
)

// ActionResult is the per-action entry in a run's results.
type ActionResult struct {
	Type    models.ActionType `json:"type"`
	Status  string            `json:"status"`
	Details string            `json:"details"`
}

// QualifierDetails accumulates lead-qualifier workflow outcomes.
type QualifierDetails struct {
	LeadsQualified int `json:"leadsQualified"`
	LeadsFiltered  int `json:"leadsFiltered"`
}

// OutreachDetails accumulates outreach-sequence workflow outcomes.
type OutreachDetails struct {
	MessagesScheduled int `json:"messagesScheduled"`
	EmailsQueued      int `json:"emailsQueued"`
	SMSQueued         int `json:"smsQueued"`
	CallsScheduled    int `json:"callsScheduled"`
}

// ContractDetails accumulates contract-generator workflow outcomes.
type ContractDetails struct {
	DocumentsCreated int `json:"documentsCreated"`
}

// ScraperDetails accumulates scraper workflow outcomes.
type ScraperDetails struct {
	RecordsScraped int `json:"recordsScraped"`
	LeadsCreated   int `json:"leadsCreated"`
}

// AdvancedScraperDetails accumulates advanced-scraper workflow outcomes.
type AdvancedScraperDetails struct {
	RecordsScraped   int `json:"recordsScraped"`
	LeadsScored      int `json:"leadsScored"`
	DocumentsCreated int `json:"documentsCreated"`
}

// ExecutionResults is the structured summary of one workflow run. Exactly one
// type-specific detail block is populated, matching the workflow type; unknown
// workflow types get none.
type ExecutionResults struct {
	Processed    int                     `json:"processed"`
	Actions      []ActionResult          `json:"actions"`
	WorkflowType models.WorkflowType     `json:"workflowType"`
	Qualifier    *QualifierDetails       `json:"qualifierDetails,omitempty"`
	Outreach     *OutreachDetails        `json:"outreachDetails,omitempty"`
	Contract     *ContractDetails        `json:"contractDetails,omitempty"`
	Scraper      *ScraperDetails         `json:"scraperDetails,omitempty"`
	Advanced     *AdvancedScraperDetails `json:"advancedScraperDetails,omitempty"`
}

// RunResult is the full response payload of a workflow run.
type RunResult struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Workflow *models.Workflow  `json:"workflow"`
	Results  *ExecutionResults `json:"results"`
}

// WorkflowService owns workflow CRUD validation and the run dispatcher.
type WorkflowService struct {
	workflowRepo repository.WorkflowRepository
	leadRepo     repository.LeadRepository
	documentRepo repository.DocumentRepository
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(workflowRepo repository.WorkflowRepository, leadRepo repository.LeadRepository, documentRepo repository.DocumentRepository) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		leadRepo:     leadRepo,
		documentRepo: documentRepo,
	}
}

// GetOwned loads a workflow and verifies ownership. Foreign workflows answer
// not-found rather than forbidden, so existence is never leaked.
func (s *WorkflowService) GetOwned(workflowID, userID uint64) (*models.Workflow, error) {
	workflow, err := s.workflowRepo.FindByID(workflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to find workflow: %w", err)
	}
	if workflow.UserID != userID {
		return nil, ErrWorkflowNotFound
	}
	return workflow, nil
}

// RunWorkflow executes a workflow's actions sequentially, in declared order,
// against the caller's lead set. Most actions are simulated; filter, document
// and score perform real reads/writes as described per action. Per-action
// failures are recorded in that action's result entry and do not abort the
// run. Completion always stamps the workflow's last run time.
func (s *WorkflowService) RunWorkflow(ctx context.Context, workflowID, userID uint64) (*RunResult, error) {
	workflow, err := s.GetOwned(workflowID, userID)
	if err != nil {
		return nil, err
	}

	leads, err := s.leadRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	if len(leads) == 0 {
		return nil, ErrNoLeads
	}

	workflowType := workflow.Trigger
	if workflowType == "" {
		workflowType = models.WorkflowCustom
	}

	actions := workflow.Actions
	if actions == nil {
		actions = models.Actions{}
	}

	results := newExecutionResults(workflowType)

	run := &workflowRun{
		service:      s,
		workflowType: workflowType,
		leads:        leads,
		results:      results,
		userID:       userID,
	}

	for _, action := range actions {
		results.Actions = append(results.Actions, run.execute(action))
		results.Processed++
	}

	now := time.Now()
	workflow.LastRun = &now
	if err := s.workflowRepo.Update(workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return &RunResult{
		Success:  true,
		Message:  fmt.Sprintf("Workflow %q executed: %d action(s) processed", workflow.Name, results.Processed),
		Workflow: workflow,
		Results:  results,
	}, nil
}

func newExecutionResults(workflowType models.WorkflowType) *ExecutionResults {
	results := &ExecutionResults{
		Actions:      []ActionResult{},
		WorkflowType: workflowType,
	}
	switch workflowType {
	case models.WorkflowLeadQualifier:
		results.Qualifier = &QualifierDetails{}
	case models.WorkflowOutreach:
		results.Outreach = &OutreachDetails{}
	case models.WorkflowContract:
		results.Contract = &ContractDetails{}
	case models.WorkflowScraper:
		results.Scraper = &ScraperDetails{}
	case models.WorkflowAdvancedScraper:
		results.Advanced = &AdvancedScraperDetails{}
	case models.WorkflowCustom:
		// no detail block
	default:
		// unknown workflow types run permissively with no detail block
	}
	return results
}

// workflowRun carries the per-run state the action handlers mutate.
type workflowRun struct {
	service      *WorkflowService
	workflowType models.WorkflowType
	leads        []models.Lead
	results      *ExecutionResults
	userID       uint64
}

func (r *workflowRun) execute(action models.Action) ActionResult {
	switch action.Type {
	case models.ActionFilter:
		return r.runFilter(action)
	case models.ActionDocument:
		return r.runDocument(action)
	case models.ActionScore:
		return r.runScore(action)
	case models.ActionScrape:
		return r.runScrape(action)
	case models.ActionCreate:
		return r.runCreate(action)
	case models.ActionEmail:
		return r.runEmail(action)
	case models.ActionSMS:
		return r.runSMS(action)
	case models.ActionCall:
		return r.runCall(action)
	case models.ActionDelay:
		return r.runDelay(action)
	case models.ActionNotify:
		return r.runNotify(action)
	default:
		return ActionResult{
			Type:    action.Type,
			Status:  ActionStatusSimulated,
			Details: fmt.Sprintf("Action type %q simulated", string(action.Type)),
		}
	}
}

// FilterCondition is the parsed form of a filter action's condition string.
// The grammar is deliberately crude substring matching, not an expression
// language: only "score > N" actually filters.
type FilterCondition struct {
	Field     string
	Threshold int
	// Inert conditions parse but always match.
	// TODO: "price > N" and "amount > N" are parsed but never applied as
	// filters; confirm the intended semantics with product before wiring
	// them to a lead field.
	Inert bool
}

// ParseFilterCondition parses a condition string of the form "<field> > N".
// Unrecognized forms return nil, which always matches.
func ParseFilterCondition(raw string) *FilterCondition {
	for _, field := range []string{"score", "price", "amount"} {
		idx := strings.Index(raw, field)
		if idx < 0 {
			continue
		}
		rest := raw[idx+len(field):]
		gt := strings.Index(rest, ">")
		if gt < 0 {
			continue
		}
		threshold, err := strconv.Atoi(strings.TrimSpace(rest[gt+1:]))
		if err != nil {
			continue
		}
		return &FilterCondition{
			Field:     field,
			Threshold: threshold,
			Inert:     field != "score",
		}
	}
	return nil
}

// Matches reports whether a lead passes the condition. Leads with no score
// are excluded by score conditions; there is no null special-casing.
func (c *FilterCondition) Matches(lead *models.Lead) bool {
	if c == nil || c.Inert {
		return true
	}
	return lead.MotivationScore != nil && *lead.MotivationScore > c.Threshold
}

func (r *workflowRun) runFilter(action models.Action) ActionResult {
	source, _ := action.Config["source"].(string)
	status, _ := action.Config["status"].(string)
	conditionStr, _ := action.Config["condition"].(string)
	condition := ParseFilterCondition(conditionStr)

	matched := 0
	for i := range r.leads {
		lead := &r.leads[i]
		if source != "" && string(lead.Source) != source {
			continue
		}
		if status != "" && string(lead.Status) != status {
			continue
		}
		if !condition.Matches(lead) {
			continue
		}
		matched++
	}

	if r.results.Qualifier != nil {
		r.results.Qualifier.LeadsFiltered = matched
	}

	return ActionResult{
		Type:    models.ActionFilter,
		Status:  ActionStatusCompleted,
		Details: fmt.Sprintf("Filter matched %d of %d leads", matched, len(r.leads)),
	}
}

func (r *workflowRun) runDocument(action models.Action) ActionResult {
	docType := models.DocumentGeneric
	if t, ok := action.Config["documentType"].(string); ok && t != "" {
		docType = models.DocumentType(t)
	}

	limit := 1
	if r.workflowType == models.WorkflowContract {
		docType = models.DocumentContract
		limit = 2
	}

	created := 0
	for i := 0; i < limit && i < len(r.leads); i++ {
		lead := r.leads[i]
		leadID := lead.ID
		document := &models.Document{
			Name:    fmt.Sprintf("%s - %s", titleCase(string(docType)), lead.Name),
			Type:    docType,
			Content: workflowDocumentContent(docType, &lead),
			Status:  models.DocumentStatusDraft,
			LeadID:  &leadID,
			UserID:  r.userID,
		}
		if err := r.service.documentRepo.Create(document); err != nil {
			return ActionResult{
				Type:    models.ActionDocument,
				Status:  ActionStatusError,
				Details: fmt.Sprintf("Error creating document: %v", err),
			}
		}
		created++
	}

	if created == 0 && len(r.leads) == 0 {
		// Unreachable while the run precondition requires at least one lead;
		// preserved for parity with direct invocations.
		fallbackLeadID := uint64(1)
		document := &models.Document{
			Name:    fmt.Sprintf("%s (unassigned)", titleCase(string(docType))),
			Type:    docType,
			Content: workflowDocumentContent(docType, nil),
			Status:  models.DocumentStatusDraft,
			LeadID:  &fallbackLeadID,
			UserID:  r.userID,
		}
		if err := r.service.documentRepo.Create(document); err != nil {
			return ActionResult{
				Type:    models.ActionDocument,
				Status:  ActionStatusError,
				Details: fmt.Sprintf("Error creating document: %v", err),
			}
		}
		created++
	}

	switch {
	case r.results.Contract != nil:
		r.results.Contract.DocumentsCreated += created
	case r.results.Advanced != nil:
		r.results.Advanced.DocumentsCreated += created
	}

	return ActionResult{
		Type:    models.ActionDocument,
		Status:  ActionStatusCompleted,
		Details: fmt.Sprintf("Created %d document(s)", created),
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func workflowDocumentContent(docType models.DocumentType, lead *models.Lead) string {
	name := "the property owner"
	address := "the property"
	if lead != nil {
		if lead.Name != "" {
			name = lead.Name
		}
		if lead.Address != "" {
			address = lead.Address
		}
	}
	date := time.Now().Format("January 2, 2006")

	if docType == models.DocumentContract {
		return fmt.Sprintf(
			"PURCHASE AGREEMENT\n\nDate: %s\nSeller: %s\nProperty: %s\n\nThis agreement was generated by an automated workflow and requires review before sending.",
			date, name, address,
		)
	}
	return fmt.Sprintf(
		"Generated %s\n\nDate: %s\nRegarding: %s, %s\n\nThis document was generated by an automated workflow.",
		docType, date, name, address,
	)
}

func (r *workflowRun) runScore(action models.Action) ActionResult {
	// Advanced scraper workflows only fabricate a count; no rows change.
	if r.workflowType == models.WorkflowAdvancedScraper {
		count := 5 + rand.Intn(16)
		if r.results.Advanced != nil {
			r.results.Advanced.LeadsScored += count
		}
		return ActionResult{
			Type:    models.ActionScore,
			Status:  ActionStatusSimulated,
			Details: fmt.Sprintf("Scored %d scraped record(s)", count),
		}
	}

	limit := 2
	if r.workflowType == models.WorkflowLeadQualifier {
		limit = 3
	}

	scored := 0
	for i := 0; i < limit && i < len(r.leads); i++ {
		lead := &r.leads[i]
		score := 70 + rand.Intn(30) // [70,99]
		lead.MotivationScore = &score
		if err := r.service.leadRepo.Update(lead); err != nil {
			return ActionResult{
				Type:    models.ActionScore,
				Status:  ActionStatusError,
				Details: fmt.Sprintf("Error updating lead score: %v", err),
			}
		}
		scored++
	}

	if r.results.Qualifier != nil {
		r.results.Qualifier.LeadsQualified += scored
	}

	return ActionResult{
		Type:    models.ActionScore,
		Status:  ActionStatusCompleted,
		Details: fmt.Sprintf("Updated motivation scores on %d lead(s)", scored),
	}
}

func (r *workflowRun) runScrape(action models.Action) ActionResult {
	count := 10 + rand.Intn(41)
	source, _ := action.Config["source"].(string)
	if source == "" {
		source = "configured sources"
	}

	switch {
	case r.results.Scraper != nil:
		r.results.Scraper.RecordsScraped += count
	case r.results.Advanced != nil:
		r.results.Advanced.RecordsScraped += count
	}

	return ActionResult{
		Type:    models.ActionScrape,
		Status:  ActionStatusSimulated,
		Details: fmt.Sprintf("Scraped %d record(s) from %s", count, source),
	}
}

func (r *workflowRun) runCreate(action models.Action) ActionResult {
	count := 1 + rand.Intn(5)
	if r.results.Scraper != nil {
		r.results.Scraper.LeadsCreated += count
	}
	return ActionResult{
		Type:    models.ActionCreate,
		Status:  ActionStatusSimulated,
		Details: fmt.Sprintf("%d lead(s) would be created from scraped records", count),
	}
}

func (r *workflowRun) runEmail(action models.Action) ActionResult {
	count := len(r.leads)
	if r.results.Outreach != nil {
		r.results.Outreach.EmailsQueued += count
		r.results.Outreach.MessagesScheduled += count
	}
	return ActionResult{
		Type:    models.ActionEmail,
		Status:  ActionStatusSimulated,
		Details: fmt.Sprintf("Queued %d outreach email(s)", count),
	}
}

func (r *workflowRun) runSMS(action models.Action) ActionResult {
	count := len(r.leads)
	if r.results.Outreach != nil {
		r.results.Outreach.SMSQueued += count
		r.results.Outreach.MessagesScheduled += count
	}
	return ActionResult{
		Type:    models.ActionSMS,
		Status:  ActionStatusSimulated,
		Details: fmt.Sprintf("Queued %d SMS message(s)", count),
	}
}

func (r *workflowRun) runCall(action models.Action) ActionResult {
	count := len(r.leads)
	if r.results.Outreach != nil {
		r.results.Outreach.CallsScheduled += count
	}
	return ActionResult{
		Type:    models.ActionCall,
		Status:  ActionStatusSimulated,
		Details: fmt.Sprintf("Scheduled %d call reminder(s)", count),
	}
}

func (r *workflowRun) runDelay(action models.Action) ActionResult {
	duration, _ := action.Config["duration"].(string)
	if duration == "" {
		duration = "1 day"
	}
	return ActionResult{
		Type:    models.ActionDelay,
		Status:  ActionStatusSimulated,
		Details: fmt.Sprintf("Delay of %s simulated (no scheduler)", duration),
	}
}

func (r *workflowRun) runNotify(action models.Action) ActionResult {
	channel, _ := action.Config["channel"].(string)
	if channel == "" {
		channel = "dashboard"
	}
	return ActionResult{
		Type:    models.ActionNotify,
		Status:  ActionStatusSimulated,
		Details: fmt.Sprintf("Notification to %s simulated", channel),
	}
}
