package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leadpilot/lead-management-api/internal/metrics"
	"github.com/leadpilot/lead-management-api/internal/models"
)

// ScoreResult is the outcome of scoring a lead's motivation to sell.
type ScoreResult struct {
	Score      int      `json:"score"`
	Analysis   string   `json:"analysis"`
	Motivators []string `json:"motivators"`
}

// ScoringService estimates a 1-100 motivation score for a lead, preferring
// the AI path and degrading to a deterministic rule evaluation when the AI
// is unavailable or returns garbage. ScoreLead never returns an error.
type ScoringService struct {
	ai *AIService
}

// NewScoringService creates a new ScoringService. ai may be nil.
func NewScoringService(ai *AIService) *ScoringService {
	return &ScoringService{ai: ai}
}

// sourceWeights ranks lead sources by how motivated the typical seller is.
var sourceWeights = map[models.LeadSource]int{
	models.SourceTaxDelinquent:    9,
	models.SourceProbate:          8,
	models.SourceForeclosure:      8,
	models.SourceFSBO:             7,
	models.SourceDivorce:          7,
	models.SourceVacant:           6,
	models.SourceCodeViolation:    6,
	models.SourceTiredLandlord:    5,
	models.SourceReferral:         4,
	models.SourceWebsite:          3,
	models.SourceZillow:           2,
	models.SourceFacebook:         2,
	models.SourceGeneralMarketing: 1,
}

// motivationKeywords are scanned against lead notes, case-insensitively.
var motivationKeywords = []string{
	"foreclosure",
	"divorce",
	"bankruptcy",
	"probate",
	"inherited",
	"estate sale",
	"relocating",
	"relocation",
	"job loss",
	"behind on payments",
	"back taxes",
	"tax lien",
	"vacant",
	"tenant",
	"evict",
	"repairs",
	"fixer",
	"as-is",
	"motivated",
	"must sell",
	"quick sale",
	"cash offer",
	"downsizing",
	"medical",
	"hardship",
}

// ScoreLead scores a lead, preferring the AI path when configured.
func (s *ScoringService) ScoreLead(ctx context.Context, lead *models.Lead) ScoreResult {
	if s.ai != nil {
		if result, err := s.scoreWithAI(ctx, lead); err == nil {
			return result
		}
		metrics.RecordAIFallback("scoring")
	}
	return RuleBasedScore(lead)
}

func (s *ScoringService) scoreWithAI(ctx context.Context, lead *models.Lead) (ScoreResult, error) {
	prompt := fmt.Sprintf(`Score this real estate lead's motivation to sell on a 1-100 scale.

Lead details:
- Source: %s
- Status: %s
- Amount owed: %s
- Notes: %s

Respond with JSON only, in this exact shape:
{"score": <integer 1-100>, "analysis": "<one paragraph>", "motivators": ["<factor>", ...]}`,
		lead.Source, lead.Status, lead.AmountOwed, lead.Notes)

	content, err := s.ai.Complete(ctx, "You are a real estate lead scoring engine. Respond with JSON only.", prompt)
	if err != nil {
		return ScoreResult{}, err
	}

	var result ScoreResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &result); err != nil {
		return ScoreResult{}, fmt.Errorf("failed to parse AI response: %w", err)
	}

	if result.Score < 1 || result.Score > 100 {
		result.Score = 50
	}

	return result, nil
}

// RuleBasedScore is the deterministic fallback scorer. It is a pure function
// of the lead's current fields.
func RuleBasedScore(lead *models.Lead) ScoreResult {
	score := 50
	motivators := []string{}

	weight := sourceWeights[lead.Source] // unknown sources weigh 0
	if weight == 0 {
		weight = 1
	}
	score += weight * 5
	if weight > 5 {
		motivators = append(motivators, string(lead.Source))
	}

	notes := strings.ToLower(lead.Notes)
	matches := 0
	for _, keyword := range motivationKeywords {
		if strings.Contains(notes, keyword) {
			matches++
			motivators = append(motivators, keyword)
		}
	}
	keywordBonus := matches * 5
	if keywordBonus > 20 {
		keywordBonus = 20
	}
	score += keywordBonus

	if amount, ok := parseAmount(lead.AmountOwed); ok && amount > 1000 {
		score += 10
		motivators = append(motivators, "financial distress")
	}

	if score > 100 {
		score = 100
	}
	if score < 1 {
		score = 1
	}

	analysis := fmt.Sprintf(
		"Rule-based score: source %q (weight %d), %d motivation keyword(s) matched in notes.",
		lead.Source, weight, matches,
	)

	return ScoreResult{
		Score:      score,
		Analysis:   analysis,
		Motivators: motivators,
	}
}

// parseAmount pulls the integer portion out of a free-form currency string
// like "$12,500" or "about 8000 dollars".
func parseAmount(raw string) (int, bool) {
	digits := strings.Builder{}
	seen := false
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			seen = true
		} else if seen && (r == '.' || r == ' ') {
			break
		}
	}
	if !seen {
		return 0, false
	}

	var amount int
	if _, err := fmt.Sscanf(digits.String(), "%d", &amount); err != nil {
		return 0, false
	}
	return amount, true
}
