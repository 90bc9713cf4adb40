package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leadpilot/lead-management-api/internal/metrics"
	"github.com/leadpilot/lead-management-api/internal/models"
	"github.com/leadpilot/lead-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrLeadNotFound     = errors.New("lead not found")
)

// DocumentTemplate is one entry of the fixed template catalog.
type DocumentTemplate struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Type        models.DocumentType `json:"type"`
	Description string              `json:"description"`
	Content     string              `json:"content"`
}

// templateCatalog is the fixed set of generatable documents. Placeholders use
// {{token}} syntax; tokens without a lead-derived or custom value stay in the
// output verbatim.
var templateCatalog = []DocumentTemplate{
	{
		ID:          "purchase-offer",
		Name:        "Purchase Offer",
		Type:        models.DocumentOffer,
		Description: "Cash purchase offer for a distressed property",
		Content: `PURCHASE OFFER

Date: {{currentDate}}

To: {{sellerName}}
Property: {{propertyAddress}}

Dear {{sellerName}},

{{buyerName}} ("Buyer") hereby offers to purchase the property located at {{propertyAddress}} for the sum of {{offerAmount}}, payable in cash at closing.

This offer is made as-is, with no repair contingencies, and may be withdrawn if not accepted by {{offerExpiration}}.

Sincerely,
{{buyerName}}`,
	},
	{
		ID:          "cash-offer-letter",
		Name:        "Cash Offer Letter",
		Type:        models.DocumentLetter,
		Description: "Introductory letter with a soft cash offer",
		Content: `{{currentDate}}

{{recipientName}}
{{recipientAddress}}
{{recipientCity}}, {{recipientState}} {{recipientZip}}

Dear {{recipientName}},

My name is {{buyerName}} and I buy houses in {{recipientCity}} for cash, in any condition. I would like to make you a no-obligation offer on your property at {{propertyAddress}}.

There are no fees, no commissions, and we can close on your timeline.

If you are interested, please call or text me at {{buyerPhone}}.

Best regards,
{{buyerName}}`,
	},
	{
		ID:          "tax-delinquent-letter",
		Name:        "Tax Delinquent Outreach Letter",
		Type:        models.DocumentLetter,
		Description: "Outreach letter for owners with delinquent property taxes",
		Content: `{{currentDate}}

Dear {{ownerName}},

According to county records, the property at {{propertyAddress}} has unpaid property taxes. If the balance is not resolved, the county may eventually sell the property at a tax sale.

I work with homeowners in this situation. In many cases I can pay off the tax balance as part of a fair cash purchase, or point you to resources that can help you keep the property.

There is no cost or obligation to talk. Reach me at {{buyerPhone}}.

Sincerely,
{{buyerName}}`,
	},
	{
		ID:          "probate-letter",
		Name:        "Probate Outreach Letter",
		Type:        models.DocumentLetter,
		Description: "Condolence-first outreach letter for estate representatives",
		Content: `{{currentDate}}

Dear {{recipientName}},

Please accept my condolences for your loss. I understand that settling an estate can involve difficult decisions about property such as {{propertyAddress}}.

If selling the property is something you are considering, I purchase homes in any condition for cash and can work around the probate timeline. Many families find this simpler than preparing an inherited home for the open market.

Whenever the time is right, I am happy to answer questions. You can reach me at {{buyerPhone}}.

With sympathy,
{{buyerName}}`,
	},
	{
		ID:          "fsbo-intro-letter",
		Name:        "FSBO Introduction Letter",
		Type:        models.DocumentLetter,
		Description: "Introduction letter for for-sale-by-owner sellers",
		Content: `{{currentDate}}

Dear {{sellerName}},

I saw that you are selling {{propertyAddress}} yourself. Selling without an agent is a smart way to keep more of your equity, and I would like to make it even simpler: I am a direct cash buyer, so there are no showings, no financing contingencies, and no commissions at all.

If you would like a backup offer while you market the property, call me at {{buyerPhone}}.

Good luck with your sale,
{{buyerName}}`,
	},
	{
		ID:          "assignment-contract",
		Name:        "Assignment of Contract",
		Type:        models.DocumentContract,
		Description: "Assignment of a purchase contract to an end buyer",
		Content: `ASSIGNMENT OF REAL ESTATE PURCHASE CONTRACT

Date: {{currentDate}}

Assignor: {{buyerName}}
Assignee: {{assigneeName}}
Property: {{propertyAddress}}
Original Seller: {{sellerName}}

For valuable consideration of {{assignmentFee}}, the Assignor hereby assigns all rights and obligations under the purchase contract dated {{contractDate}} for the above property to the Assignee.

Assignor signature: ______________________
Assignee signature: ______________________`,
	},
}

// TemplateService resolves templates into persisted draft documents.
type TemplateService struct {
	documentRepo repository.DocumentRepository
	leadRepo     repository.LeadRepository
	ai           *AIService
}

// NewTemplateService creates a new TemplateService. ai may be nil.
func NewTemplateService(documentRepo repository.DocumentRepository, leadRepo repository.LeadRepository, ai *AIService) *TemplateService {
	return &TemplateService{
		documentRepo: documentRepo,
		leadRepo:     leadRepo,
		ai:           ai,
	}
}

// ListTemplates returns the full catalog.
func (s *TemplateService) ListTemplates() []DocumentTemplate {
	return templateCatalog
}

// GetTemplate returns a catalog entry by id.
func (s *TemplateService) GetTemplate(id string) (*DocumentTemplate, error) {
	for i := range templateCatalog {
		if templateCatalog[i].ID == id {
			return &templateCatalog[i], nil
		}
	}
	return nil, ErrTemplateNotFound
}

// GenerateDocumentInput holds the parameters for document generation.
type GenerateDocumentInput struct {
	TemplateID   string
	LeadID       *uint64
	UserID       uint64
	CustomFields map[string]string
}

// GenerateDocument resolves a template against a lead and custom fields and
// persists the result as a draft document. The AI-assisted path fills the
// template in one completion; any AI failure falls back to deterministic
// token substitution, so generation never fails because AI is unavailable.
func (s *TemplateService) GenerateDocument(ctx context.Context, input GenerateDocumentInput) (*models.Document, error) {
	template, err := s.GetTemplate(input.TemplateID)
	if err != nil {
		return nil, err
	}

	var lead *models.Lead
	if input.LeadID != nil {
		lead, err = s.leadRepo.FindByID(*input.LeadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrLeadNotFound
			}
			return nil, fmt.Errorf("failed to find lead: %w", err)
		}
		if lead.UserID != input.UserID {
			return nil, ErrLeadNotFound
		}
	}

	content := ""
	if s.ai != nil {
		content, err = s.fillWithAI(ctx, template, lead, input.CustomFields)
		if err != nil {
			metrics.RecordAIFallback("document_generation")
			content = ""
		}
	}
	if content == "" {
		content = FillTemplate(template.Content, lead, input.CustomFields)
	}

	document := &models.Document{
		Name:    documentName(template, lead),
		Type:    template.Type,
		Content: content,
		Status:  models.DocumentStatusDraft,
		LeadID:  input.LeadID,
		UserID:  input.UserID,
	}

	if err := s.documentRepo.Create(document); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return document, nil
}

func (s *TemplateService) fillWithAI(ctx context.Context, template *DocumentTemplate, lead *models.Lead, customFields map[string]string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Fill in this document template. Replace {{token}} placeholders with the matching values. ")
	sb.WriteString("Leave any placeholder without a value unchanged. Return only the completed document text.\n\nTemplate:\n")
	sb.WriteString(template.Content)
	if lead != nil {
		fmt.Fprintf(&sb, "\n\nLead:\nname=%s\naddress=%s\ncity=%s\nstate=%s\nzip=%s", lead.Name, lead.Address, lead.City, lead.State, lead.Zip)
	}
	if len(customFields) > 0 {
		sb.WriteString("\n\nCustom fields:")
		for key, value := range customFields {
			fmt.Fprintf(&sb, "\n%s=%s", key, value)
		}
	}

	content, err := s.ai.Complete(ctx, "You are a document preparation assistant. Respond with the document text only.", sb.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// FillTemplate substitutes tokens in order: currentDate, then lead-derived
// tokens, then caller custom fields (later substitutions win on conflict).
// Unresolved tokens are left verbatim.
func FillTemplate(content string, lead *models.Lead, customFields map[string]string) string {
	result := strings.ReplaceAll(content, "{{currentDate}}", time.Now().Format("January 2, 2006"))

	if lead != nil {
		// Several tokens intentionally alias the same lead fields.
		leadTokens := map[string]string{
			"sellerName":       lead.Name,
			"ownerName":        lead.Name,
			"recipientName":    lead.Name,
			"propertyAddress":  lead.Address,
			"recipientAddress": lead.Address,
			"recipientCity":    lead.City,
			"recipientState":   lead.State,
			"recipientZip":     lead.Zip,
		}
		for token, value := range leadTokens {
			if value == "" {
				continue
			}
			result = strings.ReplaceAll(result, "{{"+token+"}}", value)
		}
	}

	for key, value := range customFields {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}

	return result
}

func documentName(template *DocumentTemplate, lead *models.Lead) string {
	if lead != nil {
		return fmt.Sprintf("%s - %s", template.Name, lead.Name)
	}
	return template.Name
}
