package services

import (
	"context"
	"testing"

	"github.com/leadpilot/lead-management-api/internal/models"
	"github.com/leadpilot/lead-management-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTemplateTest(t *testing.T) (*TemplateService, repository.LeadRepository, repository.DocumentRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Lead{}, &models.Document{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	leadRepo := repository.NewLeadRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	return NewTemplateService(documentRepo, leadRepo, nil), leadRepo, documentRepo
}

func TestGetTemplate_Unknown(t *testing.T) {
	service, _, _ := setupTemplateTest(t)

	_, err := service.GetTemplate("no-such-template")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestFillTemplate_LeadTokens(t *testing.T) {
	lead := &models.Lead{
		Name:    "Maria Gonzales",
		Address: "88 Birchwood Ave",
		City:    "Springfield",
		State:   "IL",
		Zip:     "62701",
	}

	out := FillTemplate("To {{sellerName}} at {{propertyAddress}}, {{recipientCity}} {{recipientState}}", lead, nil)
	require.Equal(t, "To Maria Gonzales at 88 Birchwood Ave, Springfield IL", out)
}

func TestFillTemplate_UnresolvedTokensStayVerbatim(t *testing.T) {
	lead := &models.Lead{Name: "Harold Jennings"}

	out := FillTemplate("{{sellerName}} / {{buyerName}} / {{offerAmount}}", lead, nil)
	require.Equal(t, "Harold Jennings / {{buyerName}} / {{offerAmount}}", out)
}

func TestFillTemplate_CustomFieldsWinLast(t *testing.T) {
	out := FillTemplate("{{buyerName}} offers {{offerAmount}}", nil, map[string]string{
		"buyerName":   "Acme Homes LLC",
		"offerAmount": "$150,000",
	})
	require.Equal(t, "Acme Homes LLC offers $150,000", out)
}

func TestFillTemplate_EmptyLeadFieldStaysUnresolved(t *testing.T) {
	lead := &models.Lead{Name: "Harold Jennings"} // no address

	out := FillTemplate("{{propertyAddress}}", lead, nil)
	require.Equal(t, "{{propertyAddress}}", out)
}

func TestGenerateDocument_PersistsDraft(t *testing.T) {
	service, leadRepo, documentRepo := setupTemplateTest(t)

	lead := &models.Lead{Name: "Angela Pratt", Address: "35 Dogwood Way", Source: models.SourceFSBO, Status: models.LeadStatusNew, UserID: 1}
	require.NoError(t, leadRepo.Create(lead))

	document, err := service.GenerateDocument(context.Background(), GenerateDocumentInput{
		TemplateID: "purchase-offer",
		LeadID:     &lead.ID,
		UserID:     1,
		CustomFields: map[string]string{
			"buyerName":   "Acme Homes LLC",
			"offerAmount": "$185,000",
		},
	})
	require.NoError(t, err)

	require.Equal(t, models.DocumentStatusDraft, document.Status)
	require.Equal(t, models.DocumentOffer, document.Type)
	require.Contains(t, document.Content, "Angela Pratt")
	require.Contains(t, document.Content, "35 Dogwood Way")
	require.Contains(t, document.Content, "Acme Homes LLC")
	require.NotContains(t, document.Content, "{{sellerName}}")
	// offerExpiration was never supplied, so it stays a placeholder
	require.Contains(t, document.Content, "{{offerExpiration}}")

	stored, err := documentRepo.FindByID(document.ID)
	require.NoError(t, err)
	require.Equal(t, document.Content, stored.Content)
	require.Equal(t, lead.ID, *stored.LeadID)
}

func TestGenerateDocument_ForeignLeadAnswersNotFound(t *testing.T) {
	service, leadRepo, _ := setupTemplateTest(t)

	lead := &models.Lead{Name: "Tom Becker", Source: models.SourceFSBO, Status: models.LeadStatusNew, UserID: 2}
	require.NoError(t, leadRepo.Create(lead))

	_, err := service.GenerateDocument(context.Background(), GenerateDocumentInput{
		TemplateID: "purchase-offer",
		LeadID:     &lead.ID,
		UserID:     1,
	})
	require.ErrorIs(t, err, ErrLeadNotFound)
}

func TestGenerateDocument_WithoutLead(t *testing.T) {
	service, _, _ := setupTemplateTest(t)

	document, err := service.GenerateDocument(context.Background(), GenerateDocumentInput{
		TemplateID: "cash-offer-letter",
		UserID:     1,
		CustomFields: map[string]string{
			"buyerName": "Acme Homes LLC",
		},
	})
	require.NoError(t, err)
	require.Nil(t, document.LeadID)
	require.Contains(t, document.Content, "Acme Homes LLC")
	require.Contains(t, document.Content, "{{recipientName}}")
}
