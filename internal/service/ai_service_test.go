package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/personalize"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

func newAIService() *service.AIService {
	return &service.AIService{
		LeadRepo: NewMockLeadRepo(&model.Lead{
			ID: "l1", UserID: tenant, Email: "ann@example.com", FirstName: "Ann", Company: "Acme", Status: model.LeadNew,
		}),
		SettingsRepo: NewMockSettingsRepo(),
		Personalizer: personalize.New(nil, nil),
	}
}

func TestAIPersonalize_SingleFallsBack(t *testing.T) {
	out, err := newAIService().Personalize(context.Background(), tenant, service.PersonalizeRequest{
		LeadID:   "l1",
		Template: personalize.Template{Subject: "Hi {{first_name}}", Content: "About {{company}}"},
	})
	require.NoError(t, err)

	res, ok := out.(personalize.Result)
	require.True(t, ok, "expected a single result, got %T", out)
	assert.Equal(t, "Hi Ann", res.Subject)
	assert.Equal(t, "About Acme", res.Content)
	assert.False(t, res.AI)
}

func TestAIPersonalize_Variations(t *testing.T) {
	out, err := newAIService().Personalize(context.Background(), tenant, service.PersonalizeRequest{
		LeadID:     "l1",
		Template:   personalize.Template{Subject: "Hi", Content: "Body"},
		Variations: 9,
	})
	require.NoError(t, err)

	vs, ok := out.([]personalize.Variant)
	require.True(t, ok)
	require.Len(t, vs, personalize.MaxVariants)
	assert.Equal(t, 1, vs[0].Variant)
}

func TestAIPersonalize_Errors(t *testing.T) {
	svc := newAIService()

	_, err := svc.Personalize(context.Background(), tenant, service.PersonalizeRequest{LeadID: "l1"})
	assert.True(t, appErrors.IsValidation(err))

	_, err = svc.Personalize(context.Background(), "intruder", service.PersonalizeRequest{
		LeadID: "l1", Template: personalize.Template{Subject: "s", Content: "c"},
	})
	assert.True(t, appErrors.IsNotFound(err))
}
