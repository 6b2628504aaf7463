package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

func TestExtractVariables(t *testing.T) {
	vars := service.ExtractVariables("Quick question about {{company}}", "Hi {{ first_name }}, {{company}} and {{sender_name}}")
	assert.Equal(t, []string{"company", "first_name", "sender_name"}, vars)
	assert.Empty(t, service.ExtractVariables("no tokens"))
}

func TestCreateTemplate(t *testing.T) {
	svc := &service.TemplateService{TemplateRepo: NewMockTemplateRepo()}

	tpl, err := svc.CreateTemplate(context.Background(), tenant, service.TemplateInput{
		Name: "Intro", Subject: "Hi {{first_name}}", Content: "About {{company}}",
	})
	require.NoError(t, err)
	assert.Equal(t, "outreach", tpl.Category)
	assert.Equal(t, []string{"first_name", "company"}, tpl.Variables)

	_, err = svc.CreateTemplate(context.Background(), tenant, service.TemplateInput{Name: "Intro"})
	assert.True(t, appErrors.IsValidation(err))
}

func TestRenderPreview(t *testing.T) {
	repo := NewMockTemplateRepo(&model.EmailTemplate{ID: "tpl-1", UserID: tenant, Subject: "For {{company}}", Content: "Hi {{first_name}}, {{sender_name}}"})
	svc := &service.TemplateService{TemplateRepo: repo}

	res, err := svc.RenderPreview(context.Background(), tenant, "tpl-1", &model.Lead{FirstName: "Ann"}, "")
	require.NoError(t, err)
	assert.Equal(t, "For your company", res.Subject)
	assert.Equal(t, "Hi Ann, AutoReachPro Team", res.Content)
}

func TestDefaultTemplates(t *testing.T) {
	ts := service.DefaultTemplates(tenant)
	require.Len(t, ts, 3)
	for _, tpl := range ts {
		assert.True(t, tpl.IsDefault)
		assert.Equal(t, tenant, tpl.UserID)
		assert.NotEmpty(t, tpl.Variables)
	}
}
