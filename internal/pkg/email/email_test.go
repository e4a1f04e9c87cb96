package email

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

func TestRenderSubstitutesVariables(t *testing.T) {
	subject, body, err := Render(TemplateProjectDecision, map[string]string{
		"project_name": "Gala 2026",
		"decision":     "PROJECT_VALIDATED",
		"site_url":     "https://campulse.example",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "Gala 2026")
	assert.Contains(t, body, "PROJECT_VALIDATED")
	assert.NotContains(t, body, "{{project_name}}")
}

func TestRenderRejectsUnknownVariable(t *testing.T) {
	_, _, err := Render(TemplateCharterExpired, map[string]string{
		"association_name": "Amicale",
		"password":         "hunter2",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := Render(TemplateID("NOT_A_TEMPLATE"), nil)
	assert.Error(t, err)
}

func TestRenderPartialVariablesAllowed(t *testing.T) {
	// Omitting a whitelisted variable is fine, only unknown names fail.
	_, _, err := Render(TemplateCharterExpirationWarning, map[string]string{
		"association_name": "Amicale",
	})
	assert.NoError(t, err)
}

func TestEveryTemplateHasAWhitelist(t *testing.T) {
	for id := range templateBodies {
		assert.NotEmpty(t, AllowedVariables(id), "template %s has no variable whitelist", id)
	}
}

func TestNotifierDegradesWithoutCredentials(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{FrontendURL: "https://campulse.example"}, testLogger())
	err := n.Send(TemplateCharterExpired, "amicale@example.org", map[string]string{
		"association_name": "Amicale",
	})
	assert.NoError(t, err)
}
