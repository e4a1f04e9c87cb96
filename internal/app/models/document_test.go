package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestAcceptsMime(t *testing.T) {
	d := &Document{MimeTypes: []string{"application/pdf", "image/png"}}
	assert.True(t, d.AcceptsMime("application/pdf"))
	assert.True(t, d.AcceptsMime("image/png"))
	assert.False(t, d.AcceptsMime("image/jpeg"))

	empty := &Document{}
	assert.False(t, empty.AcceptsMime("application/pdf"))
}

func TestHasValidExpirationRule(t *testing.T) {
	rolling := 30
	assert.True(t, (&Document{}).HasValidExpirationRule())
	assert.True(t, (&Document{DaysBeforeExpiration: &rolling}).HasValidExpirationRule())
	assert.True(t, (&Document{ExpirationDay: strPtr("06-30")}).HasValidExpirationRule())
	assert.False(t, (&Document{DaysBeforeExpiration: &rolling, ExpirationDay: strPtr("06-30")}).HasValidExpirationRule())
}

func TestIsUpdatable(t *testing.T) {
	assert.True(t, (&Document{ProcessType: ProcessCharterAssociation}).IsUpdatable())
	assert.True(t, (&Document{ProcessType: ProcessDocumentUser}).IsUpdatable())
	assert.True(t, (&Document{ProcessType: ProcessNone}).IsUpdatable())
	assert.False(t, (&Document{ProcessType: ProcessDocumentProject}).IsUpdatable())
	assert.False(t, (&Document{ProcessType: ProcessDocumentProjectReview}).IsUpdatable())
}

func TestOwnerCount(t *testing.T) {
	var uid, aid, pid int64 = 1, 2, 3
	assert.Equal(t, 0, (&DocumentUpload{}).OwnerCount())
	assert.Equal(t, 1, (&DocumentUpload{UserID: &uid}).OwnerCount())
	assert.Equal(t, 2, (&DocumentUpload{UserID: &uid, AssociationID: &aid}).OwnerCount())
	assert.Equal(t, 3, (&DocumentUpload{UserID: &uid, AssociationID: &aid, ProjectID: &pid}).OwnerCount())
}
