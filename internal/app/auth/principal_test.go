package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

func int64Ptr(v int64) *int64 { return &v }

func TestManagerScopes(t *testing.T) {
	p := &Principal{
		IsStaff:               true,
		ManagedInstitutionIDs: []int64{1, 2},
		ManagedFundIDs:        []int64{7},
	}

	assert.True(t, p.ManagesInstitution(1))
	assert.False(t, p.ManagesInstitution(3))
	assert.True(t, p.ManagesFund(7))
	assert.False(t, p.ManagesFund(8))
	assert.True(t, p.IsManager())

	unscoped := &Principal{IsStaff: true}
	assert.False(t, unscoped.IsManager())

	student := &Principal{ManagedInstitutionIDs: []int64{1}}
	assert.False(t, student.IsManager())
}

func TestMemberships(t *testing.T) {
	p := &Principal{
		UserID: 5,
		Memberships: []*models.AssociationUser{
			{ID: 10, UserID: 5, AssociationID: 3, IsPresident: true},
			{ID: 11, UserID: 5, AssociationID: 4},
		},
	}

	assert.True(t, p.IsMemberOf(3))
	assert.True(t, p.IsMemberOf(4))
	assert.False(t, p.IsMemberOf(5))
	assert.NotNil(t, p.MembershipIn(3))
	assert.Nil(t, p.MembershipIn(99))

	today := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	assert.True(t, p.CanActForAssociation(3, today))
	assert.False(t, p.CanActForAssociation(4, today))
	assert.False(t, p.CanActForAssociation(99, today))
}

func TestCanAccessProject(t *testing.T) {
	institutionManager := &Principal{UserID: 1, IsStaff: true, ManagedInstitutionIDs: []int64{1}}
	otherManager := &Principal{UserID: 6, IsStaff: true, ManagedInstitutionIDs: []int64{2}}
	fundManager := &Principal{UserID: 7, IsStaff: true, ManagedFundIDs: []int64{7}}
	member := &Principal{UserID: 2, Memberships: []*models.AssociationUser{{UserID: 2, AssociationID: 3}}}
	owner := &Principal{UserID: 4}
	stranger := &Principal{UserID: 9}

	assoc := &models.Association{ID: 3, InstitutionID: 1}
	personal := &models.Project{UserID: int64Ptr(4)}
	assocProject := &models.Project{AssociationID: int64Ptr(3)}

	assert.True(t, owner.CanAccessProject(personal, nil, nil))
	assert.True(t, member.CanAccessProject(assocProject, assoc, nil))
	assert.False(t, stranger.CanAccessProject(personal, nil, nil))
	assert.False(t, stranger.CanAccessProject(assocProject, assoc, nil))
	assert.False(t, member.CanAccessProject(personal, nil, nil))

	// Manager access follows institution and fund scope, not the staff flag.
	assert.True(t, institutionManager.CanAccessProject(assocProject, assoc, nil))
	assert.False(t, otherManager.CanAccessProject(assocProject, assoc, nil))
	assert.False(t, institutionManager.CanAccessProject(personal, nil, nil))
	assert.True(t, fundManager.CanAccessProject(personal, nil, []int64{7}))
	assert.True(t, fundManager.CanAccessProject(assocProject, assoc, []int64{7}))
	assert.False(t, fundManager.CanAccessProject(assocProject, assoc, []int64{8}))
}

func TestCanEditProject(t *testing.T) {
	today := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	president := &Principal{UserID: 2, Memberships: []*models.AssociationUser{
		{UserID: 2, AssociationID: 3, IsPresident: true},
	}}
	plainMember := &Principal{UserID: 5, Memberships: []*models.AssociationUser{
		{UserID: 5, AssociationID: 3},
	}}

	assocProject := &models.Project{AssociationID: int64Ptr(3)}
	personal := &models.Project{UserID: int64Ptr(5)}

	assert.True(t, president.CanEditProject(assocProject, today))
	assert.False(t, plainMember.CanEditProject(assocProject, today))
	assert.True(t, plainMember.CanEditProject(personal, today))
}

func TestManagesProject(t *testing.T) {
	manager := &Principal{IsStaff: true, ManagedInstitutionIDs: []int64{1}}
	otherManager := &Principal{IsStaff: true, ManagedInstitutionIDs: []int64{2}}
	fundManager := &Principal{IsStaff: true, ManagedFundIDs: []int64{7}}
	student := &Principal{UserID: 8}

	assoc := &models.Association{ID: 3, InstitutionID: 1}
	assocProject := &models.Project{AssociationID: int64Ptr(3)}
	personal := &models.Project{UserID: int64Ptr(8)}

	assert.True(t, manager.ManagesProject(assocProject, assoc, nil))
	assert.False(t, otherManager.ManagesProject(assocProject, assoc, nil))
	assert.False(t, student.ManagesProject(assocProject, assoc, nil))
	assert.False(t, manager.ManagesProject(personal, nil, nil))
	assert.True(t, fundManager.ManagesProject(personal, nil, []int64{7}))
	assert.False(t, fundManager.ManagesProject(personal, nil, []int64{8}))
}
