package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestOfficerFlagCount(t *testing.T) {
	assert.Equal(t, 0, (&AssociationUser{}).OfficerFlagCount())
	assert.Equal(t, 1, (&AssociationUser{IsTreasurer: true}).OfficerFlagCount())
	assert.Equal(t, 2, (&AssociationUser{IsPresident: true, IsSecretary: true}).OfficerFlagCount())

	assert.False(t, (&AssociationUser{}).IsOfficer())
	assert.True(t, (&AssociationUser{IsVicePresident: true}).IsOfficer())
}

func TestCanActAsPresident(t *testing.T) {
	today := day(2026, time.March, 15)

	tests := []struct {
		name   string
		member AssociationUser
		can    bool
	}{
		{"sitting president", AssociationUser{IsPresident: true}, true},
		{"plain member", AssociationUser{}, false},
		{"delegation covers today", AssociationUser{
			CanBePresidentFrom: timePtr(day(2026, time.March, 1)),
			CanBePresidentTo:   timePtr(day(2026, time.March, 31)),
		}, true},
		{"delegation starts today", AssociationUser{
			CanBePresidentFrom: timePtr(day(2026, time.March, 15)),
			CanBePresidentTo:   timePtr(day(2026, time.March, 31)),
		}, true},
		{"delegation ends today", AssociationUser{
			CanBePresidentFrom: timePtr(day(2026, time.March, 1)),
			CanBePresidentTo:   timePtr(day(2026, time.March, 15)),
		}, true},
		{"delegation expired", AssociationUser{
			CanBePresidentFrom: timePtr(day(2026, time.January, 1)),
			CanBePresidentTo:   timePtr(day(2026, time.February, 1)),
		}, false},
		{"delegation not started", AssociationUser{
			CanBePresidentFrom: timePtr(day(2026, time.April, 1)),
			CanBePresidentTo:   timePtr(day(2026, time.April, 30)),
		}, false},
		{"half open window is no window", AssociationUser{
			CanBePresidentFrom: timePtr(day(2026, time.March, 1)),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.can, tt.member.CanActAsPresident(today))
		})
	}
}
