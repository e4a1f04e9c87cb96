package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, daysBetween(day(2026, time.March, 15), day(2026, time.March, 15)))
	assert.Equal(t, 1, daysBetween(day(2026, time.March, 15), day(2026, time.March, 16)))
	assert.Equal(t, -1, daysBetween(day(2026, time.March, 16), day(2026, time.March, 15)))
	assert.Equal(t, 365, daysBetween(day(2025, time.March, 15), day(2026, time.March, 15)))

	// Time of day never shifts the count.
	late := time.Date(2026, time.March, 15, 23, 50, 0, 0, time.UTC)
	early := time.Date(2026, time.March, 16, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, 1, daysBetween(late, early))

	// A daylight saving transition between the two dates must not shave an
	// hour off the count and round a day away.
	winter := time.Date(2025, time.November, 1, 3, 0, 0, 0, time.FixedZone("CET", 3600))
	summer := time.Date(2026, time.March, 30, 3, 0, 0, 0, time.FixedZone("CEST", 7200))
	assert.Equal(t, 149, daysBetween(winter, summer))
}

func TestAccountWarningDue(t *testing.T) {
	joined := day(2025, time.September, 1)
	u := &models.User{DateJoined: joined}

	// 365 - 30 = 335 days after the last activity.
	warningDay := joined.AddDate(0, 0, 335)
	assert.True(t, AccountWarningDue(u, warningDay, 30))
	assert.False(t, AccountWarningDue(u, warningDay.AddDate(0, 0, -1), 30))
	assert.False(t, AccountWarningDue(u, warningDay.AddDate(0, 0, 1), 30))

	staff := &models.User{DateJoined: joined, IsStaff: true}
	assert.False(t, AccountWarningDue(staff, warningDay, 30))

	// A login resets the clock.
	active := &models.User{DateJoined: joined, LastLogin: timePtr(day(2026, time.January, 10))}
	assert.False(t, AccountWarningDue(active, warningDay, 30))
	assert.True(t, AccountWarningDue(active, day(2026, time.January, 10).AddDate(0, 0, 335), 30))
}

func TestAccountDeletionDue(t *testing.T) {
	joined := day(2025, time.September, 1)
	u := &models.User{DateJoined: joined}

	limit := joined.AddDate(0, 0, 365)
	assert.False(t, AccountDeletionDue(u, limit.AddDate(0, 0, -1)))
	assert.True(t, AccountDeletionDue(u, limit))
	assert.True(t, AccountDeletionDue(u, limit.AddDate(0, 0, 40)))

	staff := &models.User{DateJoined: joined, IsStaff: true}
	assert.False(t, AccountDeletionDue(staff, limit.AddDate(0, 1, 0)))

	assert.Equal(t, limit, AccountExpirationDate(u))
}

func TestPasswordRules(t *testing.T) {
	changed := day(2025, time.September, 1)
	u := &models.User{PasswordLastChangeDate: timePtr(changed)}

	assert.True(t, PasswordWarningDue(u, changed.AddDate(0, 0, 335), 30))
	assert.False(t, PasswordWarningDue(u, changed.AddDate(0, 0, 334), 30))

	assert.False(t, PasswordRotationDue(u, changed.AddDate(0, 0, 364)))
	assert.True(t, PasswordRotationDue(u, changed.AddDate(0, 0, 365)))
	assert.True(t, PasswordRotationDue(u, changed.AddDate(0, 0, 400)))

	cas := &models.User{IsCas: true, PasswordLastChangeDate: timePtr(changed)}
	assert.False(t, PasswordWarningDue(cas, changed.AddDate(0, 0, 335), 30))
	assert.False(t, PasswordRotationDue(cas, changed.AddDate(0, 0, 365)))

	noDate := &models.User{}
	assert.False(t, PasswordRotationDue(noDate, day(2026, time.September, 1)))
}

func TestCharterRules(t *testing.T) {
	validated := day(2025, time.September, 1)
	a := &models.Association{CharterStatus: models.CharterValidated, CharterDate: timePtr(validated)}

	assert.True(t, CharterWarningDue(a, validated.AddDate(0, 0, 355)))
	assert.False(t, CharterWarningDue(a, validated.AddDate(0, 0, 354)))
	assert.False(t, CharterWarningDue(a, validated.AddDate(0, 0, 356)))

	assert.False(t, CharterExpirationDue(a, validated.AddDate(0, 0, 364)))
	assert.True(t, CharterExpirationDue(a, validated.AddDate(0, 0, 365)))
	assert.True(t, CharterExpirationDue(a, validated.AddDate(0, 0, 380)))
	assert.Equal(t, validated.AddDate(0, 0, 365), CharterExpirationDate(a))

	pending := &models.Association{CharterStatus: models.CharterProcessing, CharterDate: timePtr(validated)}
	assert.False(t, CharterWarningDue(pending, validated.AddDate(0, 0, 355)))
	assert.False(t, CharterExpirationDue(pending, validated.AddDate(0, 0, 365)))

	noDate := &models.Association{CharterStatus: models.CharterValidated}
	assert.False(t, CharterExpirationDue(noDate, day(2026, time.September, 1)))
}

func TestUploadExpirationRules(t *testing.T) {
	rollingDays := 90
	validated := day(2026, time.January, 10)
	u := &models.DocumentUpload{
		Document:      &models.Document{DaysBeforeExpiration: &rollingDays},
		ValidatedDate: timePtr(validated),
	}

	exp := UploadExpirationDate(u)
	assert.NotNil(t, exp)
	assert.Equal(t, day(2026, time.April, 10), *exp)

	assert.True(t, UploadWarningDue(u, day(2026, time.March, 11), 30))
	assert.False(t, UploadWarningDue(u, day(2026, time.March, 10), 30))

	assert.False(t, UploadExpirationDue(u, day(2026, time.April, 9)))
	assert.True(t, UploadExpirationDue(u, day(2026, time.April, 10)))
	assert.True(t, UploadExpirationDue(u, day(2026, time.May, 1)))

	// Not yet validated, no expiry.
	pending := &models.DocumentUpload{Document: &models.Document{DaysBeforeExpiration: &rollingDays}}
	assert.Nil(t, UploadExpirationDate(pending))
	assert.False(t, UploadExpirationDue(pending, day(2026, time.May, 1)))

	// Fixed-annual rules are keyed on month-day, not a rolling window.
	fixed := &models.DocumentUpload{
		Document:      &models.Document{ExpirationDay: func() *string { s := "06-30"; return &s }()},
		ValidatedDate: timePtr(validated),
	}
	assert.Nil(t, UploadExpirationDate(fixed))
}

func TestMonthDay(t *testing.T) {
	assert.Equal(t, "06-30", MonthDay(day(2026, time.June, 30), 0))
	assert.Equal(t, "07-05", MonthDay(day(2026, time.June, 30), 5))
	assert.Equal(t, "01-02", MonthDay(day(2026, time.December, 31), 2))
	assert.Equal(t, "02-01", MonthDay(day(2026, time.January, 2), 30))
}

func TestReviewOverdueDue(t *testing.T) {
	ended := day(2026, time.February, 1)
	p := &models.Project{ProjectStatus: models.ProjectValidated, PlannedEndDate: ended}

	assert.True(t, ReviewOverdueDue(p, ended.AddDate(0, 0, 30), 30))
	assert.False(t, ReviewOverdueDue(p, ended.AddDate(0, 0, 29), 30))
	assert.False(t, ReviewOverdueDue(p, ended.AddDate(0, 0, 31), 30))

	reviewed := &models.Project{ProjectStatus: models.ProjectReviewProcessing, PlannedEndDate: ended}
	assert.False(t, ReviewOverdueDue(reviewed, ended.AddDate(0, 0, 30), 30))
}

func TestGOARules(t *testing.T) {
	today := day(2026, time.March, 1)

	assert.True(t, GOAReminderDue(&models.Association{}, today))
	assert.True(t, GOAReminderDue(&models.Association{LastGOADate: timePtr(day(2025, time.February, 1))}, today))
	assert.False(t, GOAReminderDue(&models.Association{LastGOADate: timePtr(day(2025, time.June, 1))}, today))
	// Exactly one year old is still current.
	assert.False(t, GOAReminderDue(&models.Association{LastGOADate: timePtr(day(2025, time.March, 1))}, today))

	assert.True(t, GOARunDay(day(2026, time.March, 1)))
	assert.False(t, GOARunDay(day(2026, time.March, 2)))
}
