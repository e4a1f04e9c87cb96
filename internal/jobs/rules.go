package jobs

import (
	"fmt"
	"time"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
)

// Calendar constants shared by the account, password and charter jobs.
const (
	accountLifetimeDays  = 365
	passwordLifetimeDays = 365
	charterWarningDays   = 355
	charterLifetimeDays  = 365
)

// truncateToDay drops the time-of-day component.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole days from one calendar day to another. Both ends
// are mapped to UTC midnights first, so daylight saving transitions between
// them cannot shave hours off the count.
func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}

// lastActivity is the reference date for account aging. Users who never
// logged in age from their join date.
func lastActivity(u *models.User) time.Time {
	if u.LastLogin != nil {
		return *u.LastLogin
	}
	return u.DateJoined
}

// AccountWarningDue reports whether the account reaches its warning day,
// warnDays before the one-year inactivity limit.
func AccountWarningDue(u *models.User, today time.Time, warnDays int) bool {
	if u.IsStaff {
		return false
	}
	return daysBetween(lastActivity(u), today) == accountLifetimeDays-warnDays
}

// AccountExpirationDate returns the day the account is removed.
func AccountExpirationDate(u *models.User) time.Time {
	return truncateToDay(lastActivity(u)).AddDate(0, 0, accountLifetimeDays)
}

// AccountDeletionDue reports whether the inactivity limit is reached.
func AccountDeletionDue(u *models.User, today time.Time) bool {
	if u.IsStaff {
		return false
	}
	return daysBetween(lastActivity(u), today) >= accountLifetimeDays
}

// PasswordWarningDue reports whether the password reaches its warning day.
// CAS accounts have no local password and never match.
func PasswordWarningDue(u *models.User, today time.Time, warnDays int) bool {
	if u.IsCas || u.PasswordLastChangeDate == nil {
		return false
	}
	return daysBetween(*u.PasswordLastChangeDate, today) == passwordLifetimeDays-warnDays
}

// PasswordRotationDue reports whether the password exceeded its lifetime.
func PasswordRotationDue(u *models.User, today time.Time) bool {
	if u.IsCas || u.PasswordLastChangeDate == nil {
		return false
	}
	return daysBetween(*u.PasswordLastChangeDate, today) >= passwordLifetimeDays
}

// CharterWarningDue reports whether a validated charter reaches its warning
// day, ten days before expiry.
func CharterWarningDue(a *models.Association, today time.Time) bool {
	if a.CharterStatus != models.CharterValidated || a.CharterDate == nil {
		return false
	}
	return daysBetween(*a.CharterDate, today) == charterWarningDays
}

// CharterExpirationDue reports whether a validated charter passed its
// one-year lifetime.
func CharterExpirationDue(a *models.Association, today time.Time) bool {
	if a.CharterStatus != models.CharterValidated || a.CharterDate == nil {
		return false
	}
	return daysBetween(*a.CharterDate, today) >= charterLifetimeDays
}

// CharterExpirationDate returns the day the charter lapses.
func CharterExpirationDate(a *models.Association) time.Time {
	return truncateToDay(*a.CharterDate).AddDate(0, 0, charterLifetimeDays)
}

// UploadExpirationDate resolves the expiry day of a rolling-expiration
// upload. Returns nil for fixed-annual or non-expiring types and for
// uploads not yet validated.
func UploadExpirationDate(u *models.DocumentUpload) *time.Time {
	if u.Document == nil || u.Document.DaysBeforeExpiration == nil || u.ValidatedDate == nil {
		return nil
	}
	d := truncateToDay(*u.ValidatedDate).AddDate(0, 0, *u.Document.DaysBeforeExpiration)
	return &d
}

// UploadWarningDue reports whether a rolling-expiration upload reaches its
// warning day.
func UploadWarningDue(u *models.DocumentUpload, today time.Time, warnDays int) bool {
	exp := UploadExpirationDate(u)
	if exp == nil {
		return false
	}
	return daysBetween(today, *exp) == warnDays
}

// UploadExpirationDue reports whether a rolling-expiration upload passed
// its expiry day.
func UploadExpirationDue(u *models.DocumentUpload, today time.Time) bool {
	exp := UploadExpirationDate(u)
	if exp == nil {
		return false
	}
	return !exp.After(truncateToDay(today))
}

// MonthDay formats a date as the "MM-DD" key used by fixed-annual
// expiration rules, offset by the given number of days.
func MonthDay(t time.Time, offsetDays int) string {
	d := truncateToDay(t).AddDate(0, 0, offsetDays)
	return fmt.Sprintf("%02d-%02d", int(d.Month()), d.Day())
}

// ReviewOverdueDue reports whether a validated project ended exactly
// overdueDays ago without its review being submitted.
func ReviewOverdueDue(p *models.Project, today time.Time, overdueDays int) bool {
	if p.ProjectStatus != models.ProjectValidated {
		return false
	}
	return daysBetween(p.PlannedEndDate, today) == overdueDays
}

// GOAReminderDue reports whether the association's last ordinary general
// assembly is missing or more than a year old.
func GOAReminderDue(a *models.Association, today time.Time) bool {
	if a.LastGOADate == nil {
		return true
	}
	return a.LastGOADate.Before(truncateToDay(today).AddDate(-1, 0, 0))
}

// GOARunDay restricts the reminder to a monthly cadence.
func GOARunDay(today time.Time) bool {
	return today.Day() == 1
}
