package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/repositories"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/services"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/config"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/db"
	pkgauth "github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/auth"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/email"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/filestorage"
)

const dateLayout = "2006-01-02"

// Runner executes the scheduled maintenance jobs. Each job works on a
// snapshot, is idempotent within a day and logs-and-continues on row-level
// failures so one bad row never blocks the rest of the batch.
type Runner struct {
	database       *db.PostgresDB
	repos          *repositories.Repositories
	historyService services.HistoryService
	notifier       email.Notifier
	publicStorage  filestorage.Storage
	privateStorage filestorage.Storage
	cfg            *config.Config
	logger         zerolog.Logger
}

// NewRunner creates a job runner.
func NewRunner(
	database *db.PostgresDB,
	repos *repositories.Repositories,
	historyService services.HistoryService,
	notifier email.Notifier,
	publicStorage filestorage.Storage,
	privateStorage filestorage.Storage,
	cfg *config.Config,
	logger zerolog.Logger,
) *Runner {
	return &Runner{
		database:       database,
		repos:          repos,
		historyService: historyService,
		notifier:       notifier,
		publicStorage:  publicStorage,
		privateStorage: privateStorage,
		cfg:            cfg,
		logger:         logger.With().Str("component", "jobs").Logger(),
	}
}

// Job names accepted by Run.
const (
	JobAccountWarning    = "account-warning"
	JobAccountDeletion   = "account-deletion"
	JobPasswordWarning   = "password-warning"
	JobPasswordRotation  = "password-rotation"
	JobCharterWarning    = "charter-warning"
	JobCharterExpiration = "charter-expiration"
	JobDocumentWarning   = "document-warning"
	JobDocumentDeletion  = "document-deletion"
	JobCommissionCleanup = "commission-cleanup"
	JobProjectArchival   = "project-archival"
	JobReviewOverdue     = "review-overdue"
	JobGOAReminder       = "goa-reminder"
	JobHistoryPurge      = "history-purge"
)

// AllJobs lists every job in daily execution order.
var AllJobs = []string{
	JobAccountWarning,
	JobAccountDeletion,
	JobPasswordWarning,
	JobPasswordRotation,
	JobCharterWarning,
	JobCharterExpiration,
	JobDocumentWarning,
	JobDocumentDeletion,
	JobCommissionCleanup,
	JobProjectArchival,
	JobReviewOverdue,
	JobGOAReminder,
	JobHistoryPurge,
}

// Run executes a single job by name.
func (r *Runner) Run(ctx context.Context, name string, today time.Time) error {
	switch name {
	case JobAccountWarning:
		return r.runAccountWarning(ctx, today)
	case JobAccountDeletion:
		return r.runAccountDeletion(ctx, today)
	case JobPasswordWarning:
		return r.runPasswordWarning(ctx, today)
	case JobPasswordRotation:
		return r.runPasswordRotation(ctx, today)
	case JobCharterWarning:
		return r.runCharterWarning(ctx, today)
	case JobCharterExpiration:
		return r.runCharterExpiration(ctx, today)
	case JobDocumentWarning:
		return r.runDocumentWarning(ctx, today)
	case JobDocumentDeletion:
		return r.runDocumentDeletion(ctx, today)
	case JobCommissionCleanup:
		return r.runCommissionCleanup(ctx, today)
	case JobProjectArchival:
		return r.runProjectArchival(ctx, today)
	case JobReviewOverdue:
		return r.runReviewOverdue(ctx, today)
	case JobGOAReminder:
		return r.runGOAReminder(ctx, today)
	case JobHistoryPurge:
		return r.runHistoryPurge(ctx, today)
	default:
		return fmt.Errorf("unknown job %q", name)
	}
}

// RunAll executes the daily batch sequentially. The GOA reminder only fires
// on its monthly cadence. Job failures are logged and do not stop the batch.
func (r *Runner) RunAll(ctx context.Context, today time.Time) {
	for _, name := range AllJobs {
		if name == JobGOAReminder && !GOARunDay(today) {
			continue
		}
		if err := r.Run(ctx, name, today); err != nil {
			r.logger.Error().Err(err).Str("job", name).Msg("Job failed")
		}
	}
}

// settingDays reads an integer day count from the settings table, falling
// back to the configured value when the setting is absent or malformed.
func (r *Runner) settingDays(ctx context.Context, name string, fallback int) int {
	setting, err := r.repos.SettingRepository.GetByName(ctx, name)
	if err != nil {
		return fallback
	}

	var params struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(setting.Parameters, &params); err != nil || params.Value <= 0 {
		r.logger.Warn().Str("setting", name).Msg("Unusable setting value, using configured default")
		return fallback
	}
	return params.Value
}

func (r *Runner) runAccountWarning(ctx context.Context, today time.Time) error {
	warnDays := r.settingDays(ctx, models.SettingAccountExpirationWarn, r.cfg.Cron.DaysBeforeAccountExpirationWarning)

	cutoff := truncateToDay(today).AddDate(0, 0, -(accountLifetimeDays - warnDays - 1))
	users, err := r.repos.UserRepository.GetInactiveSince(ctx, cutoff)
	if err != nil {
		return err
	}

	sent := 0
	for _, u := range users {
		if !AccountWarningDue(u, today, warnDays) {
			continue
		}
		err := r.notifier.Send(email.TemplateAccountExpirationWarning, u.Email, map[string]string{
			"first_name":      u.FirstName,
			"last_name":       u.LastName,
			"expiration_date": AccountExpirationDate(u).Format(dateLayout),
		})
		if err != nil {
			r.logger.Error().Err(err).Int64("userId", u.ID).Msg("Account warning mail failed")
			continue
		}
		sent++
	}
	r.logger.Info().Int("sent", sent).Msg("Account expiration warnings processed")
	return nil
}

func (r *Runner) runAccountDeletion(ctx context.Context, today time.Time) error {
	cutoff := truncateToDay(today).AddDate(0, 0, -accountLifetimeDays+1)
	users, err := r.repos.UserRepository.GetInactiveSince(ctx, cutoff)
	if err != nil {
		return err
	}

	deleted := 0
	for _, u := range users {
		if !AccountDeletionDue(u, today) {
			continue
		}
		if err := r.notifier.Send(email.TemplateAccountDeleted, u.Email, map[string]string{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
		}); err != nil {
			r.logger.Error().Err(err).Int64("userId", u.ID).Msg("Account deletion mail failed")
		}
		if err := r.repos.UserRepository.Delete(ctx, u.ID); err != nil {
			r.logger.Error().Err(err).Int64("userId", u.ID).Msg("Account deletion failed")
			continue
		}
		deleted++
	}
	r.logger.Info().Int("deleted", deleted).Msg("Inactive accounts processed")
	return nil
}

func (r *Runner) runPasswordWarning(ctx context.Context, today time.Time) error {
	warnDays := r.settingDays(ctx, models.SettingPasswordExpirationWarn, r.cfg.Cron.DaysBeforePasswordExpirationWarning)

	cutoff := truncateToDay(today).AddDate(0, 0, -(passwordLifetimeDays - warnDays - 1))
	users, err := r.repos.UserRepository.GetPasswordChangedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	resetURL := strings.TrimRight(r.cfg.Server.FrontendURL, "/") + "/password-reset"
	sent := 0
	for _, u := range users {
		if !PasswordWarningDue(u, today, warnDays) {
			continue
		}
		err := r.notifier.Send(email.TemplatePasswordExpirationWarning, u.Email, map[string]string{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"reset_url":  resetURL,
		})
		if err != nil {
			r.logger.Error().Err(err).Int64("userId", u.ID).Msg("Password warning mail failed")
			continue
		}
		sent++
	}
	r.logger.Info().Int("sent", sent).Msg("Password expiration warnings processed")
	return nil
}

func (r *Runner) runPasswordRotation(ctx context.Context, today time.Time) error {
	cutoff := truncateToDay(today).AddDate(0, 0, -passwordLifetimeDays+1)
	users, err := r.repos.UserRepository.GetPasswordChangedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	rotated := 0
	for _, u := range users {
		if !PasswordRotationDue(u, today) {
			continue
		}

		newPassword, err := pkgauth.GenerateRandomPassword(16)
		if err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}
		hash, err := pkgauth.HashPassword(newPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		now := time.Now()
		u.PasswordHash = hash
		u.PasswordLastChangeDate = &now
		if err := r.repos.UserRepository.Update(ctx, u); err != nil {
			r.logger.Error().Err(err).Int64("userId", u.ID).Msg("Password rotation failed")
			continue
		}

		if err := r.notifier.Send(email.TemplatePasswordRotated, u.Email, map[string]string{
			"first_name":   u.FirstName,
			"last_name":    u.LastName,
			"new_password": newPassword,
		}); err != nil {
			r.logger.Error().Err(err).Int64("userId", u.ID).Msg("Password rotation mail failed")
		}
		rotated++
	}
	r.logger.Info().Int("rotated", rotated).Msg("Expired passwords processed")
	return nil
}

func (r *Runner) runCharterWarning(ctx context.Context, today time.Time) error {
	associations, err := r.repos.AssociationRepository.GetByCharterStatus(ctx,
		[]models.CharterStatus{models.CharterValidated})
	if err != nil {
		return err
	}

	sent := 0
	for _, a := range associations {
		if !CharterWarningDue(a, today) {
			continue
		}
		err := r.notifier.Send(email.TemplateCharterExpirationWarning, a.Email, map[string]string{
			"association_name": a.Name,
			"expiration_date":  CharterExpirationDate(a).Format(dateLayout),
		})
		if err != nil {
			r.logger.Error().Err(err).Int64("associationId", a.ID).Msg("Charter warning mail failed")
			continue
		}
		sent++
	}
	r.logger.Info().Int("sent", sent).Msg("Charter expiration warnings processed")
	return nil
}

func (r *Runner) runCharterExpiration(ctx context.Context, today time.Time) error {
	associations, err := r.repos.AssociationRepository.GetByCharterStatus(ctx,
		[]models.CharterStatus{models.CharterValidated})
	if err != nil {
		return err
	}

	expired := 0
	for _, a := range associations {
		if !CharterExpirationDue(a, today) {
			continue
		}

		a.CharterStatus = models.CharterExpired
		a.EditionDate = time.Now()
		if err := r.repos.AssociationRepository.Update(ctx, r.database.Pool, a); err != nil {
			r.logger.Error().Err(err).Int64("associationId", a.ID).Msg("Charter expiration failed")
			continue
		}

		// ActionUserID 0 marks the scheduler as the actor.
		r.historyService.Record(ctx, r.database.Pool, &models.History{
			ActionTitle:   models.ActionAssociationCharterChanged,
			ActionUserID:  0,
			AssociationID: &a.ID,
		})

		if err := r.notifier.Send(email.TemplateCharterExpired, a.Email, map[string]string{
			"association_name": a.Name,
		}); err != nil {
			r.logger.Error().Err(err).Int64("associationId", a.ID).Msg("Charter expired mail failed")
		}
		expired++
	}
	r.logger.Info().Int("expired", expired).Msg("Expired charters processed")
	return nil
}

// expiringUploads gathers rolling and fixed-annual uploads matching the
// given warning offset.
func (r *Runner) expiringUploads(ctx context.Context, today time.Time, offsetDays int) ([]*models.DocumentUpload, error) {
	rolling, err := r.repos.DocumentUploadRepository.GetExpiredRolling(ctx, today, offsetDays)
	if err != nil {
		return nil, err
	}

	matched := []*models.DocumentUpload{}
	for _, u := range rolling {
		if offsetDays > 0 && UploadWarningDue(u, today, offsetDays) {
			matched = append(matched, u)
		}
		if offsetDays == 0 && UploadExpirationDue(u, today) {
			matched = append(matched, u)
		}
	}

	fixed, err := r.repos.DocumentUploadRepository.GetByExpirationDay(ctx, MonthDay(today, offsetDays))
	if err != nil {
		return nil, err
	}
	return append(matched, fixed...), nil
}

// ownerEmail resolves the notification address for an upload, following the
// single owner reference.
func (r *Runner) ownerEmail(ctx context.Context, u *models.DocumentUpload) (string, error) {
	switch {
	case u.UserID != nil:
		owner, err := r.repos.UserRepository.GetByID(ctx, *u.UserID)
		if err != nil {
			return "", err
		}
		return owner.Email, nil
	case u.AssociationID != nil:
		owner, err := r.repos.AssociationRepository.GetByID(ctx, *u.AssociationID)
		if err != nil {
			return "", err
		}
		return owner.Email, nil
	case u.ProjectID != nil:
		project, err := r.repos.ProjectRepository.GetByID(ctx, *u.ProjectID)
		if err != nil {
			return "", err
		}
		if project.AssociationID != nil {
			owner, err := r.repos.AssociationRepository.GetByID(ctx, *project.AssociationID)
			if err != nil {
				return "", err
			}
			return owner.Email, nil
		}
		if project.UserID != nil {
			owner, err := r.repos.UserRepository.GetByID(ctx, *project.UserID)
			if err != nil {
				return "", err
			}
			return owner.Email, nil
		}
	}
	return "", fmt.Errorf("upload %d has no owner", u.ID)
}

// storageFor routes private user documents to the encrypted store.
func (r *Runner) storageFor(u *models.DocumentUpload) filestorage.Storage {
	if u.Document != nil && u.Document.ProcessType == models.ProcessDocumentUser {
		return r.privateStorage
	}
	return r.publicStorage
}

func (r *Runner) runDocumentWarning(ctx context.Context, today time.Time) error {
	warnDays := r.settingDays(ctx, models.SettingDocumentExpirationWarn, r.cfg.Cron.DaysBeforeDocumentExpirationWarning)

	uploads, err := r.expiringUploads(ctx, today, warnDays)
	if err != nil {
		return err
	}

	expirationDate := truncateToDay(today).AddDate(0, 0, warnDays).Format(dateLayout)
	sent := 0
	for _, u := range uploads {
		recipient, err := r.ownerEmail(ctx, u)
		if err != nil {
			r.logger.Error().Err(err).Int64("uploadId", u.ID).Msg("Upload owner lookup failed")
			continue
		}
		err = r.notifier.Send(email.TemplateDocumentExpirationWarning, recipient, map[string]string{
			"document_name":   u.Document.Name,
			"expiration_date": expirationDate,
		})
		if err != nil {
			r.logger.Error().Err(err).Int64("uploadId", u.ID).Msg("Document warning mail failed")
			continue
		}
		sent++
	}
	r.logger.Info().Int("sent", sent).Msg("Document expiration warnings processed")
	return nil
}

func (r *Runner) runDocumentDeletion(ctx context.Context, today time.Time) error {
	uploads, err := r.expiringUploads(ctx, today, 0)
	if err != nil {
		return err
	}

	deleted := 0
	for _, u := range uploads {
		if recipient, err := r.ownerEmail(ctx, u); err == nil {
			if err := r.notifier.Send(email.TemplateDocumentExpired, recipient, map[string]string{
				"document_name": u.Document.Name,
			}); err != nil {
				r.logger.Error().Err(err).Int64("uploadId", u.ID).Msg("Document expired mail failed")
			}
		}

		if err := r.repos.DocumentUploadRepository.Delete(ctx, u.ID); err != nil {
			r.logger.Error().Err(err).Int64("uploadId", u.ID).Msg("Expired upload deletion failed")
			continue
		}
		if err := r.storageFor(u).Delete(ctx, u.Path); err != nil {
			r.logger.Error().Err(err).Str("path", u.Path).Msg("Expired upload file removal failed")
		}
		deleted++
	}
	r.logger.Info().Int("deleted", deleted).Msg("Expired uploads processed")
	return nil
}

func (r *Runner) runCommissionCleanup(ctx context.Context, today time.Time) error {
	n, err := r.repos.ProjectCommissionFundRepository.DeleteDraftPastDeadline(ctx, truncateToDay(today))
	if err != nil {
		return err
	}
	r.logger.Info().Int64("deleted", n).Msg("Stale draft submissions processed")
	return nil
}

func (r *Runner) runProjectArchival(ctx context.Context, today time.Time) error {
	years := r.settingDays(ctx, models.SettingProjectDeletionYears, r.cfg.Cron.AmountYearsBeforeProjectDeletion)

	projects, err := r.repos.ProjectRepository.GetArchivedEditedBefore(ctx, truncateToDay(today).AddDate(-years, 0, 0))
	if err != nil {
		return err
	}

	deleted := 0
	for _, p := range projects {
		uploads, err := r.repos.DocumentUploadRepository.GetAll(ctx, repositories.DocumentUploadFilter{ProjectID: &p.ID})
		if err != nil {
			r.logger.Error().Err(err).Int64("projectId", p.ID).Msg("Project upload listing failed")
			continue
		}

		if err := r.repos.ProjectRepository.Delete(ctx, r.database.Pool, p.ID); err != nil {
			r.logger.Error().Err(err).Int64("projectId", p.ID).Msg("Project archival deletion failed")
			continue
		}

		// Upload rows cascade with the project, blob files do not.
		for _, u := range uploads {
			if err := r.storageFor(u).Delete(ctx, u.Path); err != nil {
				r.logger.Error().Err(err).Str("path", u.Path).Msg("Archived upload file removal failed")
			}
		}
		deleted++
	}
	r.logger.Info().Int("deleted", deleted).Msg("Aged-out projects processed")
	return nil
}

func (r *Runner) runReviewOverdue(ctx context.Context, today time.Time) error {
	overdueDays := r.settingDays(ctx, models.SettingReviewOverdueDays, r.cfg.Cron.DaysBeforeReviewOverdueNotification)

	projects, err := r.repos.ProjectRepository.GetValidatedEndedBefore(ctx,
		truncateToDay(today).AddDate(0, 0, -overdueDays+1))
	if err != nil {
		return err
	}

	sent := 0
	for _, p := range projects {
		if !ReviewOverdueDue(p, today, overdueDays) {
			continue
		}

		recipient := ""
		if p.AssociationID != nil {
			a, err := r.repos.AssociationRepository.GetByID(ctx, *p.AssociationID)
			if err != nil {
				r.logger.Error().Err(err).Int64("projectId", p.ID).Msg("Project owner lookup failed")
				continue
			}
			recipient = a.Email
		} else if p.UserID != nil {
			u, err := r.repos.UserRepository.GetByID(ctx, *p.UserID)
			if err != nil {
				r.logger.Error().Err(err).Int64("projectId", p.ID).Msg("Project owner lookup failed")
				continue
			}
			recipient = u.Email
		}

		err := r.notifier.Send(email.TemplateReviewOverdue, recipient, map[string]string{
			"project_name":     p.Name,
			"planned_end_date": p.PlannedEndDate.Format(dateLayout),
		})
		if err != nil {
			r.logger.Error().Err(err).Int64("projectId", p.ID).Msg("Review overdue mail failed")
			continue
		}
		sent++
	}
	r.logger.Info().Int("sent", sent).Msg("Overdue reviews processed")
	return nil
}

func (r *Runner) runGOAReminder(ctx context.Context, today time.Time) error {
	associations, err := r.repos.AssociationRepository.GetExpiredGOA(ctx, truncateToDay(today).AddDate(-1, 0, 0))
	if err != nil {
		return err
	}

	byInstitution := map[int64][]string{}
	for _, a := range associations {
		if !GOAReminderDue(a, today) {
			continue
		}
		byInstitution[a.InstitutionID] = append(byInstitution[a.InstitutionID], a.Name)
	}

	sent := 0
	for institutionID, names := range byInstitution {
		managers, err := r.repos.UserRepository.GetManagersByInstitution(ctx, institutionID)
		if err != nil {
			r.logger.Error().Err(err).Int64("institutionId", institutionID).Msg("Manager lookup failed")
			continue
		}
		for _, m := range managers {
			err := r.notifier.Send(email.TemplateGOAReminder, m.Email, map[string]string{
				"association_names": strings.Join(names, ", "),
			})
			if err != nil {
				r.logger.Error().Err(err).Int64("userId", m.ID).Msg("GOA reminder mail failed")
				continue
			}
			sent++
		}
	}
	r.logger.Info().Int("sent", sent).Msg("GOA reminders processed")
	return nil
}

func (r *Runner) runHistoryPurge(ctx context.Context, today time.Time) error {
	retentionDays := r.settingDays(ctx, models.SettingHistoryRetentionDays, r.cfg.Cron.DaysBeforeHistoryExpiration)

	n, err := r.repos.HistoryRepository.PurgeBefore(ctx, truncateToDay(today).AddDate(0, 0, -retentionDays))
	if err != nil {
		return err
	}
	r.logger.Info().Int64("purged", n).Msg("History retention processed")
	return nil
}
