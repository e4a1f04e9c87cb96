package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CreateDefaultData inserts the catalog rows a fresh deployment needs:
// groups, activity fields, document types, project categories and runtime
// settings. Every insert is idempotent so the seed can run at each startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data...")

	if err := seedGroups(ctx, dbPool); err != nil {
		return err
	}
	if err := seedActivityFields(ctx, dbPool); err != nil {
		return err
	}
	if err := seedDocuments(ctx, dbPool); err != nil {
		return err
	}
	if err := seedProjectCategories(ctx, dbPool); err != nil {
		return err
	}
	if err := seedSettings(ctx, dbPool); err != nil {
		return err
	}

	lgr.Info().Msg("Default data ready")
	return nil
}

func seedGroups(ctx context.Context, dbPool *pgxpool.Pool) error {
	groups := []struct {
		name                                                                       string
		registrationAllowed, associationsPossible, institutionPossible, fundPossible bool
	}{
		{"MANAGER_GENERAL", false, false, true, true},
		{"MANAGER_INSTITUTION", false, false, true, false},
		{"MANAGER_MISC", false, false, false, true},
		{"STUDENT_INSTITUTION", true, true, false, false},
		{"STUDENT_MISC", true, false, false, false},
	}

	for _, g := range groups {
		_, err := dbPool.Exec(ctx, `
			INSERT INTO groups (name, registration_allowed, associations_possible, institution_id_possible, fund_id_possible)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (name) DO NOTHING`,
			g.name, g.registrationAllowed, g.associationsPossible, g.institutionPossible, g.fundPossible)
		if err != nil {
			return fmt.Errorf("failed to seed group %s: %w", g.name, err)
		}
	}
	return nil
}

func seedActivityFields(ctx context.Context, dbPool *pgxpool.Pool) error {
	fields := []string{"Culture", "Sport", "Solidarité", "Sciences et techniques", "Loisirs", "Vie étudiante"}
	for _, name := range fields {
		_, err := dbPool.Exec(ctx,
			"INSERT INTO activity_fields (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
		if err != nil {
			return fmt.Errorf("failed to seed activity field %s: %w", name, err)
		}
	}
	return nil
}

func seedDocuments(ctx context.Context, dbPool *pgxpool.Pool) error {
	pdf := []string{"application/pdf"}
	office := []string{"application/pdf", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}

	documents := []struct {
		name, acronym, processType string
		required                   bool
		daysBeforeExpiration       *int
		mimeTypes                  []string
	}{
		{"Charte d'engagement", "CHARTE", "CHARTER_ASSOCIATION", true, nil, pdf},
		{"Statuts de l'association", "STATUTS", "DOCUMENT_ASSOCIATION", false, nil, pdf},
		{"Certificat de scolarité", "SCOL", "DOCUMENT_USER", false, nil, pdf},
		{"Budget prévisionnel", "BUDGET", "DOCUMENT_PROJECT", true, nil, office},
		{"Bilan financier", "BILAN", "DOCUMENT_PROJECT_REVIEW", true, nil, office},
	}

	for _, d := range documents {
		var exists bool
		if err := dbPool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM documents WHERE name = $1)", d.name).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check document %s: %w", d.name, err)
		}
		if exists {
			continue
		}
		_, err := dbPool.Exec(ctx, `
			INSERT INTO documents (name, acronym, process_type, is_required_in_process, days_before_expiration, mime_types)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			d.name, d.acronym, d.processType, d.required, d.daysBeforeExpiration, d.mimeTypes)
		if err != nil {
			return fmt.Errorf("failed to seed document %s: %w", d.name, err)
		}
	}
	return nil
}

func seedProjectCategories(ctx context.Context, dbPool *pgxpool.Pool) error {
	categories := []string{"Culture", "Sport", "Solidarité", "Environnement", "Santé", "International", "Autre"}
	for _, name := range categories {
		_, err := dbPool.Exec(ctx,
			"INSERT INTO project_category_names (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
		if err != nil {
			return fmt.Errorf("failed to seed project category %s: %w", name, err)
		}
	}
	return nil
}

func seedSettings(ctx context.Context, dbPool *pgxpool.Pool) error {
	settings := []struct {
		name  string
		value int
	}{
		{"CRON_DAYS_BEFORE_ACCOUNT_EXPIRATION_WARNING", 30},
		{"CRON_DAYS_BEFORE_PASSWORD_EXPIRATION_WARNING", 30},
		{"CRON_DAYS_BEFORE_DOCUMENT_EXPIRATION_WARNING", 30},
		{"CRON_DAYS_BEFORE_HISTORY_EXPIRATION", 365},
		{"CRON_DAYS_BEFORE_REVIEW_OVERDUE_NOTIFICATION", 30},
		{"AMOUNT_YEARS_BEFORE_PROJECT_DELETION", 5},
	}

	for _, s := range settings {
		_, err := dbPool.Exec(ctx, `
			INSERT INTO settings (name, parameters)
			VALUES ($1, jsonb_build_object('value', $2::int))
			ON CONFLICT (name) DO NOTHING`,
			s.name, s.value)
		if err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", s.name, err)
		}
	}
	return nil
}
