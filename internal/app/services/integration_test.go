//go:build integration

package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/auth"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/migrations"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/repositories"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/db"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/email"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/testutil/containers"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/textfold"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/seed"
)

// testEnv wires the service layer onto a migrated, seeded database.
type testEnv struct {
	pool            *pgxpool.Pool
	associations    AssociationService
	commissions     CommissionService
	projects        ProjectService
	activityFieldID int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pc := containers.NewPostgresContainer(t)
	ctx := context.Background()

	if err := migrations.NewMigrator(pc.Pool).MigrateFromDirectory("../../../migrations"); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	if err := seed.CreateDefaultData(ctx, pc.Pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to seed default data: %v", err)
	}

	database := &db.PostgresDB{Pool: pc.Pool}
	repos := repositories.NewRepositories(pc.Pool)
	history := NewHistoryService(repos.HistoryRepository, zerolog.Nop())
	notifier := email.NewSMTPNotifier(email.SMTPConfig{}, zerolog.Nop())

	env := &testEnv{
		pool: pc.Pool,
		associations: NewAssociationService(database, repos.AssociationRepository,
			repos.AssociationUserRepository, repos.InstitutionRepository,
			repos.UserRepository, repos.DocumentRepository, repos.DocumentUploadRepository,
			history, notifier, zerolog.Nop()),
		commissions: NewCommissionService(database, repos.CommissionRepository,
			repos.FundRepository, repos.ProjectRepository, zerolog.Nop()),
		projects: NewProjectService(database, repos.ProjectRepository,
			repos.ProjectCommissionFundRepository, repos.CommissionRepository,
			repos.AssociationRepository, repos.DocumentRepository,
			repos.DocumentUploadRepository, history, notifier, zerolog.Nop()),
	}

	err := pc.Pool.QueryRow(ctx, `SELECT id FROM activity_fields ORDER BY id LIMIT 1`).Scan(&env.activityFieldID)
	require.NoError(t, err)

	return env
}

func (e *testEnv) exec(t *testing.T, sql string, args ...any) {
	t.Helper()
	_, err := e.pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

func (e *testEnv) insertReturningID(t *testing.T, sql string, args ...any) int64 {
	t.Helper()
	var id int64
	err := e.pool.QueryRow(context.Background(), sql, args...).Scan(&id)
	require.NoError(t, err)
	return id
}

func (e *testEnv) createInstitution(t *testing.T, name string) int64 {
	return e.insertReturningID(t,
		`INSERT INTO institutions (name) VALUES ($1) RETURNING id`, name)
}

func (e *testEnv) createFund(t *testing.T, name string, institutionID int64) int64 {
	return e.insertReturningID(t,
		`INSERT INTO funds (name, institution_id) VALUES ($1, $2) RETURNING id`,
		name, institutionID)
}

func (e *testEnv) createUser(t *testing.T, address string, validated bool) int64 {
	return e.insertReturningID(t,
		`INSERT INTO users (email, is_validated_by_admin) VALUES ($1, $2) RETURNING id`,
		address, validated)
}

func (e *testEnv) linkUserToGroup(t *testing.T, userID int64, groupName string) {
	e.exec(t, `INSERT INTO group_institution_fund_users (user_id, group_id)
		SELECT $1, id FROM groups WHERE name = $2`, userID, groupName)
}

func (e *testEnv) createAssociation(t *testing.T, name string, institutionID int64) int64 {
	return e.insertReturningID(t,
		`INSERT INTO associations (name, name_folded, institution_id, activity_field_id)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		name, textfold.Fold(name), institutionID, e.activityFieldID)
}

func (e *testEnv) createMembership(t *testing.T, userID, associationID int64, president bool) int64 {
	return e.insertReturningID(t,
		`INSERT INTO association_users (user_id, association_id, is_president, is_validated_by_admin)
		VALUES ($1, $2, $3, TRUE) RETURNING id`,
		userID, associationID, president)
}

func (e *testEnv) createCommission(t *testing.T, name string, deadline, session time.Time) int64 {
	return e.insertReturningID(t,
		`INSERT INTO commissions (name, name_folded, submission_deadline, session_date)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		name, textfold.Fold(name), deadline, session)
}

func (e *testEnv) createCommissionFund(t *testing.T, commissionID, fundID int64) int64 {
	return e.insertReturningID(t,
		`INSERT INTO commission_funds (commission_id, fund_id) VALUES ($1, $2) RETURNING id`,
		commissionID, fundID)
}

func (e *testEnv) createUserProject(t *testing.T, name string, userID int64, status models.ProjectStatus) int64 {
	return e.insertReturningID(t,
		`INSERT INTO projects (name, user_id, planned_start_date, planned_end_date, project_status)
		VALUES ($1, $2, NOW() + INTERVAL '10 days', NOW() + INTERVAL '12 days', $3) RETURNING id`,
		name, userID, string(status))
}

func (e *testEnv) createSubmission(t *testing.T, projectID, commissionFundID int64) int64 {
	return e.insertReturningID(t,
		`INSERT INTO project_commission_funds (project_id, commission_fund_id, amount_asked)
		VALUES ($1, $2, 500) RETURNING id`,
		projectID, commissionFundID)
}

func managerPrincipal(userID, institutionID int64) *auth.Principal {
	return &auth.Principal{
		UserID:                userID,
		IsStaff:               true,
		IsValidated:           true,
		ManagedInstitutionIDs: []int64{institutionID},
	}
}

func intPtr(v int) *int     { return &v }
func i64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool  { return &v }

func TestIntegrationMemberCeiling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instID := env.createInstitution(t, "Université de Test")
	assocID := env.createAssociation(t, "Cercle Alpin", instID)
	for i := 0; i < 3; i++ {
		uid := env.createUser(t, fmt.Sprintf("member%d@etu.example.fr", i), true)
		env.createMembership(t, uid, assocID, false)
	}
	managerID := env.createUser(t, "manager@example.fr", true)
	manager := managerPrincipal(managerID, instID)

	// The ceiling cannot drop below the sitting roster.
	_, err := env.associations.Update(ctx, manager, assocID,
		&dto.UpdateAssociationRequest{AmountMembersAllowed: intPtr(2)})
	assert.ErrorIs(t, err, apperrors.ErrInvariant)

	resp, err := env.associations.Update(ctx, manager, assocID,
		&dto.UpdateAssociationRequest{AmountMembersAllowed: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, *resp.AmountMembersAllowed)
}

func TestIntegrationCharterDecisionSiteFlag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instID := env.createInstitution(t, "Université de Test")
	managerID := env.createUser(t, "manager@example.fr", true)
	manager := managerPrincipal(managerID, instID)

	validatedID := env.createAssociation(t, "Les Grimpeurs", instID)
	env.exec(t, `UPDATE associations SET charter_status = 'CHARTER_PROCESSING' WHERE id = $1`, validatedID)

	resp, err := env.associations.UpdateCharterStatus(ctx, manager, validatedID, models.CharterValidated)
	require.NoError(t, err)
	assert.True(t, resp.IsSite)
	assert.NotNil(t, resp.CharterDate)

	// Rejection drops the site flag and retracts the public directory entry.
	rejectedID := env.createAssociation(t, "Les Rameurs", instID)
	env.exec(t, `UPDATE associations
		SET charter_status = 'CHARTER_PROCESSING', is_site = TRUE, is_public = TRUE
		WHERE id = $1`, rejectedID)

	resp, err = env.associations.UpdateCharterStatus(ctx, manager, rejectedID, models.CharterRejected)
	require.NoError(t, err)
	assert.False(t, resp.IsSite)
	assert.False(t, resp.IsPublic)
}

func TestIntegrationReviewGateHeldSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instID := env.createInstitution(t, "Université de Test")
	fundID := env.createFund(t, "FSDIE", instID)
	ownerID := env.createUser(t, "porteur@etu.example.fr", true)
	owner := &auth.Principal{UserID: ownerID, IsValidated: true}

	// Session already held, decision never recorded: the review opens anyway.
	heldID := env.createCommission(t, "Commission Automne",
		time.Now().AddDate(0, 0, -30), time.Now().AddDate(0, 0, -10))
	heldCfID := env.createCommissionFund(t, heldID, fundID)
	projectID := env.createUserProject(t, "Festival du film", ownerID, models.ProjectValidated)
	env.createSubmission(t, projectID, heldCfID)

	resp, err := env.projects.UpdateStatus(ctx, owner, projectID, models.ProjectReviewDraft)
	require.NoError(t, err)
	assert.Equal(t, string(models.ProjectReviewDraft), resp.ProjectStatus)

	// A pending decision on a future session still blocks the review.
	pendingID := env.createCommission(t, "Commission Hiver",
		time.Now().AddDate(0, 0, 10), time.Now().AddDate(0, 0, 20))
	pendingCfID := env.createCommissionFund(t, pendingID, fundID)
	blockedID := env.createUserProject(t, "Tournoi d'échecs", ownerID, models.ProjectValidated)
	env.createSubmission(t, blockedID, pendingCfID)

	_, err = env.projects.UpdateStatus(ctx, owner, blockedID, models.ProjectReviewDraft)
	assert.ErrorIs(t, err, apperrors.ErrReviewCommissionPending)
}

func TestIntegrationSubmissionDeadlineGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instID := env.createInstitution(t, "Université de Test")
	fundID := env.createFund(t, "FSDIE", instID)
	ownerID := env.createUser(t, "porteur@etu.example.fr", true)
	owner := &auth.Principal{UserID: ownerID, IsValidated: true}

	closedID := env.createCommission(t, "Commission Passée",
		time.Now().AddDate(0, 0, -5), time.Now().AddDate(0, 0, 5))
	closedCfID := env.createCommissionFund(t, closedID, fundID)
	projectID := env.createUserProject(t, "Gala de fin d'année", ownerID, models.ProjectDraft)
	closedPcfID := env.createSubmission(t, projectID, closedCfID)

	_, err := env.projects.UpdateSubmission(ctx, owner, closedPcfID,
		&dto.UpdateProjectCommissionFundRequest{AmountAsked: i64Ptr(800)})
	assert.ErrorIs(t, err, apperrors.ErrDeadlinePassed)
	assert.ErrorIs(t, env.projects.DeleteSubmission(ctx, owner, closedPcfID), apperrors.ErrDeadlinePassed)

	openID := env.createCommission(t, "Commission Ouverte",
		time.Now().AddDate(0, 0, 10), time.Now().AddDate(0, 0, 20))
	openCfID := env.createCommissionFund(t, openID, fundID)
	openPcfID := env.createSubmission(t, projectID, openCfID)

	resp, err := env.projects.UpdateSubmission(ctx, owner, openPcfID,
		&dto.UpdateProjectCommissionFundRequest{AmountAsked: i64Ptr(800)})
	require.NoError(t, err)
	assert.Equal(t, int64(800), resp.AmountAsked)
	assert.NoError(t, env.projects.DeleteSubmission(ctx, owner, openPcfID))
}

func TestIntegrationCommissionNameFolding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instID := env.createInstitution(t, "Université de Test")
	fundID := env.createFund(t, "FSDIE", instID)
	staff := &auth.Principal{UserID: env.createUser(t, "staff@example.fr", true), IsStaff: true}

	req := &dto.CreateCommissionRequest{
		Name:               "Commission Printemps",
		SubmissionDeadline: time.Now().AddDate(0, 0, 10),
		SessionDate:        time.Now().AddDate(0, 0, 20),
		FundIDs:            []int64{fundID},
	}
	_, err := env.commissions.Create(ctx, staff, req)
	require.NoError(t, err)

	// Case and diacritics fold to the same name.
	req.Name = "commission PRINTEMPS"
	_, err = env.commissions.Create(ctx, staff, req)
	assert.ErrorIs(t, err, apperrors.ErrCommissionNameTaken)
}

func TestIntegrationCommissionDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instID := env.createInstitution(t, "Université de Test")
	fundID := env.createFund(t, "FSDIE", instID)
	ownerID := env.createUser(t, "porteur@etu.example.fr", true)
	staff := &auth.Principal{UserID: env.createUser(t, "staff@example.fr", true), IsStaff: true}

	heldID := env.createCommission(t, "Commission Tenue",
		time.Now().AddDate(0, 0, -20), time.Now().AddDate(0, 0, -10))
	assert.ErrorIs(t, env.commissions.Delete(ctx, staff, heldID), apperrors.ErrCommissionHeld)

	// A finished project pins its commission through the decision record.
	pinnedID := env.createCommission(t, "Commission Épinglée",
		time.Now().AddDate(0, 0, 10), time.Now().AddDate(0, 0, 20))
	pinnedCfID := env.createCommissionFund(t, pinnedID, fundID)
	finishedID := env.createUserProject(t, "Concert caritatif", ownerID, models.ProjectReviewValidated)
	env.createSubmission(t, finishedID, pinnedCfID)
	assert.ErrorIs(t, env.commissions.Delete(ctx, staff, pinnedID), apperrors.ErrCommissionInUse)

	// Submissions of projects still in flight go with the commission.
	freeID := env.createCommission(t, "Commission Libre",
		time.Now().AddDate(0, 0, 10), time.Now().AddDate(0, 0, 20))
	freeCfID := env.createCommissionFund(t, freeID, fundID)
	draftID := env.createUserProject(t, "Atelier théâtre", ownerID, models.ProjectDraft)
	pcfID := env.createSubmission(t, draftID, freeCfID)

	require.NoError(t, env.commissions.Delete(ctx, staff, freeID))
	var remaining int
	err := env.pool.QueryRow(ctx, `SELECT COUNT(*) FROM project_commission_funds WHERE id = $1`, pcfID).Scan(&remaining)
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestIntegrationMembershipEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instID := env.createInstitution(t, "Université de Test")
	assocID := env.createAssociation(t, "Cercle Alpin", instID)
	managerID := env.createUser(t, "manager@example.fr", true)
	manager := managerPrincipal(managerID, instID)

	// No association-capable group, no membership.
	outsiderID := env.createUser(t, "outsider@etu.example.fr", true)
	_, err := env.associations.AddMember(ctx, manager,
		&dto.CreateAssociationUserRequest{UserID: outsiderID, AssociationID: assocID})
	assert.ErrorIs(t, err, apperrors.ErrGroupNoAssociations)

	// A manager enrolling a validated account validates the membership too.
	validatedID := env.createUser(t, "etudiant@etu.example.fr", true)
	env.linkUserToGroup(t, validatedID, "STUDENT_INSTITUTION")
	resp, err := env.associations.AddMember(ctx, manager,
		&dto.CreateAssociationUserRequest{UserID: validatedID, AssociationID: assocID})
	require.NoError(t, err)
	assert.True(t, resp.IsValidatedByAdmin)

	// Self-enrollment joins as a plain, unvalidated member.
	selfID := env.createUser(t, "candidat@etu.example.fr", true)
	env.linkUserToGroup(t, selfID, "STUDENT_INSTITUTION")
	self := &auth.Principal{UserID: selfID, IsValidated: true}

	_, err = env.associations.AddMember(ctx, self,
		&dto.CreateAssociationUserRequest{UserID: selfID, AssociationID: assocID, IsPresident: true})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	resp, err = env.associations.AddMember(ctx, self,
		&dto.CreateAssociationUserRequest{UserID: selfID, AssociationID: assocID})
	require.NoError(t, err)
	assert.False(t, resp.IsPresident)
	assert.False(t, resp.IsValidatedByAdmin)
}

func TestIntegrationPresidencyTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	instID := env.createInstitution(t, "Université de Test")
	assocID := env.createAssociation(t, "Cercle Alpin", instID)
	managerID := env.createUser(t, "manager@example.fr", true)
	manager := managerPrincipal(managerID, instID)

	sittingUserID := env.createUser(t, "president@etu.example.fr", true)
	sittingID := env.createMembership(t, sittingUserID, assocID, true)
	successorUserID := env.createUser(t, "tresorier@etu.example.fr", true)
	successorID := env.createMembership(t, successorUserID, assocID, false)
	env.exec(t, `UPDATE association_users SET is_treasurer = TRUE WHERE id = $1`, successorID)

	resp, err := env.associations.UpdateMember(ctx, manager, successorID,
		&dto.UpdateAssociationUserRequest{IsPresident: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, resp.IsPresident)
	assert.False(t, resp.IsTreasurer)

	// The outgoing president lost the role in the same transaction.
	var stillPresident bool
	err = env.pool.QueryRow(ctx, `SELECT is_president FROM association_users WHERE id = $1`, sittingID).Scan(&stillPresident)
	require.NoError(t, err)
	assert.False(t, stillPresident)
}
