package models

// ProjectStatus is the project's position in the funding workflow
type ProjectStatus string

const (
	ProjectDraft            ProjectStatus = "PROJECT_DRAFT"
	ProjectProcessing       ProjectStatus = "PROJECT_PROCESSING"
	ProjectRejected         ProjectStatus = "PROJECT_REJECTED"
	ProjectValidated        ProjectStatus = "PROJECT_VALIDATED"
	ProjectReviewDraft      ProjectStatus = "PROJECT_REVIEW_DRAFT"
	ProjectReviewProcessing ProjectStatus = "PROJECT_REVIEW_PROCESSING"
	ProjectReviewRejected   ProjectStatus = "PROJECT_REVIEW_REJECTED"
	ProjectReviewValidated  ProjectStatus = "PROJECT_REVIEW_VALIDATED"
	ProjectReviewCancelled  ProjectStatus = "PROJECT_REVIEW_CANCELLED"
)

// StatusActor identifies who is driving a status transition
type StatusActor string

const (
	ActorStudent StatusActor = "STUDENT"
	ActorManager StatusActor = "MANAGER"
)

// statusTransitions is the transition table: (current status, actor) lists
// the statuses the actor may move the project to. Status must never be
// assigned outside this table.
var statusTransitions = map[ProjectStatus]map[StatusActor][]ProjectStatus{
	ProjectDraft: {
		ActorStudent: {ProjectProcessing},
		ActorManager: {ProjectReviewCancelled},
	},
	ProjectProcessing: {
		ActorManager: {ProjectValidated, ProjectRejected, ProjectReviewCancelled},
	},
	ProjectValidated: {
		ActorStudent: {ProjectReviewDraft},
		ActorManager: {ProjectReviewCancelled},
	},
	ProjectReviewDraft: {
		ActorStudent: {ProjectReviewProcessing},
		ActorManager: {ProjectReviewCancelled},
	},
	ProjectReviewProcessing: {
		ActorManager: {ProjectReviewValidated, ProjectReviewRejected, ProjectReviewCancelled},
	},
}

// CanTransitionStatus reports whether actor may move a project from one
// status to another.
func CanTransitionStatus(from ProjectStatus, actor StatusActor, to ProjectStatus) bool {
	for _, allowed := range statusTransitions[from][actor] {
		if allowed == to {
			return true
		}
	}
	return false
}

// archivedStatuses are the terminal states plus the cancelled side-state.
var archivedStatuses = map[ProjectStatus]bool{
	ProjectRejected:        true,
	ProjectReviewValidated: true,
	ProjectReviewRejected:  true,
	ProjectReviewCancelled: true,
}

// ArchivedStatusList returns the archived set in a stable order for query
// filters.
func ArchivedStatusList() []ProjectStatus {
	return []ProjectStatus{ProjectRejected, ProjectReviewValidated, ProjectReviewRejected, ProjectReviewCancelled}
}

// IsArchived reports whether the status belongs to the archived set.
func (s ProjectStatus) IsArchived() bool {
	return archivedStatuses[s]
}

// IsUnfinished reports whether the status belongs to the unfinished set.
func (s ProjectStatus) IsUnfinished() bool {
	return !archivedStatuses[s]
}

// IsStudentEditable reports whether students may still edit bearer fields.
func (s ProjectStatus) IsStudentEditable() bool {
	return s == ProjectDraft || s == ProjectReviewDraft
}

// IsReviewTerminal reports whether review fields became read-only.
func (s ProjectStatus) IsReviewTerminal() bool {
	return s == ProjectReviewValidated || s == ProjectReviewRejected || s == ProjectReviewCancelled
}
