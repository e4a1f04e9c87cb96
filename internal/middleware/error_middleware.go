package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
)

// HandleAPIError maps service errors onto HTTP responses. Invariant
// violations and malformed requests answer 400, missing authority 403,
// unknown resources 404, uniqueness clashes 409, refused file types 415.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	message := err.Error()
	if errors.As(err, &custom) && custom.Message != "" {
		message = custom.Message
	}

	switch {
	// 401
	case errors.Is(err, apperrors.ErrUnauthenticated):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")

	// 403
	case errors.Is(err, apperrors.ErrPermissionDenied),
		errors.Is(err, apperrors.ErrNotPresident),
		errors.Is(err, apperrors.ErrCannotSubmitProjects),
		errors.Is(err, apperrors.ErrValidatorFieldForbidden),
		errors.Is(err, apperrors.ErrGroupRestricted),
		errors.Is(err, apperrors.ErrSiteFundRestricted):
		respond(c, http.StatusForbidden, dto.ErrorCodeForbidden, message)

	// 404
	case errors.Is(err, apperrors.ErrResourceNotFound),
		errors.Is(err, apperrors.ErrAssociationNotFound),
		errors.Is(err, apperrors.ErrCommissionNotFound),
		errors.Is(err, apperrors.ErrProjectNotFound),
		errors.Is(err, apperrors.ErrDocumentNotFound),
		errors.Is(err, apperrors.ErrDocumentUploadNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrGroupNotFound),
		errors.Is(err, apperrors.ErrSettingNotFound):
		respond(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, message)

	// 409
	case errors.Is(err, apperrors.ErrAssociationNameTaken),
		errors.Is(err, apperrors.ErrCommissionNameTaken),
		errors.Is(err, apperrors.ErrMembershipExists),
		errors.Is(err, apperrors.ErrPresidentExists),
		errors.Is(err, apperrors.ErrCommissionFundExists),
		errors.Is(err, apperrors.ErrSubmissionExists),
		errors.Is(err, apperrors.ErrResourceAlreadyExists):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, message)
	case errors.Is(err, apperrors.ErrCommissionInUse),
		errors.Is(err, apperrors.ErrCommissionHeld),
		errors.Is(err, apperrors.ErrAssociationEnabled):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceInUse, message)
	case errors.Is(err, apperrors.ErrConflict):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, message)

	// 415
	case errors.Is(err, apperrors.ErrMimeRejected):
		respond(c, http.StatusUnsupportedMediaType, dto.ErrorCodeMimeRejected, message)

	// 400, workflow rules
	case errors.Is(err, apperrors.ErrProjectTransition),
		errors.Is(err, apperrors.ErrCharterTransition):
		respond(c, http.StatusBadRequest, dto.ErrorCodeTransitionDenied, message)
	case errors.Is(err, apperrors.ErrDeadlinePassed),
		errors.Is(err, apperrors.ErrCommissionClosed):
		respond(c, http.StatusBadRequest, dto.ErrorCodeDeadlinePassed, message)

	// 400, broken invariants
	case errors.Is(err, apperrors.ErrProjectOwnership),
		errors.Is(err, apperrors.ErrProjectNotEditable),
		errors.Is(err, apperrors.ErrProjectDates),
		errors.Is(err, apperrors.ErrMultipleCommissions),
		errors.Is(err, apperrors.ErrReviewCommissionPending),
		errors.Is(err, apperrors.ErrProjectDocsMissing),
		errors.Is(err, apperrors.ErrCharterDocsMissing),
		errors.Is(err, apperrors.ErrCommissionDates),
		errors.Is(err, apperrors.ErrCommissionPastDate),
		errors.Is(err, apperrors.ErrPublicRequiresSite),
		errors.Is(err, apperrors.ErrAssociationAtCapacity),
		errors.Is(err, apperrors.ErrCannotSelfDemote),
		errors.Is(err, apperrors.ErrDocumentOwnerBinding),
		errors.Is(err, apperrors.ErrDocumentExpirationRule),
		errors.Is(err, apperrors.ErrDocumentNotUpdatable),
		errors.Is(err, apperrors.ErrGroupIncompatible),
		errors.Is(err, apperrors.ErrGroupNoAssociations),
		errors.Is(err, apperrors.ErrInvariant):
		respond(c, http.StatusBadRequest, dto.ErrorCodeInvariantBroken, message)

	// 400, malformed input
	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrBadRequest):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, message)

	default:
		respond(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// HandleValidationError answers a gin binding failure
func HandleValidationError(c *gin.Context, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
		WithDetails(err.Error())
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

func respond(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}
