package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/models/dto"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/app/services"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/middleware"
	"github.com/EsupPortail/esup-campulse-back-sub000/internal/pkg/apperrors"
)

// DocumentController handles document type and upload endpoints
type DocumentController struct {
	documentService services.DocumentService
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(documentService services.DocumentService) *DocumentController {
	return &DocumentController{documentService: documentService}
}

// GetDocuments handles GET /documents
func (c *DocumentController) GetDocuments(ctx *gin.Context) {
	var filter dto.DocumentFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.documentService.GetDocuments(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Documents retrieved successfully"))
}

// GetDocument handles GET /documents/:id
func (c *DocumentController) GetDocument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid document id"))
		return
	}

	resp, err := c.documentService.GetDocumentByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Document retrieved successfully"))
}

// CreateDocument handles POST /documents
func (c *DocumentController) CreateDocument(ctx *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.documentService.CreateDocument(ctx.Request.Context(), middleware.GetPrincipal(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(resp, "Document created successfully"))
}

// UpdateDocument handles PATCH /documents/:id
func (c *DocumentController) UpdateDocument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid document id"))
		return
	}

	var req dto.UpdateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.documentService.UpdateDocument(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Document updated successfully"))
}

// DeleteDocument handles DELETE /documents/:id
func (c *DocumentController) DeleteDocument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid document id"))
		return
	}

	if err := c.documentService.DeleteDocument(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetUploads handles GET /documents/uploads
func (c *DocumentController) GetUploads(ctx *gin.Context) {
	var filter dto.DocumentUploadFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.documentService.GetUploads(ctx.Request.Context(), middleware.GetPrincipal(ctx), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Uploads retrieved successfully"))
}

// GetUpload handles GET /documents/uploads/:id
func (c *DocumentController) GetUpload(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid upload id"))
		return
	}

	resp, err := c.documentService.GetUploadByID(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Upload retrieved successfully"))
}

// CreateUpload handles POST /documents/uploads as a multipart form
func (c *DocumentController) CreateUpload(ctx *gin.Context) {
	var req dto.CreateDocumentUploadRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("file part missing"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")

	resp, err := c.documentService.CreateUpload(ctx.Request.Context(), middleware.GetPrincipal(ctx),
		&req, fileHeader.Filename, mimeType, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(resp, "Upload created successfully"))
}

// PatchUpload handles PATCH /documents/uploads/:id
func (c *DocumentController) PatchUpload(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid upload id"))
		return
	}

	var req dto.PatchDocumentUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.documentService.PatchUpload(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(resp, "Upload updated successfully"))
}

// DeleteUpload handles DELETE /documents/uploads/:id
func (c *DocumentController) DeleteUpload(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid upload id"))
		return
	}

	if err := c.documentService.DeleteUpload(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// DownloadUpload handles GET /documents/uploads/:id/file
func (c *DocumentController) DownloadUpload(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid upload id"))
		return
	}

	rc, name, err := c.documentService.OpenUploadFile(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	ctx.Header("Content-Type", "application/octet-stream")
	ctx.Status(http.StatusOK)
	if _, err := io.Copy(ctx.Writer, rc); err != nil {
		// Headers are gone, nothing left to do but drop the connection.
		ctx.Abort()
	}
}
