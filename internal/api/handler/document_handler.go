package handler

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/nexus/internal/core/ports"
)

// DocumentHandler handles uploads, listings and downloads of project documents.
type DocumentHandler struct {
	service ports.DocumentService
}

func NewDocumentHandler(service ports.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Upload handles POST /documents/projects/:projectId/upload (multipart form).
//
// @Summary      Upload a document to a project
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        projectId    path      string  true   "Project ID"
// @Param        file         formData  file    true   "Document"
// @Param        description  formData  string  false  "Description"
// @Success      201          {object}  documentResponse
// @Failure      400          {object}  errorResponse
// @Failure      403          {object}  errorResponse
// @Failure      404          {object}  errorResponse
// @Failure      413          {object}  errorResponse
// @Router       /documents/projects/{projectId}/upload [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	doc, err := h.service.Upload(c.Request().Context(), caller, ports.UploadInput{
		ProjectID:   c.Param("projectId"),
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Description: c.FormValue("description"),
		Content:     src,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDocumentResponse(doc))
}

// ListForProject handles GET /documents/projects/:projectId.
//
// @Summary      List a project's documents
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      string  true  "Project ID"
// @Success      200        {array}   documentResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /documents/projects/{projectId} [get]
func (h *DocumentHandler) ListForProject(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	docs, err := h.service.ListForProject(c.Request().Context(), caller, c.Param("projectId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDocumentResponses(docs))
}

// Get handles GET /documents/:id.
//
// @Summary      Get document metadata
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  documentResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /documents/{id} [get]
func (h *DocumentHandler) Get(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	doc, err := h.service.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDocumentResponse(doc))
}

// Download handles GET /documents/:id/download and streams the file.
//
// @Summary      Download a document
// @Tags         documents
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {file}    binary
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /documents/{id}/download [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	doc, body, err := h.service.Download(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	defer body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.OriginalFileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return c.Stream(http.StatusOK, doc.ContentType, body)
}

// Delete handles DELETE /documents/:id.
//
// @Summary      Delete a document
// @Tags         documents
// @Security     BearerAuth
// @Param        id   path  string  true  "Document ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) Delete(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MyUploads handles GET /documents/my-uploads.
//
// @Summary      List the caller's uploads
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  documentResponse
// @Router       /documents/my-uploads [get]
func (h *DocumentHandler) MyUploads(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	docs, err := h.service.ListMine(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDocumentResponses(docs))
}
