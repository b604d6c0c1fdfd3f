// documents.go
//
// Custodia - self-hosted personal asset and deadline tracking service
// Copyright (c) 2026 Custodia Authors
//
// This file is part of custodia.
// custodia is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// custodia is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with custodia.
// If not, see <https://www.gnu.org/licenses/>.

package handlers

import (
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/custodia-app/custodia/internal/models"
	"github.com/custodia-app/custodia/internal/services"
	"github.com/custodia-app/custodia/internal/storage"
	"github.com/custodia-app/custodia/internal/types"
	"github.com/custodia-app/custodia/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentHandler handles document routes
type DocumentHandler struct {
	DB    *gorm.DB
	Store *storage.BlobStore
}

// DocumentResponse is a document row plus the public URLs of its files.
type DocumentResponse struct {
	models.Document
	Files []string `json:"files"`
}

func (h *DocumentHandler) documentResponse(d models.Document) DocumentResponse {
	paths := d.StoragePaths()
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		files = append(files, h.Store.PublicURL(p))
	}
	return DocumentResponse{Document: d, Files: files}
}

// CreateDocument handles POST /api/documents
// @Summary Create a document
// @Description Multipart requests upload files to the blob store before the row is written; any upload failure aborts the whole flow. JSON requests may reference already-stored paths.
// @Tags Documents
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} DocumentResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents [post]
func (h *DocumentHandler) CreateDocument(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return h.createFromMultipart(c)
	}

	var body struct {
		Title        string                 `json:"title"`
		Tags         types.FlexList[string] `json:"tags"`
		StoragePaths types.FlexList[string] `json:"storage_paths"`
		AssetID      string                 `json:"asset_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "documents.validation.input")
	}

	document, err := services.CreateDocument(h.DB, services.DocumentInput{
		Title:        body.Title,
		Tags:         body.Tags.Slice(),
		StoragePaths: body.StoragePaths.Slice(),
		AssetID:      body.AssetID,
	})
	if err != nil {
		return serviceError(c, err, "createDocument")
	}
	return c.Status(fiber.StatusCreated).JSON(h.documentResponse(*document))
}

// createFromMultipart uploads every file before touching the documents table.
// A failed upload aborts the flow and removes blobs uploaded so far, so a
// document row never references a path that failed to upload.
func (h *DocumentHandler) createFromMultipart(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "documents.validation.input")
	}

	var paths []string
	for _, file := range form.File["files"] {
		path, err := h.uploadFile(file)
		if err != nil {
			for _, p := range paths {
				if rmErr := h.Store.Remove(p); rmErr != nil {
					log.Printf("Failed to clean up blob %s after aborted upload: %v", p, rmErr)
				}
			}
			return utils.ErrorResponse(c, "File upload failed", fiber.StatusInternalServerError, "documents.upload")
		}
		paths = append(paths, path)
	}

	document, err := services.CreateDocument(h.DB, services.DocumentInput{
		Title:        formValue(form, "title"),
		Tags:         form.Value["tags"],
		StoragePaths: paths,
		AssetID:      formValue(form, "asset_id"),
	})
	if err != nil {
		for _, p := range paths {
			if rmErr := h.Store.Remove(p); rmErr != nil {
				log.Printf("Failed to clean up blob %s after rejected document: %v", p, rmErr)
			}
		}
		return serviceError(c, err, "createDocument")
	}
	return c.Status(fiber.StatusCreated).JSON(h.documentResponse(*document))
}

func (h *DocumentHandler) uploadFile(file *multipart.FileHeader) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	// Blob names are namespaced by a fresh id so same-named uploads never collide.
	name := uuid.NewString() + "/" + filepath.Base(file.Filename)
	return h.Store.Upload("documents", name, data, file.Header.Get("Content-Type"))
}

// ListDocuments handles GET /api/documents?asset_id=...&tags=...
// @Summary List documents newest first
// @Tags Documents
// @Produce json
// @Param asset_id query string false "Filter by primary asset"
// @Param tags query string false "Comma-separated tag filter (any match)"
// @Success 200 {array} DocumentResponse
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	documents, err := services.ListDocuments(h.DB, c.Query("asset_id"), parseQueryList(c, "tags"))
	if err != nil {
		return serviceError(c, err, "listDocuments")
	}

	out := make([]DocumentResponse, 0, len(documents))
	for _, d := range documents {
		out = append(out, h.documentResponse(d))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

// GetDocument handles GET /api/documents/:id
// @Summary Get a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} DocumentResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	document, err := services.GetDocument(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getDocument")
	}
	return c.Status(fiber.StatusOK).JSON(h.documentResponse(*document))
}

// DeleteDocument handles DELETE /api/documents/:id
// @Summary Delete a document and its association rows
// @Description Stored blobs are purged best-effort; a leftover blob is logged, not an error
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	document, err := services.DeleteDocument(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "deleteDocument")
	}

	for _, p := range document.StoragePaths() {
		if err := h.Store.Remove(p); err != nil {
			log.Printf("Failed to purge blob %s for deleted document %s: %v", p, document.ID, err)
		}
	}
	return utils.MutationSuccessResponse(c, 1)
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
