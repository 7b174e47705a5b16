package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/server/middleware"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/server/respond"
	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/validation"
)

// Handler wires HTTP handlers to the document service.
type Handler struct {
	Svc       *Service
	Processor *Processor

	// MaxUploadBytes caps the request body before validation sees it.
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, proc *Processor, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, Processor: proc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/stats", h.stats)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.remove)
	rg.POST("/documents/:id/analyze", h.analyze)
	rg.POST("/documents/:id/archive", h.archive)
	rg.POST("/documents/:id/unarchive", h.unarchive)
	rg.POST("/documents/:id/tags", h.updateTags)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if h.MaxUploadBytes > 0 {
		// Leave headroom for the multipart framing around the file part.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+(1<<20))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	docType, err := ParseDocumentType(c.PostForm("document_type"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document_type is not allowed", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	doc, verdict, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		UserID:       userID,
		Filename:     fileHeader.Filename,
		DocumentType: docType,
		Description:  strings.TrimSpace(c.PostForm("description")),
		Password:     c.PostForm("password"),
		Data:         data,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrRejected):
			respond.Error(c, rejectionStatus(verdict.Reason), string(verdict.Reason), verdict.Detail, rejectionDetails(verdict))
		case errors.Is(err, ErrDuplicate):
			respond.Error(c, http.StatusConflict, "duplicate_document", "an identical document already exists", []map[string]string{
				{"field": "file", "issue": "duplicate", "documentId": doc.ID},
			})
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

// rejectionStatus maps a validation outcome to an HTTP status. Oversized
// bodies and malicious content get their own statuses; everything else is a
// plain bad request.
func rejectionStatus(reason validation.Reason) int {
	switch reason {
	case validation.ReasonSizeExceeded:
		return http.StatusRequestEntityTooLarge
	case validation.ReasonMaliciousContent:
		return http.StatusUnprocessableEntity
	case validation.ReasonInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func rejectionDetails(verdict validation.Verdict) []map[string]string {
	if verdict.Pattern == "" {
		return nil
	}
	return []map[string]string{
		{"field": "file", "issue": "blocked_pattern", "pattern": verdict.Pattern},
	}
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondLookupError(c, err, "failed to fetch document")
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	docType, err := parseTypeFilter(c.Query("document_type"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document_type is not allowed", nil)
		return
	}
	status, err := ParseStatus(c.Query("status"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "status is not allowed", nil)
		return
	}

	filter := ListFilter{
		Type:            docType,
		Status:          status,
		IncludeArchived: c.Query("include_archived") == "true",
		Limit:           intQuery(c, "limit", 0),
		Skip:            intQuery(c, "skip", 0),
	}

	docs, err := h.Svc.List(c.Request.Context(), userID, filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) stats(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	stats, err := h.Svc.Stats(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute stats", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toStatsResponse(stats))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondLookupError(c, err, "failed to delete document")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, err := h.Processor.Dispatch(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusConflict, "invalid_state", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"documentId": doc.ID,
		"status":     doc.Status,
	})
}

func (h *Handler) archive(c *gin.Context) {
	h.setArchived(c, true)
}

func (h *Handler) unarchive(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *Handler) setArchived(c *gin.Context, archived bool) {
	userID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.SetArchived(c.Request.Context(), userID, c.Param("id"), archived)
	if err != nil {
		h.respondLookupError(c, err, "failed to update document")
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(doc))
}

type updateTagsRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

func (h *Handler) updateTags(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req updateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.Add) == 0 && len(req.Remove) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "add or remove is required", nil)
		return
	}

	doc, err := h.Svc.UpdateTags(c.Request.Context(), userID, c.Param("id"), req.Add, req.Remove)
	if err != nil {
		h.respondLookupError(c, err, "failed to update tags")
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(doc))
}

func (h *Handler) respondLookupError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

// parseTypeFilter is ParseDocumentType without the empty-means-other default;
// an empty filter means no filter.
func parseTypeFilter(raw string) (DocumentType, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return ParseDocumentType(raw)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
