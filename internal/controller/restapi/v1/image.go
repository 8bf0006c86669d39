package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pixvault/image-search/internal/controller/restapi/v1/response"
	"github.com/pixvault/image-search/internal/dto"
	"github.com/pixvault/image-search/pkg/types/errs"
)

type uploadRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// @Summary  	Generate upload URL
// @Description Creates a PENDING image record and returns a time-limited presigned PUT URL for a direct upload to object storage
// @Tags 		images
// @Accept 		json
// @Produce 	json
// @Param 		request body uploadRequest true "Upload descriptor"
// @Success 	200 {object} response.UploadURL
// @Failure 	400 {object} response.Error "Missing or invalid fileName/contentType"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/generate-upload-url [post]
func (r *V1) generateUploadURL(ctx *fiber.Ctx) error {
	var req uploadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	record, credential, err := r.img.IssueUpload(ctx.UserContext(), dto.UploadDescriptor{
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		if errors.Is(err, errs.ErrValidation) {
			return errorResponse(ctx, http.StatusBadRequest,
				"fileName and contentType are required; contentType must be one of: jpeg, png, gif, webp")
		}
		r.logger.Error(err, "restapi - v1 - generateUploadURL")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	resp := response.UploadURL{
		ImageID:   record.ID.String(),
		UploadURL: credential.UploadURL,
		ExpiresAt: credential.ExpiresAt.Format(time.RFC3339),
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}

// @Summary 	Get image status
// @Description Snapshot read of the ingestion lifecycle record; keywords appear only once the record is READY
// @Tags 		images
// @Produce 	json
// @Param 		imageId path string true "Image ID(uuid)"
// @Success 	200 {object} response.ImageStatus
// @Failure 	404 {object} response.Error "Unknown image"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/status/{imageId} [get]
func (r *V1) getImageStatus(ctx *fiber.Ctx) error {
	idStr := ctx.Params("imageId")

	// ids not issued by this service are unknown, not malformed
	id, err := uuid.Parse(idStr)
	if err != nil {
		return errorResponse(ctx, http.StatusNotFound, "image not found")
	}

	record, err := r.img.GetStatus(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "image not found")
		}
		r.logger.Error(err, "restapi - v1 - getImageStatus")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	resp := response.ImageStatus{
		ImageID:     record.ID.String(),
		Status:      string(record.Status),
		Keywords:    record.Keywords,
		ErrorDetail: record.ErrorDetail,
	}

	return ctx.Status(http.StatusOK).JSON(resp)
}

// @Summary 	Search images
// @Description Keyword search over READY records; multi-term queries match records containing every term
// @Tags 		images
// @Produce 	json
// @Param 		q query string true "Search terms"
// @Success 	200 {object} response.Search
// @Failure 	400 {object} response.Error "Empty query"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/search [get]
func (r *V1) searchImages(ctx *fiber.Ctx) error {
	query := ctx.Query("q")

	records, err := r.img.Search(ctx.UserContext(), query)
	if err != nil {
		if errors.Is(err, errs.ErrValidation) {
			return errorResponse(ctx, http.StatusBadRequest, "query is required")
		}
		r.logger.Error(err, "restapi - v1 - searchImages")

		return errorResponse(ctx, http.StatusInternalServerError, "storage problems")
	}

	results := make([]response.SearchResult, 0, len(records))
	for _, record := range records {
		results = append(results, response.SearchResult{
			ImageID:   record.ID.String(),
			Keywords:  record.Keywords,
			ObjectKey: record.ObjectKey,
		})
	}

	return ctx.Status(http.StatusOK).JSON(response.Search{Results: results})
}
