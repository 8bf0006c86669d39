package v1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pixvault/image-search/internal/usecase"
	"github.com/pixvault/image-search/pkg/logger"
)

func NewImageRoutes(apiGroup fiber.Router, img usecase.ImageUseCase, l logger.Interface) {
	r := &V1{img: img, logger: l}

	{
		apiGroup.Post("/generate-upload-url", r.generateUploadURL)
		apiGroup.Get("/search", r.searchImages)
		apiGroup.Get("/status/:imageId", r.getImageStatus)
	}
}
