package v1

import (
	"github.com/pixvault/image-search/internal/usecase"
	"github.com/pixvault/image-search/pkg/logger"
)

type V1 struct {
	img    usecase.ImageUseCase
	logger logger.Interface
}
