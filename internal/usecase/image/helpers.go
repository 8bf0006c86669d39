package image

import (
	"fmt"
	"strings"

	"github.com/pixvault/image-search/internal/dto"
	"github.com/pixvault/image-search/internal/entity"
	"github.com/pixvault/image-search/pkg/types/errs"
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func validateDescriptor(desc dto.UploadDescriptor) error {
	if strings.TrimSpace(desc.FileName) == "" {
		return fmt.Errorf("%w: fileName is required", errs.ErrValidation)
	}

	if strings.TrimSpace(desc.ContentType) == "" {
		return fmt.Errorf("%w: contentType is required", errs.ErrValidation)
	}

	if !allowedContentTypes[strings.ToLower(desc.ContentType)] {
		return fmt.Errorf("%w: unsupported content type %q. Allowed: jpeg, png, gif, webp", errs.ErrValidation, desc.ContentType)
	}

	return nil
}

// searchTerms splits a free-text query into lowercased terms. Matching is
// case-insensitive on both sides: keywords are stored lowercased as well.
func searchTerms(query string) []string {
	fields := strings.Fields(query)

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, strings.ToLower(f))
	}

	return terms
}

func normalizeChange(next entity.Status, change dto.StatusChange) dto.StatusChange {
	if next != entity.Ready {
		change.Keywords = nil
	}
	if next != entity.Failed {
		change.ErrorDetail = nil
	}

	if change.Keywords != nil {
		keywords := make([]string, 0, len(change.Keywords))
		for _, kw := range change.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		change.Keywords = keywords
	}

	return change
}
