package ports

import (
	"context"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

// SheetExtractor turns a photographed paper job sheet into structured fields.
type SheetExtractor interface {
	ExtractJobSheet(ctx context.Context, image []byte, mimeType string) (*domain.JobSheetData, error)
}
