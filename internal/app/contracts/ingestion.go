package contracts

import "context"

// IngestionSubmitter hands a form straight to the initial ingestion pipeline.
type IngestionSubmitter interface {
	Submit(ctx context.Context, formName string, formData []byte) error
}
