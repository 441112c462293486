package contracts

import (
	"context"
	"mobileforms-service/internal/pkg/dto/responses"
)

type PostProcessUsecase interface {
	// RunPass processes every pending document once. A call made while another pass is
	// running returns immediately with Started false.
	RunPass(ctx context.Context) (*responses.PostProcessPass, error)
}
