package contracts

import (
	"context"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/pkg/dto/requests"
	"mobileforms-service/internal/pkg/dto/responses"
)

type FormErrorRepository interface {
	FindAll(ctx context.Context) ([]models.FormEntryError, error)
	// FindByID returns nil with no error when the record does not exist.
	FindByID(ctx context.Context, formErrorID string) (*models.FormEntryError, error)
	// Update saves formError if its stored version still equals formError.Version and bumps
	// the version on success.
	Update(ctx context.Context, formError *models.FormEntryError) error
	// Delete removes the record if its stored version still equals version.
	Delete(ctx context.Context, formErrorID string, version int64) error
}

type FormErrorUsecase interface {
	FindAll(ctx context.Context) ([]responses.FormError, error)
	FindByID(ctx context.Context, formErrorID string) (*responses.FormErrorDetail, error)
	Comment(ctx context.Context, formErrorID string, request *requests.CommentFormError) (*responses.FormError, error)
	Resolve(ctx context.Context, formErrorID string, request *requests.ResolveFormError) (*responses.ResolveFormError, error)
}
