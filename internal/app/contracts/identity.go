package contracts

import (
	"context"
	"mobileforms-service/internal/app/models"
)

// IdentityService is the identity/relationship collaborator the post-process engine enriches
// documents through. Every method may fail; failures are collaborator failures.
type IdentityService interface {
	FindOrCreateByIdentifier(ctx context.Context, identifier string) (*models.Person, error)
	AttachSecondaryIdentifier(ctx context.Context, person *models.Person, value, typeRef, locationRef string) error
	AttachAttribute(ctx context.Context, person *models.Person, value, typeRef string) error
	Persist(ctx context.Context, person *models.Person) error
	EstablishRelationship(ctx context.Context, person *models.Person, relationship, householdIdentifier string) (bool, error)
}

// RegistryService answers the lookups the error resolution workflow checks before patching.
// A missing household or provider is reported as nil with no error.
type RegistryService interface {
	FindHousehold(ctx context.Context, householdIdentifier string) (*models.Household, error)
	FindProvider(ctx context.Context, providerRef string) (*models.Provider, error)
}
