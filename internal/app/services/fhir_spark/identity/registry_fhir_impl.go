package identity

import (
	"context"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/fhir_dto"
	"mobileforms-service/internal/pkg/utils"
	"net/url"

	"go.uber.org/zap"
)

type registryFhirClient struct {
	*fhirClient
}

func NewRegistryFhirClient(fhirCfg config.FHIR, logger *zap.Logger) contracts.RegistryService {
	return &registryFhirClient{fhirClient: newFhirClient(fhirCfg, logger)}
}

func (c *registryFhirClient) FindHousehold(ctx context.Context, householdIdentifier string) (*models.Household, error) {
	requestID := utils.RequestIDFrom(ctx)
	c.Log.Info("registryFhirClient.FindHousehold called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingHouseholdIDKey, householdIdentifier),
	)

	params := url.Values{constvars.FhirSearchIdentifier: {identifierToken(c.HouseholdSystem, householdIdentifier)}}
	groups, err := search[fhir_dto.Group](ctx, c.fhirClient, constvars.ResourceGroup, params)
	if err != nil {
		return nil, exceptions.ErrIdentityCollaborator(err, "FindHousehold")
	}
	if len(groups) == 0 {
		return nil, nil
	}
	return householdFromGroup(&groups[0], c.HouseholdSystem), nil
}

// FindProvider looks providerRef up as a practitioner identifier first and as a resource
// id second.
func (c *registryFhirClient) FindProvider(ctx context.Context, providerRef string) (*models.Provider, error) {
	requestID := utils.RequestIDFrom(ctx)
	c.Log.Info("registryFhirClient.FindProvider called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingProviderIDKey, providerRef),
	)

	params := url.Values{constvars.FhirSearchIdentifier: {providerRef}}
	practitioners, err := search[fhir_dto.Practitioner](ctx, c.fhirClient, constvars.ResourcePractitioner, params)
	if err != nil {
		return nil, exceptions.ErrIdentityCollaborator(err, "FindProvider")
	}
	if len(practitioners) > 0 {
		return providerFromPractitioner(&practitioners[0]), nil
	}

	practitioner := new(fhir_dto.Practitioner)
	status, err := c.do(ctx, constvars.MethodGet, c.resourceURL(constvars.ResourcePractitioner, url.PathEscape(providerRef)), nil, practitioner, constvars.StatusOK, constvars.StatusNotFound, constvars.StatusGone)
	if err != nil {
		return nil, exceptions.ErrIdentityCollaborator(err, "FindProvider")
	}
	if status != constvars.StatusOK {
		return nil, nil
	}
	return providerFromPractitioner(practitioner), nil
}
