package identity

import (
	"context"
	"errors"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/contracts"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/pkg/constvars"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/fhir_dto"
	"mobileforms-service/internal/pkg/utils"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

type identityFhirClient struct {
	*fhirClient
}

// NewIdentityFhirClient stages attach operations on the Person and writes them to the
// Patient resource on Persist.
func NewIdentityFhirClient(fhirCfg config.FHIR, logger *zap.Logger) contracts.IdentityService {
	return &identityFhirClient{fhirClient: newFhirClient(fhirCfg, logger)}
}

func (c *identityFhirClient) FindOrCreateByIdentifier(ctx context.Context, identifier string) (*models.Person, error) {
	requestID := utils.RequestIDFrom(ctx)
	c.Log.Info("identityFhirClient.FindOrCreateByIdentifier called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingIdentifierKey, identifier),
	)

	params := url.Values{constvars.FhirSearchIdentifier: {identifierToken(c.PatientSystem, identifier)}}
	patients, err := search[fhir_dto.Patient](ctx, c.fhirClient, constvars.ResourcePatient, params)
	if err != nil {
		return nil, exceptions.ErrIdentityCollaborator(err, "FindOrCreateByIdentifier")
	}
	if len(patients) > 0 {
		c.Log.Info("identityFhirClient.FindOrCreateByIdentifier found existing patient",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientIDKey, patients[0].ID),
		)
		return personFromPatient(&patients[0], c.PatientSystem), nil
	}

	request := &fhir_dto.Patient{
		ResourceType: constvars.ResourcePatient,
		Active:       true,
		Identifier: []fhir_dto.Identifier{{
			Use:    "official",
			System: c.PatientSystem,
			Value:  identifier,
		}},
	}
	created := new(fhir_dto.Patient)
	_, err = c.do(ctx, constvars.MethodPost, c.resourceURL(constvars.ResourcePatient), request, created, constvars.StatusCreated, constvars.StatusOK)
	if err != nil {
		return nil, exceptions.ErrIdentityCollaborator(err, "FindOrCreateByIdentifier")
	}

	c.Log.Info("identityFhirClient.FindOrCreateByIdentifier created patient",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, created.ID),
	)
	person := personFromPatient(created, c.PatientSystem)
	if person.Identifier == "" {
		person.Identifier = identifier
	}
	return person, nil
}

// AttachSecondaryIdentifier is a no-op when person already carries the identifier.
func (c *identityFhirClient) AttachSecondaryIdentifier(ctx context.Context, person *models.Person, value, typeRef, locationRef string) error {
	if person == nil {
		return exceptions.ErrIdentityCollaborator(errors.New("nil person"), "AttachSecondaryIdentifier")
	}
	if person.HasIdentifier(value, typeRef) {
		return nil
	}
	person.Identifiers = append(person.Identifiers, models.PersonIdentifier{
		Value:       value,
		TypeRef:     typeRef,
		LocationRef: locationRef,
	})
	person.Dirty = true
	return nil
}

// AttachAttribute is a no-op when person already carries the attribute.
func (c *identityFhirClient) AttachAttribute(ctx context.Context, person *models.Person, value, typeRef string) error {
	if person == nil {
		return exceptions.ErrIdentityCollaborator(errors.New("nil person"), "AttachAttribute")
	}
	if person.HasAttribute(value, typeRef) {
		return nil
	}
	person.Attributes = append(person.Attributes, models.PersonAttribute{
		TypeRef: typeRef,
		Value:   value,
	})
	person.Dirty = true
	return nil
}

// Persist reads the current Patient, merges the staged changes and writes it back.
func (c *identityFhirClient) Persist(ctx context.Context, person *models.Person) error {
	requestID := utils.RequestIDFrom(ctx)
	if person == nil || person.ID == "" {
		return exceptions.ErrIdentityCollaborator(errors.New("person has no id"), "Persist")
	}
	if !person.Dirty {
		c.Log.Debug("identityFhirClient.Persist nothing to write",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientIDKey, person.ID),
		)
		return nil
	}

	patientURL := c.resourceURL(constvars.ResourcePatient, url.PathEscape(person.ID))
	current := new(fhir_dto.Patient)
	if _, err := c.do(ctx, constvars.MethodGet, patientURL, nil, current, constvars.StatusOK); err != nil {
		return exceptions.ErrIdentityCollaborator(err, "Persist")
	}

	mergePersonIntoPatient(current, person)
	current.ID = person.ID
	if _, err := c.do(ctx, constvars.MethodPut, patientURL, current, nil, constvars.StatusOK, constvars.StatusCreated); err != nil {
		return exceptions.ErrIdentityCollaborator(err, "Persist")
	}

	person.Dirty = false
	c.Log.Info("identityFhirClient.Persist succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, person.ID),
	)
	return nil
}

// EstablishRelationship links person to the head of the household. It returns false when
// the household or its head is not known yet, so the form can be retried later.
func (c *identityFhirClient) EstablishRelationship(ctx context.Context, person *models.Person, relationship, householdIdentifier string) (bool, error) {
	requestID := utils.RequestIDFrom(ctx)
	c.Log.Info("identityFhirClient.EstablishRelationship called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingHouseholdIDKey, householdIdentifier),
	)
	if person == nil || person.ID == "" {
		return false, exceptions.ErrIdentityCollaborator(errors.New("person has no id"), "EstablishRelationship")
	}

	params := url.Values{constvars.FhirSearchIdentifier: {identifierToken(c.HouseholdSystem, householdIdentifier)}}
	groups, err := search[fhir_dto.Group](ctx, c.fhirClient, constvars.ResourceGroup, params)
	if err != nil {
		return false, exceptions.ErrIdentityCollaborator(err, "EstablishRelationship")
	}
	if len(groups) == 0 || groups[0].ManagingEntity == nil || groups[0].ManagingEntity.Reference == "" {
		c.Log.Info("identityFhirClient.EstablishRelationship household or head not known yet",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingHouseholdIDKey, householdIdentifier),
		)
		return false, nil
	}

	group := &groups[0]
	personRef := patientReference(person.ID)
	headRef := group.ManagingEntity.Reference
	if headRef != personRef {
		if err := c.ensureRelatedPerson(ctx, person, headRef, relationship); err != nil {
			return false, exceptions.ErrIdentityCollaborator(err, "EstablishRelationship")
		}
	}
	if err := c.ensureMember(ctx, group, personRef); err != nil {
		return false, exceptions.ErrIdentityCollaborator(err, "EstablishRelationship")
	}

	c.Log.Info("identityFhirClient.EstablishRelationship succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientIDKey, person.ID),
		zap.String(constvars.LoggingHouseholdIDKey, householdIdentifier),
	)
	return true, nil
}

func (c *identityFhirClient) ensureRelatedPerson(ctx context.Context, person *models.Person, headRef, relationship string) error {
	params := url.Values{
		constvars.FhirSearchPatient:    {headRef},
		constvars.FhirSearchIdentifier: {identifierToken(c.PatientSystem, person.Identifier)},
	}
	existing, err := search[fhir_dto.RelatedPerson](ctx, c.fhirClient, constvars.ResourceRelatedPerson, params)
	if err != nil {
		return err
	}
	for _, related := range existing {
		for _, concept := range related.Relationship {
			if strings.EqualFold(concept.Text, relationship) {
				return nil
			}
		}
	}

	request := &fhir_dto.RelatedPerson{
		ResourceType: constvars.ResourceRelatedPerson,
		Active:       true,
		Patient:      fhir_dto.Reference{Reference: headRef},
		Identifier: []fhir_dto.Identifier{{
			System: c.PatientSystem,
			Value:  person.Identifier,
		}},
		Relationship: []fhir_dto.CodeableConcept{{Text: relationship}},
	}
	_, err = c.do(ctx, constvars.MethodPost, c.resourceURL(constvars.ResourceRelatedPerson), request, nil, constvars.StatusCreated, constvars.StatusOK)
	return err
}

func (c *identityFhirClient) ensureMember(ctx context.Context, group *fhir_dto.Group, personRef string) error {
	for _, member := range group.Member {
		if member.Entity.Reference == personRef {
			return nil
		}
	}
	group.ResourceType = constvars.ResourceGroup
	group.Member = append(group.Member, fhir_dto.GroupMember{Entity: fhir_dto.Reference{Reference: personRef}})
	_, err := c.do(ctx, constvars.MethodPut, c.resourceURL(constvars.ResourceGroup, url.PathEscape(group.ID)), group, nil, constvars.StatusOK)
	return err
}
