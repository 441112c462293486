package identity

import (
	"context"
	"errors"
	"io"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/pkg/exceptions"
	"mobileforms-service/internal/pkg/fhir_dto"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testPatientSystem   = "urn:test:patient"
	testHouseholdSystem = "urn:test:household"
)

// fakeFhirServer serves just enough of a FHIR REST API for the identity client.
type fakeFhirServer struct {
	mu             sync.Mutex
	patients       map[string]fhir_dto.Patient
	groups         []fhir_dto.Group
	practitioners  []fhir_dto.Practitioner
	relatedPersons []fhir_dto.RelatedPerson
	puts           map[string][]byte
	failWith       int
}

func newFakeFhirServer() *fakeFhirServer {
	return &fakeFhirServer{patients: map[string]fhir_dto.Patient{}, puts: map[string][]byte{}}
}

func bundleOf[T any](t *testing.T, resources []T) []byte {
	bundle := fhir_dto.Bundle{ResourceType: "Bundle", Type: "searchset", Total: len(resources)}
	for _, resource := range resources {
		raw, err := json.Marshal(resource)
		require.NoError(t, err)
		bundle.Entry = append(bundle.Entry, fhir_dto.BundleEntry{Resource: raw})
	}
	raw, err := json.Marshal(bundle)
	require.NoError(t, err)
	return raw
}

func (f *fakeFhirServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failWith != 0 {
			w.WriteHeader(f.failWith)
			_, _ = w.Write([]byte(`{"resourceType":"OperationOutcome","issue":[{"severity":"error","code":"exception","diagnostics":"server down"}]}`))
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		identifier := r.URL.Query().Get("identifier")
		body, _ := io.ReadAll(r.Body)

		switch {
		case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "Patient":
			var found []fhir_dto.Patient
			for _, patient := range f.patients {
				for _, id := range patient.Identifier {
					if id.System+"|"+id.Value == identifier {
						found = append(found, patient)
					}
				}
			}
			_, _ = w.Write(bundleOf(t, found))
		case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "Patient":
			var patient fhir_dto.Patient
			require.NoError(t, json.Unmarshal(body, &patient))
			patient.ID = "pat-1"
			f.patients[patient.ID] = patient
			w.WriteHeader(http.StatusCreated)
			raw, _ := json.Marshal(patient)
			_, _ = w.Write(raw)
		case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "Patient":
			patient, ok := f.patients[parts[1]]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			raw, _ := json.Marshal(patient)
			_, _ = w.Write(raw)
		case r.Method == http.MethodPut && len(parts) == 2:
			f.puts[parts[0]+"/"+parts[1]] = body
			_, _ = w.Write(body)
		case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "Group":
			var found []fhir_dto.Group
			for _, group := range f.groups {
				for _, id := range group.Identifier {
					if id.System+"|"+id.Value == identifier {
						found = append(found, group)
					}
				}
			}
			_, _ = w.Write(bundleOf(t, found))
		case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "RelatedPerson":
			_, _ = w.Write(bundleOf(t, f.relatedPersons))
		case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "RelatedPerson":
			var related fhir_dto.RelatedPerson
			require.NoError(t, json.Unmarshal(body, &related))
			f.relatedPersons = append(f.relatedPersons, related)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(body)
		case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "Practitioner":
			var found []fhir_dto.Practitioner
			for _, practitioner := range f.practitioners {
				for _, id := range practitioner.Identifier {
					if id.Value == identifier {
						found = append(found, practitioner)
					}
				}
			}
			_, _ = w.Write(bundleOf(t, found))
		case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "Practitioner":
			for _, practitioner := range f.practitioners {
				if practitioner.ID == parts[1] {
					raw, _ := json.Marshal(practitioner)
					_, _ = w.Write(raw)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"resourceType":"OperationOutcome","issue":[{"severity":"error","code":"not-found"}]}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}
}

func newTestServer(t *testing.T, fake *fakeFhirServer) config.FHIR {
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)
	return config.FHIR{
		BaseUrl:                   server.URL,
		PatientIdentifierSystem:   testPatientSystem,
		HouseholdIdentifierSystem: testHouseholdSystem,
		RequestTimeoutInSeconds:   5,
	}
}

func TestFindOrCreateByIdentifier(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates Missing Patient", func(t *testing.T) {
		fake := newFakeFhirServer()
		service := NewIdentityFhirClient(newTestServer(t, fake), zap.NewNop())

		person, err := service.FindOrCreateByIdentifier(ctx, "P100")
		require.NoError(t, err)
		assert.Equal(t, "pat-1", person.ID)
		assert.Equal(t, "P100", person.Identifier)
		assert.Len(t, fake.patients, 1)
	})

	t.Run("Finds Existing Patient", func(t *testing.T) {
		fake := newFakeFhirServer()
		fake.patients["pat-7"] = fhir_dto.Patient{
			ID: "pat-7",
			Identifier: []fhir_dto.Identifier{
				{System: testPatientSystem, Value: "P100"},
				{Value: "S-7", Type: &fhir_dto.CodeableConcept{Text: "HCT ID"}, Assigner: &fhir_dto.Reference{Reference: "Location/4"}},
			},
		}
		service := NewIdentityFhirClient(newTestServer(t, fake), zap.NewNop())

		person, err := service.FindOrCreateByIdentifier(ctx, "P100")
		require.NoError(t, err)
		assert.Equal(t, "pat-7", person.ID)
		assert.True(t, person.HasIdentifier("S-7", "HCT ID"))
	})

	t.Run("Server Failure", func(t *testing.T) {
		fake := newFakeFhirServer()
		fake.failWith = http.StatusInternalServerError
		service := NewIdentityFhirClient(newTestServer(t, fake), zap.NewNop())

		_, err := service.FindOrCreateByIdentifier(ctx, "P100")
		assert.True(t, errors.Is(err, exceptions.ErrCollaboratorFailure))
		assert.Contains(t, err.Error(), "server down")
	})
}

func TestAttachAndPersist(t *testing.T) {
	ctx := context.Background()
	fake := newFakeFhirServer()
	fake.patients["pat-7"] = fhir_dto.Patient{
		ID:         "pat-7",
		Identifier: []fhir_dto.Identifier{{System: testPatientSystem, Value: "P100"}},
	}
	service := NewIdentityFhirClient(newTestServer(t, fake), zap.NewNop())

	person := &models.Person{ID: "pat-7", Identifier: "P100"}
	require.NoError(t, service.AttachSecondaryIdentifier(ctx, person, "S-7", "HCT ID", "Location/4"))
	require.NoError(t, service.AttachSecondaryIdentifier(ctx, person, "S-7", "HCT ID", "Location/4"))
	require.NoError(t, service.AttachAttribute(ctx, person, "0811", "contact-phone"))
	assert.Len(t, person.Identifiers, 1)
	assert.Len(t, person.Attributes, 1)
	assert.True(t, person.Dirty)

	require.NoError(t, service.Persist(ctx, person))
	assert.False(t, person.Dirty)

	var written fhir_dto.Patient
	require.NoError(t, json.Unmarshal(fake.puts["Patient/pat-7"], &written))
	assert.Len(t, written.Identifier, 2)
	assert.Equal(t, "Location/4", written.Identifier[1].Assigner.Reference)
	require.Len(t, written.Extension, 1)
	assert.Equal(t, "0811", written.Extension[0].ValueString)
	require.Len(t, written.Telecom, 1)

	t.Run("Clean Person Is Not Written", func(t *testing.T) {
		delete(fake.puts, "Patient/pat-7")
		require.NoError(t, service.Persist(ctx, person))
		assert.NotContains(t, fake.puts, "Patient/pat-7")
	})
}

func TestEstablishRelationship(t *testing.T) {
	ctx := context.Background()
	person := &models.Person{ID: "pat-2", Identifier: "P101"}

	t.Run("Unknown Household", func(t *testing.T) {
		service := NewIdentityFhirClient(newTestServer(t, newFakeFhirServer()), zap.NewNop())
		linked, err := service.EstablishRelationship(ctx, person, "child", "H-1")
		assert.NoError(t, err)
		assert.False(t, linked)
	})

	t.Run("Household Without Head", func(t *testing.T) {
		fake := newFakeFhirServer()
		fake.groups = []fhir_dto.Group{{ID: "grp-1", Identifier: []fhir_dto.Identifier{{System: testHouseholdSystem, Value: "H-1"}}}}
		service := NewIdentityFhirClient(newTestServer(t, fake), zap.NewNop())

		linked, err := service.EstablishRelationship(ctx, person, "child", "H-1")
		assert.NoError(t, err)
		assert.False(t, linked)
	})

	t.Run("Links To Head", func(t *testing.T) {
		fake := newFakeFhirServer()
		fake.groups = []fhir_dto.Group{{
			ID:             "grp-1",
			Identifier:     []fhir_dto.Identifier{{System: testHouseholdSystem, Value: "H-1"}},
			ManagingEntity: &fhir_dto.Reference{Reference: "Patient/pat-1"},
			Member:         []fhir_dto.GroupMember{{Entity: fhir_dto.Reference{Reference: "Patient/pat-1"}}},
		}}
		service := NewIdentityFhirClient(newTestServer(t, fake), zap.NewNop())

		linked, err := service.EstablishRelationship(ctx, person, "child", "H-1")
		require.NoError(t, err)
		assert.True(t, linked)
		require.Len(t, fake.relatedPersons, 1)
		assert.Equal(t, "Patient/pat-1", fake.relatedPersons[0].Patient.Reference)

		var group fhir_dto.Group
		require.NoError(t, json.Unmarshal(fake.puts["Group/grp-1"], &group))
		assert.Len(t, group.Member, 2)

		linked, err = service.EstablishRelationship(ctx, person, "child", "H-1")
		require.NoError(t, err)
		assert.True(t, linked)
		assert.Len(t, fake.relatedPersons, 1)
	})
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	fake := newFakeFhirServer()
	fake.groups = []fhir_dto.Group{{
		ID:             "grp-1",
		Identifier:     []fhir_dto.Identifier{{System: testHouseholdSystem, Value: "H-1"}},
		ManagingEntity: &fhir_dto.Reference{Reference: "Patient/pat-1"},
	}}
	fake.practitioners = []fhir_dto.Practitioner{{ID: "prac-1", Identifier: []fhir_dto.Identifier{{Value: "PRV-1"}}}}
	registry := NewRegistryFhirClient(newTestServer(t, fake), zap.NewNop())

	household, err := registry.FindHousehold(ctx, "H-1")
	require.NoError(t, err)
	assert.Equal(t, "Patient/pat-1", household.HeadRef)

	household, err = registry.FindHousehold(ctx, "H-404")
	assert.NoError(t, err)
	assert.Nil(t, household)

	provider, err := registry.FindProvider(ctx, "PRV-1")
	require.NoError(t, err)
	assert.Equal(t, "PRV-1", provider.Code)

	provider, err = registry.FindProvider(ctx, "prac-1")
	require.NoError(t, err)
	assert.Equal(t, "PRV-1", provider.Code)

	provider, err = registry.FindProvider(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, provider)
}
