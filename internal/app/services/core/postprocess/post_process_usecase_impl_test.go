package postprocess

import (
	"context"
	"errors"
	"mobileforms-service/internal/app/config"
	"mobileforms-service/internal/app/models"
	"mobileforms-service/internal/app/services/shared/queue"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testQueueConfig = config.Queue{
		Backend:        "filesystem",
		PendingDir:     "/forms/pending",
		ArchiveDir:     "/forms/archive",
		ErrorDir:       "/forms/error",
		RetryIntakeDir: "/forms/queue",
	}
	testPostProcessConfig = config.PostProcess{
		OnFailure:                  "archive",
		ArchiveWithoutRelationship: true,
		SecondaryIdentifierType:    "HCT ID",
		HomeLocation:               "Location/4",
		PhoneAttributeType:         "contact-phone",
	}
	testToday = time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
)

// fakeIdentity records every collaborator call and keeps persisted people by identifier.
type fakeIdentity struct {
	mu        sync.Mutex
	calls     []string
	persisted map[string]models.Person
	findErr   error
	panicOn   string
	linked    bool
	block     chan struct{}
	entered   chan struct{}
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{persisted: map[string]models.Person{}, linked: true}
}

func (f *fakeIdentity) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.panicOn == call {
		panic("identity service exploded")
	}
}

func (f *fakeIdentity) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeIdentity) FindOrCreateByIdentifier(ctx context.Context, identifier string) (*models.Person, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.record("find")
	if f.findErr != nil {
		return nil, f.findErr
	}
	if person, ok := f.persisted[identifier]; ok {
		return &person, nil
	}
	return &models.Person{ID: "id-" + identifier, Identifier: identifier}, nil
}

func (f *fakeIdentity) AttachSecondaryIdentifier(ctx context.Context, person *models.Person, value, typeRef, locationRef string) error {
	f.record("secondary")
	if !person.HasIdentifier(value, typeRef) {
		person.Identifiers = append(person.Identifiers, models.PersonIdentifier{Value: value, TypeRef: typeRef, LocationRef: locationRef})
		person.Dirty = true
	}
	return nil
}

func (f *fakeIdentity) AttachAttribute(ctx context.Context, person *models.Person, value, typeRef string) error {
	f.record("attribute")
	if !person.HasAttribute(value, typeRef) {
		person.Attributes = append(person.Attributes, models.PersonAttribute{Value: value, TypeRef: typeRef})
		person.Dirty = true
	}
	return nil
}

func (f *fakeIdentity) Persist(ctx context.Context, person *models.Person) error {
	f.record("persist")
	f.mu.Lock()
	defer f.mu.Unlock()
	person.Dirty = false
	f.persisted[person.Identifier] = *person
	return nil
}

func (f *fakeIdentity) EstablishRelationship(ctx context.Context, person *models.Person, relationship, householdIdentifier string) (bool, error) {
	f.record("relationship")
	return f.linked, nil
}

type engineFixture struct {
	fs       afero.Fs
	identity *fakeIdentity
	usecase  *postProcessUsecase
	metrics  *Metrics
}

func newEngineFixture(t *testing.T, postProcessCfg config.PostProcess) *engineFixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, dir := range []string{testQueueConfig.PendingDir, testQueueConfig.ArchiveDir, testQueueConfig.ErrorDir, testQueueConfig.RetryIntakeDir} {
		require.NoError(t, fs.MkdirAll(dir, 0o755))
	}
	identity := newFakeIdentity()
	metrics := NewMetrics(prometheus.NewRegistry())
	areas := queue.NewFilesystemAreas(fs, testQueueConfig, zap.NewNop())
	usecase := NewPostProcessUsecase(areas, identity, postProcessCfg, metrics, zap.NewNop()).(*postProcessUsecase)
	usecase.now = func() time.Time { return testToday }
	return &engineFixture{fs: fs, identity: identity, usecase: usecase, metrics: metrics}
}

func (f *engineFixture) addPending(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fs, "/forms/pending/"+name, []byte(content), 0o644))
}

func (f *engineFixture) exists(path string) bool {
	exists, _ := afero.Exists(f.fs, path)
	return exists
}

const (
	formP100 = `<form>
  <patient>
    <patient.medical_record_number>P100</patient.medical_record_number>
    <patient.phone_number>0722000111</patient.phone_number>
  </patient>
</form>`
	formBlankIdentifier = `<form>
  <patient>
    <patient.medical_record_number></patient.medical_record_number>
    <patient.phone_number>0722000111</patient.phone_number>
  </patient>
</form>`
	formHousehold = `<form>
  <patient>
    <patient.medical_record_number>P300</patient.medical_record_number>
    <patient.secondary_identifier>S-300</patient.secondary_identifier>
    <patient.household_identifier>H-1</patient.household_identifier>
  </patient>
  <obs>
    <obs.relationship_to_head>child</obs.relationship_to_head>
  </obs>
</form>`
)

func TestRunPassScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("Phone Without Household Is Archived", func(t *testing.T) {
		fixture := newEngineFixture(t, testPostProcessConfig)
		fixture.addPending(t, "p100.xml", formP100)

		pass, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.True(t, pass.Started)
		assert.Equal(t, 1, pass.Counts[string(models.OutcomeArchived)])

		person := fixture.identity.persisted["P100"]
		assert.True(t, person.HasAttribute("0722000111", "contact-phone"))
		assert.False(t, fixture.exists("/forms/pending/p100.xml"))
		assert.True(t, fixture.exists("/forms/archive/2024-05-17/p100.xml"))
	})

	t.Run("Blank Identifier Stays Pending Untouched", func(t *testing.T) {
		fixture := newEngineFixture(t, testPostProcessConfig)
		fixture.addPending(t, "blank.xml", formBlankIdentifier)

		pass, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, pass.Counts[string(models.OutcomeSkipped)])
		assert.Zero(t, fixture.identity.callCount())

		content, err := afero.ReadFile(fixture.fs, "/forms/pending/blank.xml")
		require.NoError(t, err)
		assert.Equal(t, formBlankIdentifier, string(content))
	})

	t.Run("Established Relationship Is Archived", func(t *testing.T) {
		fixture := newEngineFixture(t, testPostProcessConfig)
		fixture.addPending(t, "p300.xml", formHousehold)

		_, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"find", "secondary", "persist", "relationship"}, fixture.identity.calls)
		p300 := fixture.identity.persisted["P300"]
		assert.True(t, p300.HasIdentifier("S-300", "HCT ID"))
		assert.True(t, fixture.exists("/forms/archive/2024-05-17/p300.xml"))
	})

	t.Run("Unestablished Relationship Stays Pending", func(t *testing.T) {
		fixture := newEngineFixture(t, testPostProcessConfig)
		fixture.identity.linked = false
		fixture.addPending(t, "p300.xml", formHousehold)

		pass, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, pass.Counts[string(models.OutcomeLeftPending)])
		assert.True(t, fixture.exists("/forms/pending/p300.xml"))
	})

	t.Run("Missing Relationship Fields Can Be Held", func(t *testing.T) {
		cfg := testPostProcessConfig
		cfg.ArchiveWithoutRelationship = false
		fixture := newEngineFixture(t, cfg)
		fixture.addPending(t, "p100.xml", formP100)

		pass, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, pass.Counts[string(models.OutcomeLeftPending)])
		assert.True(t, fixture.exists("/forms/pending/p100.xml"))
	})
}

func TestRunPassFailurePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("Collaborator Failure Is Archived", func(t *testing.T) {
		fixture := newEngineFixture(t, testPostProcessConfig)
		fixture.identity.findErr = errors.New("identity service down")
		fixture.addPending(t, "p100.xml", formP100)

		pass, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, pass.Counts[string(models.OutcomeFailedArchived)])
		assert.Contains(t, pass.Documents[0].Error, "identity service down")
		assert.True(t, fixture.exists("/forms/archive/2024-05-17/p100.xml"))
		assert.False(t, fixture.exists("/forms/error/p100.xml"))
	})

	t.Run("Malformed Document Is Archived", func(t *testing.T) {
		fixture := newEngineFixture(t, testPostProcessConfig)
		fixture.addPending(t, "broken.xml", "<form><patient>")

		pass, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, pass.Counts[string(models.OutcomeFailedArchived)])
		assert.True(t, fixture.exists("/forms/archive/2024-05-17/broken.xml"))
	})

	t.Run("Panic Is Archived", func(t *testing.T) {
		fixture := newEngineFixture(t, testPostProcessConfig)
		fixture.identity.panicOn = "attribute"
		fixture.addPending(t, "p100.xml", formP100)

		pass, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, pass.Counts[string(models.OutcomeFailedArchived)])
		assert.True(t, fixture.exists("/forms/archive/2024-05-17/p100.xml"))
		assert.False(t, fixture.usecase.running.Load())
	})

	t.Run("Retain Policy Keeps Document Pending", func(t *testing.T) {
		cfg := testPostProcessConfig
		cfg.OnFailure = "retain"
		fixture := newEngineFixture(t, cfg)
		fixture.identity.findErr = errors.New("identity service down")
		fixture.addPending(t, "p100.xml", formP100)

		pass, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, pass.Counts[string(models.OutcomeFailedRetained)])
		assert.True(t, fixture.exists("/forms/pending/p100.xml"))
	})

	t.Run("Archive Collision Is Reported", func(t *testing.T) {
		fixture := newEngineFixture(t, testPostProcessConfig)
		fixture.addPending(t, "p100.xml", formP100)
		require.NoError(t, afero.WriteFile(fixture.fs, "/forms/archive/2024-05-17/p100.xml", []byte("<form/>"), 0o644))

		pass, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, pass.Counts[string(models.OutcomeArchiveFailed)])
		assert.True(t, fixture.exists("/forms/pending/p100.xml"))
	})
}

func TestRunPassRescanIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fixture := newEngineFixture(t, testPostProcessConfig)
	fixture.addPending(t, "p100.xml", formP100)
	fixture.addPending(t, "blank.xml", formBlankIdentifier)

	_, err := fixture.usecase.RunPass(ctx)
	require.NoError(t, err)
	callsAfterFirst := fixture.identity.callCount()

	pass, err := fixture.usecase.RunPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pass.Pending)
	assert.Equal(t, 1, pass.Counts[string(models.OutcomeSkipped)])
	assert.Equal(t, callsAfterFirst, fixture.identity.callCount())
	assert.False(t, fixture.exists("/forms/pending/p100.xml"))

	assert.Equal(t, float64(2), testutil.ToFloat64(fixture.metrics.Passes.WithLabelValues(passResultCompleted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(fixture.metrics.Documents.WithLabelValues(string(models.OutcomeArchived))))
}

func TestRunPassSingleFlight(t *testing.T) {
	ctx := context.Background()
	fixture := newEngineFixture(t, testPostProcessConfig)
	fixture.identity.block = make(chan struct{})
	fixture.identity.entered = make(chan struct{}, 1)
	fixture.addPending(t, "p100.xml", formP100)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pass, err := fixture.usecase.RunPass(ctx)
		assert.NoError(t, err)
		assert.True(t, pass.Started)
	}()
	<-fixture.identity.entered

	for i := 0; i < 5; i++ {
		pass, err := fixture.usecase.RunPass(ctx)
		require.NoError(t, err)
		assert.False(t, pass.Started)
	}

	close(fixture.identity.block)
	<-done
	assert.Equal(t, 3, fixture.identity.callCount())
	assert.Equal(t, float64(5), testutil.ToFloat64(fixture.metrics.Passes.WithLabelValues(passResultBusy)))

	pass, err := fixture.usecase.RunPass(ctx)
	require.NoError(t, err)
	assert.True(t, pass.Started)
}
