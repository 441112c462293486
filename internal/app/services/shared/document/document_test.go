package document

import (
	"errors"
	"mobileforms-service/internal/pkg/exceptions"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleForm = `<?xml version="1.0" encoding="UTF-8"?>
<form id="registration">
  <patient>
    <patient.medical_record_number>P100</patient.medical_record_number>
    <patient.secondary_identifier>S-7</patient.secondary_identifier>
    <patient.household_identifier>  </patient.household_identifier>
    <patient.phone_number>0811</patient.phone_number>
    <patient.birthdate>1990-04-01</patient.birthdate>
    <patient.provider_id>PRV-1</patient.provider_id>
  </patient>
  <obs>
    <obs.relationship_to_head>child</obs.relationship_to_head>
  </obs>
  <encounter>
    <encounter.provider_id>PRV-2</encounter.provider_id>
  </encounter>
</form>`

func TestParse(t *testing.T) {
	t.Run("Valid Document", func(t *testing.T) {
		doc, err := Parse([]byte(sampleForm))
		require.NoError(t, err)
		assert.NotNil(t, doc)
	})

	malformed := map[string]string{
		"Empty":            "",
		"Plain Text":       "not xml",
		"Unclosed Element": "<form><patient>",
		"Mismatched Tags":  "<form><patient></obs></form>",
		"Two Roots":        "<form/><form/>",
	}
	for name, raw := range malformed {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse([]byte(raw))
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, exceptions.ErrMalformedDocument))
		})
	}
}

func TestExtract(t *testing.T) {
	doc, err := Parse([]byte(sampleForm))
	require.NoError(t, err)

	expected := map[FieldLocator]string{
		FieldPatientIdentifier:   "P100",
		FieldSecondaryIdentifier: "S-7",
		FieldPhone:               "0811",
		FieldBirthdate:           "1990-04-01",
		FieldProvider:            "PRV-1",
		FieldRelationshipToHead:  "child",
		FieldEncounterProvider:   "PRV-2",
	}
	for field, want := range expected {
		value, ok := doc.Extract(field)
		assert.True(t, ok, field.String())
		assert.Equal(t, want, value, field.String())
	}

	t.Run("Blank Text Is Absent", func(t *testing.T) {
		value, ok := doc.Extract(FieldHouseholdIdentifier)
		assert.False(t, ok)
		assert.Empty(t, value)
	})

	t.Run("Missing Element Is Absent", func(t *testing.T) {
		other, err := Parse([]byte(`<form><patient/></form>`))
		require.NoError(t, err)
		_, ok := other.Extract(FieldPatientIdentifier)
		assert.False(t, ok)
	})

	t.Run("Unknown Locator Is Absent", func(t *testing.T) {
		_, ok := doc.Extract(FieldLocator(99))
		assert.False(t, ok)
	})
}

func TestPatchField(t *testing.T) {
	t.Run("Replaces Only The Addressed Text", func(t *testing.T) {
		patched, err := PatchField([]byte(sampleForm), FieldPatientIdentifier, "P200")
		require.NoError(t, err)

		expected := strings.Replace(sampleForm, ">P100<", ">P200<", 1)
		assert.Equal(t, expected, string(patched))

		doc, err := Parse(patched)
		require.NoError(t, err)
		value, ok := doc.Extract(FieldPatientIdentifier)
		assert.True(t, ok)
		assert.Equal(t, "P200", value)
	})

	t.Run("Keeps Non-Canonical Bytes Outside The Field", func(t *testing.T) {
		cases := map[string]string{
			"empty element elsewhere": `<form><note></note><patient><patient.medical_record_number>P1</patient.medical_record_number></patient></form>`,
			"single quoted attribute": `<form id='r'><patient><patient.medical_record_number>P1</patient.medical_record_number></patient></form>`,
			"crlf line endings":       "<form>\r\n  <patient>\r\n    <patient.medical_record_number>P1</patient.medical_record_number>\r\n  </patient>\r\n</form>\r\n",
			"entity in sibling":       `<form><obs><obs.relationship_to_head>head&apos;s child</obs.relationship_to_head></obs><patient><patient.medical_record_number>P1</patient.medical_record_number></patient></form>`,
			"comment and cdata":       `<!-- export --><form><![CDATA[x]]><patient  ><patient.medical_record_number>P1</patient.medical_record_number></patient></form>`,
		}
		for name, raw := range cases {
			t.Run(name, func(t *testing.T) {
				patched, err := PatchField([]byte(raw), FieldPatientIdentifier, "P2")
				require.NoError(t, err)
				assert.Equal(t, strings.Replace(raw, ">P1<", ">P2<", 1), string(patched))
			})
		}
	})

	t.Run("Expands A Self-Closing Field", func(t *testing.T) {
		raw := `<form><patient><patient.household_identifier kind='h'/></patient></form>`
		patched, err := PatchField([]byte(raw), FieldHouseholdIdentifier, "H-9")
		require.NoError(t, err)
		assert.Equal(t, `<form><patient><patient.household_identifier kind='h'>H-9</patient.household_identifier></patient></form>`, string(patched))
	})

	t.Run("Escapes The New Value", func(t *testing.T) {
		raw := `<form><patient><patient.phone_number>1</patient.phone_number></patient></form>`
		patched, err := PatchField([]byte(raw), FieldPhone, "a<b&c")
		require.NoError(t, err)
		assert.Equal(t, `<form><patient><patient.phone_number>a&lt;b&amp;c</patient.phone_number></patient></form>`, string(patched))

		doc, err := Parse(patched)
		require.NoError(t, err)
		value, _ := doc.Extract(FieldPhone)
		assert.Equal(t, "a<b&c", value)
	})

	t.Run("Fills A Blank Field", func(t *testing.T) {
		patched, err := PatchField([]byte(sampleForm), FieldHouseholdIdentifier, "H-9")
		require.NoError(t, err)

		doc, err := Parse(patched)
		require.NoError(t, err)
		value, ok := doc.Extract(FieldHouseholdIdentifier)
		assert.True(t, ok)
		assert.Equal(t, "H-9", value)
	})

	t.Run("Field Not Found Leaves Input Untouched", func(t *testing.T) {
		raw := []byte(`<form><obs/></form>`)
		original := append([]byte(nil), raw...)

		patched, err := PatchField(raw, FieldPatientIdentifier, "P200")
		assert.Nil(t, patched)
		assert.True(t, errors.Is(err, exceptions.ErrFieldNotFound))
		assert.Equal(t, original, raw)
	})

	t.Run("Ambiguous Field Is Malformed", func(t *testing.T) {
		raw := []byte(`<form><patient><patient.provider_id>A</patient.provider_id><patient.provider_id>B</patient.provider_id></patient></form>`)
		_, err := PatchField(raw, FieldProvider, "C")
		assert.True(t, errors.Is(err, exceptions.ErrMalformedDocument))
	})

	t.Run("Malformed Input", func(t *testing.T) {
		_, err := PatchField([]byte("<form>"), FieldProvider, "C")
		assert.True(t, errors.Is(err, exceptions.ErrMalformedDocument))
	})
}

func TestFieldCatalog(t *testing.T) {
	for _, field := range Fields() {
		_, ok := field.compiled()
		assert.True(t, ok, field.String())
		assert.True(t, strings.HasPrefix(field.Path(), "/form/"), field.String())
	}
	assert.Equal(t, "FieldLocator(42)", FieldLocator(42).String())

	field, ok := ParseFieldLocator("birthdate")
	assert.True(t, ok)
	assert.Equal(t, FieldBirthdate, field)
	_, ok = ParseFieldLocator("shoe_size")
	assert.False(t, ok)
}
