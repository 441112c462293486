package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patchForm = `<form>
  <patient>
    <patient.birthdate>1900-01-01</patient.birthdate>
  </patient>
</form>`

func TestPatchFile(t *testing.T) {
	t.Run("In Place", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/tmp/form.xml", []byte(patchForm), 0o644))

		require.NoError(t, patchFile(fs, "/tmp/form.xml", "birthdate", "1990-02-01", ""))

		patched, err := afero.ReadFile(fs, "/tmp/form.xml")
		require.NoError(t, err)
		assert.Contains(t, string(patched), "<patient.birthdate>1990-02-01</patient.birthdate>")
	})

	t.Run("To Output", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/tmp/form.xml", []byte(patchForm), 0o644))

		require.NoError(t, patchFile(fs, "/tmp/form.xml", "birthdate", "1990-02-01", "/tmp/out.xml"))

		original, err := afero.ReadFile(fs, "/tmp/form.xml")
		require.NoError(t, err)
		assert.Equal(t, patchForm, string(original))
		exists, _ := afero.Exists(fs, "/tmp/out.xml")
		assert.True(t, exists)
	})

	t.Run("Unknown Field", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/tmp/form.xml", []byte(patchForm), 0o644))

		err := patchFile(fs, "/tmp/form.xml", "shoe_size", "42", "")
		assert.ErrorContains(t, err, "unknown field")
	})

	t.Run("Missing Field Leaves File Alone", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/tmp/form.xml", []byte(patchForm), 0o644))

		assert.Error(t, patchFile(fs, "/tmp/form.xml", "phone", "0700", ""))
		original, _ := afero.ReadFile(fs, "/tmp/form.xml")
		assert.Equal(t, patchForm, string(original))
	})
}
