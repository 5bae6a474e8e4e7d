package doctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

func TestDirectory_DefaultSelection(t *testing.T) {
	d, err := NewDirectory(DefaultRoster())
	require.NoError(t, err)

	assert.Equal(t, "doc1", d.Selected())
	assert.Equal(t, []string{"doc1", "doc2", "doc3"}, d.IDs())

	doc, ok := d.Get("doc3")
	require.True(t, ok)
	assert.Equal(t, "NOT AVAILABLE", doc.Status)
}

func TestDirectory_Select(t *testing.T) {
	d, err := NewDirectory(DefaultRoster())
	require.NoError(t, err)

	require.NoError(t, d.Select("doc2"))
	assert.Equal(t, "doc2", d.Selected())

	err = d.Select("doc9")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "doc2", d.Selected())
}

func TestNewDirectory_Invalid(t *testing.T) {
	_, err := NewDirectory(nil)
	assert.Error(t, err)

	_, err = NewDirectory([]model.Doctor{{ID: "a"}, {ID: "a"}})
	assert.Error(t, err)
}
