package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

func TestMappingCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range mappingCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "show", "add", "add-child", "delete"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestMappingList_Roots(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	out, err := execute(t, "mapping", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "#1 events [part]")
	assert.Contains(t, out, "#4 works [item]")
	assert.Contains(t, out, "(2 children)")
	assert.Contains(t, out, "Page 1 of 1, 2 mappings")
	assert.NotContains(t, out, "title")
}

func TestMappingList_FiltersAndPaging(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	out, err := execute(t, "mapping", "list", "--source-type", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "works")
	assert.NotContains(t, out, "events")

	out, err = execute(t, "mapping", "list", "--parent", "1", "--page-size", "1", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "#3 date")
	assert.NotContains(t, out, "#2 type")
	assert.Contains(t, out, "Page 2 of 2, 2 mappings")
}

func TestMappingList_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "mapping", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No mappings found.")
}

func TestMappingShow_RendersTree(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	out, err := execute(t, "mapping", "show", "3")

	require.NoError(t, err)
	assert.Contains(t, out, "#1 events <- events")
	assert.Contains(t, out, "#2 type <- type")
	assert.Contains(t, out, "#3 date <- date")
	assert.NotContains(t, out, "works")
}

func TestMappingShow_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	out, err := execute(t, "mapping", "show", "4", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"id":4`)
	assert.Contains(t, out, `"name":"works"`)
	assert.Contains(t, out, `"name":"title"`)
}

func TestMappingShow_Errors(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	_, err := execute(t, "mapping", "show", "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = execute(t, "mapping", "show", "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "mapping", "show")
	assert.Error(t, err)
}

func TestMappingAdd_FromFlags(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	out, err := execute(t, "mapping", "add", "--name", "persons", "--sid", "{$item-id}/p", "--source", ".", "--facet", "person")

	require.NoError(t, err)
	assert.Contains(t, out, "Saved mapping #6 persons")

	m, err := ts.mappings.Get(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, "person", m.FacetFilter)
	assert.Equal(t, domain.SourceTypePart, m.SourceType)
}

func TestMappingAdd_RootWithoutSID(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "mapping", "add", "--name", "nosid")

	assert.ErrorIs(t, err, domain.ErrMissingSID)
}

func TestMappingAdd_FromFile(t *testing.T) {
	ts := setupTestServices(t)
	path := filepath.Join(t.TempDir(), "mapping.json")
	content := `{"name":"events","sourceType":2,"source":"events","sid":"{$part-id}",
"output":{"nodes":{"event":"x:events/{$id} [event]"},"triples":["{?event} a crm:E5_Event"]},
"children":[{"name":"type","sourceType":2,"source":"type","sid":""}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, err := execute(t, "mapping", "add", "--file", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Saved mapping #1 events")

	m, err := ts.mappings.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "type", m.Name)
	assert.Equal(t, 1, m.ParentID)

	root, err := ts.mappings.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, root.Output)
	assert.Equal(t, "x:events/{$id}", root.Output.Nodes["event"].UID)
}

func TestMappingAddChild(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	out, err := execute(t, "mapping", "add-child", "2", "--name", "period", "--source", "period")

	require.NoError(t, err)
	assert.Contains(t, out, "Saved mapping #6 period under #2")

	parent, err := ts.mappings.Get(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, parent.Children, 1)
	assert.Equal(t, 6, parent.Children[0].ID)
	assert.Equal(t, "period", parent.Children[0].Name)
}

func TestMappingAddChild_MissingParent(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	_, err := execute(t, "mapping", "add-child", "42", "--name", "x")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMappingDelete(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	out, err := execute(t, "mapping", "delete", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted mapping #1")

	_, err = ts.mappings.Get(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = ts.mappings.Get(context.Background(), 4)
	assert.NoError(t, err)
}
