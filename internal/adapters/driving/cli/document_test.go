package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapping-builder/internal/adapters/driven/source"
	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

const testDocument = `{
  "namedMappings": {
    "title": { "name": "title", "sourceType": 1, "source": "title", "sid": "" }
  },
  "documentMappings": [
    {
      "name": "works",
      "sourceType": 1,
      "source": ".",
      "sid": "{$item-id}",
      "children": [
        { "name": "title", "sourceType": 1, "source": "", "sid": "" }
      ]
    }
  ]
}`

func writeTestDocument(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range documentCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"import", "export", "convert", "validate", "watch"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestDocumentImport(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)
	path := writeTestDocument(t, "mappings.json", testDocument)

	out, err := execute(t, "doc", "import", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 root mappings")

	page, err := ts.mappings.List(context.Background(), domain.NodeMappingFilter{}, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	works := page.Items[0]
	assert.Equal(t, 1, works.ID)
	require.Len(t, works.Children, 1)
	assert.Equal(t, "title", works.Children[0].Source)
}

func TestDocumentImport_Missing(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "doc", "import", filepath.Join(t.TempDir(), "missing.json"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentImport_Malformed(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)
	path := writeTestDocument(t, "bad.json", `{"documentMappings": [`)

	_, err := execute(t, "doc", "import", path)
	assert.ErrorIs(t, err, domain.ErrDocumentParse)

	// stored mappings are untouched
	page, err := ts.mappings.List(context.Background(), domain.NodeMappingFilter{}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestDocumentExport_Stdout(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	out, err := execute(t, "doc", "export", "-")

	require.NoError(t, err)
	assert.Contains(t, out, `"documentMappings"`)
	assert.Contains(t, out, `"name": "events"`)
	assert.Contains(t, out, `"id": 4`)
}

func TestDocumentExport_DropIDsYAML(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	out, err := execute(t, "doc", "export", "-", "--format", "yaml", "--drop-ids")

	require.NoError(t, err)
	assert.Contains(t, out, "documentMappings:")
	assert.Contains(t, out, "name: events")
	assert.NotRegexp(t, `(?m)^\s*(- )?id:`, out)
}

func TestDocumentExport_UsesSettingsFormat(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)
	require.NoError(t, ts.settings.Set("export.format", "yaml"))

	out, err := execute(t, "doc", "export", "-")

	require.NoError(t, err)
	assert.Contains(t, out, "documentMappings:")
}

func TestDocumentExport_ImportRoundTrip(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)
	path := filepath.Join(t.TempDir(), "out", "mappings.yaml")

	out, err := execute(t, "doc", "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported mappings to")

	before, err := ts.mappings.Export(context.Background(), domain.DocumentFormatJSON, false)
	require.NoError(t, err)

	_, err = execute(t, "doc", "import", path, "--reset-ids=false")
	require.NoError(t, err)

	after, err := ts.mappings.Export(context.Background(), domain.DocumentFormatJSON, false)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestDocumentExport_InvalidFormat(t *testing.T) {
	ts := setupTestServices(t)
	ts.seed(t)

	_, err := execute(t, "doc", "export", "-", "--format", "xml")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentConvert(t *testing.T) {
	setupTestServices(t)
	in := writeTestDocument(t, "mappings.json", testDocument)
	out := filepath.Join(filepath.Dir(in), "mappings.yml")

	stdout, err := execute(t, "doc", "convert", in, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(json)")
	assert.Contains(t, stdout, "(yaml)")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "namedMappings:")

	stdout, err = execute(t, "doc", "validate", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 root mappings, 2 mappings in all")
}

func TestDocumentValidate_Invalid(t *testing.T) {
	setupTestServices(t)
	path := writeTestDocument(t, "nosid.json",
		`{"documentMappings":[{"name":"x","sourceType":1,"source":".","sid":""}]}`)

	_, err := execute(t, "doc", "validate", path)

	assert.ErrorIs(t, err, domain.ErrMissingSID)
}

func TestDocumentValidate_DuplicateIDs(t *testing.T) {
	setupTestServices(t)
	path := writeTestDocument(t, "dup.json", `{"documentMappings":[
{"id":1,"name":"x","sourceType":1,"source":".","sid":"s"},
{"id":1,"name":"y","sourceType":1,"source":".","sid":"s"}]}`)

	_, err := execute(t, "doc", "validate", path)

	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestDocumentValidate_StrictSetting(t *testing.T) {
	ts := setupTestServices(t)
	path := writeTestDocument(t, "lines.json", `{"documentMappings":[{"name":"x","sourceType":1,"source":".","sid":"s",
"output":{"triples":["only-two parts"]}}]}`)

	_, err := execute(t, "doc", "validate", path)
	require.NoError(t, err)

	require.NoError(t, ts.settings.Set("codec.strict", "true"))
	_, err = execute(t, "doc", "validate", path)
	assert.ErrorIs(t, err, domain.ErrMalformedLine)
}

func TestWatchLoop(t *testing.T) {
	setupTestServices(t)
	path := writeTestDocument(t, "mappings.json", testDocument)

	changes := make(chan source.Change, 2)
	changes <- source.Change{Path: path, Type: source.ChangeUpdated}
	changes <- source.Change{Path: path, Type: source.ChangeRemoved}
	close(changes)

	var buf bytes.Buffer
	require.NoError(t, watchLoop(&buf, path, changes))

	assert.Contains(t, buf.String(), "1 root mappings, 2 mappings in all")
	assert.Contains(t, buf.String(), "was removed")
}

func TestWatchLoop_ReportsInvalidDocument(t *testing.T) {
	setupTestServices(t)
	path := writeTestDocument(t, "nosid.json",
		`{"documentMappings":[{"name":"x","sourceType":1,"source":".","sid":""}]}`)

	changes := make(chan source.Change, 1)
	changes <- source.Change{Path: path, Type: source.ChangeUpdated}
	close(changes)

	var buf bytes.Buffer
	require.NoError(t, watchLoop(&buf, path, changes))

	assert.Contains(t, buf.String(), domain.ErrMissingSID.Error())
	assert.NotContains(t, buf.String(), "mappings in all")
}
