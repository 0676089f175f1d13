package document

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/tree"
)

const sampleDocument = `{
  "namedMappings": {
    "title": {
      "name": "title",
      "sourceType": 2,
      "source": "title",
      "sid": "",
      "output": {
        "nodes": { "t": "x:t Title [text]" },
        "triples": [ "{$item} x:hasTitle \"{$.}\"" ]
      },
      "children": [
        { "name": "sub", "sourceType": 2, "source": "sub", "sid": "" }
      ]
    }
  },
  "documentMappings": [
    {
      "name": "work",
      "sourceType": 2,
      "source": ".",
      "sid": "{$part-id}",
      "children": [
        { "name": "title", "sourceType": 2, "source": "", "sid": "" },
        { "name": "other", "sourceType": 2, "source": "o", "sid": "" }
      ]
    },
    { "name": "title", "sourceType": 1, "source": "", "sid": "root" }
  ]
}`

func sampleMapping() *domain.NodeMapping {
	return &domain.NodeMapping{
		Name:           "events",
		SourceType:     domain.SourceTypePart,
		FacetFilter:    "person",
		FlagsFilter:    3,
		PartTypeFilter: "it.vedph.historical-events",
		Description:    "Historical events",
		Source:         "events",
		SID:            "{$part-id}/events",
		Output: &domain.NodeMappingOutput{
			Nodes: map[string]domain.MappedNode{
				"event": {UID: "x:events/{$.}", Label: "Event", Tag: "event"},
			},
			Triples: []domain.MappedTriple{
				domain.NewURITriple("{?event}", "rdf:type", "crm:E5_Event"),
				domain.NewLiteralTriple("{?event}", "rdfs:label", "{$.}"),
			},
			Metadata: map[string]string{"lang": "en"},
		},
		Children: []*domain.NodeMapping{
			{Name: "event type", SourceType: domain.SourceTypePart, Source: "type", Ordinal: 1},
			{
				Name:       "chronotopes",
				SourceType: domain.SourceTypePart,
				Source:     "chronotopes",
				Children: []*domain.NodeMapping{
					{Name: "place", SourceType: domain.SourceTypePart, Source: "place", ScalarPattern: `^\w+$`},
				},
			},
		},
	}
}

func TestCodec_SerializeRoundTrip(t *testing.T) {
	c := New()
	m := sampleMapping()
	require.NoError(t, c.Visitor().Hydrate(m))

	data, err := c.Serialize(m, false)
	require.NoError(t, err)

	got, err := c.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestCodec_SerializeRoundTrip_KeepsEmptyCollections(t *testing.T) {
	c := New()
	m := &domain.NodeMapping{
		Name:   "r",
		Source: ".",
		SID:    "s",
		Output: &domain.NodeMappingOutput{
			Nodes:   map[string]domain.MappedNode{},
			Triples: []domain.MappedTriple{},
		},
	}
	require.NoError(t, c.Visitor().Hydrate(m))

	data, err := c.Serialize(m, false)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	out := raw["output"].(map[string]any)
	assert.Equal(t, map[string]any{}, out["nodes"])
	assert.Equal(t, []any{}, out["triples"])
	assert.NotContains(t, out, "metadata")

	got, err := c.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, m, got)
	assert.NotNil(t, got.Output.Nodes)
	assert.NotNil(t, got.Output.Triples)
	assert.Nil(t, got.Output.Metadata)

	yamlData, err := c.WriteDocumentYAML([]*domain.NodeMapping{m}, nil, false)
	require.NoError(t, err)
	again, err := c.ReadDocumentYAML(yamlData, true)
	require.NoError(t, err)
	assert.Equal(t, []*domain.NodeMapping{m}, again)
}

func TestCodec_SerializeDropID(t *testing.T) {
	c := New()
	m := sampleMapping()
	require.NoError(t, c.Visitor().Hydrate(m))

	data, err := c.Serialize(m, true)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
	assert.NotContains(t, string(data), `"parentId"`)

	got, err := c.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ID)
	assert.Equal(t, 0, got.Children[1].Children[0].ID)
	assert.Equal(t, m.Output, got.Output)
}

func TestCodec_SerializeShape(t *testing.T) {
	m := &domain.NodeMapping{
		ID:         1,
		Name:       "n",
		SourceType: domain.SourceTypeItem,
		Source:     "s",
		SID:        "sid",
		Output: &domain.NodeMappingOutput{
			Nodes:   map[string]domain.MappedNode{"k": {UID: "x:u", Label: "L", Tag: "T"}},
			Triples: []domain.MappedTriple{domain.NewLiteralTriple("a", "b", "c d")},
		},
	}

	data, err := New().Serialize(m, false)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(1), raw["id"])
	assert.Equal(t, float64(1), raw["sourceType"])
	assert.Equal(t, "sid", raw["sid"])
	assert.NotContains(t, raw, "children")

	out := raw["output"].(map[string]any)
	assert.Equal(t, map[string]any{"k": "x:u L [T]"}, out["nodes"])
	assert.Equal(t, []any{`a b "c d"`}, out["triples"])
}

func TestCodec_SerializeNil(t *testing.T) {
	_, err := New().Serialize(nil, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCodec_ReadDocument_HydratesAndExpands(t *testing.T) {
	c := New()

	mappings, err := c.ReadDocument([]byte(sampleDocument), true)
	require.NoError(t, err)
	require.Len(t, mappings, 2)

	work := mappings[0]
	assert.Equal(t, 1, work.ID)
	require.Len(t, work.Children, 2)

	title := work.Children[0]
	assert.Equal(t, 2, title.ID)
	assert.Equal(t, 1, title.ParentID)
	assert.Equal(t, "title", title.Source)
	require.NotNil(t, title.Output)
	assert.Equal(t, domain.MappedNode{UID: "x:t", Label: "Title", Tag: "text"}, title.Output.Nodes["t"])
	assert.Equal(t, []domain.MappedTriple{domain.NewLiteralTriple("{$item}", "x:hasTitle", "{$.}")}, title.Output.Triples)
	require.Len(t, title.Children, 1)
	assert.Equal(t, 4, title.Children[0].ID)
	assert.Equal(t, 2, title.Children[0].ParentID)
	assert.Equal(t, 3, work.Children[1].ID)

	// a root reference is replaced as a whole
	second := mappings[1]
	assert.Equal(t, 5, second.ID)
	assert.Equal(t, 0, second.ParentID)
	assert.Equal(t, "title", second.Source)
	require.Len(t, second.Children, 1)
	assert.Equal(t, 6, second.Children[0].ID)
	assert.Equal(t, 5, second.Children[0].ParentID)

	for _, m := range mappings {
		assert.NoError(t, tree.CheckUnique(m))
	}
}

func TestCodec_ReadDocument_CopiesAreIndependent(t *testing.T) {
	mappings, err := New().ReadDocument([]byte(sampleDocument), true)
	require.NoError(t, err)

	a := mappings[0].Children[0]
	b := mappings[1]
	a.Output.Nodes["t"] = domain.MappedNode{UID: "changed"}
	a.Children[0].Source = "changed"

	assert.Equal(t, "x:t", b.Output.Nodes["t"].UID)
	assert.Equal(t, "sub", b.Children[0].Source)
}

func TestCodec_ReadDocument_ReproducibleIDs(t *testing.T) {
	c := New()

	first, err := c.ReadDocument([]byte(sampleDocument), true)
	require.NoError(t, err)
	second, err := c.ReadDocument([]byte(sampleDocument), true)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := c.ReadDocument([]byte(sampleDocument), false)
	require.NoError(t, err)
	assert.Equal(t, 7, third[0].ID)
}

func TestCodec_ReadDocument_KeepsExplicitIDs(t *testing.T) {
	doc := `{"documentMappings": [
	  {"id": 10, "name": "r", "sourceType": 0, "source": "", "sid": "s", "children": [
	    {"name": "a", "sourceType": 0, "source": "", "sid": ""},
	    {"id": 3, "name": "b", "sourceType": 0, "source": "", "sid": ""}
	  ]}
	]}`

	mappings, err := New().ReadDocument([]byte(doc), true)
	require.NoError(t, err)

	r := mappings[0]
	assert.Equal(t, 10, r.ID)
	assert.Equal(t, 11, r.Children[0].ID)
	assert.Equal(t, 3, r.Children[1].ID)
	assert.Equal(t, 10, r.Children[1].ParentID)
}

func TestCodec_ReadDocument_DuplicateIDs(t *testing.T) {
	doc := `{"documentMappings": [
	  {"id": 1, "name": "r", "sourceType": 0, "source": "", "sid": "s", "children": [
	    {"id": 1, "name": "a", "sourceType": 0, "source": "", "sid": ""}
	  ]}
	]}`

	_, err := New().ReadDocument([]byte(doc), true)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestCodec_ReadDocument_DuplicateIDsAcrossRoots(t *testing.T) {
	doc := `{"documentMappings": [
	  {"id": 1, "name": "a", "sourceType": 0, "source": "", "sid": "s"},
	  {"id": 1, "name": "b", "sourceType": 0, "source": "", "sid": "s"}
	]}`

	mappings, err := New().ReadDocument([]byte(doc), true)

	assert.Nil(t, mappings)
	var dup *domain.DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, dup.ID)
}

func TestCodec_ReadDocument_ExplicitIDReservedAcrossRoots(t *testing.T) {
	doc := `{"documentMappings": [
	  {"name": "a", "sourceType": 0, "source": "", "sid": "s"},
	  {"id": 1, "name": "b", "sourceType": 0, "source": "", "sid": "s"}
	]}`

	mappings, err := New().ReadDocument([]byte(doc), true)

	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, 2, mappings[0].ID)
	assert.Equal(t, 1, mappings[1].ID)
}

func TestCodec_ReadDocument_MalformedJSON(t *testing.T) {
	doc := "{\n  \"documentMappings\": [ x ]\n}"

	mappings, err := New().ReadDocument([]byte(doc), true)
	assert.Nil(t, mappings)
	require.ErrorIs(t, err, domain.ErrDocumentParse)

	var pe *domain.DocumentParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, 25, pe.Column)

	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestCodec_ReadDocument_Strict(t *testing.T) {
	doc := `{"documentMappings": [
	  {"name": "r", "sourceType": 0, "source": "", "sid": "s",
	   "output": {"triples": ["x:s x:p x:o", "broken"]}}
	]}`

	mappings, err := New().ReadDocument([]byte(doc), true)
	require.NoError(t, err)
	assert.Len(t, mappings[0].Output.Triples, 1)

	_, err = New(WithStrict()).ReadDocument([]byte(doc), true)
	assert.ErrorIs(t, err, domain.ErrMalformedLine)
}

func TestCodec_SharedAllocator(t *testing.T) {
	alloc := domain.NewIDAllocator()
	alloc.Reset(50)
	c := New(WithAllocator(alloc))

	mappings, err := c.ReadDocument([]byte(sampleDocument), false)
	require.NoError(t, err)
	assert.Equal(t, 50, mappings[0].ID)
	assert.Same(t, alloc, c.Allocator())
}

func TestCodec_WriteDocument_RoundTrip(t *testing.T) {
	c := New()
	mappings, err := c.ReadDocument([]byte(sampleDocument), true)
	require.NoError(t, err)

	data, err := c.WriteDocument(mappings, nil, false)
	require.NoError(t, err)

	again, err := c.ReadDocument(data, true)
	require.NoError(t, err)
	assert.Equal(t, mappings, again)
}

func TestCodec_WriteDocument_Named(t *testing.T) {
	c := New()
	named := map[string]*domain.NodeMapping{
		"leaf": {Name: "leaf", Source: "x", SourceType: domain.SourceTypePart},
	}
	root := &domain.NodeMapping{
		Name: "root", SID: "s",
		Children: []*domain.NodeMapping{{Name: "leaf"}},
	}

	data, err := c.WriteDocument([]*domain.NodeMapping{root}, named, true)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"namedMappings"`)

	mappings, err := c.ReadDocument(data, true)
	require.NoError(t, err)
	require.Len(t, mappings[0].Children, 1)
	assert.Equal(t, "x", mappings[0].Children[0].Source)
	assert.Equal(t, domain.SourceTypePart, mappings[0].Children[0].SourceType)
}

func TestCodec_YAML_RoundTrip(t *testing.T) {
	c := New()
	mappings, err := c.ReadDocument([]byte(sampleDocument), true)
	require.NoError(t, err)

	data, err := c.WriteDocumentYAML(mappings, nil, false)
	require.NoError(t, err)
	assert.Contains(t, string(data), "documentMappings:")

	again, err := c.ReadDocumentYAML(data, true)
	require.NoError(t, err)
	assert.Equal(t, mappings, again)
}

func TestCodec_YAML_ParseError(t *testing.T) {
	_, err := New().ReadDocumentYAML([]byte("documentMappings:\n  - name: [unclosed\n"), true)
	assert.ErrorIs(t, err, domain.ErrDocumentParse)
}

func TestCodec_ReadWriteByFormat(t *testing.T) {
	c := New()
	mappings, err := c.Read([]byte(sampleDocument), domain.DocumentFormatJSON, true)
	require.NoError(t, err)

	data, err := c.Write(domain.DocumentFormatYAML, mappings, nil, false)
	require.NoError(t, err)

	again, err := c.Read(data, domain.DocumentFormatYAML, true)
	require.NoError(t, err)
	assert.Equal(t, mappings, again)

	_, err = c.Read(data, domain.DocumentFormat("xml"), true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, domain.DocumentFormatYAML, DetectFormat("mappings.yaml"))
	assert.Equal(t, domain.DocumentFormatYAML, DetectFormat("file:///tmp/Mappings.YML"))
	assert.Equal(t, domain.DocumentFormatJSON, DetectFormat("mappings.json"))
	assert.Equal(t, domain.DocumentFormatJSON, DetectFormat("mappings"))
}

func TestConvert_KeepsNamedMappings(t *testing.T) {
	yamlDoc, err := Convert([]byte(sampleDocument), domain.DocumentFormatJSON, domain.DocumentFormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(yamlDoc), "namedMappings:")
	assert.NotRegexp(t, `(?m)^\s*(- )?id:`, string(yamlDoc))

	jsonDoc, err := Convert(yamlDoc, domain.DocumentFormatYAML, domain.DocumentFormatJSON)
	require.NoError(t, err)

	want, err := New().ReadDocument([]byte(sampleDocument), true)
	require.NoError(t, err)
	got, err := New().ReadDocument(jsonDoc, true)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConvert_Errors(t *testing.T) {
	_, err := Convert([]byte("{"), domain.DocumentFormatJSON, domain.DocumentFormatYAML)
	assert.ErrorIs(t, err, domain.ErrDocumentParse)

	_, err = Convert([]byte("{}"), domain.DocumentFormatJSON, "xml")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
