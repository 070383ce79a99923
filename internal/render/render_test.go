package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geodata/internal/jurisdiction"
)

func tree(t *testing.T, doc string) *jurisdiction.Tree {
	t.Helper()
	recs, err := jurisdiction.DecodeGeography(strings.NewReader(doc))
	require.NoError(t, err)
	tr, err := jurisdiction.Build(recs)
	require.NoError(t, err)
	return tr
}

func TestEncodeJSONShape(t *testing.T) {
	tr := tree(t, `[{"name": "Côte d'Ivoire", "alpha-2": "CI", "alpha-3": "CIV", "alias": ["Ivory Coast"],
	  "regions": [{"name": "Abidjan <District>", "alpha-2": "AB"}]}]`)
	c, _ := tr.Country("CI")
	c.Population = 25000000
	c.GDPPerCapitaPPP = 5455.25
	c.MedianAge = 19

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tr, JSON))
	want := `[
  {
    "name": "Côte d'Ivoire",
    "alpha-2": "CI",
    "alpha-3": "CIV",
    "population": 25000000,
    "medianage": 19.0,
    "gdppercapppp": 5455.25,
    "alias": [
      "Ivory Coast"
    ],
    "regions": [
      {
        "name": "Abidjan <District>",
        "alpha-2": "AB",
        "alpha-3": "",
        "population": 0,
        "medianage": 0.0,
        "gdppercapppp": 0.0,
        "alias": [],
        "regions": []
      }
    ]
  }
]
`
	assert.Equal(t, want, buf.String())
}

func TestEncodeEmptyTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tree(t, `[]`), JSON))
	assert.Equal(t, "[]\n", buf.String())
}

func TestDecimalMarshal(t *testing.T) {
	cases := map[float64]string{0: "0.0", 38: "38.0", 45000.5: "45000.5", -2: "-2.0", 1e21: "1e+21"}
	for in, want := range cases {
		b, err := Decimal(in).MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, want, string(b))
	}
}

func TestEncodeYAML(t *testing.T) {
	tr := tree(t, `[{"name": "Testland", "alpha-2": "TL", "alpha-3": "TLD"}]`)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tr, YAML))
	out := buf.String()
	assert.Contains(t, out, "- name: Testland\n")
	assert.Contains(t, out, "  alpha-2: TL\n")
	assert.Contains(t, out, "  alias: []\n")
	assert.Contains(t, out, "  regions: []\n")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": JSON, "JSON": JSON, "yaml": YAML, " yml ": YAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
	require.ErrorIs(t, Encode(&bytes.Buffer{}, tree(t, `[]`), Format("xml")), ErrUnknownFormat)
}

func TestWriteAndReadFileRoundTrip(t *testing.T) {
	for _, f := range []Format{JSON, YAML} {
		t.Run(string(f), func(t *testing.T) {
			tr := tree(t, `[{"name": "United States", "alpha-2": "US", "alpha-3": "USA", "alias": ["America"],
			  "regions": [{"name": "New York", "alpha-2": "NY"}]}]`)
			us, _ := tr.Country("USA")
			us.Population = 327000000
			us.MedianAge = 38.1
			tr.Get(us.Subdivisions[0]).Population = 19453561

			path := filepath.Join(t.TempDir(), "countries."+string(f))
			require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
			require.NoError(t, WriteFile(path, tr, f))

			back, err := ReadFile(path, "")
			require.NoError(t, err)
			assert.Equal(t, Document(tr), Document(back))
			h, ok := back.Global().Lookup("America")
			require.True(t, ok)
			assert.Equal(t, int64(327000000), back.Get(h).Population)
			sh, ok := back.Local(h).Lookup("NY")
			require.True(t, ok)
			assert.Equal(t, int64(19453561), back.Get(sh).Population)
		})
	}
}

func TestWriteFileMissingDirLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "countries.json")
	require.Error(t, WriteFile(path, tree(t, `[]`), JSON))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileFailedEncodeKeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "countries.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	require.Error(t, WriteFile(path, tree(t, `[]`), Format("xml")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
