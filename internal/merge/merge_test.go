package merge

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geodata/internal/jurisdiction"
)

const geography = `[
  {"name": "Testland", "alpha-2": "TL", "alpha-3": "TLD"},
  {"name": "United States of America", "alpha-2": "US", "alpha-3": "USA", "alias": ["United States"], "regions": [
    {"name": "New York", "alpha-2": "NY"},
    {"name": "Georgia", "alpha-2": "GA", "alias": ["State of Georgia"]}
  ]},
  {"name": "Georgia", "alpha-2": "GE", "alpha-3": "GEO"}
]`

func newTree(t *testing.T) *jurisdiction.Tree {
	t.Helper()
	recs, err := jurisdiction.DecodeGeography(strings.NewReader(geography))
	require.NoError(t, err)
	tree, err := jurisdiction.Build(recs)
	require.NoError(t, err)
	return tree
}

func records(t *testing.T, doc string) Records {
	t.Helper()
	recs, err := DecodeRecords(strings.NewReader(doc))
	require.NoError(t, err)
	return recs
}

func country(t *testing.T, tree *jurisdiction.Tree, key string) *jurisdiction.Jurisdiction {
	t.Helper()
	j, ok := tree.Country(key)
	require.True(t, ok, "country %q", key)
	return j
}

func subdivision(t *testing.T, tree *jurisdiction.Tree, countryKey, key string) *jurisdiction.Jurisdiction {
	t.Helper()
	ch, ok := tree.Global().Lookup(countryKey)
	require.True(t, ok)
	h, ok := tree.Local(ch).Lookup(key)
	require.True(t, ok, "subdivision %q", key)
	return tree.Get(h)
}

func TestNumber(t *testing.T) {
	cases := []struct {
		name   string
		in     any
		want   float64
		absent bool
		bad    bool
	}{
		{name: "nil", in: nil, absent: true},
		{name: "empty string", in: "  ", absent: true},
		{name: "json number", in: jsonNumber("12.5"), want: 12.5},
		{name: "float", in: 3.0, want: 3},
		{name: "numeric string", in: " 45000.5 ", want: 45000.5},
		{name: "garbage", in: "n/a", bad: true},
		{name: "nan", in: "NaN", bad: true},
		{name: "bool", in: true, bad: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := number(tc.in)
			switch {
			case tc.absent:
				require.ErrorIs(t, err, errAbsent)
			case tc.bad:
				require.Error(t, err)
				assert.NotErrorIs(t, err, errAbsent)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestPopulationTakesMostRecentPresentYear(t *testing.T) {
	tree := newTree(t)
	rep := Population(tree, records(t, `[
	  {"Country_Code": "TL", "Year_2016": null, "Year_2015": "oops", "Year_2010": null, "Year_2009": 1000, "Year_2008": 999},
	  {"Country_Code": "USA", "Year_2016": 323127513.4},
	  {"Country_Code": "ZZZ", "Year_2016": 5},
	  {"Year_2016": 5}
	]`), DefaultPopulationYears)

	assert.Equal(t, int64(1000), country(t, tree, "TL").Population)
	assert.Equal(t, int64(323127513), country(t, tree, "US").Population)
	assert.Equal(t, 4, rep.Records)
	assert.Equal(t, 2, rep.Matched)
	assert.Equal(t, 2, rep.Written)
	assert.Equal(t, 1, rep.SkippedCells)
	assert.Equal(t, []string{"ZZZ"}, rep.Unresolved)
}

func TestPopulationRespectsYearWindow(t *testing.T) {
	tree := newTree(t)
	Population(tree, records(t, `[{"Country_Code": "TL", "Year_2020": 7, "Year_1959": 8}]`), DefaultPopulationYears)
	assert.Zero(t, country(t, tree, "TL").Population)

	Population(tree, records(t, `[{"Country_Code": "TL", "Year_2020": 7}]`), YearRange{Max: 2020, Min: 2020})
	assert.Equal(t, int64(7), country(t, tree, "TL").Population)
}

func TestPopulationKeepsScanningPastZero(t *testing.T) {
	tree := newTree(t)
	Population(tree, records(t, `[{"Country_Code": "TL", "Year_2016": 0.2, "Year_2015": 40}]`), DefaultPopulationYears)
	assert.Equal(t, int64(40), country(t, tree, "TL").Population)
}

func TestCount(t *testing.T) {
	n, err := count(323127513.4)
	require.NoError(t, err)
	assert.Equal(t, int64(323127513), n)

	for _, f := range []float64{1e30, math.MaxInt64, -3} {
		_, err := count(f)
		assert.Error(t, err, "%v", f)
	}
}

func TestPopulationSkipsOutOfRangeCell(t *testing.T) {
	tree := newTree(t)
	rep := Population(tree, records(t, `[{"Country_Code": "TL", "Year_2016": 1e30, "Year_2015": -12, "Year_2014": 321}]`), DefaultPopulationYears)
	assert.Equal(t, int64(321), country(t, tree, "TL").Population)
	assert.Equal(t, 2, rep.SkippedCells)
	assert.Equal(t, 1, rep.Written)

	sub, err := SubdivisionPopulation(tree, "USA", records(t, `[{"name": "New York", "population": 1e30}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, sub.SkippedCells)
	assert.Zero(t, sub.Written)
}

func TestPopulationNeverOverwrites(t *testing.T) {
	tree := newTree(t)
	Population(tree, records(t, `[{"Country_Code": "TL", "Year_2009": 1000}]`), DefaultPopulationYears)
	rep := Population(tree, records(t, `[{"Country_Code": "TLD", "Year_2016": 5}]`), DefaultPopulationYears)
	assert.Equal(t, int64(1000), country(t, tree, "TL").Population)
	assert.Equal(t, 1, rep.Matched)
	assert.Zero(t, rep.Written)

	// A subdivision record naming the country itself is scoped out of the local index.
	sub, err := SubdivisionPopulation(tree, "USA", records(t, `[{"name": "Testland", "population": 1}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Testland"}, sub.Unresolved)
	assert.Equal(t, int64(1000), country(t, tree, "TL").Population)
}

func TestSubdivisionPopulation(t *testing.T) {
	tree := newTree(t)
	rep, err := SubdivisionPopulation(tree, "USA", records(t, `[
	  {"name": "New York", "population": 19453561},
	  {"name": "State of Georgia", "population": 10617423},
	  {"name": "Georgia", "population": 1},
	  {"name": "Atlantis", "population": 3},
	  {"name": "New York", "population": 2}
	]`))
	require.NoError(t, err)

	assert.Equal(t, int64(19453561), subdivision(t, tree, "USA", "NY").Population)
	assert.Equal(t, int64(10617423), subdivision(t, tree, "USA", "GA").Population)
	assert.Zero(t, country(t, tree, "GEO").Population)
	assert.Zero(t, country(t, tree, "USA").Population)
	assert.Equal(t, 5, rep.Records)
	assert.Equal(t, 4, rep.Matched)
	assert.Equal(t, 2, rep.Written)
	assert.Equal(t, []string{"Atlantis"}, rep.Unresolved)
}

func TestSubdivisionPopulationUnknownCountry(t *testing.T) {
	tree := newTree(t)
	_, err := SubdivisionPopulation(tree, "Narnia", records(t, `[]`))
	require.ErrorIs(t, err, ErrUnknownCountry)
}

func TestSubdivisionPopulationCountryWithoutRegions(t *testing.T) {
	tree := newTree(t)
	rep, err := SubdivisionPopulation(tree, "TL", records(t, `[{"name": "Somewhere", "population": 3}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Somewhere"}, rep.Unresolved)
}

func TestMedianAgePrefersCodeOverName(t *testing.T) {
	tree := newTree(t)
	rep := MedianAge(tree, records(t, `[
	  {"Code": "GEO", "Name": "United States", "medianage": 38.1},
	  {"Code": "XXX", "Name": "United States", "medianage": 38.3},
	  {"Code": null, "Name": "Testland", "medianage": 21.0},
	  {"Name": "Nowhere", "medianage": 40},
	  {"Code": "TL", "Name": "Testland", "medianage": 99}
	]`))

	assert.Equal(t, 38.1, country(t, tree, "GEO").MedianAge)
	assert.Equal(t, 38.3, country(t, tree, "USA").MedianAge)
	assert.Equal(t, 21.0, country(t, tree, "TL").MedianAge)
	assert.Equal(t, 5, rep.Records)
	assert.Equal(t, 4, rep.Matched)
	assert.Equal(t, 3, rep.Written)
	assert.Equal(t, []string{"Nowhere"}, rep.Unresolved)
}

func TestMedianAgeSkipsMalformedValue(t *testing.T) {
	tree := newTree(t)
	rep := MedianAge(tree, records(t, `[{"Code": "TL", "medianage": "old"}, {"Code": "TL", "medianage": 30}]`))
	assert.Equal(t, 30.0, country(t, tree, "TL").MedianAge)
	assert.Equal(t, 1, rep.SkippedCells)
}

func TestDecodeRecordsRejectsObject(t *testing.T) {
	_, err := DecodeRecords(strings.NewReader(`{"Country_Code": "TL"}`))
	require.Error(t, err)
}

func jsonNumber(s string) any {
	recs, err := DecodeRecords(strings.NewReader(`[{"v": ` + s + `}]`))
	if err != nil {
		panic(err)
	}
	return recs[0]["v"]
}
