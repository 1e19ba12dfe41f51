package statcan

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gridimpact "github.com/superdango/grid-impact"
)

const table = `"REF_DATE","GEO","DGUID","Class of electricity producer","Type of electricity generation","UOM","UOM_ID","SCALAR_FACTOR","SCALAR_ID","VECTOR","COORDINATE","VALUE","STATUS","SYMBOL","TERMINATED","DECIMALS"
"2021-01","Canada","2016A000011124","Total all classes of electricity producer","Total all types of electricity generation","Megawatt hours","282","units","0","v1","1.1.1","55000000","","","","0"
"2021-01","Ontario","2016A000235","Total all classes of electricity producer","Total all types of electricity generation","Megawatt hours","282","units","0","v2","7.1.1","10000000","","","","0"
"2021-01","Ontario","2016A000235","Total all classes of electricity producer","Hydraulic turbine","Megawatt hours","282","units","0","v3","7.1.2","2500000","","","","0"
"2021-01","Ontario","2016A000235","Total all classes of electricity producer","Nuclear steam turbine","Megawatt hours","282","units","0","v4","7.1.5","6000000","","","","0"
"2021-01","Ontario","2016A000235","Total all classes of electricity producer","Total electricity production from combustible fuels","Megawatt hours","282","units","0","v5","7.1.8","1500000","","","","0"
"2021-01","Ontario","2016A000235","Total all classes of electricity producer","Wind power turbine","Megawatt hours","282","units","0","v6","7.1.3","0","","","","0"
"2021-01","Ontario","2016A000235","Total all classes of electricity producer","Tidal power turbine","Megawatt hours","282","units","0","v7","7.1.4","10","","","","0"
"2021-01","Ontario","2016A000235","Electricity producers, electric utilities","Hydraulic turbine","Megawatt hours","282","units","0","v8","7.2.2","2000000","","","","0"
"2021-01","Quebec","2016A000224","Total all classes of electricity producer","Hydraulic turbine","Megawatt hours","282","units","0","v9","6.1.2","3000000","","","","0"
"2021-02","Ontario","2016A000235","Total all classes of electricity producer","Total electricity production from combustible fuels","Megawatt hours","282","units","0","v5","7.1.8","1000000","","","","0"
"2021-02","Quebec","2016A000224","Total all classes of electricity producer","Hydraulic turbine","Megawatt hours","282","units","0","v9","6.1.2","..","","","","0"
"2018-01","Quebec","2016A000224","Total all classes of electricity producer","Hydraulic turbine","Megawatt hours","282","units","0","v9","6.1.2","3000000","","","","0"
`

func tableServer(t *testing.T, content string) *httptest.Server {
	archive := new(bytes.Buffer)
	writer := zip.NewWriter(archive)
	entry, err := writer.Create(TableEntry)
	require.NoError(t, err)
	_, err = entry.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive.Bytes())
	}))
	t.Cleanup(server.Close)
	return server
}

func TestIngest(t *testing.T) {
	server := tableServer(t, table)
	source := New(WithTable(server.URL, TableEntry))
	assert.Equal(t, "statcan", source.Name())

	store := gridimpact.NewStore()
	store.Set("CA", "2021-01", gridimpact.Aggregate{
		Mix:       gridimpact.Mix{gridimpact.Coal: 0.1, gridimpact.Gas: 0.3, gridimpact.Hydro: 0.6},
		Generated: 50,
		Imported:  5,
	})

	lines, err := source.Ingest(t.Context(), store, gridimpact.Range{MinYear: 2019, MaxYear: 2021})
	require.NoError(t, err)
	assert.Equal(t, 7, lines)

	on, found := store.Get("CA-ON", "2021-01")
	require.True(t, found)
	assert.InDelta(t, 10, on.Generated.Float64(), 1e-9)
	assert.InDelta(t, 0.25, on.Mix[gridimpact.Hydro], 1e-9)
	assert.InDelta(t, 0.6, on.Mix[gridimpact.Nuclear], 1e-9)
	assert.InDelta(t, 0.0375, on.Mix[gridimpact.Coal], 1e-9)
	assert.InDelta(t, 0.1125, on.Mix[gridimpact.Gas], 1e-9)
	assert.Zero(t, on.Mix[gridimpact.Wind])
	assert.Zero(t, on.Mix[gridimpact.OtherRenewables])
	assert.InDelta(t, 1, on.Imported.Float64(), 1e-9)

	qc, found := store.Get("CA-QC", "2021-01")
	require.True(t, found)
	assert.InDelta(t, 3, qc.Generated.Float64(), 1e-9)
	assert.InDelta(t, 1, qc.Mix[gridimpact.Hydro], 1e-9)
	assert.InDelta(t, 0.3, qc.Imported.Float64(), 1e-9)

	// no national data: combustibles are accounted as other fossil
	february, found := store.Get("CA-ON", "2021-02")
	require.True(t, found)
	assert.InDelta(t, 1, february.Mix[gridimpact.OtherFossil], 1e-9)
	assert.Zero(t, february.Imported)

	_, found = store.Get("CA-QC", "2021-02")
	assert.False(t, found, "unavailable values are skipped")
	_, found = store.Get("CA-QC", "2018-01")
	assert.False(t, found)
	assert.Equal(t, 2, store.LastMonth(2021))
}

func TestIngestUnknownProvince(t *testing.T) {
	server := tableServer(t, `REF_DATE,GEO,Class of electricity producer,Type of electricity generation,VALUE
2021-01,Atlantis,Total all classes of electricity producer,Solar,10
`)
	_, err := New(WithTable(server.URL, TableEntry)).Ingest(t.Context(), gridimpact.NewStore(), gridimpact.Range{MinYear: 2019, MaxYear: 2021})
	assert.ErrorIs(t, err, gridimpact.ErrUnknownRegion)
}

func TestIngestMissingEntry(t *testing.T) {
	server := tableServer(t, table)
	_, err := New(WithTable(server.URL, "other.csv")).Ingest(t.Context(), gridimpact.NewStore(), gridimpact.Range{MinYear: 2019, MaxYear: 2021})
	assert.Error(t, err)
}
