package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-start-clock/internal/core/model"
	"github.com/penwyp/go-start-clock/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 8, 2, 8, 0, 0, 0, time.UTC)

func sampleListing() Listing {
	return Listing{
		EventName: "Kevätrastit 2025",
		EventDate: time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC),
		Entries: []model.Entry{
			{PersonName: "Juha Korhonen", Organisation: "Espoon Suunta", BibNumber: "102", ControlCard: "8123456", StartTime: t0, ClassName: "H21", StartGroup: "Start 2"},
			{PersonName: "Aino Nieminen", Organisation: "Tampereen Pyrintö", BibNumber: "201", StartTime: t0, ClassName: "D21", StartGroup: "Start 1"},
			{PersonName: "Liisa Mäkinen", StartTime: t0.Add(time.Minute), ClassName: "D21", StartGroup: "Start 1"},
			{PersonName: "Matti Virtanen", StartTime: t0.Add(2 * time.Minute), ClassName: "H21", StartGroup: "Start 2"},
		},
	}
}

func TestMain(m *testing.M) {
	if err := util.InitializeTimeProvider("UTC", "24h"); err != nil {
		panic(err)
	}
	m.Run()
}

func TestNew(t *testing.T) {
	for _, name := range append(Formats, "") {
		f, err := New(name, &bytes.Buffer{})
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := New("xml", nil)
	assert.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(sampleListing()))
	out := buf.String()

	for _, want := range []string{
		"Kevätrastit 2025 · 2025-08-02",
		"08:00:00", "Juha Korhonen", "Espoon Suunta", "102", "8123456", "Start 2",
		"08:02:00", "Matti Virtanen",
		"4 starters",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Juha Korhonen"), strings.Index(out, "Matti Virtanen"))
}

func TestTableFormatterStartGroupTitle(t *testing.T) {
	listing := sampleListing()
	listing.StartGroup = "Start 1"
	listing.Entries = listing.Entries[1:3]

	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(listing))
	assert.Contains(t, buf.String(), "(Start 1)")
	assert.Contains(t, buf.String(), "2 starters")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(sampleListing()))

	var decoded Listing
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Kevätrastit 2025", decoded.EventName)
	require.Len(t, decoded.Entries, 4)
	assert.Equal(t, "Start 2", decoded.Entries[0].StartGroup)
	assert.Contains(t, buf.String(), `"startName": "Start 2"`)

	buf.Reset()
	require.NoError(t, NewJSONFormatter(&buf).Format(Listing{EventName: "Empty"}))
	assert.Contains(t, buf.String(), `"entries": []`)
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(sampleListing()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "StartTime", records[0][0])
	assert.Equal(t, []string{"2025-08-02T08:00:00Z", "Juha Korhonen", "H21", "Espoon Suunta", "102", "8123456", "Start 2"}, records[1])
	assert.Equal(t, "Liisa Mäkinen", records[3][1])
}

func TestSummarize(t *testing.T) {
	summaries := Summarize(sampleListing().Entries)
	require.Len(t, summaries, 2)

	assert.Equal(t, "D21", summaries[0].ClassName, "ties on first start order by class name")
	assert.Equal(t, 2, summaries[0].Count)
	assert.Equal(t, t0, summaries[0].First)
	assert.Equal(t, t0.Add(time.Minute), summaries[0].Last)
	assert.Equal(t, []string{"Start 1"}, summaries[0].Groups)

	assert.Equal(t, "H21", summaries[1].ClassName)
	assert.Equal(t, t0.Add(2*time.Minute), summaries[1].Last)
}

func TestSummaryFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter(&buf).Format(sampleListing()))
	out := buf.String()
	assert.Contains(t, out, "D21")
	assert.Contains(t, out, "H21")
	assert.Contains(t, out, "08:02:00")

	buf.Reset()
	require.NoError(t, NewSummaryFormatter(&buf).Format(Listing{}))
	assert.Contains(t, buf.String(), "Total")
}
