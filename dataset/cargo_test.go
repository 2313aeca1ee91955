package dataset

import (
	"testing"
	"time"

	"github.com/poiesic/catscan/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `{
  "Company": [
    {"PageID": "1", "PageName": "Acme", "Description": "Widgets", "Industry": "Retail, , Consumer Electronics ", "ParentCompany": "Acme Holdings", "Type": "Public", "Website": "https://acme.example, acme.co.uk"}
  ],
  "Incident": [
    {"PageID": " 2 ", "PageName": "Acme recall", "Company": "Acme", "StartDate": "2023-04-05", "EndDate": "soon", "Status": "Pending Resolution", "Type": "Safety"},
    {"PageID": "3", "PageName": "Acme outage", "StartDate": "", "Status": "Ongoing"}
  ],
  "Product": [
    {"PageID": "4", "PageName": "Acme Phone", "Category": "Phones", "Company": "Acme", "ProductLine": "Acme Mobile", "Website": ""}
  ],
  "ProductLine": [
    {"PageID": "5", "PageName": "Acme Mobile", "Category": "Phones,Tablets", "Company": "Acme", "Website": "https://acme.example/mobile"}
  ]
}`

func TestParse(t *testing.T) {
	pages, err := Parse([]byte(sampleExport))
	require.NoError(t, err)
	require.Equal(t, 5, pages.Len())

	company := pages.Companies[0]
	assert.Equal(t, core.ID(1), company.Id)
	assert.Equal(t, []string{"Retail", "Consumer Electronics"}, company.Industries)
	assert.Equal(t, []string{"https://acme.example", "acme.co.uk"}, company.Websites)
	assert.Equal(t, "Acme Holdings", company.ParentCompany)

	recall := pages.Incidents[0]
	assert.Equal(t, core.ID(2), recall.Id)
	require.NotNil(t, recall.StartDate)
	assert.True(t, recall.StartDate.Equal(time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, recall.EndDate)
	assert.Equal(t, core.IncidentStatusPendingResolution, recall.Status)

	outage := pages.Incidents[1]
	assert.Nil(t, outage.StartDate)
	assert.Equal(t, core.IncidentStatusUnknown, outage.Status)

	assert.Nil(t, pages.Products[0].Websites)
	assert.Equal(t, []string{"Phones", "Tablets"}, pages.ProductLines[0].Categories)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"Company": [`},
		{"missing arrays", `{"Company": []}`},
		{"non-numeric id", `{"Company": [{"PageID": "abc", "PageName": "X"}], "Incident": [], "Product": [], "ProductLine": []}`},
		{"zero id", `{"Company": [{"PageID": "0", "PageName": "X"}], "Incident": [], "Product": [], "ProductLine": []}`},
		{"empty name", `{"Company": [], "Incident": [{"PageID": "3", "PageName": "  "}], "Product": [], "ProductLine": []}`},
		{"duplicate across kinds", `{"Company": [{"PageID": "7", "PageName": "A"}], "Incident": [], "Product": [{"PageID": "7", "PageName": "B"}], "ProductLine": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidDataset)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Time
	}{
		{"2024-05-03", ptr(time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC))},
		{"2024-05-03T10:00:00Z", ptr(time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC))},
		{"May 3, 2024", ptr(time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC))},
		{"2016-01", ptr(time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC))},
		{"", nil},
		{"not yet", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseDate(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v", got)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , "))
	assert.Equal(t, []string{"a", "b c"}, splitList(" a ,b c,"))
}

func TestLoadBundled(t *testing.T) {
	pages, err := LoadBundled()
	require.NoError(t, err)
	assert.NotEmpty(t, pages.Companies)
	assert.NotEmpty(t, pages.Incidents)
	assert.NotEmpty(t, pages.Products)
	assert.NotEmpty(t, pages.ProductLines)

	copied := Bundled()
	copied[0] = 'x'
	assert.NotEqual(t, copied[0], Bundled()[0])
}

func ptr[T any](v T) *T { return &v }
