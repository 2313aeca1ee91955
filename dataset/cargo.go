package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/catscan/core"
)

// Export is the wiki's Cargo table export: four arrays of flat string records.
type Export struct {
	Company     []CompanyCargo     `json:"Company"`
	Incident    []IncidentCargo    `json:"Incident"`
	Product     []ProductCargo     `json:"Product"`
	ProductLine []ProductLineCargo `json:"ProductLine"`
}

type CompanyCargo struct {
	PageID        string `json:"PageID"`
	PageName      string `json:"PageName"`
	Description   string `json:"Description"`
	Industry      string `json:"Industry"`
	ParentCompany string `json:"ParentCompany"`
	Type          string `json:"Type"`
	Website       string `json:"Website"`
}

type IncidentCargo struct {
	PageID      string `json:"PageID"`
	PageName    string `json:"PageName"`
	Company     string `json:"Company"`
	Description string `json:"Description"`
	EndDate     string `json:"EndDate"`
	Product     string `json:"Product"`
	ProductLine string `json:"ProductLine"`
	StartDate   string `json:"StartDate"`
	Status      string `json:"Status"`
	Type        string `json:"Type"`
}

type ProductCargo struct {
	PageID      string `json:"PageID"`
	PageName    string `json:"PageName"`
	Category    string `json:"Category"`
	Company     string `json:"Company"`
	Description string `json:"Description"`
	ProductLine string `json:"ProductLine"`
	Website     string `json:"Website"`
}

type ProductLineCargo struct {
	PageID      string `json:"PageID"`
	PageName    string `json:"PageName"`
	Category    string `json:"Category"`
	Company     string `json:"Company"`
	Description string `json:"Description"`
	Website     string `json:"Website"`
}

// Date layouts accepted for incident start and end dates, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
	"2006/01/02",
	"January 2, 2006",
	"2 January 2006",
	"2006-01",
	"2006",
}

// Decode parses raw export JSON without converting it.
func Decode(data []byte) (*Export, error) {
	var export Export
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&export); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if export.Company == nil || export.Incident == nil || export.Product == nil || export.ProductLine == nil {
		return nil, fmt.Errorf("%w: export must contain Company, Incident, Product and ProductLine arrays", ErrInvalidDataset)
	}
	return &export, nil
}

// Parse decodes and converts raw export JSON. The whole dataset is rejected
// if any record is invalid.
func Parse(data []byte) (*core.PageSet, error) {
	export, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return export.PageSet()
}

// PageSet converts the export into typed entries and validates them.
// Multi-valued fields are comma separated; unparseable dates and unknown
// statuses become empty values rather than errors.
func (e *Export) PageSet() (*core.PageSet, error) {
	pages := &core.PageSet{
		Companies:    make([]*core.CompanyPage, 0, len(e.Company)),
		Incidents:    make([]*core.IncidentPage, 0, len(e.Incident)),
		Products:     make([]*core.ProductPage, 0, len(e.Product)),
		ProductLines: make([]*core.ProductLinePage, 0, len(e.ProductLine)),
	}

	for i, c := range e.Company {
		page, err := newPage(c.PageID, c.PageName)
		if err != nil {
			return nil, fmt.Errorf("%w: Company[%d]: %w", ErrInvalidDataset, i, err)
		}
		pages.Companies = append(pages.Companies, &core.CompanyPage{
			Page:          page,
			Description:   c.Description,
			Industries:    splitList(c.Industry),
			ParentCompany: c.ParentCompany,
			Type:          c.Type,
			Websites:      splitList(c.Website),
		})
	}

	for i, inc := range e.Incident {
		page, err := newPage(inc.PageID, inc.PageName)
		if err != nil {
			return nil, fmt.Errorf("%w: Incident[%d]: %w", ErrInvalidDataset, i, err)
		}
		status, _ := core.ParseIncidentStatus(strings.TrimSpace(inc.Status))
		pages.Incidents = append(pages.Incidents, &core.IncidentPage{
			Page:        page,
			Company:     inc.Company,
			Description: inc.Description,
			StartDate:   parseDate(inc.StartDate),
			EndDate:     parseDate(inc.EndDate),
			Product:     inc.Product,
			ProductLine: inc.ProductLine,
			Status:      status,
			Type:        inc.Type,
		})
	}

	for i, p := range e.Product {
		page, err := newPage(p.PageID, p.PageName)
		if err != nil {
			return nil, fmt.Errorf("%w: Product[%d]: %w", ErrInvalidDataset, i, err)
		}
		pages.Products = append(pages.Products, &core.ProductPage{
			Page:        page,
			Categories:  splitList(p.Category),
			Company:     p.Company,
			Description: p.Description,
			ProductLine: p.ProductLine,
			Websites:    splitList(p.Website),
		})
	}

	for i, pl := range e.ProductLine {
		page, err := newPage(pl.PageID, pl.PageName)
		if err != nil {
			return nil, fmt.Errorf("%w: ProductLine[%d]: %w", ErrInvalidDataset, i, err)
		}
		pages.ProductLines = append(pages.ProductLines, &core.ProductLinePage{
			Page:        page,
			Categories:  splitList(pl.Category),
			Company:     pl.Company,
			Description: pl.Description,
			Websites:    splitList(pl.Website),
		})
	}

	if err := core.ValidateEntries(pages.All()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	return pages, nil
}

// newPage parses the shared identity fields. Range and name checks happen in
// core.ValidateEntries once every kind is converted.
func newPage(rawID, name string) (core.Page, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return core.Page{}, fmt.Errorf("%w: page id %q", core.ErrInvalidID, rawID)
	}
	return core.Page{Id: core.ID(id), Name: strings.TrimSpace(name)}, nil
}

// splitList splits a comma separated field, trimming items and dropping empty ones.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseDate returns nil for empty or unparseable input.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
