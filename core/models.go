package core

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// WikiBaseURL is the root of the knowledge base that entries link back to.
const WikiBaseURL = "https://consumerrights.wiki"

// ID identifies a knowledge-base page. IDs are unique across all entry kinds.
type ID int64

// ChecksumFromContent returns a hex-encoded BLAKE2b digest of data.
// Identical payloads always produce identical checksums.
func ChecksumFromContent(data []byte) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ArticleType identifies the kind of knowledge-base page.
type ArticleType string

const (
	ArticleTypeCompany     ArticleType = "COMPANY"
	ArticleTypeIncident    ArticleType = "INCIDENT"
	ArticleTypeProduct     ArticleType = "PRODUCT"
	ArticleTypeProductLine ArticleType = "PRODUCTLINE"
)

// IncidentStatus is the lifecycle state of an incident. The zero value means
// the status was missing or not recognised.
type IncidentStatus string

const (
	IncidentStatusUnknown           IncidentStatus = ""
	IncidentStatusActive            IncidentStatus = "Active"
	IncidentStatusPendingResolution IncidentStatus = "Pending Resolution"
	IncidentStatusResolved          IncidentStatus = "Resolved"
)

// ParseIncidentStatus maps raw text onto a known status.
// Unrecognised values yield IncidentStatusUnknown and false.
func ParseIncidentStatus(s string) (IncidentStatus, bool) {
	switch IncidentStatus(s) {
	case IncidentStatusActive, IncidentStatusPendingResolution, IncidentStatusResolved:
		return IncidentStatus(s), true
	}
	return IncidentStatusUnknown, false
}

// Entry is a single knowledge-base record. Implementations are immutable
// once constructed.
type Entry interface {
	EntryID() ID
	Title() string
	ArticleType() ArticleType
	URL() string
}

// Categorized is implemented by entries that can be matched by category.
// Companies expose their industries, products and product lines their categories.
type Categorized interface {
	Entry
	CategoryTerms() []string
}

// Page holds the identity shared by every entry kind.
type Page struct {
	Id   ID
	Name string
}

// EntryID returns the page ID.
func (p Page) EntryID() ID { return p.Id }

// Title returns the human readable page name. This is the text matched by searches.
func (p Page) Title() string { return p.Name }

// URL returns the canonical wiki link for the page.
func (p Page) URL() string {
	return WikiBaseURL + "/index.php?curid=" + strconv.FormatInt(int64(p.Id), 10)
}

// CompanyPage describes a company.
type CompanyPage struct {
	Page
	Description   string
	Industries    []string
	ParentCompany string
	Type          string
	Websites      []string
}

func (c *CompanyPage) ArticleType() ArticleType { return ArticleTypeCompany }
func (c *CompanyPage) CategoryTerms() []string  { return c.Industries }

// IncidentPage describes an incident involving a company, product or product line.
type IncidentPage struct {
	Page
	Company     string
	Description string
	StartDate   *time.Time // nil when missing or unparseable
	EndDate     *time.Time // nil when missing or unparseable
	Product     string
	ProductLine string
	Status      IncidentStatus
	Type        string
}

func (i *IncidentPage) ArticleType() ArticleType { return ArticleTypeIncident }

// ProductPage describes a single product.
type ProductPage struct {
	Page
	Categories  []string
	Company     string
	Description string
	ProductLine string
	Websites    []string
}

func (p *ProductPage) ArticleType() ArticleType { return ArticleTypeProduct }
func (p *ProductPage) CategoryTerms() []string  { return p.Categories }

// ProductLinePage describes a family of products.
type ProductLinePage struct {
	Page
	Categories  []string
	Company     string
	Description string
	Websites    []string
}

func (p *ProductLinePage) ArticleType() ArticleType { return ArticleTypeProductLine }
func (p *ProductLinePage) CategoryTerms() []string  { return p.Categories }

var (
	_ Categorized = (*CompanyPage)(nil)
	_ Entry       = (*IncidentPage)(nil)
	_ Categorized = (*ProductPage)(nil)
	_ Categorized = (*ProductLinePage)(nil)
)

// Suppression records a user's mute or hide action for a page.
// A page is hidden permanently when Revision equals PageID.
type Suppression struct {
	PageID   ID
	MutedAt  time.Time
	Revision ID
}

// Hidden reports whether the suppression is the terminal hidden state.
func (s *Suppression) Hidden() bool {
	return s.PageID != 0 && s.Revision == s.PageID
}

// DatasetSnapshot describes a cached copy of the knowledge-base export.
// The payload itself is stored separately from this metadata.
type DatasetSnapshot struct {
	Checksum  string
	Source    string
	FetchedAt time.Time
	Size      int64
}

// PageSet groups the four entry collections that make up a knowledge base.
type PageSet struct {
	Companies    []*CompanyPage
	Incidents    []*IncidentPage
	Products     []*ProductPage
	ProductLines []*ProductLinePage
}

// All returns every entry in the set: companies, then incidents, products
// and product lines, each in their original order.
func (ps *PageSet) All() []Entry {
	if ps == nil {
		return nil
	}
	all := make([]Entry, 0, ps.Len())
	for _, c := range ps.Companies {
		all = append(all, c)
	}
	for _, i := range ps.Incidents {
		all = append(all, i)
	}
	for _, p := range ps.Products {
		all = append(all, p)
	}
	for _, pl := range ps.ProductLines {
		all = append(all, pl)
	}
	return all
}

// Len returns the total number of entries in the set.
func (ps *PageSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.Companies) + len(ps.Incidents) + len(ps.Products) + len(ps.ProductLines)
}
