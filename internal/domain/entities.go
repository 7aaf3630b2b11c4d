package domain

import "time"

// PageType identifies which kind of catalog entity a Page tracks.
type PageType string

const (
	PageTypeProduct    PageType = "PRODUCT"
	PageTypeCollection PageType = "COLLECTION"
	PageTypeArticle    PageType = "ARTICLE"
)

// ValidPageType reports whether t is one of the three known page types.
func ValidPageType(t string) bool {
	switch PageType(t) {
	case PageTypeProduct, PageTypeCollection, PageTypeArticle:
		return true
	}
	return false
}

// Account maps an external identity to an internal user record.
type Account struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	ExternalID string    `json:"external_id" bson:"externalId"`
	CreatedAt  time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updatedAt"`
}

// Site is the connected Shopify store for an account. One site per account.
type Site struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	AccountID   string    `json:"account_id" bson:"accountId"`
	Domain      string    `json:"domain" bson:"domain"`
	StoreURL    string    `json:"store_url" bson:"storeUrl"`
	Name        string    `json:"name" bson:"name"`
	AccessToken string    `json:"-" bson:"accessToken"` // encrypted, never serialized
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updatedAt"`
}

// Page is an SEO-trackable catalog item, keyed by (site, shopify id, type).
type Page struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	SiteID          string    `json:"site_id" bson:"siteId"`
	ShopifyID       string    `json:"shopify_id" bson:"shopifyId"`
	Type            PageType  `json:"type" bson:"type"`
	Title           string    `json:"title" bson:"title"`
	URL             string    `json:"url" bson:"url"`
	LastUpdated     time.Time `json:"last_updated" bson:"lastUpdated"`
	TrackingEnabled bool      `json:"tracking_enabled" bson:"trackingEnabled"`
	VersionSeq      int       `json:"-" bson:"versionSeq"`
	CreatedAt       time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updatedAt"`
}

// ContentVersion is an immutable generated content snapshot for a page.
// Rows are appended, never rewritten.
type ContentVersion struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	PageID      string     `json:"page_id" bson:"pageId"`
	Version     int        `json:"version" bson:"version"`
	Content     string     `json:"content" bson:"content"`
	Reason      string     `json:"reason" bson:"reason"`
	PublishedAt *time.Time `json:"published_at,omitempty" bson:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"createdAt"`
}

// Keyword is a phrase tied to a site and a source catalog entity.
// Source format: "<type lowercased>:<shopify id>", e.g. "product:123".
type Keyword struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	SiteID    string    `json:"site_id" bson:"siteId"`
	Keyword   string    `json:"keyword" bson:"keyword"`
	Source    string    `json:"source" bson:"source"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

// KeywordSource builds the synthetic source key for a page.
func KeywordSource(t PageType, shopifyID string) string {
	switch t {
	case PageTypeProduct:
		return "product:" + shopifyID
	case PageTypeCollection:
		return "collection:" + shopifyID
	case PageTypeArticle:
		return "article:" + shopifyID
	}
	return "unknown:" + shopifyID
}
