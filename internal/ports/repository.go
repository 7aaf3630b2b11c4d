package ports

import (
	"context"

	"seoforge/internal/domain"
)

// AccountRepository persists external-identity → account mappings.
type AccountRepository interface {
	// Upsert creates the account for an external id if absent and returns it.
	Upsert(ctx context.Context, externalID string) (*domain.Account, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Account, error)
}

// SiteRepository persists the one connected store per account.
type SiteRepository interface {
	// Save upserts the site keyed by account id.
	Save(ctx context.Context, site *domain.Site) error
	GetByAccountID(ctx context.Context, accountID string) (*domain.Site, error)
	// Disconnect clears the stored token and unsets the active flag.
	Disconnect(ctx context.Context, siteID string) error
}

// PageRepository persists trackable catalog pages.
type PageRepository interface {
	// Upsert inserts or refreshes a page keyed by (siteId, shopifyId, type).
	Upsert(ctx context.Context, page *domain.Page) error
	GetByID(ctx context.Context, id string) (*domain.Page, error)
	ListBySite(ctx context.Context, siteID string, types []domain.PageType) ([]*domain.Page, error)
	CountBySiteAndType(ctx context.Context, siteID string, t domain.PageType) (int, error)
	// NextVersion atomically increments and returns the page's version counter.
	NextVersion(ctx context.Context, pageID string) (int, error)
	SetTrackingEnabled(ctx context.Context, pageID string) error
}

// ContentVersionRepository persists immutable generated content snapshots.
type ContentVersionRepository interface {
	Insert(ctx context.Context, v *domain.ContentVersion) error
	// Latest returns the highest-version snapshot for a page, nil when none exist.
	Latest(ctx context.Context, pageID string) (*domain.ContentVersion, error)
	CountByPage(ctx context.Context, pageID string) (int, error)
	MarkPublished(ctx context.Context, versionID string) (*domain.ContentVersion, error)
}

// KeywordRepository persists keyword phrases per site.
type KeywordRepository interface {
	// InsertIfAbsent stores the keyword unless (siteId, keyword) already
	// exists; it reports whether a row was created.
	InsertIfAbsent(ctx context.Context, kw *domain.Keyword) (bool, error)
	ListBySite(ctx context.Context, siteID, source string, limit, offset int) ([]*domain.Keyword, int, error)
	CountBySource(ctx context.Context, siteID string) (map[string]int, error)
	Delete(ctx context.Context, id string) error
}
