package application

import (
	"context"

	"github.com/rs/zerolog"

	"seoforge/internal/domain"
	"seoforge/internal/ports"
)

// PageSummary is one page row in a listing, annotated with its version state.
type PageSummary struct {
	ID            string          `json:"id"`
	Type          domain.PageType `json:"type"`
	Title         string          `json:"title"`
	URL           string          `json:"url"`
	ShopifyID     string          `json:"shopifyId"`
	VersionCount  int             `json:"contentVersionsCount"`
	LatestVersion int             `json:"latestVersion"`
	TrackingOn    bool            `json:"trackingEnabled"`
}

// PageListing is a site's pages plus a by-type summary.
type PageListing struct {
	Pages  []PageSummary           `json:"pages"`
	Total  int                     `json:"total"`
	ByType map[domain.PageType]int `json:"byType"`
}

// PageService reads a site's tracked pages.
type PageService struct {
	accounts ports.AccountRepository
	sites    ports.SiteRepository
	pages    ports.PageRepository
	versions ports.ContentVersionRepository
	logger   zerolog.Logger
}

// NewPageService creates the page listing service.
func NewPageService(
	accounts ports.AccountRepository,
	sites ports.SiteRepository,
	pages ports.PageRepository,
	versions ports.ContentVersionRepository,
	logger zerolog.Logger,
) *PageService {
	return &PageService{
		accounts: accounts,
		sites:    sites,
		pages:    pages,
		versions: versions,
		logger:   logger,
	}
}

// List returns the site's pages, optionally filtered by type, each annotated
// with its latest version number and version count.
func (s *PageService) List(ctx context.Context, pageType string) (*PageListing, error) {
	site, err := resolveSite(ctx, s.accounts, s.sites)
	if err != nil {
		return nil, err
	}

	var types []domain.PageType
	if pageType != "" {
		if !domain.ValidPageType(pageType) {
			return nil, &domain.ValidationError{Message: "Invalid type. Must be PRODUCT, COLLECTION, or ARTICLE"}
		}
		types = []domain.PageType{domain.PageType(pageType)}
	}

	pages, err := s.pages.ListBySite(ctx, site.ID, types)
	if err != nil {
		return nil, err
	}

	listing := &PageListing{
		Pages:  make([]PageSummary, 0, len(pages)),
		ByType: make(map[domain.PageType]int, 3),
	}
	for _, page := range pages {
		count, err := s.versions.CountByPage(ctx, page.ID)
		if err != nil {
			return nil, err
		}
		latest := 0
		if count > 0 {
			v, err := s.versions.Latest(ctx, page.ID)
			if err != nil {
				return nil, err
			}
			if v != nil {
				latest = v.Version
			}
		}
		listing.Pages = append(listing.Pages, PageSummary{
			ID:            page.ID,
			Type:          page.Type,
			Title:         page.Title,
			URL:           page.URL,
			ShopifyID:     page.ShopifyID,
			VersionCount:  count,
			LatestVersion: latest,
			TrackingOn:    page.TrackingEnabled,
		})
	}
	listing.Total = len(listing.Pages)

	for _, t := range []domain.PageType{domain.PageTypeProduct, domain.PageTypeCollection, domain.PageTypeArticle} {
		count, err := s.pages.CountBySiteAndType(ctx, site.ID, t)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			listing.ByType[t] = count
		}
	}

	return listing, nil
}
