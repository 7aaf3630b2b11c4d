package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"seoforge/internal/domain"
	"seoforge/internal/ports"
)

// SyncReport is the outcome of a catalog sync: how many entities each stage
// upserted and how many pages of each type the database now holds.
type SyncReport struct {
	Synced domain.SyncResult       `json:"synced"`
	Stored map[domain.PageType]int `json:"stored"`
	Total  int                     `json:"total"`
}

// CatalogService pulls the connected store's catalog into local pages.
type CatalogService struct {
	accounts   ports.AccountRepository
	sites      ports.SiteRepository
	pages      ports.PageRepository
	catalog    ports.CatalogClient
	encryption ports.EncryptionService
	logger     zerolog.Logger
}

// NewCatalogService creates the catalog sync service.
func NewCatalogService(
	accounts ports.AccountRepository,
	sites ports.SiteRepository,
	pages ports.PageRepository,
	catalog ports.CatalogClient,
	encryption ports.EncryptionService,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		accounts:   accounts,
		sites:      sites,
		pages:      pages,
		catalog:    catalog,
		encryption: encryption,
		logger:     logger,
	}
}

// Sync fetches products, collections and articles and upserts each as a page.
// The three stages are isolated: a failing stage aborts the run with an error
// naming the stage, but pages committed by earlier stages stay committed.
// Re-running never duplicates pages and never deletes rows for entities that
// disappeared upstream.
func (s *CatalogService) Sync(ctx context.Context) (*SyncReport, error) {
	site, err := resolveSite(ctx, s.accounts, s.sites)
	if err != nil {
		return nil, err
	}
	if site.AccessToken == "" {
		return nil, &domain.ValidationError{Message: "Shopify access token not found"}
	}

	accessToken, err := s.encryption.Decrypt(site.AccessToken)
	if err != nil {
		return nil, err
	}
	shop := site.Domain

	s.logger.Info().Str("shop", shop).Msg("Starting catalog sync")

	var result domain.SyncResult

	products, err := s.catalog.FetchProducts(ctx, shop, accessToken)
	if err != nil {
		return nil, fmt.Errorf("product sync failed: %w", err)
	}
	for _, p := range products {
		page := &domain.Page{
			SiteID:      site.ID,
			ShopifyID:   p.ID,
			Type:        domain.PageTypeProduct,
			Title:       p.Title,
			URL:         fmt.Sprintf("https://%s/products/%s", shop, p.Handle),
			LastUpdated: parseUpstreamTime(p.UpdatedAt),
		}
		if err := s.pages.Upsert(ctx, page); err != nil {
			return nil, fmt.Errorf("product sync failed: %w", err)
		}
		result.Products++
	}
	pagesSyncedTotal.WithLabelValues(string(domain.PageTypeProduct)).Add(float64(result.Products))

	collections, err := s.catalog.FetchCollections(ctx, shop, accessToken)
	if err != nil {
		return nil, fmt.Errorf("collection sync failed: %w", err)
	}
	for _, c := range collections {
		page := &domain.Page{
			SiteID:    site.ID,
			ShopifyID: c.ID,
			Type:      domain.PageTypeCollection,
			Title:     c.Title,
			URL:       fmt.Sprintf("https://%s/collections/%s", shop, c.Handle),
			// collection listings carry no updated_at
			LastUpdated: time.Now(),
		}
		if err := s.pages.Upsert(ctx, page); err != nil {
			return nil, fmt.Errorf("collection sync failed: %w", err)
		}
		result.Collections++
	}
	pagesSyncedTotal.WithLabelValues(string(domain.PageTypeCollection)).Add(float64(result.Collections))

	articles, err := s.catalog.FetchArticles(ctx, shop, accessToken)
	if err != nil {
		return nil, fmt.Errorf("article sync failed: %w", err)
	}
	for _, a := range articles {
		page := &domain.Page{
			SiteID:      site.ID,
			ShopifyID:   a.ID,
			Type:        domain.PageTypeArticle,
			Title:       a.Title,
			URL:         fmt.Sprintf("https://%s/blogs/%s/%s", shop, a.BlogHandle, a.Handle),
			LastUpdated: parseUpstreamTime(a.PublishedAt),
		}
		if err := s.pages.Upsert(ctx, page); err != nil {
			return nil, fmt.Errorf("article sync failed: %w", err)
		}
		result.Articles++
	}
	pagesSyncedTotal.WithLabelValues(string(domain.PageTypeArticle)).Add(float64(result.Articles))

	report := &SyncReport{
		Synced: result,
		Stored: make(map[domain.PageType]int, 3),
	}
	for _, t := range []domain.PageType{domain.PageTypeProduct, domain.PageTypeCollection, domain.PageTypeArticle} {
		count, err := s.pages.CountBySiteAndType(ctx, site.ID, t)
		if err != nil {
			return nil, err
		}
		report.Stored[t] = count
		report.Total += count
	}

	s.logger.Info().
		Str("shop", shop).
		Int("products", result.Products).
		Int("collections", result.Collections).
		Int("articles", result.Articles).
		Msg("Catalog sync complete")

	return report, nil
}

// parseUpstreamTime parses Shopify's RFC 3339 timestamps, falling back to now
// for absent or malformed values.
func parseUpstreamTime(value string) time.Time {
	if value == "" {
		return time.Now()
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Now()
	}
	return t
}
