package application

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"seoforge/internal/domain"
	"seoforge/internal/ports"
)

// seedDelay spaces out per-page upstream calls during seeding.
const seedDelay = 100 * time.Millisecond

// keywordCap is the per-source keyword limit enforced at write time and
// restored by cleanup for rows that predate it.
const keywordCap = 2

// SeedReport is the outcome of a keyword seeding run.
type SeedReport struct {
	PagesProcessed  int `json:"pagesProcessed"`
	KeywordsCreated int `json:"keywordsCreated"`
}

// KeywordPage is one page of a site's keywords plus the site-wide summary.
type KeywordPage struct {
	Keywords []*domain.Keyword `json:"keywords"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	BySource map[string]int    `json:"bySource"`
}

// DuplicateGroup describes one source holding more keywords than the cap.
type DuplicateGroup struct {
	Source   string            `json:"source"`
	Count    int               `json:"count"`
	Excess   int               `json:"excess"`
	Keywords []*domain.Keyword `json:"keywords"`
	ToDelete []*domain.Keyword `json:"toDelete"`
}

// CleanupReport is the outcome of a duplicate cleanup run.
type CleanupReport struct {
	DryRun          bool              `json:"dryRun"`
	TotalKeywords   int               `json:"totalKeywords"`
	SourcesOverCap  int               `json:"sourcesOverCap"`
	TotalDuplicates int               `json:"totalDuplicates"`
	DeletedCount    int               `json:"deletedCount"`
	Duplicates      []DuplicateGroup  `json:"duplicates"`
	Deleted         []*domain.Keyword `json:"deleted"`
}

// KeywordService seeds and manages SEO keywords for a site's pages.
type KeywordService struct {
	accounts   ports.AccountRepository
	sites      ports.SiteRepository
	pages      ports.PageRepository
	keywords   ports.KeywordRepository
	catalog    ports.CatalogClient
	generator  ports.ContentGenerator
	encryption ports.EncryptionService
	logger     zerolog.Logger
	delay      time.Duration
}

// NewKeywordService creates the keyword service.
func NewKeywordService(
	accounts ports.AccountRepository,
	sites ports.SiteRepository,
	pages ports.PageRepository,
	keywords ports.KeywordRepository,
	catalog ports.CatalogClient,
	generator ports.ContentGenerator,
	encryption ports.EncryptionService,
	logger zerolog.Logger,
) *KeywordService {
	return &KeywordService{
		accounts:   accounts,
		sites:      sites,
		pages:      pages,
		keywords:   keywords,
		catalog:    catalog,
		generator:  generator,
		encryption: encryption,
		logger:     logger,
		delay:      seedDelay,
	}
}

// Seed generates keywords for every product and collection page of the
// session's site. A failing page is logged and skipped; the batch always runs
// to the end. Storage is insert-if-absent on (site, phrase), so re-seeding
// never duplicates rows.
func (s *KeywordService) Seed(ctx context.Context) (*SeedReport, error) {
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

	pages, err := s.pages.ListBySite(ctx, site.ID, []domain.PageType{domain.PageTypeProduct, domain.PageTypeCollection})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("shop", site.Domain).Int("pages", len(pages)).Msg("Starting keyword seeding")

	report := &SeedReport{PagesProcessed: len(pages)}
	for _, page := range pages {
		description := ""
		if page.Type == domain.PageTypeProduct {
			description = s.catalog.FetchProductDescription(ctx, site.Domain, accessToken, page.ShopifyID)
		}

		phrases := s.generator.GenerateKeywords(ctx, page.Title, description)
		source := domain.KeywordSource(page.Type, page.ShopifyID)

		for _, phrase := range phrases {
			created, err := s.keywords.InsertIfAbsent(ctx, &domain.Keyword{
				SiteID:  site.ID,
				Keyword: phrase,
				Source:  source,
			})
			if err != nil {
				s.logger.Error().Err(err).Str("pageId", page.ID).Str("keyword", phrase).Msg("Failed to store keyword, skipping page")
				break
			}
			if created {
				report.KeywordsCreated++
				keywordsCreatedTotal.Inc()
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	s.logger.Info().Int("created", report.KeywordsCreated).Msg("Keyword seeding complete")
	return report, nil
}

// List returns one page of the site's keywords, optionally filtered by
// source, plus a by-source summary across the whole site.
func (s *KeywordService) List(ctx context.Context, source string, limit, offset int) (*KeywordPage, error) {
	site, err := resolveSite(ctx, s.accounts, s.sites)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	keywords, total, err := s.keywords.ListBySite(ctx, site.ID, source, limit, offset)
	if err != nil {
		return nil, err
	}

	bySource, err := s.keywords.CountBySource(ctx, site.ID)
	if err != nil {
		return nil, err
	}

	return &KeywordPage{
		Keywords: keywords,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		BySource: bySource,
	}, nil
}

// CleanupDuplicates finds sources holding more keywords than the cap and, in
// destructive mode, deletes everything but the oldest two per source. Rows
// created before the cap was enforced are the only ones this can find.
func (s *KeywordService) CleanupDuplicates(ctx context.Context, dryRun bool, sourceFilter string) (*CleanupReport, error) {
	site, err := resolveSite(ctx, s.accounts, s.sites)
	if err != nil {
		return nil, err
	}

	all, total, err := s.keywords.ListBySite(ctx, site.ID, sourceFilter, 0, 0)
	if err != nil {
		return nil, err
	}

	bySource := make(map[string][]*domain.Keyword)
	for _, kw := range all {
		source := kw.Source
		if source == "" {
			source = "unknown"
		}
		bySource[source] = append(bySource[source], kw)
	}

	report := &CleanupReport{
		DryRun:        dryRun,
		TotalKeywords: total,
	}

	sources := make([]string, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		group := bySource[source]
		if len(group) <= keywordCap {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		toDelete := group[keywordCap:]

		report.SourcesOverCap++
		report.TotalDuplicates += len(toDelete)
		report.Duplicates = append(report.Duplicates, DuplicateGroup{
			Source:   source,
			Count:    len(group),
			Excess:   len(toDelete),
			Keywords: group,
			ToDelete: toDelete,
		})

		if dryRun {
			continue
		}
		for _, kw := range toDelete {
			if err := s.keywords.Delete(ctx, kw.ID); err != nil {
				s.logger.Error().Err(err).Str("keywordId", kw.ID).Msg("Failed to delete duplicate keyword")
				continue
			}
			report.DeletedCount++
			report.Deleted = append(report.Deleted, kw)
		}
	}

	return report, nil
}
