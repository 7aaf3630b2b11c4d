package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"seoforge/internal/domain"
	"seoforge/internal/ports"
)

// reasonInitialCreation tags versions created by the generate endpoint.
const reasonInitialCreation = "initial_creation"

// GenerateResult is the outcome of a content generation call.
type GenerateResult struct {
	Content   string `json:"content"`
	Version   int    `json:"version"`
	PageID    string `json:"pageId"`
	PageTitle string `json:"pageTitle"`
}

// PublishResult is the outcome of a successful publish.
type PublishResult struct {
	PageID          string          `json:"pageId"`
	PageTitle       string          `json:"pageTitle"`
	PageType        domain.PageType `json:"pageType"`
	Version         int             `json:"version"`
	PublishedAt     *time.Time      `json:"publishedAt"`
	TrackingEnabled bool            `json:"trackingEnabled"`
}

// PublishError wraps an upstream publish failure with a merchant-readable
// message while keeping the raw upstream error for diagnosis.
type PublishError struct {
	Message string
	Cause   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish to Shopify: %s", e.Message)
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}

// ContentService generates versioned SEO content and publishes it back to the
// store.
type ContentService struct {
	accounts   ports.AccountRepository
	sites      ports.SiteRepository
	pages      ports.PageRepository
	versions   ports.ContentVersionRepository
	catalog    ports.CatalogClient
	generator  ports.ContentGenerator
	encryption ports.EncryptionService
	logger     zerolog.Logger
}

// NewContentService creates the content service.
func NewContentService(
	accounts ports.AccountRepository,
	sites ports.SiteRepository,
	pages ports.PageRepository,
	versions ports.ContentVersionRepository,
	catalog ports.CatalogClient,
	generator ports.ContentGenerator,
	encryption ports.EncryptionService,
	logger zerolog.Logger,
) *ContentService {
	return &ContentService{
		accounts:   accounts,
		sites:      sites,
		pages:      pages,
		versions:   versions,
		catalog:    catalog,
		generator:  generator,
		encryption: encryption,
		logger:     logger,
	}
}

// Generate produces a new content version for a page. Version numbers come
// from an atomic per-page counter, so concurrent calls each get a distinct
// number and the next call after version N always yields N+1.
func (s *ContentService) Generate(ctx context.Context, pageID, primaryKeyword string, pageType domain.PageType) (*GenerateResult, error) {
	if pageID == "" || primaryKeyword == "" || pageType == "" {
		return nil, &domain.ValidationError{Message: "Missing required fields: page_id, primary_keyword, page_type"}
	}
	if !domain.ValidPageType(string(pageType)) {
		return nil, &domain.ValidationError{Message: "Invalid page_type. Must be PRODUCT, COLLECTION, or ARTICLE"}
	}

	site, err := resolveSite(ctx, s.accounts, s.sites)
	if err != nil {
		return nil, err
	}

	page, err := resolvePage(ctx, s.pages, site.ID, pageID)
	if err != nil {
		return nil, err
	}
	if page.Type != pageType {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Page type mismatch. Expected %s, got %s", page.Type, pageType),
		}
	}

	s.logger.Info().
		Str("pageId", page.ID).
		Str("type", string(page.Type)).
		Str("keyword", primaryKeyword).
		Msg("Generating content")

	// live product description enriches the prompt; losing it is fine
	description := ""
	if page.Type == domain.PageTypeProduct && site.AccessToken != "" {
		if accessToken, err := s.encryption.Decrypt(site.AccessToken); err == nil {
			description = s.catalog.FetchProductDescription(ctx, site.Domain, accessToken, page.ShopifyID)
		} else {
			s.logger.Warn().Err(err).Str("pageId", page.ID).Msg("Could not decrypt token for description fetch")
		}
	}

	content, err := s.generator.GenerateContent(ctx, page.Type, page.Title, primaryKeyword, description)
	if err != nil {
		return nil, err
	}

	version, err := s.pages.NextVersion(ctx, page.ID)
	if err != nil {
		return nil, err
	}

	if err := s.versions.Insert(ctx, &domain.ContentVersion{
		PageID:  page.ID,
		Version: version,
		Content: content,
		Reason:  reasonInitialCreation,
	}); err != nil {
		return nil, err
	}
	contentVersionsTotal.Inc()

	s.logger.Info().Str("pageId", page.ID).Int("version", version).Msg("Content version created")

	return &GenerateResult{
		Content:   content,
		Version:   version,
		PageID:    page.ID,
		PageTitle: page.Title,
	}, nil
}

// Publish pushes a page's latest content version to the store. Preconditions
// are checked in a fixed order: a version exists, it is not already
// published, the page type is publishable, and the site still holds a token.
func (s *ContentService) Publish(ctx context.Context, pageID string) (*PublishResult, error) {
	if pageID == "" {
		return nil, &domain.ValidationError{Message: "Missing required field: page_id"}
	}

	site, err := resolveSite(ctx, s.accounts, s.sites)
	if err != nil {
		return nil, err
	}

	page, err := resolvePage(ctx, s.pages, site.ID, pageID)
	if err != nil {
		return nil, err
	}

	latest, err := s.versions.Latest(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, &domain.ValidationError{Message: "No content versions found for this page. Generate content first."}
	}
	if latest.PublishedAt != nil {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("This version is already published (at %s)", latest.PublishedAt.Format(time.RFC3339)),
		}
	}
	if page.Type == domain.PageTypeCollection {
		return nil, &domain.ValidationError{
			Message: "Collection pages cannot be published directly. Use metafields or theme customization.",
		}
	}
	if site.AccessToken == "" {
		return nil, &domain.ValidationError{Message: "Shopify access token not found"}
	}

	accessToken, err := s.encryption.Decrypt(site.AccessToken)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("pageId", page.ID).
		Str("type", string(page.Type)).
		Int("version", latest.Version).
		Msg("Publishing content")

	switch page.Type {
	case domain.PageTypeProduct:
		if err := s.catalog.UpdateProductBody(ctx, site.Domain, accessToken, page.ShopifyID, latest.Content); err != nil {
			publishesTotal.WithLabelValues("failure").Inc()
			return nil, translatePublishError(err)
		}
	case domain.PageTypeArticle:
		blogID, err := s.catalog.FindBlogIDForArticle(ctx, site.Domain, accessToken, page.ShopifyID)
		if err != nil {
			publishesTotal.WithLabelValues("failure").Inc()
			return nil, translatePublishError(err)
		}
		if blogID == "" {
			return nil, &domain.NotFoundError{Resource: "blog for this article"}
		}
		if err := s.catalog.UpdateArticleBody(ctx, site.Domain, accessToken, blogID, page.ShopifyID, latest.Content); err != nil {
			publishesTotal.WithLabelValues("failure").Inc()
			return nil, translatePublishError(err)
		}
	default:
		return nil, &domain.ValidationError{Message: fmt.Sprintf("Unsupported page type: %s", page.Type)}
	}

	published, err := s.versions.MarkPublished(ctx, latest.ID)
	if err != nil {
		return nil, err
	}
	if err := s.pages.SetTrackingEnabled(ctx, page.ID); err != nil {
		return nil, err
	}
	publishesTotal.WithLabelValues("success").Inc()

	s.logger.Info().Str("pageId", page.ID).Int("version", published.Version).Msg("Content published")

	return &PublishResult{
		PageID:          page.ID,
		PageTitle:       page.Title,
		PageType:        page.Type,
		Version:         published.Version,
		PublishedAt:     published.PublishedAt,
		TrackingEnabled: true,
	}, nil
}

// translatePublishError maps common upstream statuses to merchant-readable
// messages. The raw error stays attached for the response's details field.
func translatePublishError(err error) error {
	message := err.Error()

	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Status {
		case 401, 403:
			message = "Missing required Shopify permissions. Please ensure your app has write_products and write_content scopes. Re-authenticate your store after adding these scopes."
		case 404:
			message = "Product or article not found in Shopify. The item may have been deleted."
		case 429:
			message = "Rate limit exceeded. Please wait a moment and try again."
		}
	}

	return &PublishError{Message: message, Cause: err}
}
