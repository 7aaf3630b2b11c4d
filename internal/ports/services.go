package ports

import (
	"context"
	"net/url"
	"time"

	"seoforge/internal/domain"
)

// EncryptionService encrypts access tokens for storage and decrypts them on use.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, error)
}

// OAuthClient covers the Shopify OAuth handshake.
type OAuthClient interface {
	// AuthorizeURL builds the merchant-facing authorization URL for a
	// normalized shop domain and an opaque state blob.
	AuthorizeURL(shop, state string) string
	// ExchangeToken swaps an authorization code for an access token.
	ExchangeToken(ctx context.Context, shop, code string) (string, error)
	// VerifyCallback checks the HMAC signature Shopify attaches to the
	// callback query parameters.
	VerifyCallback(u *url.URL) (bool, error)
}

// CatalogClient reads and writes a shop's catalog over the Admin REST API.
// All listing calls follow Link-header pagination to completion.
type CatalogClient interface {
	FetchProducts(ctx context.Context, shop, accessToken string) ([]domain.CatalogProduct, error)
	FetchCollections(ctx context.Context, shop, accessToken string) ([]domain.CatalogCollection, error)
	FetchArticles(ctx context.Context, shop, accessToken string) ([]domain.CatalogArticle, error)
	// FetchProductDescription returns the product body as plain text, or ""
	// when unavailable. Failures are tolerated, not surfaced.
	FetchProductDescription(ctx context.Context, shop, accessToken, productID string) string
	UpdateProductBody(ctx context.Context, shop, accessToken, productID, bodyHTML string) error
	UpdateArticleBody(ctx context.Context, shop, accessToken, blogID, articleID, bodyHTML string) error
	// FindBlogIDForArticle scans every blog's articles for the given article
	// id and returns the owning blog id, or "" when no blog contains it.
	FindBlogIDForArticle(ctx context.Context, shop, accessToken, articleID string) (string, error)
}

// ContentGenerator produces SEO keywords and on-page copy via an LLM.
type ContentGenerator interface {
	// GenerateKeywords never fails: upstream errors or unparseable output
	// fall back to phrases derived from the title.
	GenerateKeywords(ctx context.Context, title, description string) []string
	// GenerateContent propagates upstream failure; partial SEO copy is worse
	// than an explicit error.
	GenerateContent(ctx context.Context, pageType domain.PageType, title, keyword, description string) (string, error)
}

// StateStore holds one-shot OAuth nonces with a TTL.
type StateStore interface {
	Save(ctx context.Context, nonce string, ttl time.Duration) error
	// Consume deletes the nonce and reports whether it existed. A nonce can
	// be consumed at most once.
	Consume(ctx context.Context, nonce string) (bool, error)
}
