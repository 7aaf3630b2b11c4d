package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"

	"seoforge/internal/config"
	"seoforge/internal/domain"
	"seoforge/internal/ports"
)

const (
	apiVersion = "2024-10"
	pageLimit  = "250"
)

// nextPagePattern extracts the next-page cursor from a Shopify Link header.
var nextPagePattern = regexp.MustCompile(`<[^>]+page_info=([^&>]+)[^>]*>;\s*rel="next"`)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
var whitespacePattern = regexp.MustCompile(`\s+`)

// CatalogClient talks to the Shopify Admin REST API for a single shop domain
// and access token pair. Listing calls loop over Link-header cursors until the
// header carries no next page; a missing or malformed header ends the loop.
type CatalogClient struct {
	app        goshopify.App
	httpClient *http.Client
	logger     zerolog.Logger
	scheme     string
}

// NewCatalogClient builds the Admin API adapter.
func NewCatalogClient(cfg *config.Config, logger zerolog.Logger) ports.CatalogClient {
	return &CatalogClient{
		app: goshopify.App{
			ApiKey:    cfg.ShopifyAPIKey,
			ApiSecret: cfg.ShopifyAPISecret,
		},
		httpClient: http.DefaultClient,
		logger:     logger,
		scheme:     "https",
	}
}

// request performs one authenticated Admin API call and returns the body and
// headers. Non-2xx responses surface as UpstreamError with the raw body.
func (c *CatalogClient) request(ctx context.Context, method, shop, accessToken, endpoint string, payload []byte) ([]byte, http.Header, error) {
	u := fmt.Sprintf("%s://%s/admin/api/%s/%s", c.scheme, shop, apiVersion, endpoint)

	var body io.Reader
	if payload != nil {
		body = strings.NewReader(string(payload))
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("shopify request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &domain.UpstreamError{Service: "Shopify", Status: resp.StatusCode, Body: string(raw)}
	}
	return raw, resp.Header, nil
}

// nextPageInfo pulls the next-page cursor out of a Link header, or "" when the
// header is absent, malformed, or has no rel="next" entry.
func nextPageInfo(header http.Header) string {
	match := nextPagePattern.FindStringSubmatch(header.Get("Link"))
	if match == nil {
		return ""
	}
	cursor, err := url.QueryUnescape(match[1])
	if err != nil {
		return ""
	}
	return cursor
}

func listQuery(fields, pageInfo string) string {
	params := url.Values{}
	params.Set("limit", pageLimit)
	params.Set("fields", fields)
	if pageInfo != "" {
		params.Set("page_info", pageInfo)
	}
	return params.Encode()
}

// FetchProducts lists every product in the shop.
func (c *CatalogClient) FetchProducts(ctx context.Context, shop, accessToken string) ([]domain.CatalogProduct, error) {
	var products []domain.CatalogProduct
	pageInfo := ""
	for {
		raw, header, err := c.request(ctx, http.MethodGet, shop, accessToken,
			"products.json?"+listQuery("id,title,handle,updated_at", pageInfo), nil)
		if err != nil {
			return nil, err
		}

		var payload struct {
			Products []struct {
				ID        json.Number `json:"id"`
				Title     string      `json:"title"`
				Handle    string      `json:"handle"`
				UpdatedAt string      `json:"updated_at"`
			} `json:"products"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
		for _, p := range payload.Products {
			products = append(products, domain.CatalogProduct{
				ID:        p.ID.String(),
				Title:     p.Title,
				Handle:    p.Handle,
				UpdatedAt: p.UpdatedAt,
			})
		}

		pageInfo = nextPageInfo(header)
		if pageInfo == "" {
			return products, nil
		}
	}
}

// FetchCollections lists custom and smart collections and merges them.
func (c *CatalogClient) FetchCollections(ctx context.Context, shop, accessToken string) ([]domain.CatalogCollection, error) {
	var collections []domain.CatalogCollection
	for _, endpoint := range []string{"custom_collections", "smart_collections"} {
		pageInfo := ""
		for {
			raw, header, err := c.request(ctx, http.MethodGet, shop, accessToken,
				endpoint+".json?"+listQuery("id,title,handle", pageInfo), nil)
			if err != nil {
				return nil, err
			}

			var payload map[string][]struct {
				ID     json.Number `json:"id"`
				Title  string      `json:"title"`
				Handle string      `json:"handle"`
			}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", endpoint, err)
			}
			for _, col := range payload[endpoint] {
				collections = append(collections, domain.CatalogCollection{
					ID:     col.ID.String(),
					Title:  col.Title,
					Handle: col.Handle,
				})
			}

			pageInfo = nextPageInfo(header)
			if pageInfo == "" {
				break
			}
		}
	}
	return collections, nil
}

type blogRef struct {
	ID     json.Number `json:"id"`
	Handle string      `json:"handle"`
}

func (c *CatalogClient) listBlogs(ctx context.Context, shop, accessToken string) ([]blogRef, error) {
	raw, _, err := c.request(ctx, http.MethodGet, shop, accessToken, "blogs.json?fields=id,handle", nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Blogs []blogRef `json:"blogs"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode blogs: %w", err)
	}
	return payload.Blogs, nil
}

// FetchArticles lists every article across every blog, annotating each with
// its parent blog's handle.
func (c *CatalogClient) FetchArticles(ctx context.Context, shop, accessToken string) ([]domain.CatalogArticle, error) {
	blogs, err := c.listBlogs(ctx, shop, accessToken)
	if err != nil {
		return nil, err
	}

	var articles []domain.CatalogArticle
	for _, blog := range blogs {
		pageInfo := ""
		for {
			endpoint := fmt.Sprintf("blogs/%s/articles.json?%s", blog.ID.String(),
				listQuery("id,title,handle,published_at", pageInfo))
			raw, header, err := c.request(ctx, http.MethodGet, shop, accessToken, endpoint, nil)
			if err != nil {
				return nil, err
			}

			var payload struct {
				Articles []struct {
					ID          json.Number `json:"id"`
					Title       string      `json:"title"`
					Handle      string      `json:"handle"`
					PublishedAt string      `json:"published_at"`
				} `json:"articles"`
			}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("failed to decode articles for blog %s: %w", blog.ID.String(), err)
			}
			for _, a := range payload.Articles {
				articles = append(articles, domain.CatalogArticle{
					ID:          a.ID.String(),
					Title:       a.Title,
					Handle:      a.Handle,
					PublishedAt: a.PublishedAt,
					BlogHandle:  blog.Handle,
				})
			}

			pageInfo = nextPageInfo(header)
			if pageInfo == "" {
				break
			}
		}
	}
	return articles, nil
}

// FetchProductDescription returns the product body as plain text for prompt
// context. Any failure yields "" and generation proceeds without it.
func (c *CatalogClient) FetchProductDescription(ctx context.Context, shop, accessToken, productID string) string {
	client, err := goshopify.NewClient(c.app, shop, accessToken)
	if err != nil {
		c.logger.Warn().Err(err).Str("shop", shop).Msg("Could not create product client")
		return ""
	}

	var id uint64
	if _, err := fmt.Sscan(productID, &id); err != nil {
		return ""
	}
	product, err := client.Product.Get(ctx, id, nil)
	if err != nil {
		c.logger.Warn().Err(err).Str("productID", productID).Msg("Could not fetch product description")
		return ""
	}

	text := htmlTagPattern.ReplaceAllString(product.BodyHTML, " ")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	if len(text) > 1000 {
		text = text[:1000]
	}
	return text
}

// UpdateProductBody replaces a product's description HTML.
func (c *CatalogClient) UpdateProductBody(ctx context.Context, shop, accessToken, productID, bodyHTML string) error {
	payload, _ := json.Marshal(map[string]any{
		"product": map[string]any{
			"id":        productID,
			"body_html": bodyHTML,
		},
	})
	_, _, err := c.request(ctx, http.MethodPut, shop, accessToken,
		fmt.Sprintf("products/%s.json", productID), payload)
	return err
}

// UpdateArticleBody replaces an article's body HTML.
func (c *CatalogClient) UpdateArticleBody(ctx context.Context, shop, accessToken, blogID, articleID, bodyHTML string) error {
	payload, _ := json.Marshal(map[string]any{
		"article": map[string]any{
			"id":        articleID,
			"body_html": bodyHTML,
		},
	})
	_, _, err := c.request(ctx, http.MethodPut, shop, accessToken,
		fmt.Sprintf("blogs/%s/articles/%s.json", blogID, articleID), payload)
	return err
}

// FindBlogIDForArticle scans every blog's articles matching by string id.
// Pages do not record the owning blog, so publish has to rediscover it.
func (c *CatalogClient) FindBlogIDForArticle(ctx context.Context, shop, accessToken, articleID string) (string, error) {
	blogs, err := c.listBlogs(ctx, shop, accessToken)
	if err != nil {
		return "", err
	}

	for _, blog := range blogs {
		endpoint := fmt.Sprintf("blogs/%s/articles.json?fields=id&limit=%s", blog.ID.String(), pageLimit)
		raw, _, err := c.request(ctx, http.MethodGet, shop, accessToken, endpoint, nil)
		if err != nil {
			c.logger.Warn().Err(err).Str("blogID", blog.ID.String()).Msg("Skipping blog during article lookup")
			continue
		}

		var payload struct {
			Articles []struct {
				ID json.Number `json:"id"`
			} `json:"articles"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}
		for _, a := range payload.Articles {
			if a.ID.String() == articleID {
				return blog.ID.String(), nil
			}
		}
	}
	return "", nil
}
