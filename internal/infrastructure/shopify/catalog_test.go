package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"seoforge/internal/domain"
)

func testCatalogClient() *CatalogClient {
	return &CatalogClient{
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
		scheme:     "http",
	}
}

// shopFor strips the scheme so the test server host can stand in for a shop
// domain.
func shopFor(serverURL string) string {
	u, _ := url.Parse(serverURL)
	return u.Host
}

func TestNextPageInfo(t *testing.T) {
	cases := []struct {
		name string
		link string
		want string
	}{
		{
			name: "next link present",
			link: `<https://shop.myshopify.com/admin/api/2024-10/products.json?limit=250&page_info=abc123>; rel="next"`,
			want: "abc123",
		},
		{
			name: "previous and next",
			link: `<https://x/products.json?page_info=prev1>; rel="previous", <https://x/products.json?page_info=next2>; rel="next"`,
			want: "next2",
		},
		{
			name: "only previous",
			link: `<https://x/products.json?page_info=prev1>; rel="previous"`,
			want: "",
		},
		{name: "empty header", link: "", want: ""},
		{name: "malformed header", link: "not a link header", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := http.Header{}
			if tc.link != "" {
				h.Set("Link", tc.link)
			}
			if got := nextPageInfo(h); got != tc.want {
				t.Errorf("nextPageInfo = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFetchProducts(t *testing.T) {
	t.Run("follows Link pagination and keeps ids as strings", func(t *testing.T) {
		var requests []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests = append(requests, r.URL.RawQuery)
			if r.Header.Get("X-Shopify-Access-Token") != "tok" {
				t.Errorf("missing access token header")
			}
			if r.URL.Query().Get("page_info") == "" {
				w.Header().Set("Link", fmt.Sprintf(`<http://%s/admin/api/2024-10/products.json?page_info=cursor2>; rel="next"`, r.Host))
				fmt.Fprint(w, `{"products":[{"id":8986175438972,"title":"First","handle":"first","updated_at":"2026-01-02T03:04:05Z"}]}`)
				return
			}
			fmt.Fprint(w, `{"products":[{"id":1234567890123456789,"title":"Second","handle":"second","updated_at":"2026-02-03T04:05:06Z"}]}`)
		}))
		defer srv.Close()

		c := testCatalogClient()
		products, err := c.FetchProducts(context.Background(), shopFor(srv.URL), "tok")
		if err != nil {
			t.Fatalf("FetchProducts: %v", err)
		}
		if len(products) != 2 {
			t.Fatalf("got %d products, want 2", len(products))
		}
		if products[0].ID != "8986175438972" {
			t.Errorf("id = %q, want 8986175438972", products[0].ID)
		}
		// ids above float64 precision must survive intact
		if products[1].ID != "1234567890123456789" {
			t.Errorf("large id = %q, want 1234567890123456789", products[1].ID)
		}
		if len(requests) != 2 {
			t.Fatalf("made %d requests, want 2", len(requests))
		}
		if !strings.Contains(requests[1], "page_info=cursor2") {
			t.Errorf("second request missing cursor: %s", requests[1])
		}
	})

	t.Run("missing Link header stops after one page", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			fmt.Fprint(w, `{"products":[]}`)
		}))
		defer srv.Close()

		c := testCatalogClient()
		if _, err := c.FetchProducts(context.Background(), shopFor(srv.URL), "tok"); err != nil {
			t.Fatalf("FetchProducts: %v", err)
		}
		if calls != 1 {
			t.Errorf("made %d calls, want 1", calls)
		}
	})

	t.Run("non-2xx surfaces as UpstreamError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"errors":"[API] Invalid API key or access token"}`)
		}))
		defer srv.Close()

		c := testCatalogClient()
		_, err := c.FetchProducts(context.Background(), shopFor(srv.URL), "bad")
		var upstream *domain.UpstreamError
		if !errors.As(err, &upstream) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
		if upstream.Status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", upstream.Status)
		}
		if !strings.Contains(upstream.Body, "Invalid API key") {
			t.Errorf("raw body not preserved: %q", upstream.Body)
		}
	})
}

func TestFetchCollections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "custom_collections"):
			fmt.Fprint(w, `{"custom_collections":[{"id":11,"title":"Manual","handle":"manual"}]}`)
		case strings.Contains(r.URL.Path, "smart_collections"):
			fmt.Fprint(w, `{"smart_collections":[{"id":22,"title":"Automated","handle":"automated"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := testCatalogClient()
	collections, err := c.FetchCollections(context.Background(), shopFor(srv.URL), "tok")
	if err != nil {
		t.Fatalf("FetchCollections: %v", err)
	}
	if len(collections) != 2 {
		t.Fatalf("got %d collections, want 2", len(collections))
	}
	if collections[0].ID != "11" || collections[1].ID != "22" {
		t.Errorf("merged ids = %q, %q", collections[0].ID, collections[1].ID)
	}
}

func TestFetchArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/blogs.json"):
			fmt.Fprint(w, `{"blogs":[{"id":1,"handle":"news"},{"id":2,"handle":"guides"}]}`)
		case strings.Contains(r.URL.Path, "/blogs/1/articles.json"):
			fmt.Fprint(w, `{"articles":[{"id":100,"title":"Hello","handle":"hello","published_at":"2026-01-01T00:00:00Z"}]}`)
		case strings.Contains(r.URL.Path, "/blogs/2/articles.json"):
			fmt.Fprint(w, `{"articles":[{"id":200,"title":"Guide","handle":"guide","published_at":""}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := testCatalogClient()
	articles, err := c.FetchArticles(context.Background(), shopFor(srv.URL), "tok")
	if err != nil {
		t.Fatalf("FetchArticles: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].BlogHandle != "news" || articles[1].BlogHandle != "guides" {
		t.Errorf("blog handles = %q, %q", articles[0].BlogHandle, articles[1].BlogHandle)
	}
}

func TestFindBlogIDForArticle(t *testing.T) {
	t.Run("finds the owning blog", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case strings.HasSuffix(r.URL.Path, "/blogs.json"):
				fmt.Fprint(w, `{"blogs":[{"id":1,"handle":"news"},{"id":2,"handle":"guides"}]}`)
			case strings.Contains(r.URL.Path, "/blogs/1/"):
				fmt.Fprint(w, `{"articles":[{"id":100}]}`)
			case strings.Contains(r.URL.Path, "/blogs/2/"):
				fmt.Fprint(w, `{"articles":[{"id":200}]}`)
			}
		}))
		defer srv.Close()

		c := testCatalogClient()
		blogID, err := c.FindBlogIDForArticle(context.Background(), shopFor(srv.URL), "tok", "200")
		if err != nil {
			t.Fatalf("FindBlogIDForArticle: %v", err)
		}
		if blogID != "2" {
			t.Errorf("blogID = %q, want 2", blogID)
		}
	})

	t.Run("unknown article yields empty id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/blogs.json") {
				fmt.Fprint(w, `{"blogs":[{"id":1,"handle":"news"}]}`)
				return
			}
			fmt.Fprint(w, `{"articles":[{"id":100}]}`)
		}))
		defer srv.Close()

		c := testCatalogClient()
		blogID, err := c.FindBlogIDForArticle(context.Background(), shopFor(srv.URL), "tok", "999")
		if err != nil {
			t.Fatalf("FindBlogIDForArticle: %v", err)
		}
		if blogID != "" {
			t.Errorf("blogID = %q, want empty", blogID)
		}
	})

	t.Run("a failing blog is skipped", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case strings.HasSuffix(r.URL.Path, "/blogs.json"):
				fmt.Fprint(w, `{"blogs":[{"id":1,"handle":"broken"},{"id":2,"handle":"ok"}]}`)
			case strings.Contains(r.URL.Path, "/blogs/1/"):
				w.WriteHeader(http.StatusInternalServerError)
			case strings.Contains(r.URL.Path, "/blogs/2/"):
				fmt.Fprint(w, `{"articles":[{"id":200}]}`)
			}
		}))
		defer srv.Close()

		c := testCatalogClient()
		blogID, err := c.FindBlogIDForArticle(context.Background(), shopFor(srv.URL), "tok", "200")
		if err != nil {
			t.Fatalf("FindBlogIDForArticle: %v", err)
		}
		if blogID != "2" {
			t.Errorf("blogID = %q, want 2", blogID)
		}
	})
}

func TestUpdateProductBody(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		fmt.Fprint(w, `{"product":{}}`)
	}))
	defer srv.Close()

	c := testCatalogClient()
	err := c.UpdateProductBody(context.Background(), shopFor(srv.URL), "tok", "42", "<p>new copy</p>")
	if err != nil {
		t.Fatalf("UpdateProductBody: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if gotPath != "/admin/api/2024-10/products/42.json" {
		t.Errorf("path = %s", gotPath)
	}
	if !strings.Contains(gotBody, "body_html") || !strings.Contains(gotBody, "new copy") {
		t.Errorf("body = %s", gotBody)
	}
}

func TestUpdateArticleBody(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"article":{}}`)
	}))
	defer srv.Close()

	c := testCatalogClient()
	err := c.UpdateArticleBody(context.Background(), shopFor(srv.URL), "tok", "7", "300", "<p>post</p>")
	if err != nil {
		t.Fatalf("UpdateArticleBody: %v", err)
	}
	if gotPath != "/admin/api/2024-10/blogs/7/articles/300.json" {
		t.Errorf("path = %s", gotPath)
	}
}
