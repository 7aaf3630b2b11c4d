package application

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"seoforge/internal/domain"
)

func newPageFixture(t *testing.T) (*PageService, *fakePages, *fakeVersions, string) {
	t.Helper()
	accounts := newFakeAccounts()
	sites := newFakeSites()
	pages := newFakePages()
	versions := &fakeVersions{}

	account, err := accounts.Upsert(context.Background(), "ext-1")
	if err != nil {
		t.Fatal(err)
	}
	site := &domain.Site{AccountID: account.ID, Domain: "demo-store.myshopify.com", Active: true}
	if err := sites.Save(context.Background(), site); err != nil {
		t.Fatal(err)
	}

	svc := NewPageService(accounts, sites, pages, versions, zerolog.Nop())
	return svc, pages, versions, site.ID
}

func TestListPages(t *testing.T) {
	t.Run("annotates pages with version state", func(t *testing.T) {
		svc, pages, versions, siteID := newPageFixture(t)

		product := &domain.Page{SiteID: siteID, ShopifyID: "101", Type: domain.PageTypeProduct, Title: "Oak Desk"}
		if err := pages.Upsert(context.Background(), product); err != nil {
			t.Fatal(err)
		}
		article := &domain.Page{SiteID: siteID, ShopifyID: "301", Type: domain.PageTypeArticle, Title: "Desk Care"}
		if err := pages.Upsert(context.Background(), article); err != nil {
			t.Fatal(err)
		}
		for v := 1; v <= 2; v++ {
			if err := versions.Insert(context.Background(), &domain.ContentVersion{PageID: product.ID, Version: v, Content: "c"}); err != nil {
				t.Fatal(err)
			}
		}

		listing, err := svc.List(principalCtx("ext-1"), "")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if listing.Total != 2 {
			t.Fatalf("total = %d, want 2", listing.Total)
		}
		if listing.ByType[domain.PageTypeProduct] != 1 || listing.ByType[domain.PageTypeArticle] != 1 {
			t.Errorf("byType = %v", listing.ByType)
		}
		if _, present := listing.ByType[domain.PageTypeCollection]; present {
			t.Error("zero-count types must be omitted from byType")
		}

		var productRow *PageSummary
		for i := range listing.Pages {
			if listing.Pages[i].ID == product.ID {
				productRow = &listing.Pages[i]
			}
		}
		if productRow == nil {
			t.Fatal("product row missing")
		}
		if productRow.VersionCount != 2 || productRow.LatestVersion != 2 {
			t.Errorf("product row = %+v", productRow)
		}
	})

	t.Run("type filter", func(t *testing.T) {
		svc, pages, _, siteID := newPageFixture(t)
		for _, p := range []*domain.Page{
			{SiteID: siteID, ShopifyID: "101", Type: domain.PageTypeProduct, Title: "Oak Desk"},
			{SiteID: siteID, ShopifyID: "201", Type: domain.PageTypeCollection, Title: "Office"},
		} {
			if err := pages.Upsert(context.Background(), p); err != nil {
				t.Fatal(err)
			}
		}

		listing, err := svc.List(principalCtx("ext-1"), "COLLECTION")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if listing.Total != 1 || listing.Pages[0].Type != domain.PageTypeCollection {
			t.Errorf("listing = %+v", listing)
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		svc, _, _, _ := newPageFixture(t)
		_, err := svc.List(principalCtx("ext-1"), "BLOG")
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || verr.Message != "Invalid type. Must be PRODUCT, COLLECTION, or ARTICLE" {
			t.Fatalf("err = %v", err)
		}
	})
}
