package application

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"seoforge/internal/domain"
)

// In-memory test doubles for the ports. They mirror the repository key
// constraints so service-level invariants are exercised for real.

type fakeAccounts struct {
	byExternal map[string]*domain.Account
	seq        int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byExternal: make(map[string]*domain.Account)}
}

func (f *fakeAccounts) Upsert(_ context.Context, externalID string) (*domain.Account, error) {
	if a, ok := f.byExternal[externalID]; ok {
		return a, nil
	}
	f.seq++
	a := &domain.Account{ID: fmt.Sprintf("acct-%d", f.seq), ExternalID: externalID, CreatedAt: time.Now()}
	f.byExternal[externalID] = a
	return a, nil
}

func (f *fakeAccounts) GetByExternalID(_ context.Context, externalID string) (*domain.Account, error) {
	return f.byExternal[externalID], nil
}

type fakeSites struct {
	byAccount map[string]*domain.Site
	seq       int
}

func newFakeSites() *fakeSites {
	return &fakeSites{byAccount: make(map[string]*domain.Site)}
}

func (f *fakeSites) Save(_ context.Context, site *domain.Site) error {
	if existing, ok := f.byAccount[site.AccountID]; ok {
		site.ID = existing.ID
	} else {
		f.seq++
		site.ID = fmt.Sprintf("site-%d", f.seq)
	}
	copied := *site
	f.byAccount[site.AccountID] = &copied
	return nil
}

func (f *fakeSites) GetByAccountID(_ context.Context, accountID string) (*domain.Site, error) {
	site, ok := f.byAccount[accountID]
	if !ok {
		return nil, nil
	}
	copied := *site
	return &copied, nil
}

func (f *fakeSites) Disconnect(_ context.Context, siteID string) error {
	for _, site := range f.byAccount {
		if site.ID == siteID {
			site.AccessToken = ""
			site.Active = false
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "site"}
}

type fakePages struct {
	byID map[string]*domain.Page
	seq  int
}

func newFakePages() *fakePages {
	return &fakePages{byID: make(map[string]*domain.Page)}
}

func (f *fakePages) Upsert(_ context.Context, page *domain.Page) error {
	for _, existing := range f.byID {
		if existing.SiteID == page.SiteID && existing.ShopifyID == page.ShopifyID && existing.Type == page.Type {
			existing.Title = page.Title
			existing.URL = page.URL
			existing.LastUpdated = page.LastUpdated
			page.ID = existing.ID
			return nil
		}
	}
	f.seq++
	page.ID = fmt.Sprintf("page-%d", f.seq)
	copied := *page
	f.byID[page.ID] = &copied
	return nil
}

func (f *fakePages) GetByID(_ context.Context, id string) (*domain.Page, error) {
	page, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *page
	return &copied, nil
}

func (f *fakePages) ListBySite(_ context.Context, siteID string, types []domain.PageType) ([]*domain.Page, error) {
	var out []*domain.Page
	for _, page := range f.byID {
		if page.SiteID != siteID {
			continue
		}
		if len(types) > 0 {
			match := false
			for _, t := range types {
				if page.Type == t {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		copied := *page
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePages) CountBySiteAndType(_ context.Context, siteID string, t domain.PageType) (int, error) {
	count := 0
	for _, page := range f.byID {
		if page.SiteID == siteID && page.Type == t {
			count++
		}
	}
	return count, nil
}

func (f *fakePages) NextVersion(_ context.Context, pageID string) (int, error) {
	page, ok := f.byID[pageID]
	if !ok {
		return 0, &domain.NotFoundError{Resource: "page"}
	}
	page.VersionSeq++
	return page.VersionSeq, nil
}

func (f *fakePages) SetTrackingEnabled(_ context.Context, pageID string) error {
	page, ok := f.byID[pageID]
	if !ok {
		return &domain.NotFoundError{Resource: "page"}
	}
	page.TrackingEnabled = true
	return nil
}

type fakeVersions struct {
	rows []*domain.ContentVersion
	seq  int
}

func (f *fakeVersions) Insert(_ context.Context, v *domain.ContentVersion) error {
	for _, row := range f.rows {
		if row.PageID == v.PageID && row.Version == v.Version {
			return fmt.Errorf("duplicate version %d for page %s", v.Version, v.PageID)
		}
	}
	f.seq++
	v.ID = fmt.Sprintf("ver-%d", f.seq)
	v.CreatedAt = time.Now()
	copied := *v
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeVersions) Latest(_ context.Context, pageID string) (*domain.ContentVersion, error) {
	var latest *domain.ContentVersion
	for _, row := range f.rows {
		if row.PageID == pageID && (latest == nil || row.Version > latest.Version) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeVersions) CountByPage(_ context.Context, pageID string) (int, error) {
	count := 0
	for _, row := range f.rows {
		if row.PageID == pageID {
			count++
		}
	}
	return count, nil
}

func (f *fakeVersions) MarkPublished(_ context.Context, versionID string) (*domain.ContentVersion, error) {
	for _, row := range f.rows {
		if row.ID == versionID {
			now := time.Now()
			row.PublishedAt = &now
			copied := *row
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "content version"}
}

type fakeKeywords struct {
	rows []*domain.Keyword
	seq  int
}

func (f *fakeKeywords) InsertIfAbsent(_ context.Context, kw *domain.Keyword) (bool, error) {
	for _, row := range f.rows {
		if row.SiteID == kw.SiteID && row.Keyword == kw.Keyword {
			return false, nil
		}
	}
	f.seq++
	copied := *kw
	copied.ID = fmt.Sprintf("kw-%d", f.seq)
	copied.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	f.rows = append(f.rows, &copied)
	return true, nil
}

func (f *fakeKeywords) ListBySite(_ context.Context, siteID, source string, limit, offset int) ([]*domain.Keyword, int, error) {
	var matched []*domain.Keyword
	for _, row := range f.rows {
		if row.SiteID != siteID {
			continue
		}
		if source != "" && row.Source != source {
			continue
		}
		copied := *row
		matched = append(matched, &copied)
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakeKeywords) CountBySource(_ context.Context, siteID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, row := range f.rows {
		if row.SiteID == siteID {
			counts[row.Source]++
		}
	}
	return counts, nil
}

func (f *fakeKeywords) Delete(_ context.Context, id string) error {
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "keyword"}
}

type fakeCatalog struct {
	products    []domain.CatalogProduct
	collections []domain.CatalogCollection
	articles    []domain.CatalogArticle

	productsErr    error
	collectionsErr error
	articlesErr    error

	descriptions map[string]string
	descFetches  []string

	productWrites map[string]string
	articleWrites map[string]string
	writeErr      error

	blogByArticle map[string]string
	blogLookupErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		descriptions:  make(map[string]string),
		productWrites: make(map[string]string),
		articleWrites: make(map[string]string),
		blogByArticle: make(map[string]string),
	}
}

func (f *fakeCatalog) FetchProducts(context.Context, string, string) ([]domain.CatalogProduct, error) {
	return f.products, f.productsErr
}

func (f *fakeCatalog) FetchCollections(context.Context, string, string) ([]domain.CatalogCollection, error) {
	return f.collections, f.collectionsErr
}

func (f *fakeCatalog) FetchArticles(context.Context, string, string) ([]domain.CatalogArticle, error) {
	return f.articles, f.articlesErr
}

func (f *fakeCatalog) FetchProductDescription(_ context.Context, _, _, productID string) string {
	f.descFetches = append(f.descFetches, productID)
	return f.descriptions[productID]
}

func (f *fakeCatalog) UpdateProductBody(_ context.Context, _, _, productID, bodyHTML string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.productWrites[productID] = bodyHTML
	return nil
}

func (f *fakeCatalog) UpdateArticleBody(_ context.Context, _, _, blogID, articleID, bodyHTML string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.articleWrites[blogID+"/"+articleID] = bodyHTML
	return nil
}

func (f *fakeCatalog) FindBlogIDForArticle(_ context.Context, _, _, articleID string) (string, error) {
	if f.blogLookupErr != nil {
		return "", f.blogLookupErr
	}
	return f.blogByArticle[articleID], nil
}

type fakeGenerator struct {
	keywords   map[string][]string
	content    string
	contentErr error
	calls      []string
}

func (f *fakeGenerator) GenerateKeywords(_ context.Context, title, _ string) []string {
	if phrases, ok := f.keywords[title]; ok {
		return phrases
	}
	return []string{strings.ToLower(title)}
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ domain.PageType, title, keyword, _ string) (string, error) {
	f.calls = append(f.calls, title+"|"+keyword)
	if f.contentErr != nil {
		return "", f.contentErr
	}
	return f.content, nil
}

type fakeEncryption struct{}

func (fakeEncryption) Encrypt(plaintext string) (string, error) {
	return "enc:" + plaintext, nil
}

func (fakeEncryption) Decrypt(blob string) (string, error) {
	plain, ok := strings.CutPrefix(blob, "enc:")
	if !ok {
		return "", &domain.DecryptionError{Reason: "not encrypted by the fake"}
	}
	return plain, nil
}

type fakeStates struct {
	saved map[string]bool
}

func newFakeStates() *fakeStates {
	return &fakeStates{saved: make(map[string]bool)}
}

func (f *fakeStates) Save(_ context.Context, nonce string, _ time.Duration) error {
	f.saved[nonce] = true
	return nil
}

func (f *fakeStates) Consume(_ context.Context, nonce string) (bool, error) {
	if !f.saved[nonce] {
		return false, nil
	}
	delete(f.saved, nonce)
	return true, nil
}

type fakeOAuth struct {
	token       string
	exchangeErr error
	verified    bool
	verifyErr   error
}

func (f *fakeOAuth) AuthorizeURL(shop, state string) string {
	return "https://" + shop + "/admin/oauth/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeOAuth) ExchangeToken(context.Context, string, string) (string, error) {
	return f.token, f.exchangeErr
}

func (f *fakeOAuth) VerifyCallback(*url.URL) (bool, error) {
	return f.verified, f.verifyErr
}
