package domain

// CatalogProduct is a product row as listed by the Shopify Admin API. IDs are
// strings end to end; upstream values are large integers that lose precision
// when handled as floats.
type CatalogProduct struct {
	ID        string
	Title     string
	Handle    string
	UpdatedAt string
}

// CatalogCollection is a collection row. Custom and smart collections are
// merged into this one shape.
type CatalogCollection struct {
	ID     string
	Title  string
	Handle string
}

// CatalogArticle is a blog article row annotated with its parent blog's
// handle, which the article URL needs.
type CatalogArticle struct {
	ID          string
	Title       string
	Handle      string
	PublishedAt string
	BlogHandle  string
}

// SyncResult reports how many entities a catalog sync upserted per stage.
type SyncResult struct {
	Products    int `json:"products"`
	Collections int `json:"collections"`
	Articles    int `json:"articles"`
}
