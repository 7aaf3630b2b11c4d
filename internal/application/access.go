package application

import (
	"context"

	"seoforge/internal/domain"
	"seoforge/internal/ports"
)

// resolveAccount maps the session principal to its account row.
func resolveAccount(ctx context.Context, accounts ports.AccountRepository) (*domain.Account, error) {
	externalID := domain.PrincipalFromContext(ctx)
	if externalID == "" {
		return nil, domain.ErrAuthenticationRequired
	}

	account, err := accounts.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, &domain.NotFoundError{Resource: "user"}
	}

	return account, nil
}

// resolveSite walks principal → account → connected site.
func resolveSite(ctx context.Context, accounts ports.AccountRepository, sites ports.SiteRepository) (*domain.Site, error) {
	account, err := resolveAccount(ctx, accounts)
	if err != nil {
		return nil, err
	}

	site, err := sites.GetByAccountID(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, &domain.ValidationError{Message: "No Shopify store connected"}
	}

	return site, nil
}

// resolvePage loads a page and checks it belongs to the caller's site. A page
// that exists under another site is an ownership failure, not a missing row.
func resolvePage(ctx context.Context, pages ports.PageRepository, siteID, pageID string) (*domain.Page, error) {
	page, err := pages.GetByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, &domain.NotFoundError{Resource: "page"}
	}
	if page.SiteID != siteID {
		return nil, &domain.OwnershipError{Resource: "page"}
	}

	return page, nil
}
