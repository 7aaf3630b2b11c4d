package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"seoforge/internal/domain"
	"seoforge/internal/infrastructure/shopify"
	"seoforge/internal/ports"
)

// stateTTL bounds how long a merchant can sit on the Shopify consent screen.
const stateTTL = 10 * time.Minute

// ConnectService runs the store connection lifecycle: OAuth initiation,
// callback completion, and disconnect.
type ConnectService struct {
	accounts   ports.AccountRepository
	sites      ports.SiteRepository
	oauth      ports.OAuthClient
	states     ports.StateStore
	encryption ports.EncryptionService
	logger     zerolog.Logger
}

// NewConnectService creates the store connection service.
func NewConnectService(
	accounts ports.AccountRepository,
	sites ports.SiteRepository,
	oauth ports.OAuthClient,
	states ports.StateStore,
	encryption ports.EncryptionService,
	logger zerolog.Logger,
) *ConnectService {
	return &ConnectService{
		accounts:   accounts,
		sites:      sites,
		oauth:      oauth,
		states:     states,
		encryption: encryption,
		logger:     logger,
	}
}

// BeginOAuth builds the merchant-facing authorization URL for the session's
// account. The state blob binds the handshake to the account and to a
// one-shot nonce.
func (s *ConnectService) BeginOAuth(ctx context.Context, shop string) (string, error) {
	externalID := domain.PrincipalFromContext(ctx)
	if externalID == "" {
		return "", domain.ErrAuthenticationRequired
	}
	if strings.TrimSpace(shop) == "" {
		return "", &domain.ValidationError{Message: "Missing required parameter: shop"}
	}

	account, err := s.accounts.Upsert(ctx, externalID)
	if err != nil {
		return "", err
	}

	normalized := shopify.NormalizeShopDomain(shop)
	nonce := uuid.NewString()
	if err := s.states.Save(ctx, nonce, stateTTL); err != nil {
		return "", err
	}

	state := domain.OAuthState{Nonce: nonce, AccountID: account.ID, Shop: normalized}
	authorizeURL := s.oauth.AuthorizeURL(normalized, state.Encode())

	s.logger.Info().
		Str("shop", normalized).
		Str("accountId", account.ID).
		Msg("Starting OAuth handshake")

	return authorizeURL, nil
}

// CompleteOAuth finishes the handshake from the callback URL Shopify
// redirected the merchant to. Every check failure is an error; the handler
// turns all of them into a dashboard redirect rather than an error response.
func (s *ConnectService) CompleteOAuth(ctx context.Context, callback *url.URL) error {
	query := callback.Query()
	code := query.Get("code")
	shop := query.Get("shop")
	stateParam := query.Get("state")
	if code == "" || shop == "" || stateParam == "" {
		return &domain.ValidationError{Message: "Missing required parameters"}
	}

	state, err := domain.DecodeOAuthState(stateParam)
	if err != nil {
		return &domain.ValidationError{Message: "Invalid state parameter"}
	}

	account, err := resolveAccount(ctx, s.accounts)
	if err != nil {
		return err
	}
	if state.AccountID != account.ID {
		return &domain.ValidationError{Message: "Invalid state parameter"}
	}

	ok, err := s.states.Consume(ctx, state.Nonce)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ValidationError{Message: "OAuth state expired or already used"}
	}

	verified, err := s.oauth.VerifyCallback(callback)
	if err != nil {
		return fmt.Errorf("failed to verify callback signature: %w", err)
	}
	if !verified {
		return &domain.ValidationError{Message: "Invalid HMAC signature"}
	}

	normalized := shopify.NormalizeShopDomain(shop)
	token, err := s.oauth.ExchangeToken(ctx, normalized, code)
	if err != nil {
		oauthCompletionsTotal.WithLabelValues("failure").Inc()
		return err
	}

	encrypted, err := s.encryption.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	site := &domain.Site{
		AccountID:   account.ID,
		Domain:      normalized,
		StoreURL:    "https://" + normalized,
		Name:        strings.TrimSuffix(normalized, ".myshopify.com"),
		AccessToken: encrypted,
		Active:      true,
	}
	if err := s.sites.Save(ctx, site); err != nil {
		return err
	}

	oauthCompletionsTotal.WithLabelValues("success").Inc()
	s.logger.Info().
		Str("shop", normalized).
		Str("siteId", site.ID).
		Msg("Store connected")

	return nil
}

// Disconnect clears the stored token for the session's site. Pages, keywords
// and content versions are kept so a reconnect resumes the same history.
func (s *ConnectService) Disconnect(ctx context.Context) error {
	site, err := resolveSite(ctx, s.accounts, s.sites)
	if err != nil {
		return err
	}

	if err := s.sites.Disconnect(ctx, site.ID); err != nil {
		return err
	}

	s.logger.Info().Str("siteId", site.ID).Str("shop", site.Domain).Msg("Store disconnected")
	return nil
}

// Status reports the session's connected site, nil when none.
func (s *ConnectService) Status(ctx context.Context) (*domain.Site, error) {
	account, err := resolveAccount(ctx, s.accounts)
	if err != nil {
		return nil, err
	}
	return s.sites.GetByAccountID(ctx, account.ID)
}
