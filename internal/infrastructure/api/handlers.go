package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"seoforge/internal/application"
	"seoforge/internal/config"
	"seoforge/internal/domain"
	"seoforge/internal/pkg/session"
	"seoforge/internal/ports"
)

// Handler exposes the application services over JSON HTTP.
type Handler struct {
	connect  *application.ConnectService
	catalog  *application.CatalogService
	keywords *application.KeywordService
	content  *application.ContentService
	pages    *application.PageService
	accounts ports.AccountRepository
	signer   *session.Signer
	cfg      *config.Config
	logger   zerolog.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(
	connect *application.ConnectService,
	catalog *application.CatalogService,
	keywords *application.KeywordService,
	content *application.ContentService,
	pages *application.PageService,
	accounts ports.AccountRepository,
	signer *session.Signer,
	cfg *config.Config,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		connect:  connect,
		catalog:  catalog,
		keywords: keywords,
		content:  content,
		pages:    pages,
		accounts: accounts,
		signer:   signer,
		cfg:      cfg,
		logger:   logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the domain error taxonomy to HTTP statuses in one place.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		notFound   *domain.NotFoundError
		ownership  *domain.OwnershipError
		validation *domain.ValidationError
		publish    *application.PublishError
	)

	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.As(err, &ownership):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Unauthorized: " + ownership.Error()})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Message})
	case errors.As(err, &publish):
		details := ""
		if publish.Cause != nil {
			details = publish.Cause.Error()
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to publish to Shopify",
			"message": publish.Message,
			"details": details,
		})
	default:
		h.logger.Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Internal server error",
			"message": err.Error(),
		})
	}
}

// Health reports process liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MintSession issues a session cookie for an external principal id, guarded
// by the bootstrap secret. Identity-provider integration lives outside this
// service; this is how an already-authenticated frontend obtains its session.
func (h *Handler) MintSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ExternalID string `json:"external_id"`
		Secret     string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ExternalID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: external_id"})
		return
	}
	if h.cfg.BootstrapSecret == "" || body.Secret != h.cfg.BootstrapSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	if _, err := h.accounts.Upsert(r.Context(), body.ExternalID); err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.signer.Sign(body.ExternalID, session.DefaultTTL)
	if err != nil {
		h.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(session.DefaultTTL),
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// BeginOAuth starts the store connection handshake and redirects the caller
// to Shopify's consent screen.
func (h *Handler) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	authorizeURL, err := h.connect.BeginOAuth(r.Context(), r.URL.Query().Get("shop"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// OAuthCallback completes the handshake. Shopify redirected the merchant's
// browser here, so every outcome resolves to a dashboard redirect rather
// than an error page.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if err := h.connect.CompleteOAuth(r.Context(), r.URL); err != nil {
		h.logger.Error().Err(err).Msg("OAuth callback failed")
		dest := h.cfg.AppURL + "/dashboard?shopify=error&message=" + url.QueryEscape(publicOAuthMessage(err))
		http.Redirect(w, r, dest, http.StatusFound)
		return
	}
	http.Redirect(w, r, h.cfg.AppURL+"/dashboard?shopify=connected", http.StatusFound)
}

// publicOAuthMessage keeps upstream bodies and wrapped internals out of the
// redirect the merchant sees.
func publicOAuthMessage(err error) string {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}
	return "Connection failed. Please try again."
}

// Disconnect clears the store connection.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.connect.Disconnect(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Store disconnected",
	})
}

// ConnectionStatus reports whether the session has a connected store.
func (h *Handler) ConnectionStatus(w http.ResponseWriter, r *http.Request) {
	site, err := h.connect.Status(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if site == nil || !site.Active {
		writeJSON(w, http.StatusOK, map[string]any{"connected": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"connected": true,
		"shop":      site.Domain,
		"name":      site.Name,
	})
}

// SyncCatalog pulls the store catalog into local pages.
func (h *Handler) SyncCatalog(w http.ResponseWriter, r *http.Request) {
	report, err := h.catalog.Sync(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Catalog synced successfully",
		"synced":  report.Synced,
		"stored":  report.Stored,
		"total":   report.Total,
	})
}

// SeedKeywords generates keywords for every product and collection page.
func (h *Handler) SeedKeywords(w http.ResponseWriter, r *http.Request) {
	report, err := h.keywords.Seed(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         "Keywords seeded successfully",
		"pagesProcessed":  report.PagesProcessed,
		"keywordsCreated": report.KeywordsCreated,
	})
}

// ListKeywords returns a page of the site's keywords with a by-source summary.
func (h *Handler) ListKeywords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	page, err := h.keywords.List(r.Context(), query.Get("source"), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	keywords := page.Keywords
	if keywords == nil {
		keywords = []*domain.Keyword{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"keywords": keywords,
		"total":    page.Total,
		"limit":    page.Limit,
		"offset":   page.Offset,
		"summary": map[string]any{
			"total":    page.Total,
			"bySource": page.BySource,
		},
	})
}

// CleanupDuplicateKeywords trims sources holding more keywords than the cap.
// dry_run defaults to true.
func (h *Handler) CleanupDuplicateKeywords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	dryRun := !strings.EqualFold(query.Get("dry_run"), "false")

	report, err := h.keywords.CleanupDuplicates(r.Context(), dryRun, query.Get("source"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	duplicates := report.Duplicates
	if duplicates == nil {
		duplicates = []application.DuplicateGroup{}
	}
	deleted := report.Deleted
	if deleted == nil {
		deleted = []*domain.Keyword{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"dryRun":  report.DryRun,
		"summary": map[string]any{
			"totalKeywords":   report.TotalKeywords,
			"sourcesOverCap":  report.SourcesOverCap,
			"totalDuplicates": report.TotalDuplicates,
			"deletedCount":    report.DeletedCount,
		},
		"duplicates": duplicates,
		"deleted":    deleted,
	})
}

// GenerateContent creates a new content version for a page.
func (h *Handler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PageID         string `json:"page_id"`
		PrimaryKeyword string `json:"primary_keyword"`
		PageType       string `json:"page_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return
	}

	result, err := h.content.Generate(r.Context(), body.PageID, body.PrimaryKeyword, domain.PageType(body.PageType))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"content":   result.Content,
		"version":   result.Version,
		"pageId":    result.PageID,
		"pageTitle": result.PageTitle,
	})
}

// PublishContent pushes a page's latest version to the store.
func (h *Handler) PublishContent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PageID string `json:"page_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return
	}

	result, err := h.content.Publish(r.Context(), body.PageID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         "Content published successfully",
		"pageId":          result.PageID,
		"pageTitle":       result.PageTitle,
		"pageType":        result.PageType,
		"version":         result.Version,
		"publishedAt":     result.PublishedAt,
		"trackingEnabled": result.TrackingEnabled,
	})
}

// ListPages returns the site's pages annotated with version state.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	listing, err := h.pages.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"pages":   listing.Pages,
		"summary": map[string]any{
			"total":  listing.Total,
			"byType": listing.ByType,
		},
	})
}
