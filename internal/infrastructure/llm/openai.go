package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog"

	"seoforge/internal/config"
	"seoforge/internal/domain"
	"seoforge/internal/ports"
)

const (
	keywordLimit       = 2
	descriptionMaxLen  = 500
	keywordSystemRole  = "You are an SEO expert. Generate only keyword phrases, one per line, no explanations."
	contentSystemRole  = "You are an SEO copywriter. Return only clean HTML body copy, no markdown, no commentary."
	keywordMaxTokens   = 200
	productMaxTokens   = 900
	articleMaxTokens   = 2200
	generateTemperature = 0.7
)

var numberingPattern = regexp.MustCompile(`^\d+[.)]`)

// Generator produces keywords and on-page copy via the OpenAI chat-completions
// API.
type Generator struct {
	client openai.Client
	model  string
	logger zerolog.Logger
}

// NewGenerator builds the LLM adapter from configuration.
func NewGenerator(cfg *config.Config, logger zerolog.Logger) ports.ContentGenerator {
	return &Generator{
		client: openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey), option.WithMaxRetries(0)),
		model:  cfg.OpenAIModel,
		logger: logger,
	}
}

// GenerateKeywords returns at most two keyword phrases for a page. Upstream
// failure or an unparseable response falls back to phrases derived from the
// title, so this never fails outright.
func (g *Generator) GenerateKeywords(ctx context.Context, title, description string) []string {
	prompt := buildKeywordPrompt(title, description)

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(keywordSystemRole),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(generateTemperature),
		MaxTokens:   openai.Int(keywordMaxTokens),
	})
	if err != nil {
		g.logger.Warn().Err(err).Str("title", title).Msg("Keyword generation failed, using title fallback")
		return FallbackKeywords(title)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	keywords := ParseKeywords(content)
	if len(keywords) == 0 {
		g.logger.Warn().Str("title", title).Msg("Keyword response yielded no phrases, using title fallback")
		return FallbackKeywords(title)
	}
	return keywords
}

// GenerateContent returns HTML body copy for a page. Upstream failure is a
// hard error.
func (g *Generator) GenerateContent(ctx context.Context, pageType domain.PageType, title, keyword, description string) (string, error) {
	prompt := buildContentPrompt(pageType, title, keyword, description)

	maxTokens := int64(productMaxTokens)
	if pageType == domain.PageTypeArticle {
		maxTokens = articleMaxTokens
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(contentSystemRole),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(generateTemperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("content generation returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("content generation returned an empty body")
	}
	return content, nil
}

// ParseKeywords extracts keyword phrases from a raw LLM response: one phrase
// per line, numbering and bullet markers stripped, blank lines dropped, at
// most two phrases kept.
func ParseKeywords(content string) []string {
	var keywords []string
	for _, line := range strings.Split(content, "\n") {
		phrase := strings.TrimSpace(line)
		phrase = numberingPattern.ReplaceAllString(phrase, "")
		phrase = strings.TrimPrefix(phrase, "-")
		phrase = strings.TrimPrefix(phrase, "*")
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		keywords = append(keywords, phrase)
		if len(keywords) == keywordLimit {
			break
		}
	}
	return keywords
}

// FallbackKeywords derives up to two deterministic phrases from the title
// alone: the lowercased title and its first three words, de-duplicated.
func FallbackKeywords(title string) []string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	if lowered == "" {
		return nil
	}

	words := strings.Fields(lowered)
	short := strings.Join(words[:min(3, len(words))], " ")

	keywords := []string{lowered}
	if short != "" && short != lowered {
		keywords = append(keywords, short)
	}
	return keywords
}

func buildKeywordPrompt(title, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d SEO keyword phrases for an e-commerce page.\n", keywordLimit)
	b.WriteString("Only return the keywords, one per line, no numbering, no explanations.\n\n")
	fmt.Fprintf(&b, "Page Title: %s\n", title)
	if description != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncate(description, descriptionMaxLen))
	}
	b.WriteString("\nGenerate relevant, searchable keyword phrases that customers might use to find this page. ")
	b.WriteString("Focus on name variations, use cases, and target audience terms.\n")
	b.WriteString("Return only the keywords, one per line:")
	return b.String()
}

func buildContentPrompt(pageType domain.PageType, title, keyword, description string) string {
	length := "300-500 words"
	shape := "a compelling description with an opening hook, feature highlights, and a closing call to action"
	switch pageType {
	case domain.PageTypeArticle:
		length = "800-1200 words"
		shape = "a full article with an introduction, well-structured sections under <h2> headings, and a conclusion"
	case domain.PageTypeCollection:
		shape = "an overview of the collection, what it is for, and why to shop it"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write SEO-optimized HTML body copy for a Shopify %s page.\n\n", strings.ToLower(string(pageType)))
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "Primary keyword: %s\n", keyword)
	if description != "" {
		fmt.Fprintf(&b, "Current description: %s\n", truncate(description, descriptionMaxLen))
	}
	fmt.Fprintf(&b, "\nWrite %s as %s. ", length, shape)
	b.WriteString("Use the primary keyword naturally in the first paragraph and in one heading. ")
	b.WriteString("Return only the HTML body, using <p>, <h2>, <ul> and <li> tags. No <html> or <body> wrappers, no markdown.")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
