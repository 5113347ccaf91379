// File: internal/usecase/article_contract.go
package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/domain/model"
)

// PromptContractVersion identifies the prompt/response shape below.
const PromptContractVersion = "v1"

const promptQuestionLimit = 3

// articleResponse is the JSON document the model is asked to return.
type articleResponse struct {
	ArticleHTML        string                    `json:"article_html"`
	TitleTag           string                    `json:"title_tag"`
	MetaDescription    string                    `json:"meta_description"`
	PrimaryKeyword     string                    `json:"primary_keyword"`
	SecondaryKeywords  []string                  `json:"secondary_keywords"`
	InternalLinks      []model.InternalLink      `json:"internal_links"`
	ExternalReferences []model.ExternalReference `json:"external_references"`
	FAQHTML            *string                   `json:"faq_html"`
}

func buildArticlePrompt(topic string, outline model.Outline, targetWordCount int, questions []string) string {
	sections := make([]string, 0, len(outline.Sections))
	for _, s := range outline.Sections {
		lines := []string{"## " + s.Heading}
		for _, h3 := range s.Subheadings {
			lines = append(lines, "### "+h3)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if len(questions) > promptQuestionLimit {
		questions = questions[:promptQuestionLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a complete, SEO-optimized article about %q.\n\n", topic)
	fmt.Fprintf(&b, "OUTLINE:\n# %s\n\n%s\n\n", outline.H1, strings.Join(sections, "\n"))
	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Target word count: %d words\n", targetWordCount)
	b.WriteString("- Write in a natural, engaging style (not robotic)\n")
	fmt.Fprintf(&b, "- Include primary keyword %q in the first paragraph\n", topic)
	b.WriteString("- Use proper HTML heading hierarchy (h1, h2, h3)\n")
	b.WriteString("- Each section should be substantial and informative\n")
	fmt.Fprintf(&b, "- Include a FAQ section at the end answering: %s\n\n", strings.Join(questions, ", "))
	b.WriteString(`OUTPUT FORMAT (must be valid JSON):
{
    "article_html": "Full HTML article with proper heading tags",
    "title_tag": "SEO title under 60 chars",
    "meta_description": "Meta description under 160 chars",
    "primary_keyword": "main keyword",
    "secondary_keywords": ["keyword1", "keyword2", "keyword3"],
    "internal_links": [
        {"anchor_text": "text", "target_page": "suggested-page-topic", "context": "where it fits"},
        ...3-5 suggestions
    ],
    "external_references": [
        {"source_name": "Source", "url": "https://example.com", "context": "what to cite"},
        ...2-4 authoritative sources
    ],
    "faq_html": "HTML FAQ section"
}

Generate the article now as JSON only (no markdown code blocks):`)
	return b.String()
}

// stripCodeFence removes an optional markdown fence around the reply.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseArticleResponse decodes and validates a model reply.
// Failures wrap domain.ErrMalformedResponse.
func parseArticleResponse(raw string) (*articleResponse, error) {
	var resp articleResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	var missing []string
	if strings.TrimSpace(resp.ArticleHTML) == "" {
		missing = append(missing, "article_html")
	}
	if strings.TrimSpace(resp.TitleTag) == "" {
		missing = append(missing, "title_tag")
	}
	if strings.TrimSpace(resp.MetaDescription) == "" {
		missing = append(missing, "meta_description")
	}
	if strings.TrimSpace(resp.PrimaryKeyword) == "" {
		missing = append(missing, "primary_keyword")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrMalformedResponse, strings.Join(missing, ", "))
	}
	return &resp, nil
}

func fallbackArticleResponse(topic string, outline model.Outline) *articleResponse {
	faq := "<h2>FAQ</h2><p>Common questions about " + topic + "</p>"
	return &articleResponse{
		ArticleHTML:       fmt.Sprintf("<h1>%s</h1><p>Article content for %s...</p>", outline.H1, topic),
		TitleTag:          titleCase(topic) + " - Complete Guide",
		MetaDescription:   fmt.Sprintf("Learn everything about %s. Expert guide with tips and strategies.", topic),
		PrimaryKeyword:    topic,
		SecondaryKeywords: []string{topic + " guide", topic + " tips", topic + " strategies"},
		InternalLinks: []model.InternalLink{
			{AnchorText: topic + " tools", TargetPage: topic + "-tools", Context: "In tools section"},
		},
		ExternalReferences: []model.ExternalReference{
			{SourceName: "Industry Report", URL: "https://example.com", Context: "Cite statistics"},
		},
		FAQHTML: &faq,
	}
}
