package usecase

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"seo-article-agent/internal/domain/model"
)

// AuditArticle inspects the article markup: heading and link counts, and
// whether the primary keyword shows up in the first paragraph.
func AuditArticle(a *model.Article) (model.SEOAudit, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(a.Content))
	if err != nil {
		return model.SEOAudit{}, fmt.Errorf("parse article html: %w", err)
	}
	audit := model.SEOAudit{
		H1Count:   doc.Find("h1").Length(),
		H2Count:   doc.Find("h2").Length(),
		H3Count:   doc.Find("h3").Length(),
		LinkCount: doc.Find("a[href]").Length(),
	}
	if kw := strings.ToLower(strings.TrimSpace(a.KeywordAnalysis.PrimaryKeyword)); kw != "" {
		intro := strings.ToLower(doc.Find("p").First().Text())
		audit.KeywordInIntro = strings.Contains(intro, kw)
	}
	return audit, nil
}
