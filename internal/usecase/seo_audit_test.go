package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"seo-article-agent/internal/domain/model"
)

func TestAuditArticle(t *testing.T) {
	a := &model.Article{
		Content: `<h1>Guide</h1><p>Learn <b>Content Marketing</b> fast.</p>` +
			`<h2>One</h2><h3>a</h3><h3>b</h3><h2>Two</h2><p>See <a href="/tools">tools</a> and <a>no href</a>.</p>`,
		KeywordAnalysis: model.KeywordAnalysis{PrimaryKeyword: "content marketing"},
	}
	audit, err := AuditArticle(a)
	require.NoError(t, err)
	require.Equal(t, model.SEOAudit{H1Count: 1, H2Count: 2, H3Count: 2, LinkCount: 1, KeywordInIntro: true}, audit)

	a.KeywordAnalysis.PrimaryKeyword = "email"
	audit, err = AuditArticle(a)
	require.NoError(t, err)
	require.False(t, audit.KeywordInIntro)
}

func TestAuditArticle_PlainText(t *testing.T) {
	audit, err := AuditArticle(&model.Article{Content: "just words"})
	require.NoError(t, err)
	require.Zero(t, audit.H1Count)
	require.False(t, audit.KeywordInIntro)
}
