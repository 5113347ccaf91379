package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"seo-article-agent/internal/config"
	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/domain/ports/adapter"
)

const DefaultIndex = "seo-articles"

var _ adapter.JobEventSink = (*ArticleIndexer)(nil)

// ArticleIndexer stores completed articles as searchable documents. Other
// events are ignored.
type ArticleIndexer struct {
	es    *elasticsearch.Client
	index string
}

// ArticleDocument is the indexed shape of a completed job.
type ArticleDocument struct {
	JobID             string    `json:"job_id"`
	Topic             string    `json:"topic"`
	Language          string    `json:"language"`
	Title             string    `json:"title"`
	MetaDescription   string    `json:"meta_description"`
	PrimaryKeyword    string    `json:"primary_keyword"`
	SecondaryKeywords []string  `json:"secondary_keywords"`
	Content           string    `json:"content"`
	WordCount         int       `json:"word_count"`
	KeywordDensity    float64   `json:"keyword_density"`
	CompletedAt       time.Time `json:"completed_at"`
}

func NewArticleIndexer(cfg config.ElasticsearchConfig) (*ArticleIndexer, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	return &ArticleIndexer{es: es, index: index}, nil
}

func (i *ArticleIndexer) Publish(ctx context.Context, ev adapter.JobEvent) error {
	if ev.Type != adapter.JobEventCompleted || ev.Job == nil || ev.Job.Article == nil {
		return nil
	}
	return i.IndexArticle(ctx, ev.Job)
}

func (i *ArticleIndexer) IndexArticle(ctx context.Context, job *model.Job) error {
	payload, err := json.Marshal(newArticleDocument(job))
	if err != nil {
		return fmt.Errorf("marshal article doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: job.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.es)
	if err != nil {
		return fmt.Errorf("index article: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index article failed: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

func newArticleDocument(job *model.Job) ArticleDocument {
	a := job.Article
	return ArticleDocument{
		JobID:             job.ID,
		Topic:             job.Request.Topic,
		Language:          job.Request.Language,
		Title:             a.SEOMetadata.TitleTag,
		MetaDescription:   a.SEOMetadata.MetaDescription,
		PrimaryKeyword:    a.KeywordAnalysis.PrimaryKeyword,
		SecondaryKeywords: a.KeywordAnalysis.SecondaryKeywords,
		Content:           a.Content,
		WordCount:         a.WordCount,
		KeywordDensity:    a.KeywordAnalysis.KeywordDensity,
		CompletedAt:       job.UpdatedAt,
	}
}
