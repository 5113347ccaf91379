package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/infra/web"
)

// action runs a parsed command against the wired application.
type action func(ctx context.Context, a *app, out io.Writer) error

type command struct {
	parse func(args []string, stderr io.Writer) (action, error)
}

var commands = map[string]command{
	"generate": {parse: parseGenerate},
	"status":   {parse: parseStatus},
	"resume":   {parse: parseResume},
	"list":     {parse: parseList},
	"serve":    {parse: parseServe},
}

var errUsage = errors.New("invalid arguments")

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseGenerate(args []string, stderr io.Writer) (action, error) {
	fs := newFlagSet("generate", stderr)
	wordCount := fs.Int("word-count", model.DefaultTargetWordCount, "target word count")
	language := fs.String("language", model.DefaultLanguage, "language code")
	output := fs.String("output", "", "write the article JSON to this file")
	fs.StringVar(output, "o", "", "shorthand for --output")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return nil, err
	}
	if len(pos) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one topic", errUsage)
	}
	req := model.ArticleRequest{Topic: pos[0], TargetWordCount: *wordCount, Language: *language}
	return func(ctx context.Context, a *app, out io.Writer) error {
		return runGenerate(ctx, a, out, req, *output)
	}, nil
}

func runGenerate(ctx context.Context, a *app, out io.Writer, req model.ArticleRequest, outputPath string) error {
	fmt.Fprintf(out, "\nGenerating article for: %s\n", req.Topic)
	fmt.Fprintf(out, "Target word count: %d\n", req.TargetWordCount)
	fmt.Fprintln(out, strings.Repeat("-", 60))

	job, err := a.gen.StartGeneration(ctx, req)
	if err != nil {
		if job != nil {
			return fmt.Errorf("job %s failed: %w", job.ID, err)
		}
		return err
	}

	fmt.Fprintln(out, "\nArticle generated successfully!")
	fmt.Fprintf(out, "Job ID: %s\n", job.ID)
	fmt.Fprintf(out, "Status: %s\n", job.Status)
	if job.Article == nil {
		return nil
	}
	art := job.Article
	fmt.Fprintf(out, "Word count: %d\n", art.WordCount)
	fmt.Fprintf(out, "Primary keyword: %s\n", art.KeywordAnalysis.PrimaryKeyword)
	fmt.Fprintf(out, "Keyword density: %.2f%%\n", art.KeywordAnalysis.KeywordDensity)
	fmt.Fprintln(out, "\nSEO Metadata:")
	fmt.Fprintf(out, "  Title: %s\n", art.SEOMetadata.TitleTag)
	fmt.Fprintf(out, "  Description: %s\n", art.SEOMetadata.MetaDescription)

	if outputPath != "" {
		if err := writeArticleFile(outputPath, job); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nArticle saved to: %s\n", outputPath)
	}
	return nil
}

type articleFile struct {
	JobID   string         `json:"job_id"`
	Topic   string         `json:"topic"`
	Article *model.Article `json:"article"`
}

func writeArticleFile(path string, job *model.Job) error {
	b, err := json.MarshalIndent(articleFile{JobID: job.ID, Topic: job.Request.Topic, Article: job.Article}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode article: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func parseJobID(name string, args []string, stderr io.Writer) (string, error) {
	fs := newFlagSet(name, stderr)
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return "", err
	}
	if len(pos) != 1 || strings.TrimSpace(pos[0]) == "" {
		return "", fmt.Errorf("%w: expected exactly one job id", errUsage)
	}
	return pos[0], nil
}

func parseStatus(args []string, stderr io.Writer) (action, error) {
	id, err := parseJobID("status", args, stderr)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a *app, out io.Writer) error {
		job, err := a.gen.GetStatus(ctx, id)
		if err != nil {
			return err
		}
		printStatus(out, job)
		if job.Article != nil {
			audit, err := a.gen.AuditJob(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  Headings: h1=%d h2=%d h3=%d\n", audit.H1Count, audit.H2Count, audit.H3Count)
			fmt.Fprintf(out, "  Links: %d\n", audit.LinkCount)
			fmt.Fprintf(out, "  Keyword in intro: %t\n", audit.KeywordInIntro)
		}
		return nil
	}, nil
}

func printStatus(out io.Writer, job *model.Job) {
	fmt.Fprintf(out, "\nJob ID: %s\n", job.ID)
	fmt.Fprintf(out, "Topic: %s\n", job.Request.Topic)
	fmt.Fprintf(out, "Status: %s\n", job.Status)
	fmt.Fprintf(out, "Created: %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Updated: %s\n", job.UpdatedAt.Format("2006-01-02 15:04:05"))
	if job.ErrorMessage != nil {
		fmt.Fprintf(out, "Error: %s\n", *job.ErrorMessage)
	}
	if job.Article != nil {
		fmt.Fprintln(out, "\nArticle Details:")
		fmt.Fprintf(out, "  Word count: %d\n", job.Article.WordCount)
		fmt.Fprintf(out, "  Primary keyword: %s\n", job.Article.KeywordAnalysis.PrimaryKeyword)
	}
}

func parseResume(args []string, stderr io.Writer) (action, error) {
	id, err := parseJobID("resume", args, stderr)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a *app, out io.Writer) error {
		fmt.Fprintf(out, "\nResuming job: %s\n", id)
		job, err := a.gen.ResumeJob(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Job resumed. Status: %s\n", job.Status)
		return nil
	}, nil
}

func parseList(args []string, stderr io.Writer) (action, error) {
	fs := newFlagSet("list", stderr)
	limit := fs.Int("limit", 10, "maximum number of jobs")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return nil, err
	}
	if len(pos) != 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", errUsage, pos[0])
	}
	if *limit < 1 {
		return nil, fmt.Errorf("%w: --limit must be >= 1", errUsage)
	}
	return func(ctx context.Context, a *app, out io.Writer) error {
		jobs, err := a.gen.ListJobs(ctx, *limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "\nRecent Jobs:")
		fmt.Fprintln(out, strings.Repeat("-", 80))
		for _, j := range jobs {
			fmt.Fprintf(out, "ID: %s... | Status: %-10s | Topic: %s\n", shortID(j.ID), j.Status, j.Topic)
		}
		fmt.Fprintln(out, strings.Repeat("-", 80))
		return nil
	}, nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func parseServe(args []string, stderr io.Writer) (action, error) {
	fs := newFlagSet("serve", stderr)
	addr := fs.String("addr", "", "listen address (default from config)")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return nil, err
	}
	if len(pos) != 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", errUsage, pos[0])
	}
	return func(ctx context.Context, a *app, _ io.Writer) error {
		listen := *addr
		if listen == "" {
			listen = a.cfg.HTTP.Addr
		}
		srv := web.NewServer(a.gen, web.Options{
			RequestTimeout:  a.cfg.HTTP.RequestTimeout,
			SubmitLimiter:   a.limiter,
			SubmitPerMinute: a.cfg.HTTP.SubmitPerMinute,
		}, a.log)
		return srv.ListenAndServe(ctx, listen, a.cfg.HTTP.ShutdownTimeout)
	}, nil
}
