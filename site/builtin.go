package site

import (
	"bytes"
	"cmp"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	log "log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"discord-blog/models"
	"discord-blog/post"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var templateFS embed.FS

// videoBlock matches a video embed line. Each one is isolated into its own
// HTML block so that following embeds are still parsed as markdown.
var videoBlock = regexp.MustCompile(`(?m)^(<div class='video-thumb'[^>]*>.*</div>)$`)

const (
	feedFile     = "feed.atom"
	feedMaxItems = 50
	archivesDir  = "archives"
	pageFile     = "index.html"
)

// Article is a post as seen by the page templates.
type Article struct {
	Path    string
	Title   string
	Author  string
	Date    time.Time
	Draft   bool
	Content template.HTML

	body      string
	sourceDir string
}

type siteInfo struct {
	Name string
	URL  string
}

// BuiltinGenerator renders posts to HTML without any external tool: one page
// per post, a paginated index, an archive page and an Atom feed. Drafts get a
// page but are left out of the listings and the feed.
type BuiltinGenerator struct {
	dataDir    string
	outputDir  string
	site       siteInfo
	pagination int
	loc        *time.Location

	md     goldmark.Markdown
	policy *bluemonday.Policy
	pages  map[string]*template.Template
}

// NewBuiltinGenerator creates a generator for the directories and site
// settings in cfg.
func NewBuiltinGenerator(cfg *models.Config) *BuiltinGenerator {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^video-thumb$`)).OnElements("div")
	policy.AllowAttrs("loading").Matching(regexp.MustCompile(`^lazy$`)).OnElements("img")

	pages := make(map[string]*template.Template)
	for _, name := range []string{"article.html", "index.html", "archives.html"} {
		pages[name] = template.Must(template.New(name).ParseFS(templateFS, "templates/base.html", "templates/"+name))
	}

	pagination := cfg.Generator.Pagination
	if pagination <= 0 {
		pagination = 5
	}
	return &BuiltinGenerator{
		dataDir:    cfg.DataDir,
		outputDir:  cfg.OutputDir,
		site:       siteInfo{Name: cfg.SiteName, URL: cfg.BaseURL},
		pagination: pagination,
		loc:        cfg.Location(),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
				html.WithUnsafe(),
			),
		),
		policy: policy,
		pages:  pages,
	}
}

// Generate implements Generator.
func (g *BuiltinGenerator) Generate(ctx context.Context) error {
	start := time.Now()
	articles, err := g.collect()
	if err != nil {
		return err
	}

	var published []*Article
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.writeArticle(a); err != nil {
			return err
		}
		if !a.Draft {
			published = append(published, a)
		}
	}
	slices.SortFunc(published, func(a, b *Article) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.Path, a.Path)
	})

	if err := g.writeIndex(published); err != nil {
		return err
	}
	if err := g.writePage(filepath.Join(g.outputDir, archivesDir, pageFile), "archives.html", map[string]any{
		"Site":     g.site,
		"Articles": published,
	}); err != nil {
		return err
	}
	if err := g.writeFeed(published); err != nil {
		return err
	}
	log.Info("site generated", "articles", len(articles), "published", len(published), "took", time.Since(start))
	return nil
}

// collect reads every post source under the content root. Directories that
// are not post paths and unreadable sources are skipped.
func (g *BuiltinGenerator) collect() ([]*Article, error) {
	var articles []*Article
	err := filepath.WalkDir(g.dataDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != post.IndexFile {
			return nil
		}
		dir := filepath.Dir(p)
		rel, err := filepath.Rel(g.dataDir, dir)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		_, isDraft, err := post.ParsePath(rel, g.loc)
		if err != nil {
			log.Warn("skipping source outside the post layout", "path", rel)
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		src, err := post.ParseSource(data, g.loc)
		if err != nil {
			log.Warn("skipping malformed post", "path", rel, "err", err)
			return nil
		}
		content, err := g.render(src.Body, "")
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", rel, err)
		}
		articles = append(articles, &Article{
			Path:      rel,
			Title:     src.Title,
			Author:    src.Author,
			Date:      src.Date,
			Draft:     isDraft,
			Content:   content,
			body:      src.Body,
			sourceDir: dir,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", g.dataDir, err)
	}
	return articles, nil
}

// render converts post markdown to sanitized HTML. Media references are
// resolved against prefix, which is empty for pages living next to their
// media.
func (g *BuiltinGenerator) render(body, prefix string) (template.HTML, error) {
	src := strings.NewReplacer("{attach}", prefix, "{static}", prefix).Replace(body)
	src = videoBlock.ReplaceAllString(src, "\n$1\n")
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", err
	}
	var convErr error
	doc.Find("div.video-thumb").Each(func(_ int, s *goquery.Selection) {
		var inner bytes.Buffer
		if err := g.md.Convert([]byte(strings.TrimSpace(s.Text())), &inner); err != nil {
			convErr = err
			return
		}
		out := strings.TrimSpace(inner.String())
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
		s.RemoveAttr("markdown")
		s.SetHtml(out)
	})
	if convErr != nil {
		return "", convErr
	}
	doc.Find("img").SetAttr("loading", "lazy")

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return template.HTML(g.policy.Sanitize(out)), nil
}

func (g *BuiltinGenerator) writeArticle(a *Article) error {
	dir := filepath.Join(g.outputDir, filepath.FromSlash(a.Path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	entries, err := os.ReadDir(a.sourceDir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", a.sourceDir, err)
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == post.IndexFile {
			continue
		}
		if err := copyFile(filepath.Join(a.sourceDir, e.Name()), filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return g.writePage(filepath.Join(dir, pageFile), "article.html", map[string]any{
		"Site":    g.site,
		"Article": a,
	})
}

func (g *BuiltinGenerator) writeIndex(published []*Article) error {
	pages := max(1, (len(published)+g.pagination-1)/g.pagination)
	for page := 1; page <= pages; page++ {
		lo := (page - 1) * g.pagination
		hi := min(lo+g.pagination, len(published))
		data := map[string]any{
			"Site":     g.site,
			"Articles": published[lo:hi],
			"Page":     page,
			"Pages":    pages,
			"PrevURL":  "",
			"NextURL":  "",
		}
		if page > 1 {
			data["PrevURL"] = g.site.URL + "/" + IndexPageName(page-1)
		}
		if page < pages {
			data["NextURL"] = g.site.URL + "/" + IndexPageName(page+1)
		}
		if err := g.writePage(filepath.Join(g.outputDir, IndexPageName(page)), "index.html", data); err != nil {
			return err
		}
	}
	return nil
}

// IndexPageName returns the file name of the given 1-based index page.
func IndexPageName(page int) string {
	if page <= 1 {
		return pageFile
	}
	return fmt.Sprintf("index%d.html", page)
}

func (g *BuiltinGenerator) writePage(target, name string, data any) error {
	var buf bytes.Buffer
	if err := g.pages[name].ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return writeFile(target, buf.Bytes())
}

func writeFile(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

// copyFile copies src to dst unless dst already has the same size and is
// not older than src.
func copyFile(src, dst string) error {
	si, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if di, err := os.Stat(dst); err == nil && di.Size() == si.Size() && !di.ModTime().Before(si.ModTime()) {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
