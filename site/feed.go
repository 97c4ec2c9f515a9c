package site

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gorilla/feeds"
)

// writeFeed writes the Atom feed of the newest published articles. Media
// links in the feed are absolute.
func (g *BuiltinGenerator) writeFeed(published []*Article) error {
	updated := time.Unix(0, 0).UTC()
	if len(published) > 0 {
		updated = published[0].Date
	}
	feed := &feeds.Feed{
		Title:   g.site.Name,
		Link:    &feeds.Link{Href: g.site.URL + "/", Rel: "alternate"},
		Id:      g.site.URL + "/",
		Created: updated,
		Updated: updated,
	}

	for _, a := range published[:min(len(published), feedMaxItems)] {
		url := g.site.URL + "/" + a.Path
		content, err := g.render(a.body, url+"/")
		if err != nil {
			return fmt.Errorf("failed to render feed entry %s: %w", a.Path, err)
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Title:   a.Title,
			Id:      url,
			Link:    &feeds.Link{Href: url, Rel: "alternate"},
			Author:  &feeds.Author{Name: a.Author},
			Created: a.Date,
			Updated: a.Date,
			Content: string(content),
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return fmt.Errorf("failed to encode feed: %w", err)
	}
	return writeFile(filepath.Join(g.outputDir, feedFile), []byte(atom))
}
