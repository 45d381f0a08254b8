// Package corpus holds the accumulated article collection and the merge
// logic that keeps it append-only: links already present are never replaced,
// and new runs only ever add records.
package corpus

import (
	"regexp"
	"sort"
	"strings"

	"RegulatorScanner/internal/dates"
	"RegulatorScanner/internal/domain"
)

// Corpus is the full persisted article set, ordered newest first.
type Corpus struct {
	Articles []domain.Article
}

// Len reports the number of articles held.
func (c *Corpus) Len() int {
	return len(c.Articles)
}

// Links returns the set of links currently present.
func (c *Corpus) Links() map[string]bool {
	seen := make(map[string]bool, len(c.Articles))
	for i := range c.Articles {
		seen[c.Articles[i].Link] = true
	}
	return seen
}

// Merge appends incoming articles whose link is not yet present, re-derives
// publish instants, and re-sorts newest first. The first-seen copy of a link
// always wins; later fetches of the same link are dropped even when title or
// date drifted. Returns the links that were genuinely new so the caller can
// target enrichment at exactly those.
func Merge(existing Corpus, incoming []domain.Article) (Corpus, []string) {
	merged := Corpus{Articles: append([]domain.Article(nil), existing.Articles...)}

	seen := merged.Links()
	var added []string
	for _, art := range incoming {
		if art.Link == "" || seen[art.Link] {
			continue
		}
		seen[art.Link] = true
		art.FullText = Flatten(art.FullText)
		art.Summary = Flatten(art.Summary)
		merged.Articles = append(merged.Articles, art)
		added = append(added, art.Link)
	}

	merged.refreshInstants()
	merged.sortByPublished()
	return merged, added
}

// Get returns a pointer to the article with the given link, or nil.
func (c *Corpus) Get(link string) *domain.Article {
	for i := range c.Articles {
		if c.Articles[i].Link == link {
			return &c.Articles[i]
		}
	}
	return nil
}

// Sanitize flattens every stored full text and migrates legacy records. Runs
// on load so corpora written by earlier revisions (raw HTML full text,
// single-industry field handled by storage) come out in the current shape.
func (c *Corpus) Sanitize() {
	for i := range c.Articles {
		c.Articles[i].FullText = Flatten(c.Articles[i].FullText)
		c.Articles[i].Summary = Flatten(c.Articles[i].Summary)
	}
	c.refreshInstants()
	c.sortByPublished()
}

func (c *Corpus) refreshInstants() {
	for i := range c.Articles {
		c.Articles[i].PublishedAt = dates.Parse(c.Articles[i].Published)
	}
}

// sortByPublished orders newest first; unknown dates (zero instant) come
// last. The sort is stable so equal instants keep their merge order.
func (c *Corpus) sortByPublished() {
	sort.SliceStable(c.Articles, func(i, j int) bool {
		return c.Articles[i].PublishedAt.After(c.Articles[j].PublishedAt)
	})
}

var tagExpr = regexp.MustCompile(`<[^>]*>`)

// Flatten reduces text to a single line of plain words: markup stripped,
// entities for angle brackets neutralized, all whitespace runs collapsed.
// Stored full text must never contain markup or line breaks.
func Flatten(s string) string {
	if s == "" {
		return ""
	}
	s = tagExpr.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "<", " ")
	s = strings.ReplaceAll(s, ">", " ")
	return strings.Join(strings.Fields(s), " ")
}
