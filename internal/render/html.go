// Package render projects the corpus into the static output documents: the
// self-contained HTML dashboard and the XML export feed. Both are pure
// functions of the corpus; writing to disk happens in the caller.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"RegulatorScanner/internal/corpus"
	"RegulatorScanner/internal/dates"
	"RegulatorScanner/internal/ports"
)

// Renderer builds both output documents. The clock is injectable so tests
// get deterministic "last updated" stamps.
type Renderer struct {
	now func() time.Time
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer uses the wall clock.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// NewRendererAt pins the clock; used by tests.
func NewRendererAt(now func() time.Time) *Renderer {
	return &Renderer{now: now}
}

type articleView struct {
	Source             string
	SourceClass        string
	Title              string
	Link               string
	PublishedRaw       string
	PublishedDisplay   string
	PublishedSort      string
	AISummary          string
	RiskRating         string
	RiskClass          string
	RiskRationale      string
	RiskConfidence     string
	Industries         string
	IndustryRationale  string
	IndustryConfidence string
	FullText           string
}

type pageView struct {
	Updated  string
	Sources  []string
	Articles []articleView
}

// HTML renders the dashboard: the full corpus embedded in one page, with
// client-side source filtering, column sorting, and pagination.
func (r *Renderer) HTML(c corpus.Corpus) ([]byte, error) {
	page := pageView{
		Updated:  r.now().Format("2 Jan 2006 15:04"),
		Articles: make([]articleView, 0, len(c.Articles)),
	}

	seenSources := map[string]bool{}
	for i := range c.Articles {
		a := &c.Articles[i]
		if !seenSources[a.Source] {
			seenSources[a.Source] = true
			page.Sources = append(page.Sources, a.Source)
		}

		sortKey := ""
		if dates.Known(a.PublishedAt) {
			sortKey = a.PublishedAt.Format("2006-01-02T15:04:05")
		}

		page.Articles = append(page.Articles, articleView{
			Source:             a.Source,
			SourceClass:        sourceClass(a.Source),
			Title:              a.Title,
			Link:               a.Link,
			PublishedRaw:       a.Published,
			PublishedDisplay:   dates.Display(a.PublishedAt, a.Published),
			PublishedSort:      sortKey,
			AISummary:          a.AISummary,
			RiskRating:         a.Impact.Rating,
			RiskClass:          riskClass(a.Impact.Rating),
			RiskRationale:      a.Impact.Rationale,
			RiskConfidence:     a.Impact.Confidence,
			Industries:         strings.Join(a.Industries, ", "),
			IndustryRationale:  a.IndustryRationale,
			IndustryConfidence: a.IndustryConfidence,
			FullText:           a.FullText,
		})
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("execute dashboard template: %w", err)
	}
	return buf.Bytes(), nil
}

// sourceClass derives the CSS modifier from the first word of the source
// name (accc, asic, apra, austrac, rba).
func sourceClass(source string) string {
	fields := strings.Fields(strings.ToLower(source))
	if len(fields) == 0 {
		return "other"
	}
	return fields[0]
}

func riskClass(rating string) string {
	return strings.ReplaceAll(strings.ToLower(rating), " ", "-")
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Australian Financial Regulators Feed</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
:root {
  --primary: #3b82f6; --border: #334155;
  --text-primary: #f1f5f9; --text-secondary: #cbd5e1;
  --bg-primary: #1e293b; --bg-secondary: #0f172a; --bg-tertiary: #334155;
}
body {
  font-family: 'Inter', -apple-system, 'Segoe UI', Roboto, sans-serif;
  background: linear-gradient(to bottom, #0f172a 0%, #020617 100%);
  min-height: 100vh; color: var(--text-primary); line-height: 1.6;
}
.nav-bar {
  background: var(--bg-primary); border-bottom: 1px solid var(--border);
  padding: 1rem 2rem; position: sticky; top: 0; z-index: 100;
  display: flex; justify-content: space-between; align-items: center;
}
.logo { font-size: 1.25rem; font-weight: 700; }
.nav-right { display: flex; align-items: center; gap: 1rem; }
.last-updated-badge {
  padding: 0.375rem 0.75rem; background: var(--bg-secondary);
  border: 1px solid var(--border); border-radius: 0.5rem;
  font-size: 0.75rem; color: var(--text-secondary);
}
.nav-link { color: var(--text-secondary); text-decoration: none; font-size: 0.875rem; }
.nav-link:hover { color: var(--primary); }
.container { max-width: 1400px; margin: 2rem auto; padding: 0 2rem 3rem; }
.page-title { font-size: 2rem; font-weight: 700; margin-bottom: 1.5rem; }
.filter-section {
  margin-bottom: 1.5rem; padding: 1rem; background: var(--bg-primary);
  border-radius: 0.75rem; border: 1px solid var(--border);
  display: flex; align-items: center; gap: 0.75rem; flex-wrap: wrap;
}
.filter-label { font-size: 0.8rem; font-weight: 600; color: var(--text-secondary); text-transform: uppercase; }
.filter-btn {
  padding: 0.5rem 1rem; border: 1px solid var(--border); background: var(--bg-secondary);
  color: var(--text-secondary); border-radius: 0.5rem; font-size: 0.875rem;
  cursor: pointer; font-family: inherit;
}
.filter-btn.active { background: var(--primary); color: white; border-color: var(--primary); }
.content-card {
  background: var(--bg-primary); border-radius: 1rem; overflow: hidden;
  border: 1px solid var(--border);
}
.table-wrapper { overflow-x: auto; }
table { width: 100%; border-collapse: collapse; }
th {
  padding: 1rem; text-align: left; font-size: 0.8rem; text-transform: uppercase;
  background: var(--bg-tertiary); cursor: pointer; user-select: none; white-space: nowrap;
}
td { padding: 1rem; vertical-align: top; border-bottom: 1px solid var(--border); }
.source-tag {
  display: inline-block; padding: 0.25rem 0.75rem; border-radius: 9999px;
  font-size: 0.7rem; font-weight: 600; text-transform: uppercase;
  background: var(--bg-tertiary); color: var(--text-secondary); margin-bottom: 0.5rem;
}
.source-tag.accc { background: #1e3a8a; color: #93c5fd; }
.source-tag.austrac { background: #14532d; color: #86efac; }
.source-tag.apra { background: #713f12; color: #fde047; }
.source-tag.asic { background: #7c2d12; color: #fca5a5; }
.source-tag.rba { background: #3730a3; color: #c4b5fd; }
.article-title { color: var(--text-primary); font-weight: 600; text-decoration: none; display: block; }
.article-title:hover { color: var(--primary); }
.article-date { color: var(--text-secondary); font-size: 0.8rem; white-space: nowrap; }
.risk-badge {
  display: inline-block; padding: 0.25rem 0.75rem; border-radius: 0.375rem;
  font-size: 0.75rem; font-weight: 600;
  background: var(--bg-tertiary); color: var(--text-secondary);
}
.risk-badge.minimal { background: #14532d; color: #86efac; }
.risk-badge.low { background: #1e3a8a; color: #93c5fd; }
.risk-badge.moderate { background: #713f12; color: #fde047; }
.risk-badge.high { background: #7c2d12; color: #fca5a5; }
.risk-badge.critical { background: #7f1d1d; color: #fecaca; }
.risk-rationale, .industry-line { font-size: 0.78rem; color: var(--text-secondary); margin-top: 0.4rem; }
.ai-summary { font-size: 0.875rem; color: var(--text-secondary); }
.article-content {
  color: var(--text-secondary); font-size: 0.85rem; max-height: 14rem; overflow-y: auto;
  padding: 0.75rem; background: var(--bg-secondary); border-radius: 0.5rem;
  border-left: 3px solid var(--primary);
}
.pagination {
  display: flex; justify-content: center; align-items: center; gap: 0.75rem;
  padding: 1.25rem;
}
.page-btn {
  padding: 0.5rem 1rem; border: 1px solid var(--border); background: var(--bg-secondary);
  color: var(--text-secondary); border-radius: 0.5rem; cursor: pointer; font-family: inherit;
}
.page-btn:disabled { opacity: 0.4; cursor: default; }
.page-info { font-size: 0.85rem; color: var(--text-secondary); }
.footer { margin-top: 2rem; text-align: center; color: var(--text-secondary); font-size: 0.85rem; }
.article-row.hidden { display: none; }
</style>
</head>
<body>
<nav class="nav-bar">
  <div class="logo">Financial Regulators Feed</div>
  <div class="nav-right">
    <span class="last-updated-badge">Last Updated: {{.Updated}}</span>
    <a href="feed-data.xml" class="nav-link" download>Export XML</a>
  </div>
</nav>
<div class="container">
  <h1 class="page-title">Latest Regulatory Updates</h1>
  <div class="filter-section">
    <span class="filter-label">Filter by Source:</span>
    <button class="filter-btn active" data-filter="all" onclick="filterArticles('all')">All Sources</button>
    {{range .Sources}}<button class="filter-btn" data-filter="{{.}}" onclick="filterArticles('{{.}}')">{{.}}</button>
    {{end}}
  </div>
  <div class="content-card">
    <div class="table-wrapper">
      <table>
        <thead>
          <tr>
            <th style="width: 22%;" onclick="sortTable('title')">Title</th>
            <th style="width: 9%;" onclick="sortTable('date')">Date</th>
            <th style="width: 20%;">AI Summary</th>
            <th style="width: 14%;">Risk</th>
            <th style="width: 12%;">Industries</th>
            <th style="width: 23%;">Content</th>
          </tr>
        </thead>
        <tbody id="articleTableBody">
        {{range .Articles}}<tr class="article-row" data-source="{{.Source}}" data-title="{{.Title}}" data-date="{{.PublishedSort}}">
          <td>
            <span class="source-tag {{.SourceClass}}">{{.Source}}</span>
            <a href="{{.Link}}" target="_blank" rel="noopener" class="article-title">{{.Title}}</a>
          </td>
          <td><span class="article-date">{{.PublishedDisplay}}</span></td>
          <td><div class="ai-summary">{{.AISummary}}</div></td>
          <td>
            <span class="risk-badge {{.RiskClass}}">{{.RiskRating}}</span>
            {{if .RiskRationale}}<div class="risk-rationale">{{.RiskRationale}} (Confidence: {{.RiskConfidence}})</div>{{end}}
          </td>
          <td>
            <div>{{.Industries}}</div>
            {{if .IndustryRationale}}<div class="industry-line">{{.IndustryRationale}}</div>{{end}}
          </td>
          <td><div class="article-content">{{.FullText}}</div></td>
        </tr>
        {{end}}</tbody>
      </table>
    </div>
    <div class="pagination">
      <button class="page-btn" id="prevPage" onclick="changePage(-1)">Previous</button>
      <span class="page-info" id="pageInfo"></span>
      <button class="page-btn" id="nextPage" onclick="changePage(1)">Next</button>
    </div>
  </div>
  <div class="footer">
    <p>Displaying articles from ACCC, ASIC, APRA, AUSTRAC, and RBA &middot; updated every 12 hours</p>
  </div>
</div>
<script>
const PAGE_SIZE = 20;
let currentPage = 1;
let currentFilter = 'all';
let currentSort = { column: null, ascending: true };

function visibleRows() {
  return Array.from(document.querySelectorAll('.article-row')).filter(row =>
    currentFilter === 'all' || row.dataset.source === currentFilter);
}

function filterArticles(source) {
  currentFilter = source;
  currentPage = 1;
  document.querySelectorAll('.filter-btn').forEach(btn =>
    btn.classList.toggle('active', btn.dataset.filter === source));
  renderPage();
}

function sortTable(column) {
  if (currentSort.column === column) {
    currentSort.ascending = !currentSort.ascending;
  } else {
    currentSort = { column: column, ascending: true };
  }
  const tbody = document.getElementById('articleTableBody');
  const rows = Array.from(tbody.querySelectorAll('.article-row'));
  rows.sort((a, b) => {
    let av, bv;
    if (column === 'title') {
      av = a.dataset.title.toLowerCase(); bv = b.dataset.title.toLowerCase();
    } else {
      av = a.dataset.date || '0000'; bv = b.dataset.date || '0000';
    }
    if (av < bv) return currentSort.ascending ? -1 : 1;
    if (av > bv) return currentSort.ascending ? 1 : -1;
    return 0;
  });
  rows.forEach(row => tbody.appendChild(row));
  renderPage();
}

function changePage(delta) {
  currentPage += delta;
  renderPage();
}

function renderPage() {
  const rows = visibleRows();
  const pages = Math.max(1, Math.ceil(rows.length / PAGE_SIZE));
  currentPage = Math.min(Math.max(currentPage, 1), pages);

  document.querySelectorAll('.article-row').forEach(row => row.classList.add('hidden'));
  const start = (currentPage - 1) * PAGE_SIZE;
  rows.slice(start, start + PAGE_SIZE).forEach(row => row.classList.remove('hidden'));

  document.getElementById('pageInfo').textContent =
    'Page ' + currentPage + ' of ' + pages + ' (' + rows.length + ' articles)';
  document.getElementById('prevPage').disabled = currentPage <= 1;
  document.getElementById('nextPage').disabled = currentPage >= pages;
}

renderPage();
</script>
</body>
</html>
`
