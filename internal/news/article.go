package news

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// DateLayout is the layout of Article.Published. It sorts lexically.
const DateLayout = "2006-01-02 15:04"

const (
	untitled      = "శీర్షిక అందుబాటులో లేదు"
	noLink        = "#"
	detailsSuffix = "... గురించిన వివరాలు."
	contextSuffix = "... గురించిన వివరాలు మరియు తాజా సమాచారం."

	maxSummaryLength = 200
	minSummaryLength = 50
	dedupeKeyLength  = 50
)

type Article struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Source    string `json:"source"`
	Published string `json:"published"`
	Link      string `json:"link"`
}

// ArticleID derives a stable id from the link, or from the title for
// entries without one.
func ArticleID(link, title string) string {
	key := link
	if key == "" || key == noLink {
		key = "title:" + title
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// CleanHTML returns the text content of an HTML fragment, trimmed.
func CleanHTML(fragment string) string {
	if fragment == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// Summarize shortens a feed description to at most two sentences. Very short
// results are replaced by a generic line built from the title.
func Summarize(description, title string) string {
	if description == "" {
		return truncate(title, 100) + detailsSuffix
	}

	clean := CleanHTML(description)
	summary := clean
	if sentences := strings.Split(clean, "."); len(sentences) > 1 {
		summary = strings.Join(sentences[:2], ". ") + "."
	}

	if utf8.RuneCountInString(summary) > maxSummaryLength {
		summary = truncate(summary, maxSummaryLength) + "..."
	}
	if utf8.RuneCountInString(summary) < minSummaryLength {
		summary = truncate(title, 50) + contextSuffix
	}
	return summary
}

// RemoveDuplicates keeps the first article per title key.
func RemoveDuplicates(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]Article, 0, len(articles))
	for _, a := range articles {
		key := truncate(strings.TrimSpace(strings.ToLower(a.Title)), dedupeKeyLength)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, a)
	}
	return unique
}

// SortNewestFirst orders articles by Published, newest first. Ties keep
// their input order.
func SortNewestFirst(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Published > articles[j].Published
	})
}

func formatPublished(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return now.Format(DateLayout)
	}
	return t.Format(DateLayout)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

type backupEntry struct {
	title, summary, source, link string
	age                          time.Duration
}

var backupEntries = []backupEntry{
	{
		title:   "తెలంగాణ రాష్ట్ర వార్తలు - రాజకీయ పరిణామాలు",
		summary: "తెలంగాణ రాష్ట్రంలో నేటి రాజకీయ పరిణామాలు మరియు ప్రభుత్వ విధానాల గురించిన తాజా సమాచారం. ముఖ్యమంత్రి కేసీఆర్ ఇవాళ ముఖ్యమైన ప్రకటనలు చేశారు.",
		source:  "తెలుగు న్యూస్",
		link:    "https://example.com/news1",
	},
	{
		title:   "హైదరాబాద్ మెట్రో రైలు సేవలు - కొత్త మార్గాలు",
		summary: "హైదరాబాద్ మెట్రో రైలు కొత్త మార్గాలు ప్రారంభం. ప్రజలకు మరింత సౌకర్యవంతమైన ప్రయాణం కలుగుతుంది. టికెట్ ధరలు మరియు సమయ పట్టిక వివరాలు.",
		source:  "మెట్రో న్యూస్",
		link:    "https://example.com/news2",
		age:     2 * time.Hour,
	},
	{
		title:   "వాతావరణ సమాచారం - వర్షాలకు అవకాశం",
		summary: "తెలంగాణ రాష్ట్రంలో రాబోయే రెండు రోజుల పాటు వర్షాలకు అవకాశం ఉందని వాతావరణ శాఖ తెలిపింది. రైతులు అవసరమైన జాగ్రత్తలు తీసుకోవాలని సూచించారు.",
		source:  "వాతావరణ విభాగం",
		link:    "https://example.com/news3",
		age:     time.Hour,
	},
	{
		title:   "ఐటి సెక్టార్ వృద్ధి - కొత్త ఉద్యోగావకాశాలు",
		summary: "హైదరాబాద్‌లో ఐటి సంస్థలు విస్తరణ. కొత్త ఉద్యోగావకాశాలు సృష్టి అవుతున్నాయి. సైబరాబాద్‌లో కొత్త కంపెనీలు స్థాపన.",
		source:  "టెక్ న్యూస్",
		link:    "https://example.com/news4",
		age:     3 * time.Hour,
	},
	{
		title:   "విద్యా రంగంలో కొత్త పథకాలు",
		summary: "తెలంగాణ ప్రభుత్వం విద్యా రంగంలో కొత్త పథకాలు ప్రవేశపెట్టనుంది. ఉచిత విద్య మరియు కొత్త పాఠశాలల నిర్మాణం గురించిన వివరాలు.",
		source:  "విద్యా శాఖ",
		link:    "https://example.com/news5",
		age:     4 * time.Hour,
	},
}

// BackupArticles returns the fixed articles served when no feed answers.
// They are not re-sorted.
func BackupArticles(now time.Time) []Article {
	articles := make([]Article, 0, len(backupEntries))
	for _, e := range backupEntries {
		articles = append(articles, Article{
			ID:        ArticleID(e.link, e.title),
			Title:     e.title,
			Summary:   e.summary,
			Source:    e.source,
			Published: now.Add(-e.age).Format(DateLayout),
			Link:      e.link,
		})
	}
	return articles
}
