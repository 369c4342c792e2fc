package news

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<p><b>Hello</b> &amp; world </p>", "Hello & world"},
		{"  <div>హైదరాబాద్ <a href=\"x\">మెట్రో</a></div>\n", "హైదరాబాద్ మెట్రో"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanHTML(tt.in))
	}
}

func TestSummarize(t *testing.T) {
	title := strings.Repeat("శీ", 60)

	t.Run("empty description uses title", func(t *testing.T) {
		got := Summarize("", title)
		assert.Equal(t, strings.Repeat("శీ", 50)+"... గురించిన వివరాలు.", got)
	})

	t.Run("keeps the first two sentences", func(t *testing.T) {
		desc := "<p>First sentence here about the news. Second sentence here too. Third.</p>"
		assert.Equal(t, "First sentence here about the news.  Second sentence here too.", Summarize(desc, "t"))
	})

	t.Run("truncates long text", func(t *testing.T) {
		got := Summarize(strings.Repeat("అ", 250), "t")
		assert.Equal(t, strings.Repeat("అ", 200)+"...", got)
		assert.Equal(t, 203, utf8.RuneCountInString(got))
	})

	t.Run("short summary is replaced", func(t *testing.T) {
		got := Summarize("Short", "A title")
		assert.Equal(t, "A title... గురించిన వివరాలు మరియు తాజా సమాచారం.", got)
	})
}

func TestRemoveDuplicates(t *testing.T) {
	long := strings.Repeat("x", 50)
	articles := []Article{
		{Title: "Hyderabad Metro", Source: "a"},
		{Title: "  hyderabad metro ", Source: "b"},
		{Title: long + "one", Source: "c"},
		{Title: long + "two", Source: "d"},
		{Title: "Weather", Source: "e"},
	}

	got := RemoveDuplicates(articles)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Source)
	assert.Equal(t, "c", got[1].Source)
	assert.Equal(t, "e", got[2].Source)
}

func TestSortNewestFirst(t *testing.T) {
	articles := []Article{
		{Title: "old", Published: "2024-01-01 09:00"},
		{Title: "new", Published: "2024-01-02 09:00"},
		{Title: "tie-a", Published: "2024-01-01 10:00"},
		{Title: "tie-b", Published: "2024-01-01 10:00"},
	}
	SortNewestFirst(articles)

	var titles []string
	for _, a := range articles {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"new", "tie-a", "tie-b", "old"}, titles)
}

func TestArticleID(t *testing.T) {
	assert.Equal(t, ArticleID("https://x/1", "a"), ArticleID("https://x/1", "b"))
	assert.NotEqual(t, ArticleID("https://x/1", "a"), ArticleID("https://x/2", "a"))
	assert.Equal(t, ArticleID("#", "a"), ArticleID("", "a"))
	assert.NotEqual(t, ArticleID("#", "a"), ArticleID("#", "b"))
}

func TestBackupArticles(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	articles := BackupArticles(now)

	require.Len(t, articles, 5)
	assert.Equal(t, "తెలంగాణ రాష్ట్ర వార్తలు - రాజకీయ పరిణామాలు", articles[0].Title)
	assert.Equal(t, "విద్యా శాఖ", articles[4].Source)

	published := []string{"2024-05-01 12:30", "2024-05-01 10:30", "2024-05-01 11:30", "2024-05-01 09:30", "2024-05-01 08:30"}
	for i, a := range articles {
		assert.Equal(t, published[i], a.Published)
		assert.Equal(t, "https://example.com/news"+string(rune('1'+i)), a.Link)
		assert.NotEmpty(t, a.ID)
	}
}
