package pipeline

import (
	"fmt"
	"strings"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/search"
)

// excerptBudget is the maximum number of excerpt characters rendered per
// result before truncation.
const excerptBudget = 300

// FormatSearchResults renders search results into a single
// prompt-insertable document. The output is deterministic: identical
// inputs produce byte-identical documents.
func FormatSearchResults(query string, results []search.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Search Results for \"%s\"\n\n", query)

	if len(results) == 0 {
		b.WriteString("No results found. Try refining your search or asking a different question.")
		return b.String()
	}

	for i, r := range results {
		fmt.Fprintf(&b, "### %d. [%s](%s)\n", i+1, r.Title, r.URL)
		if r.PublishedDate != nil {
			fmt.Fprintf(&b, "Published: %s\n", r.PublishedDate.Format("January 2, 2006"))
		}
		if r.Author != "" {
			fmt.Fprintf(&b, "Author: %s\n", r.Author)
		}
		if r.Text != "" {
			excerpt := r.Text
			marker := ""
			// Truncation counts characters, not bytes, so a multibyte
			// rune is never split into invalid UTF-8.
			if runes := []rune(excerpt); len(runes) > excerptBudget {
				excerpt = string(runes[:excerptBudget])
				marker = "..."
			}
			fmt.Fprintf(&b, "\n%s%s\n\n", excerpt, marker)
		}
		b.WriteString("---\n\n")
	}

	return b.String()
}
