package markitdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RSSConverter handles RSS and Atom feed files.
type RSSConverter struct{}

// NewRSSConverter creates a new RSSConverter.
func NewRSSConverter() *RSSConverter {
	return &RSSConverter{}
}

func (c *RSSConverter) Accepts(reader io.ReadSeeker, info StreamInfo) bool {
	switch info.Extension {
	case ".rss", ".atom":
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	switch {
	case strings.HasPrefix(mime, "application/rss"),
		strings.HasPrefix(mime, "application/atom"):
		return true
	}
	// Generic XML could be anything; claim it only when the prologue
	// contains a feed root element.
	if info.Extension == ".xml" ||
		strings.HasPrefix(mime, "text/xml") ||
		strings.HasPrefix(mime, "application/xml") {
		return sniffFeedRoot(reader)
	}
	return false
}

// sniffFeedRoot reports whether the stream starts with an RSS, Atom, or
// RDF root element. The stream position is restored afterwards.
func sniffFeedRoot(reader io.ReadSeeker) bool {
	buf := make([]byte, 1024)
	n, _ := io.ReadFull(reader, buf)
	reader.Seek(0, io.SeekStart)

	head := strings.ToLower(string(buf[:n]))
	return strings.Contains(head, "<rss") ||
		strings.Contains(head, "<feed") ||
		strings.Contains(head, "<rdf:rdf")
}

func (c *RSSConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	fp := gofeed.NewParser()
	feed, err := fp.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var b strings.Builder
	title := feed.Title

	if feed.Title != "" {
		fmt.Fprintf(&b, "# %s\n", feed.Title)
	}
	if feed.Description != "" {
		fmt.Fprintf(&b, "%s\n", feed.Description)
	}
	b.WriteString("\n")

	for _, item := range feed.Items {
		if item.Title != "" {
			fmt.Fprintf(&b, "## %s\n", item.Title)
		}

		if item.Published != "" {
			fmt.Fprintf(&b, "Published: %s\n\n", item.Published)
		} else if item.Updated != "" {
			fmt.Fprintf(&b, "Updated: %s\n\n", item.Updated)
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		if content != "" {
			// Feed bodies are frequently HTML fragments.
			if strings.Contains(content, "<") && strings.Contains(content, ">") {
				md, err := convertHTMLToMarkdown(content)
				if err == nil {
					content = md
				}
			}
			b.WriteString(content)
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	return &DocumentConverterResult{
		Markdown: b.String(),
		Title:    title,
	}, nil
}
