package datadrop

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/covid19trackerph/tracker/internal/contracts"
)

// folderIDRe matches a Drive file or folder id inside a URL
var folderIDRe = regexp.MustCompile(`[-\w]{25,}`)

// ExtractLink returns the first data-drop link in a readme.
// PDF readmes are read through the link annotations of every page, anything
// else is parsed as HTML. Archive and mailto links are skipped.
func ExtractLink(content []byte) (string, error) {
	var links []string
	var err error
	if bytes.HasPrefix(content, []byte("%PDF")) {
		links, err = pdfLinks(content)
	} else {
		links, err = htmlLinks(content)
	}
	if err != nil {
		return "", err
	}

	for _, link := range links {
		if usableLink(link) {
			return link, nil
		}
	}
	return "", fmt.Errorf("%w: %d links, none usable", contracts.ErrLinkExtraction, len(links))
}

func usableLink(link string) bool {
	return link != "" &&
		!strings.Contains(link, "DataDropArchives") &&
		!strings.Contains(link, "mailto:")
}

// pdfLinks returns the /URI actions of the page annotations in page order.
// The reader panics on malformed documents, so panics are reported as
// extraction errors.
func pdfLinks(content []byte) (links []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			links, err = nil, fmt.Errorf("%w: malformed pdf: %v", contracts.ErrLinkExtraction, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", contracts.ErrLinkExtraction, err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		annots := r.Page(i).V.Key("Annots")
		for j := 0; j < annots.Len(); j++ {
			uri := annots.Index(j).Key("A").Key("URI")
			if uri.Kind() == pdf.String {
				links = append(links, strings.TrimSpace(uri.RawString()))
			}
		}
	}
	return links, nil
}

func htmlLinks(content []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse readme: %v", contracts.ErrLinkExtraction, err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		links = append(links, strings.TrimSpace(href))
	})
	return links, nil
}

// FolderID returns the first Drive id in link, or "" when there is none.
func FolderID(link string) string {
	return folderIDRe.FindString(link)
}
