package browser

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"boardharvest/pkg/collector"
	"boardharvest/pkg/pinterest"

	"github.com/PuerkitoBio/goquery"
)

// StaticPage serves a saved HTML document. Its content never grows, so a
// harvest over it stalls right after the first snapshot.
type StaticPage struct {
	doc *goquery.Document

	mu       sync.Mutex
	position float64
}

var _ collector.Host = (*StaticPage)(nil)

// NewStaticPage parses an HTML document
func NewStaticPage(r io.Reader) (*StaticPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &StaticPage{doc: doc}, nil
}

// Images returns every pin image in the document. Widths come from the
// width attribute; natural sizes are unknown.
func (s *StaticPage) Images(ctx context.Context) ([]collector.Image, error) {
	var images []collector.Image
	s.doc.Find(pinterest.BoardImageSelector).Each(func(i int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		alt, _ := sel.Attr("alt")
		width, _ := strconv.Atoi(sel.AttrOr("width", ""))
		images = append(images, collector.Image{URL: src, Alt: alt, Width: width})
	})
	return images, nil
}

// ScrollPosition returns the last position scrolled to
func (s *StaticPage) ScrollPosition(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position, nil
}

// ScrollTo records y; the document does not react
func (s *StaticPage) ScrollTo(ctx context.Context, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = y
	return nil
}

// ScrollHeight is constant for a static document
func (s *StaticPage) ScrollHeight(ctx context.Context) (float64, error) {
	return 0, nil
}

// Title returns the document title
func (s *StaticPage) Title(ctx context.Context) (string, error) {
	return strings.TrimSpace(s.doc.Find("title").First().Text()), nil
}

// MainImage locates the main image of a saved pin page
func (s *StaticPage) MainImage(ctx context.Context) (pinterest.PinImage, error) {
	if poster := s.doc.Find(pinterest.PinVideoSelector).First().AttrOr("poster", ""); poster != "" {
		return pinterest.PinImage{Poster: poster}, nil
	}
	for _, selector := range pinterest.PinImageSelectors {
		img := s.doc.Find(selector).First()
		if img.Length() == 0 {
			continue
		}
		return pinterest.PinImage{
			Srcset: img.AttrOr("srcset", ""),
			Src:    img.AttrOr("src", ""),
		}, nil
	}
	return pinterest.PinImage{}, nil
}

// PinTitle returns the pin title, falling back to the og:title meta tag
func (s *StaticPage) PinTitle(ctx context.Context) (string, error) {
	for _, selector := range pinterest.PinTitleSelectors {
		if text := strings.TrimSpace(s.doc.Find(selector).First().Text()); text != "" {
			return text, nil
		}
	}
	return strings.TrimSpace(s.doc.Find(pinterest.PinTitleMetaSelector).AttrOr("content", "")), nil
}
