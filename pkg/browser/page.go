package browser

import (
	"context"
	"fmt"

	"boardharvest/pkg/collector"
	"boardharvest/pkg/pinterest"

	"github.com/go-rod/rod"
)

// Page is a live tab. It satisfies collector.Host.
type Page struct {
	page    *rod.Page
	browser *rod.Browser
}

var _ collector.Host = (*Page)(nil)

const imagesJS = `(sel) => Array.from(document.querySelectorAll(sel), (img) => ({
	url: img.src,
	alt: img.alt || '',
	naturalWidth: img.naturalWidth || 0,
	width: img.width || 0,
}))`

type renderedImage struct {
	URL          string `json:"url"`
	Alt          string `json:"alt"`
	NaturalWidth int    `json:"naturalWidth"`
	Width        int    `json:"width"`
}

// Images returns the pin images rendered right now
func (p *Page) Images(ctx context.Context) ([]collector.Image, error) {
	res, err := p.page.Context(ctx).Eval(imagesJS, pinterest.BoardImageSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot images: %w", err)
	}

	var rendered []renderedImage
	if err := res.Value.Unmarshal(&rendered); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}

	images := make([]collector.Image, len(rendered))
	for i, r := range rendered {
		images[i] = collector.Image{URL: r.URL, Alt: r.Alt, NaturalWidth: r.NaturalWidth, Width: r.Width}
	}
	return images, nil
}

// ScrollPosition returns window.scrollY
func (p *Page) ScrollPosition(ctx context.Context) (float64, error) {
	return p.number(ctx, `() => window.scrollY`)
}

// ScrollTo scrolls the window to y
func (p *Page) ScrollTo(ctx context.Context, y float64) error {
	if _, err := p.page.Context(ctx).Eval(`(y) => window.scrollTo(0, y)`, y); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

// ScrollHeight returns the height of the document body
func (p *Page) ScrollHeight(ctx context.Context) (float64, error) {
	return p.number(ctx, `() => document.body.scrollHeight`)
}

// Title returns document.title
func (p *Page) Title(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(`() => document.title`)
	if err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return res.Value.Str(), nil
}

const mainImageJS = `(videoSel, imageSels) => {
	const out = { poster: '', srcset: '', src: '' };
	const video = document.querySelector(videoSel);
	if (video && video.poster) { out.poster = video.poster; return out; }
	for (const sel of imageSels) {
		const img = document.querySelector(sel);
		if (!img) continue;
		out.srcset = img.getAttribute('srcset') || '';
		out.src = img.currentSrc || img.src || '';
		return out;
	}
	return out;
}`

// MainImage locates the main image of a pin close-up page
func (p *Page) MainImage(ctx context.Context) (pinterest.PinImage, error) {
	res, err := p.page.Context(ctx).Eval(mainImageJS, pinterest.PinVideoSelector, pinterest.PinImageSelectors)
	if err != nil {
		return pinterest.PinImage{}, fmt.Errorf("failed to find main image: %w", err)
	}

	var found struct {
		Poster string `json:"poster"`
		Srcset string `json:"srcset"`
		Src    string `json:"src"`
	}
	if err := res.Value.Unmarshal(&found); err != nil {
		return pinterest.PinImage{}, fmt.Errorf("failed to decode main image: %w", err)
	}
	return pinterest.PinImage{Poster: found.Poster, Srcset: found.Srcset, Src: found.Src}, nil
}

const pinTitleJS = `(titleSels, metaSel) => {
	for (const sel of titleSels) {
		const el = document.querySelector(sel);
		const text = el && el.textContent ? el.textContent.trim() : '';
		if (text) return text;
	}
	const meta = document.querySelector(metaSel);
	return meta && meta.content ? meta.content.trim() : '';
}`

// PinTitle returns the title of a pin close-up page, or "" if it has none
func (p *Page) PinTitle(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(pinTitleJS, pinterest.PinTitleSelectors, pinterest.PinTitleMetaSelector)
	if err != nil {
		return "", fmt.Errorf("failed to read pin title: %w", err)
	}
	return res.Value.Str(), nil
}

// Close closes the tab
func (p *Page) Close() error {
	return p.page.Close()
}

func (p *Page) number(ctx context.Context, js string) (float64, error) {
	res, err := p.page.Context(ctx).Eval(js)
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate %q: %w", js, err)
	}
	return res.Value.Num(), nil
}
