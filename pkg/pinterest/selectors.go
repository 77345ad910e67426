package pinterest

// Selectors for the parts of a page the harvester reads. The site changes
// its markup often; keep every selector here.
const (
	// BoardImageSelector matches every rendered pin image on a board
	BoardImageSelector = `img[src*="i.pinimg.com"]`

	// PinVideoSelector matches the video of a video or GIF pin close-up
	PinVideoSelector = `[data-test-id="pin-closeup-image"] video, [elementtiming*="MainPinImage"] ~ video`

	// PinTitleMetaSelector is the fallback source of a pin title
	PinTitleMetaSelector = `meta[property="og:title"]`
)

// PinImageSelectors locate the main image of a pin close-up, best first
var PinImageSelectors = []string{
	`img[elementtiming*="MainPinImage"]`,
	`[data-test-id="pin-closeup-image"] img`,
	`img.hCL`,
	`img[fetchpriority="high"]`,
}

// PinTitleSelectors locate the title of a pin close-up, best first
var PinTitleSelectors = []string{
	`[data-test-id="closeup-title"] h1`,
	`[data-test-id="pin-title"]`,
	`h1[itemprop="name"]`,
}
