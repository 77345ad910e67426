package pinterest

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// BaseURL is the site root used as referer
	BaseURL = "https://www.pinterest.com"

	// ImageHost serves every pin image
	ImageHost = "i.pinimg.com"
)

// thumbnailRe matches a sized pin image such as /236x/ab/cd/ef/<hash>.jpg
var thumbnailRe = regexp.MustCompile(`(?i)^(https?://i\.pinimg\.com)/\d+x(/[0-9a-f]{2}/[0-9a-f]{2}/[0-9a-f]{2}/[0-9a-f]{32}\.(?:jpg|jpeg|png|gif|webp))$`)

// NormalizeURL rewrites a sized thumbnail URL to its /originals/ tier.
// Other URLs are returned unchanged.
func NormalizeURL(u string) string {
	m := thumbnailRe.FindStringSubmatch(u)
	if m == nil {
		return u
	}
	return m[1] + "/originals" + m[2]
}

// reservedRoutes are first or second path segments that are never boards
var reservedRoutes = map[string]bool{
	"search": true, "pin": true, "_": true, "settings": true, "ideas": true,
	"today": true, "following": true, "explore": true, "business": true,
	"login": true, "logout": true, "create": true, "about": true,
	"help": true, "careers": true, "news": true, "collage-creation-tool": true,
}

// IsBoardURL reports whether raw looks like /<user>/<board>/
func IsBoardURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return len(parts) == 2 && !reservedRoutes[parts[0]] && !reservedRoutes[parts[1]]
}

// IsPinURL reports whether raw points at a pin close-up page
func IsPinURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Path, "/pin/")
}

// BestSrcsetCandidate returns the URL with the highest declared width in a
// srcset attribute. Candidates without a width descriptor count as 0.
func BestSrcsetCandidate(srcset string) string {
	type candidate struct {
		url   string
		width int
	}

	var candidates []candidate
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		c := candidate{url: fields[0]}
		if len(fields) > 1 {
			c.width = leadingInt(fields[1])
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].width > candidates[j].width
	})
	return candidates[0].url
}

// leadingInt parses the digits at the start of s ("736w" is 736, "4x" is 4)
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// PinImage describes the main image of a pin close-up page as found in the
// document. Any field may be empty.
type PinImage struct {
	Poster string
	Srcset string
	Src    string
}

// MainImageURL chooses the URL to download for a pin: the video poster for
// video and GIF pins, else the widest srcset candidate, else src. The result
// is upgraded to the originals tier.
func MainImageURL(img PinImage) string {
	switch {
	case img.Poster != "":
		return NormalizeURL(img.Poster)
	case img.Srcset != "":
		if best := BestSrcsetCandidate(img.Srcset); best != "" {
			return NormalizeURL(best)
		}
	}
	return NormalizeURL(img.Src)
}
