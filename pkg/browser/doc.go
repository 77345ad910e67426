// Package browser provides the pages a harvest runs against.
//
// Page drives a live Chrome tab through rod, with stealth evasions applied,
// and is what the harvest command normally uses. StaticPage answers the same
// questions from a saved HTML document through goquery; it never grows, so
// a harvest over it finishes after the stall threshold with a single
// snapshot. DownloadTrigger saves files the way a user clicking a download
// link would.
package browser
