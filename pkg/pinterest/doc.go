// Package pinterest holds everything specific to the site: the HTTP client
// used to fetch images and pages, URL rules (originals upgrade, board and pin
// detection, srcset selection) and the DOM selectors the browser hosts use.
package pinterest
