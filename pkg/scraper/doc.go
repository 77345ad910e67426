// Package scraper runs a board download from start to finish.
//
// A run goes through fixed phases, reported on a status.Sink:
//
//	scrolling → fetching → persisting → done
//
// The harvester scrolls the board host until its content stops growing and
// returns every image item it saw. The payloads are then fetched under
// bounded concurrency and handed to the storage strategy, which names and
// writes them either into a directory the user approved or through the
// download fallback.
//
// Per-item failures never stop a run. A board with no items ends with
// errors.ErrEmptyHarvest; refusing directory access ends it with
// errors.ErrCancelled and nothing written.
package scraper
