// Package storage persists the payloads of a harvest run.
//
// A Strategy picks one of two paths once per run:
//
//   - Directory-backed: a DirectoryPicker grants a writable Directory. Files
//     are written atomically (temporary file then rename) and overwrite
//     existing files of the same name. Declining the picker cancels the run.
//   - Fallback: without a picker, or when the picker is unavailable, every
//     file goes through a Downloader as "<container>/<file>", paced by a
//     short settling delay.
//
// Either way Persist skips failed fetches, names each file from its sniffed
// format and reports how many of the attempted items were saved.
package storage
