// Package browse derives one level of a torrent's directory tree from the
// flat file paths the API reports.
//
// TorBox returns every file with its full path, first segment being the
// torrent's own root folder. Nothing here materializes a tree: each listing
// is computed on demand from the flat list and the current virtual path,
// which is always relative to the torrent root.
package browse

import (
	"sort"
	"strings"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/torbox"
)

// Entry is a file shown at the current level.
type Entry struct {
	Name string // last path segment, as displayed
	Size int64
	Path string // full path as reported by the API, watch-status key
	File torbox.File
}

// Listing is one level of the virtual tree. Folders and files are each
// sorted by name, so the same input always yields the same menu numbering:
// folders take 1..F, files F+1..F+N.
type Listing struct {
	Folders []string
	Files   []Entry
}

// Item is one numbered row of a listing.
type Item struct {
	IsFolder bool
	Folder   string // set when IsFolder
	Entry    Entry  // set for files
}

// Len returns how many numbered items the listing has.
func (l Listing) Len() int {
	return len(l.Folders) + len(l.Files)
}

// At maps a 1-based menu number to an item, folders first.
func (l Listing) At(n int) (Item, bool) {
	if n < 1 || n > l.Len() {
		return Item{}, false
	}
	if n <= len(l.Folders) {
		return Item{IsFolder: true, Folder: l.Folders[n-1]}, true
	}
	return Item{Entry: l.Files[n-1-len(l.Folders)]}, true
}

// Index builds the listing one level below current. A path that matches
// nothing produces an empty listing. A file whose path relative to the
// torrent root equals current verbatim is in scope but has no remaining
// segments, so it surfaces as neither folder nor file.
func Index(files []torbox.File, current string) Listing {
	var l Listing
	seen := make(map[string]bool)

	for _, f := range files {
		rel := stripRoot(f.Name)

		var remainder string
		if current != "" {
			if !strings.HasPrefix(rel, current+"/") && rel != current {
				continue
			}
			remainder = strings.TrimLeft(rel[len(current):], "/")
		} else {
			remainder = rel
		}

		name, _, nested := strings.Cut(remainder, "/")
		if name == "" {
			continue
		}
		if nested {
			if !seen[name] {
				seen[name] = true
				l.Folders = append(l.Folders, name)
			}
			continue
		}
		l.Files = append(l.Files, Entry{Name: name, Size: f.Size, Path: f.Name, File: f})
	}

	sort.Strings(l.Folders)
	sort.Slice(l.Files, func(i, j int) bool { return l.Files[i].Name < l.Files[j].Name })
	return l
}

// Scope returns the files at or below current, in input order.
func Scope(files []torbox.File, current string) []torbox.File {
	if current == "" {
		return files
	}
	var out []torbox.File
	for _, f := range files {
		rel := stripRoot(f.Name)
		if strings.HasPrefix(rel, current+"/") || rel == current {
			out = append(out, f)
		}
	}
	return out
}

// Descend returns the path one level deeper.
func Descend(current, folder string) string {
	if folder == "" {
		return current
	}
	if current == "" {
		return folder
	}
	return current + "/" + folder
}

// Parent returns the path one level up, "" at the top.
func Parent(current string) string {
	if i := strings.LastIndexByte(current, '/'); i >= 0 {
		return current[:i]
	}
	return ""
}

// Normalize drops empty segments from a possibly stale persisted path.
func Normalize(p string) string {
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, s := range parts {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "/")
}

// stripRoot removes the leading torrent-root segment from a full path.
// Single-segment paths are files sitting directly in the torrent root and
// pass through unchanged.
func stripRoot(full string) string {
	if _, rest, ok := strings.Cut(full, "/"); ok {
		return rest
	}
	return full
}
