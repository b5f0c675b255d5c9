// Package torbox is a client for the TorBox torrents API.
package torbox

import "strings"

// File is a single file inside a torrent. Name is the full slash-separated
// path as reported by the API; its first segment is the torrent's own root
// folder.
type File struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (f File) valid() bool {
	return f.Name != "" && f.Size >= 0
}

// Torrent is one entry from the torrent list.
type Torrent struct {
	ID    int64  `json:"id"`
	Hash  string `json:"hash"`
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Files []File `json:"files"`
}

// FilterTorrents returns the torrents whose name contains term,
// case-insensitively. An empty term matches everything.
func FilterTorrents(torrents []Torrent, term string) []Torrent {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return torrents
	}
	var out []Torrent
	for _, t := range torrents {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			out = append(out, t)
		}
	}
	return out
}

// FindTorrent returns the torrent with the given id.
func FindTorrent(torrents []Torrent, id int64) (Torrent, bool) {
	for _, t := range torrents {
		if t.ID == id {
			return t, true
		}
	}
	return Torrent{}, false
}
