package browse

import (
	"reflect"
	"testing"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/torbox"
)

// season returns a torrent file list with a nested folder tree and loose
// files, deliberately out of order.
func season() []torbox.File {
	return []torbox.File{
		{ID: 1, Name: "Show S1/notes.txt", Size: 10},
		{ID: 2, Name: "Show S1/Extras/interview.mkv", Size: 700},
		{ID: 3, Name: "Show S1/S01E02.mkv", Size: 2000},
		{ID: 4, Name: "Show S1/Extras/bts/clip.mp4", Size: 300},
		{ID: 5, Name: "Show S1/S01E01.mkv", Size: 2100},
		{ID: 6, Name: "Show S1/Subs/S01E01.srt", Size: 4},
	}
}

func folderNames(l Listing) []string { return l.Folders }

func fileNames(l Listing) []string {
	names := make([]string, 0, len(l.Files))
	for _, f := range l.Files {
		names = append(names, f.Name)
	}
	return names
}

func TestIndex_Root(t *testing.T) {
	l := Index(season(), "")

	wantFolders := []string{"Extras", "Subs"}
	if !reflect.DeepEqual(folderNames(l), wantFolders) {
		t.Errorf("folders = %v, want %v", folderNames(l), wantFolders)
	}
	wantFiles := []string{"S01E01.mkv", "S01E02.mkv", "notes.txt"}
	if !reflect.DeepEqual(fileNames(l), wantFiles) {
		t.Errorf("files = %v, want %v", fileNames(l), wantFiles)
	}
	if l.Files[0].Path != "Show S1/S01E01.mkv" {
		t.Errorf("entry path = %q, want full path", l.Files[0].Path)
	}
	if l.Files[0].File.ID != 5 {
		t.Errorf("entry keeps source file, got id %d", l.Files[0].File.ID)
	}
}

func TestIndex_Subfolder(t *testing.T) {
	l := Index(season(), "Extras")

	if !reflect.DeepEqual(folderNames(l), []string{"bts"}) {
		t.Errorf("folders = %v, want [bts]", folderNames(l))
	}
	if !reflect.DeepEqual(fileNames(l), []string{"interview.mkv"}) {
		t.Errorf("files = %v, want [interview.mkv]", fileNames(l))
	}
}

func TestIndex_DeepFolder(t *testing.T) {
	l := Index(season(), "Extras/bts")

	if len(l.Folders) != 0 {
		t.Errorf("folders = %v, want none", l.Folders)
	}
	if !reflect.DeepEqual(fileNames(l), []string{"clip.mp4"}) {
		t.Errorf("files = %v, want [clip.mp4]", fileNames(l))
	}
}

func TestIndex_StalePathIsEmpty(t *testing.T) {
	l := Index(season(), "Extras/gone")

	if l.Len() != 0 {
		t.Errorf("listing for vanished path has %d items, want 0", l.Len())
	}
}

func TestIndex_EmptyInput(t *testing.T) {
	l := Index(nil, "")
	if l.Len() != 0 {
		t.Errorf("listing of no files has %d items, want 0", l.Len())
	}
}

// A file whose path relative to the torrent root equals the current path is
// in scope but has no remaining segments, so it shows up as neither folder
// nor file.
func TestIndex_PathEqualsFile(t *testing.T) {
	files := []torbox.File{
		{ID: 1, Name: "Show S1/notes.txt", Size: 10},
		{ID: 2, Name: "Show S1/S01E01.mkv", Size: 2100},
	}
	l := Index(files, "notes.txt")

	if l.Len() != 0 {
		t.Errorf("listing = %v/%v, want empty", l.Folders, fileNames(l))
	}
}

func TestIndex_RootlessFile(t *testing.T) {
	l := Index([]torbox.File{{ID: 1, Name: "movie.mkv", Size: 900}}, "")

	if !reflect.DeepEqual(fileNames(l), []string{"movie.mkv"}) {
		t.Errorf("files = %v, want [movie.mkv]", fileNames(l))
	}
}

func TestIndex_CollapsesDoubledSeparators(t *testing.T) {
	files := []torbox.File{
		{ID: 1, Name: "Show//loose.mkv", Size: 1},
		{ID: 2, Name: "Show/Sub//x.mkv", Size: 1},
	}

	root := Index(files, "")
	for _, name := range root.Folders {
		if name == "" {
			t.Error("root folders contain an empty name")
		}
	}

	sub := Index(files, "Sub")
	if !reflect.DeepEqual(fileNames(sub), []string{"x.mkv"}) {
		t.Errorf("files under Sub = %v, want [x.mkv]", fileNames(sub))
	}
}

func TestIndex_Deterministic(t *testing.T) {
	a := Index(season(), "")
	b := Index(season(), "")
	if !reflect.DeepEqual(a, b) {
		t.Error("two listings of the same input differ")
	}
}

func TestIndex_FoldersAndFilesDisjoint(t *testing.T) {
	for _, path := range []string{"", "Extras", "Extras/bts", "Subs"} {
		l := Index(season(), path)
		files := make(map[string]bool)
		for _, f := range l.Files {
			files[f.Name] = true
		}
		for _, folder := range l.Folders {
			if files[folder] {
				t.Errorf("at %q, %q is both folder and file", path, folder)
			}
		}
	}
}

// Walking the tree level by level, entering every listed folder, must reach
// every file in scope exactly once. Nothing hides below an unlisted level.
func TestIndex_WalkCoversEveryFile(t *testing.T) {
	files := season()

	var walk func(current string, seen map[string]int)
	walk = func(current string, seen map[string]int) {
		l := Index(files, current)
		for _, f := range l.Files {
			seen[f.Path]++
		}
		for _, folder := range l.Folders {
			walk(Descend(current, folder), seen)
		}
	}

	got := make(map[string]int)
	walk("", got)
	want := make(map[string]int)
	for _, f := range files {
		want[f.Name] = 1
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walk from the root found %v, want each file once: %v", got, want)
	}

	// a walk from a subfolder reaches exactly its Scope
	got = make(map[string]int)
	walk("Extras", got)
	want = make(map[string]int)
	for _, f := range Scope(files, "Extras") {
		want[f.Name] = 1
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("walk from Extras found %v, want %v", got, want)
	}
}

func TestListing_At(t *testing.T) {
	l := Index(season(), "")

	tests := []struct {
		n        int
		isFolder bool
		name     string
		ok       bool
	}{
		{1, true, "Extras", true},
		{2, true, "Subs", true},
		{3, false, "S01E01.mkv", true},
		{4, false, "S01E02.mkv", true},
		{5, false, "notes.txt", true},
		{0, false, "", false},
		{6, false, "", false},
		{-1, false, "", false},
	}
	for _, tt := range tests {
		item, ok := l.At(tt.n)
		if ok != tt.ok {
			t.Errorf("At(%d) ok = %v, want %v", tt.n, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if item.IsFolder != tt.isFolder {
			t.Errorf("At(%d) isFolder = %v, want %v", tt.n, item.IsFolder, tt.isFolder)
		}
		name := item.Folder
		if !item.IsFolder {
			name = item.Entry.Name
		}
		if name != tt.name {
			t.Errorf("At(%d) = %q, want %q", tt.n, name, tt.name)
		}
	}

	if l.Len() != 5 {
		t.Errorf("Len = %d, want 5", l.Len())
	}
}

func TestScope(t *testing.T) {
	all := Scope(season(), "")
	if len(all) != len(season()) {
		t.Errorf("root scope has %d files, want %d", len(all), len(season()))
	}

	extras := Scope(season(), "Extras")
	if len(extras) != 2 {
		t.Fatalf("Extras scope has %d files, want 2", len(extras))
	}
	for _, f := range extras {
		if f.ID != 2 && f.ID != 4 {
			t.Errorf("unexpected file in Extras scope: %v", f)
		}
	}

	if got := Scope(season(), "Missing"); len(got) != 0 {
		t.Errorf("scope of vanished path has %d files, want 0", len(got))
	}
}

func TestDescend(t *testing.T) {
	tests := []struct {
		current, folder, want string
	}{
		{"", "Extras", "Extras"},
		{"Extras", "bts", "Extras/bts"},
		{"Extras", "", "Extras"},
	}
	for _, tt := range tests {
		if got := Descend(tt.current, tt.folder); got != tt.want {
			t.Errorf("Descend(%q, %q) = %q, want %q", tt.current, tt.folder, got, tt.want)
		}
	}
}

func TestParent(t *testing.T) {
	tests := []struct {
		current, want string
	}{
		{"Extras/bts", "Extras"},
		{"Extras", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Parent(tt.current); got != tt.want {
			t.Errorf("Parent(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Extras/bts", "Extras/bts"},
		{"/Extras//bts/", "Extras/bts"},
		{"//", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
