package models

// Origin identifies which input a selected file came from
type Origin string

const (
	// OriginFile is an individually chosen file
	OriginFile Origin = "file"
	// OriginFolder is a file found while walking a chosen folder
	OriginFolder Origin = "folder"
	// OriginArchive is the chosen archive
	OriginArchive Origin = "archive"
)

// originOrder is the order in which origins are submitted
var originOrder = []Origin{OriginFile, OriginFolder, OriginArchive}

// SelectedFile is one file queued for upload
type SelectedFile struct {
	// Origin is the input the file was picked from
	Origin Origin

	// Path is the absolute path on disk
	Path string

	// Name is the filename sent in the multipart part
	Name string

	// Size in bytes at selection time
	Size int64
}

// FileSelection holds the files gathered from the three inputs.
// Files are kept in submission order: individual files, folder files, archive.
type FileSelection struct {
	Files []SelectedFile
}

// NewFileSelection builds a selection from per-origin lists.
// Duplicates are kept.
func NewFileSelection(individual, folder, archive []SelectedFile) *FileSelection {
	sel := &FileSelection{
		Files: make([]SelectedFile, 0, len(individual)+len(folder)+len(archive)),
	}
	for _, group := range [][]SelectedFile{individual, folder, archive} {
		sel.Files = append(sel.Files, group...)
	}
	return sel
}

// Empty reports whether no file was selected from any origin
func (s *FileSelection) Empty() bool {
	return s == nil || len(s.Files) == 0
}

// Count returns the number of selected files
func (s *FileSelection) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Files)
}

// TotalBytes returns the summed size of the selected files
func (s *FileSelection) TotalBytes() int64 {
	if s == nil {
		return 0
	}
	var total int64
	for _, f := range s.Files {
		total += f.Size
	}
	return total
}

// CountByOrigin returns how many files came from each origin
func (s *FileSelection) CountByOrigin() map[Origin]int {
	counts := make(map[Origin]int, len(originOrder))
	for _, o := range originOrder {
		counts[o] = 0
	}
	if s == nil {
		return counts
	}
	for _, f := range s.Files {
		counts[f.Origin]++
	}
	return counts
}

// Validate checks that files are ordered by origin
func (s *FileSelection) Validate() error {
	if s == nil {
		return nil
	}
	rank := make(map[Origin]int, len(originOrder))
	for i, o := range originOrder {
		rank[o] = i
	}
	last := 0
	for _, f := range s.Files {
		r, ok := rank[f.Origin]
		if !ok {
			return &ValidationError{Field: "Origin", Message: "unknown origin " + string(f.Origin)}
		}
		if r < last {
			return &ValidationError{Field: "Files", Message: "files are not in origin order"}
		}
		if f.Name == "" {
			return &ValidationError{Field: "Name", Message: "part name is required for " + f.Path}
		}
		last = r
	}
	return nil
}
