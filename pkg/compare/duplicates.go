package compare

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sdejongh/simnorris/pkg/models"
)

// Partial hashing configuration
const (
	// Minimum file size to enable partial hashing (1MB)
	partialHashThreshold = 1 * 1024 * 1024
	// Size of partial hash to compute (256KB)
	partialHashSize = 256 * 1024
)

// DuplicateGroup is a set of selected files with identical content
type DuplicateGroup struct {
	Size  int64
	Hash  string
	Files []models.SelectedFile
}

// Names returns the part names of the group, in selection order
func (g DuplicateGroup) Names() []string {
	names := make([]string, len(g.Files))
	for i, f := range g.Files {
		names[i] = f.Name
	}
	return names
}

// DuplicateFinder finds selected files whose content is byte-identical.
// Files are grouped by size first; only same-size files are hashed.
type DuplicateFinder struct {
	bufferSize int
	bufferPool *sync.Pool
}

// NewDuplicateFinder creates a new SHA-256 based duplicate finder
func NewDuplicateFinder(bufferSize int) *DuplicateFinder {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &DuplicateFinder{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Find returns the groups of identical files, ordered by the position of
// their first member in the selection. Empty files are ignored.
func (d *DuplicateFinder) Find(ctx context.Context, sel *models.FileSelection) ([]DuplicateGroup, error) {
	if sel.Empty() {
		return nil, nil
	}

	bySize := make(map[int64][]models.SelectedFile)
	var sizes []int64
	for _, f := range sel.Files {
		if f.Size == 0 {
			continue
		}
		if _, seen := bySize[f.Size]; !seen {
			sizes = append(sizes, f.Size)
		}
		bySize[f.Size] = append(bySize[f.Size], f)
	}

	var groups []DuplicateGroup
	for _, size := range sizes {
		candidates := bySize[size]
		if len(candidates) < 2 {
			continue
		}

		// Partial hashes reject most large candidates cheaply
		if size >= partialHashThreshold {
			var err error
			candidates, err = d.narrow(ctx, candidates, d.computePartialHash)
			if err != nil {
				return nil, err
			}
		}

		found, err := d.group(ctx, size, candidates)
		if err != nil {
			return nil, err
		}
		groups = append(groups, found...)
	}

	return groups, nil
}

// narrow keeps only the files sharing a hash with at least one other file
func (d *DuplicateFinder) narrow(ctx context.Context, files []models.SelectedFile, hash hashFunc) ([]models.SelectedFile, error) {
	hashes, err := d.hashAll(ctx, files, hash)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(hashes))
	for _, h := range hashes {
		counts[h]++
	}

	var kept []models.SelectedFile
	for i, f := range files {
		if counts[hashes[i]] > 1 {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

func (d *DuplicateFinder) group(ctx context.Context, size int64, files []models.SelectedFile) ([]DuplicateGroup, error) {
	if len(files) < 2 {
		return nil, nil
	}

	hashes, err := d.hashAll(ctx, files, d.computeHash)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var groups []DuplicateGroup
	for i, f := range files {
		pos, ok := index[hashes[i]]
		if !ok {
			pos = len(groups)
			index[hashes[i]] = pos
			groups = append(groups, DuplicateGroup{Size: size, Hash: hashes[i]})
		}
		groups[pos].Files = append(groups[pos].Files, f)
	}

	var dups []DuplicateGroup
	for _, g := range groups {
		if len(g.Files) > 1 {
			dups = append(dups, g)
		}
	}
	return dups, nil
}

type hashFunc func(ctx context.Context, path string) (string, error)

// hashAll hashes files in parallel, keeping input order
func (d *DuplicateFinder) hashAll(ctx context.Context, files []models.SelectedFile, hash hashFunc) ([]string, error) {
	hashes := make([]string, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			hashes[i], errs[i] = hash(ctx, path)
		}(i, f.Path)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", files[i].Path, err)
		}
	}
	return hashes, nil
}

// computeHash computes SHA-256 hash of a file using streaming
func (d *DuplicateFinder) computeHash(ctx context.Context, path string) (string, error) {
	return d.hashPrefix(ctx, path, -1)
}

// computePartialHash computes SHA-256 hash of the first partialHashSize bytes of a file
func (d *DuplicateFinder) computePartialHash(ctx context.Context, path string) (string, error) {
	return d.hashPrefix(ctx, path, partialHashSize)
}

// hashPrefix hashes up to limit bytes, or the whole file when limit is negative
func (d *DuplicateFinder) hashPrefix(ctx context.Context, path string, limit int64) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if limit >= 0 {
		reader = io.LimitReader(file, limit)
	}

	hasher := sha256.New()

	// Get buffer from pool
	bufPtr := d.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer d.bufferPool.Put(bufPtr)

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
