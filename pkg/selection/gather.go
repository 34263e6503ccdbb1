package selection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sdejongh/simnorris/internal/platform"
	"github.com/sdejongh/simnorris/pkg/compare"
	"github.com/sdejongh/simnorris/pkg/logging"
	"github.com/sdejongh/simnorris/pkg/models"
	"github.com/sdejongh/simnorris/pkg/storage"
)

// Sources are the three inputs a user can pick files from.
// Any of them may be empty.
type Sources struct {
	// Files are individually chosen files
	Files []string

	// Folder is walked recursively
	Folder string

	// Archive is sent as a single file
	Archive string

	// Exclude patterns apply to folder entries only
	Exclude []string
}

// Empty reports whether no input was given at all
func (s Sources) Empty() bool {
	return len(s.Files) == 0 && s.Folder == "" && s.Archive == ""
}

// Gatherer turns Sources into a FileSelection
type Gatherer struct {
	logger     logging.Logger
	openFolder func(path string) (storage.Backend, error)
	duplicates *compare.DuplicateFinder
}

// NewGatherer creates a gatherer backed by the local filesystem
func NewGatherer(logger logging.Logger) *Gatherer {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Gatherer{
		logger: logger,
		openFolder: func(path string) (storage.Backend, error) {
			return storage.NewLocal(path)
		},
		duplicates: compare.NewDuplicateFinder(64 * 1024),
	}
}

// Gather resolves every input into files, keeping the order individual files,
// folder files, archive. Duplicates are kept. A missing input is an error; an
// empty folder is not.
func (g *Gatherer) Gather(ctx context.Context, src Sources) (*models.FileSelection, error) {
	individual, err := g.gatherFiles(src.Files)
	if err != nil {
		return nil, err
	}

	folder, err := g.gatherFolder(ctx, src.Folder, NewMatcher(src.Exclude))
	if err != nil {
		return nil, err
	}

	archive, err := g.gatherArchive(ctx, src.Archive)
	if err != nil {
		return nil, err
	}

	sel := models.NewFileSelection(individual, folder, archive)
	g.logger.Debug(ctx, "selection gathered", logging.Fields{
		"files":   len(individual),
		"folder":  len(folder),
		"archive": len(archive),
		"bytes":   sel.TotalBytes(),
	})

	g.warnDuplicates(ctx, sel)

	return sel, nil
}

// warnDuplicates logs identical files. They are still all submitted; the
// server reports them as a 100% match.
func (g *Gatherer) warnDuplicates(ctx context.Context, sel *models.FileSelection) {
	groups, err := g.duplicates.Find(ctx, sel)
	if err != nil {
		g.logger.Debug(ctx, "duplicate check skipped", logging.Fields{"error": err.Error()})
		return
	}
	for _, group := range groups {
		g.logger.Warn(ctx, "identical files selected", logging.Fields{
			"files": group.Names(),
			"size":  group.Size,
		})
	}
}

func (g *Gatherer) gatherFiles(paths []string) ([]models.SelectedFile, error) {
	files := make([]models.SelectedFile, 0, len(paths))
	for _, p := range paths {
		f, err := statRegular(p, models.OriginFile)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (g *Gatherer) gatherFolder(ctx context.Context, folder string, exclude *Matcher) ([]models.SelectedFile, error) {
	if folder == "" {
		return nil, nil
	}
	if err := platform.ValidatePath(folder); err != nil {
		return nil, err
	}

	backend, err := g.openFolder(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to open folder %s: %w", folder, err)
	}
	defer backend.Close()

	entries, err := backend.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to walk folder %s: %w", folder, err)
	}

	var files []models.SelectedFile
	skipped := 0
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if exclude.Match(e.RelativePath) {
			skipped++
			continue
		}
		files = append(files, models.SelectedFile{
			Origin: models.OriginFolder,
			Path:   e.Path,
			Name:   platform.FolderPartName(backend.Root(), e.RelativePath),
			Size:   e.Size,
		})
	}

	if skipped > 0 {
		g.logger.Info(ctx, "folder entries excluded", logging.Fields{
			"folder":  backend.Root(),
			"skipped": skipped,
		})
	}

	return files, nil
}

func (g *Gatherer) gatherArchive(ctx context.Context, archive string) ([]models.SelectedFile, error) {
	if archive == "" {
		return nil, nil
	}

	f, err := statRegular(archive, models.OriginArchive)
	if err != nil {
		return nil, err
	}

	if !platform.HasExt(archive, ".zip") {
		g.logger.Warn(ctx, "archive does not have a .zip extension", logging.Fields{"archive": f.Path})
	}

	return []models.SelectedFile{f}, nil
}

func statRegular(p string, origin models.Origin) (models.SelectedFile, error) {
	if err := platform.ValidatePath(p); err != nil {
		return models.SelectedFile{}, err
	}

	abs, err := filepath.Abs(platform.NormalizePath(p))
	if err != nil {
		return models.SelectedFile{}, fmt.Errorf("failed to resolve %s: %w", p, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return models.SelectedFile{}, &models.ValidationError{
			Field:   string(origin),
			Message: fmt.Sprintf("cannot access %s: %v", p, err),
		}
	}
	if !info.Mode().IsRegular() {
		return models.SelectedFile{}, &models.ValidationError{
			Field:   string(origin),
			Message: p + " is not a regular file",
		}
	}

	return models.SelectedFile{
		Origin: origin,
		Path:   abs,
		Name:   platform.FileName(abs),
		Size:   info.Size(),
	}, nil
}
