package trending

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"trendwatch-backend/lib/scrapers/githubtrending"
)

var ErrExport = errors.New("failed to export csv")

var csvHeader = []string{"Repository Name", "Repository Link"}

// ExportCSV writes the scraped repositories to <dir>/<file>, creating the
// directory if needed and replacing any previous export. It returns the
// path of the written file. An empty scrape still produces a file with
// just the header row.
func ExportCSV(repos []githubtrending.Repository, dir, file string) (string, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}

	path := filepath.Join(dir, file)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(csvHeader)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}
	for _, repo := range repos {
		err = writer.Write([]string{repo.Name, repo.Link})
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrExport, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}

	return path, nil
}
