package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/model"
	"github.com/Veraticus/coffee-diary/internal/service"
)

// FileResult reports how one input file was handled.
type FileResult struct {
	Err        error
	Path       string
	Source     model.Source
	Found      int
	Added      int
	Duplicates int
}

// Report summarizes an import run.
type Report struct {
	Files []FileResult
}

// Failed returns the files that could not be parsed.
func (r Report) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Added returns the number of unique transactions imported.
func (r Report) Added() int {
	n := 0
	for _, f := range r.Files {
		n += f.Added
	}
	return n
}

// ProgressFunc is called after each file with the number of files done.
type ProgressFunc func(done, total int)

// Importer dispatches files to provider parsers and merges their output.
type Importer struct {
	parsers map[string]service.Parser
	sources map[string]model.Source
}

// New creates an Importer with the Alipay and WeChat Pay parsers sharing n.
func New(n *Normalizer) *Importer {
	im := &Importer{
		parsers: make(map[string]service.Parser),
		sources: make(map[string]model.Source),
	}
	im.Register(".csv", model.SourceAlipay, NewAlipayParser(n))
	im.Register(".xlsx", model.SourceWeChatPay, NewWeChatParser(n))
	return im
}

// Register binds a file extension to a parser.
func (im *Importer) Register(ext string, source model.Source, p service.Parser) {
	ext = strings.ToLower(ext)
	im.parsers[ext] = p
	im.sources[ext] = source
}

// Supports reports whether path has a registered extension.
func (im *Importer) Supports(path string) bool {
	_, ok := im.parsers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ExpandPaths resolves globs and directories into the supported files they name,
// sorted and without duplicates.
func (im *Importer) ExpandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(p string) {
		if im.Supports(p) && !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			slog.Warn("No files found matching pattern", "pattern", pattern)
			continue
		}

		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", m, err)
			}
			if !info.IsDir() {
				add(m)
				continue
			}
			entries, err := os.ReadDir(m)
			if err != nil {
				return nil, fmt.Errorf("failed to read directory %s: %w", m, err)
			}
			for _, e := range entries {
				if !e.IsDir() {
					add(filepath.Join(m, e.Name()))
				}
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// ImportFiles parses every file and returns the unique transactions in file
// order. A file that fails is logged and skipped; the call fails only when
// no file could be parsed at all.
func (im *Importer) ImportFiles(ctx context.Context, paths []string, progress ProgressFunc) ([]model.Transaction, Report, error) {
	var report Report
	if len(paths) == 0 {
		return nil, report, fmt.Errorf("no files to import: %w", common.ErrNoTransactions)
	}

	var all []model.Transaction
	seen := make(map[string]bool)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		res := FileResult{Path: path}
		txns, source, err := im.parseFile(ctx, path)
		res.Source = source
		if err != nil {
			common.LogError(err, "Failed to parse file", common.Fields{"file": path, "source": source})
			res.Err = err
		} else {
			res.Found = len(txns)
			for _, txn := range txns {
				if seen[txn.ID] {
					res.Duplicates++
					continue
				}
				seen[txn.ID] = true
				all = append(all, txn)
				res.Added++
			}
			common.LogInfo("Processed file", common.Fields{
				"file":               filepath.Base(path),
				"transactions_found": res.Found,
				"added":              res.Added,
				"duplicates":         res.Duplicates,
			})
		}

		report.Files = append(report.Files, res)
		if progress != nil {
			progress(i+1, len(paths))
		}
	}

	if len(report.Failed()) == len(paths) {
		return nil, report, fmt.Errorf("all %d files failed to import: %w", len(paths), report.Files[0].Err)
	}

	return all, report, nil
}

func (im *Importer) parseFile(ctx context.Context, path string) ([]model.Transaction, model.Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := im.parsers[ext]
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", path, common.ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, im.sources[ext], fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close file", "file", path, "error", cerr)
		}
	}()

	txns, err := p.ParseFile(ctx, f)
	return txns, im.sources[ext], err
}
