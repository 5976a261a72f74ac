package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"mustuse/internal/dump"
)

// ListDumpFiles возвращает отсортированный список всех дампов (*.mu.toml,
// *.mub) в директории. Сортировка фиксирует порядок выдачи FileID/MethodID и
// тем самым детерминизм всего прогона.
func ListDumpFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && dump.IsDumpPath(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// CollectInputs expands the request path into the dump file list: a single
// dump file stands alone, a directory is walked recursively.
func CollectInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	return ListDumpFiles(path)
}

// decodeAll decodes all dump files in parallel, preserving input order in the
// result slice (индексы уникальны для каждой горутины, мьютекс не нужен).
func decodeAll(ctx context.Context, paths []string, jobs int, sink ProgressSink) ([]*dump.Document, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if sink == nil {
		sink = NopSink{}
	}

	docs := make([]*dump.Document, len(paths))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(min(jobs, max(len(paths), 1)))

	for i, path := range paths {
		group.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				sink.OnEvent(Event{File: path, Stage: StageDecode, Status: StatusWorking})
				started := time.Now()
				doc, err := dump.Load(path)
				if err != nil {
					sink.OnEvent(Event{File: path, Stage: StageDecode, Status: StatusError, Err: err})
					return err
				}
				docs[i] = doc
				sink.OnEvent(Event{File: path, Stage: StageDecode, Status: StatusDone, Elapsed: time.Since(started)})
				return nil
			}
		}(i, path))
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
