// Package archive exports and imports store contents as zstd-compressed
// tar archives.
//
// Archive entries are store keys with forward slashes, so an archive made
// on one platform imports cleanly on another. Export walks the source store
// via Search, which already excludes in-progress entries, so an archive
// never contains partial writes.
package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/pathstore/pathstore/internal/logger"
	"github.com/pathstore/pathstore/pkg/filestore"
)

// Export writes every entry matching pattern from the store into a
// zstd-compressed tar stream. Returns the number of entries written.
func Export(ctx context.Context, store filestore.Searcher, pattern string, w io.Writer) (int, error) {
	entries, err := store.Search(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to list entries for export: %w", err)
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, fmt.Errorf("failed to create zstd writer: %w", err)
	}

	tw := tar.NewWriter(zw)

	count := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		if err := exportEntry(ctx, tw, entry); err != nil {
			return count, err
		}
		count++
	}

	if err := tw.Close(); err != nil {
		return count, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("failed to finalize compression: %w", err)
	}

	logger.Debug("Exported %d entries", count)
	return count, nil
}

func exportEntry(ctx context.Context, tw *tar.Writer, entry filestore.Entry) error {
	size, err := entry.Size(ctx)
	if err != nil {
		return fmt.Errorf("failed to stat entry %q: %w", entry.Key(), err)
	}

	r, err := entry.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open entry %q: %w", entry.Key(), err)
	}
	defer r.Close()

	header := &tar.Header{
		Name: entry.Key(),
		Mode: 0644,
		Size: size,
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write archive header for %q: %w", entry.Key(), err)
	}

	if _, err := io.Copy(tw, r); err != nil {
		return fmt.Errorf("failed to write entry %q to archive: %w", entry.Key(), err)
	}
	return nil
}

// Import reads a zstd-compressed tar stream and adds each file to the
// store under its archive name. Existing entries are overwritten. Returns
// the number of entries imported.
func Import(ctx context.Context, store filestore.Store, r io.Reader) (int, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read archive: %w", err)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		if _, err := store.Add(ctx, header.Name, copyFrom(tr)); err != nil {
			return count, fmt.Errorf("failed to import entry %q: %w", header.Name, err)
		}
		count++
	}

	logger.Debug("Imported %d entries", count)
	return count, nil
}

// copyFrom returns a write action that streams r to the destination file.
func copyFrom(r io.Reader) filestore.WriteAction {
	return func(dest string) error {
		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}

		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}
