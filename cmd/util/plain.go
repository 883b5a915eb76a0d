package util

import (
	"fmt"
	"io"
	"time"

	"github.com/lumipallolabs/folderdiff/internal/core"
	"github.com/lumipallolabs/folderdiff/internal/model"
	"github.com/lumipallolabs/folderdiff/internal/remote"
	"github.com/lumipallolabs/folderdiff/internal/ui"
)

// PrintScan writes scan events as plain text and returns the missing
// entries, or the error that ended the scan
func PrintScan(out io.Writer, events <-chan core.Event) ([]model.MissingEntry, error) {
	var (
		entries []model.MissingEntry
		scanErr error
	)

	for event := range events {
		switch e := event.(type) {
		case core.ScanProgressEvent:
			fmt.Fprintf(out, "\r%d\\%d", e.Progress.Processed, e.Progress.Total)

		case core.ScanCompletedEvent:
			fmt.Fprintln(out)
			if e.Err != nil {
				continue
			}
			entries = e.Entries
			for _, entry := range entries {
				fmt.Fprintf(out, "MasterFile: %s\nTargetFile: %s\n\n", entry.SourcePath, entry.TargetPath)
			}
			size := model.TotalSize(entries)
			fmt.Fprintf(out, "%d missing, %s\n", len(entries), ui.FormatSize(size))
			if e.Space != nil {
				fmt.Fprintf(out, "%s free on %s (%.0f%% used)\n",
					ui.FormatSize(e.Space.FreeBytes), e.Space.Path, e.Space.UsedPercent())
				if !e.Space.Fits(size) {
					fmt.Fprintln(out, "Warning: the missing files don't fit on that volume")
				}
			}
			if e.Changes != nil && !e.Changes.Empty() {
				fmt.Fprintf(out, "%d new and %d resolved since the last report\n",
					len(e.Changes.Added), len(e.Changes.Resolved))
			}
			if e.ReportPath != "" {
				fmt.Fprintf(out, "Report saved to %s\n", e.ReportPath)
			}
			fmt.Fprintf(out, "Scan done in %d milliseconds\n", e.Duration.Milliseconds())

		case core.ErrorEvent:
			scanErr = e.Err
		}
	}

	return entries, scanErr
}

// PrintUpload writes upload events as plain text
func PrintUpload(out io.Writer, events <-chan core.Event) (*remote.Result, error) {
	var (
		result    *remote.Result
		uploadErr error
	)

	for event := range events {
		switch e := event.(type) {
		case core.UploadStartedEvent:
			fmt.Fprintf(out, "Uploading %d files to %s\n", e.Total, e.Remote)

		case core.UploadProgressEvent:
			fmt.Fprintf(out, "\r%d\\%d %s", e.Progress.Done, e.Progress.Total, ui.FormatSize(e.Progress.Bytes))

		case core.UploadCompletedEvent:
			fmt.Fprintln(out)
			result = e.Result
			if result == nil {
				continue
			}
			for _, terr := range result.Errors {
				fmt.Fprintf(out, "Couldn't upload file: %s\n%s\n%v\n", terr.Entry.SourcePath, terr.Op, terr.Err)
			}
			fmt.Fprintf(out, "Uploaded %d files (%s), %d failed\n",
				result.Uploaded, ui.FormatSize(result.Bytes), result.Failed())
			fmt.Fprintf(out, "Upload done in %d milliseconds\n", result.Duration.Round(time.Millisecond).Milliseconds())

		case core.ErrorEvent:
			uploadErr = e.Err
		}
	}

	return result, uploadErr
}
