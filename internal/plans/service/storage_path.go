package service

import (
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/planwerk/cockpit-backend/internal/blobstore"
)

const (
	DefaultProjectsRoot = "Projekte"
	DefaultPlansSegment = "Pläne"

	// ISO-8601 with ':' and '.' made path-safe, milliseconds dropped.
	fileTimestampLayout = "2006-01-02T15-04-05"

	// fileTokenLength is how much of the version id goes into the file name.
	fileTokenLength = 8
)

// PathLayout decides where plan files live in the blob store:
// /{root}/{projectNumber}/{plans}/{title}/V{n}/{projectNumber}_{title}_V{n}_{ts}_{id8}.pdf
// The id token makes every upload's file name unique, even for the same
// number in the same second.
type PathLayout struct {
	ProjectsRoot string
	PlansSegment string
}

func (l PathLayout) Root() string {
	return blobstore.Clean(l.ProjectsRoot)
}

func (l PathLayout) VersionDir(projectNumber, title string, n int) string {
	return path.Join(
		l.Root(),
		blobstore.Segment(projectNumber),
		blobstore.Segment(l.PlansSegment),
		blobstore.Segment(title),
		fmt.Sprintf("V%d", n),
	)
}

func (l PathLayout) VersionFile(projectNumber, title string, n int, at time.Time, id uuid.UUID) string {
	name := fmt.Sprintf("%s_%s_V%d_%s_%s.pdf",
		blobstore.Segment(projectNumber),
		blobstore.Segment(title),
		n,
		at.UTC().Format(fileTimestampLayout),
		id.String()[:fileTokenLength],
	)
	return path.Join(l.VersionDir(projectNumber, title, n), name)
}

// DownloadName is the file name offered to browsers.
func DownloadName(projectNumber, title string, n int) string {
	return fmt.Sprintf("%s_%s_V%d.pdf", blobstore.Segment(projectNumber), blobstore.Segment(title), n)
}
