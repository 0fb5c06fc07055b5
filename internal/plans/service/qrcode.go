package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/planwerk/cockpit-backend/internal/plans/domain"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 128
	MaxQRSize     = 1024
)

// QRRenderer produces the code printed on each plan sheet. It encodes the
// public verification URL of the version.
type QRRenderer struct {
	d Deps
}

func NewQRRenderer(d Deps) *QRRenderer {
	d = d.withDefaults()
	d.Log = d.Log.With("service", "qr")
	return &QRRenderer{d: d}
}

// VerificationURL is {PUBLIC_BASE_URL}/verify/{versionId}.
func (q *QRRenderer) VerificationURL(versionID uuid.UUID) string {
	return strings.TrimRight(q.d.PublicBaseURL, "/") + "/verify/" + versionID.String()
}

// ClampSize keeps the edge length within [MinQRSize, MaxQRSize]; zero or
// negative selects the default.
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultQRSize
	case size < MinQRSize:
		return MinQRSize
	case size > MaxQRSize:
		return MaxQRSize
	}
	return size
}

// Render returns a PNG for an existing version.
func (q *QRRenderer) Render(ctx context.Context, versionID string, size int) ([]byte, error) {
	id, err := parseID(versionID, domain.ErrVersionNotFound)
	if err != nil {
		return nil, err
	}
	v, err := q.d.Versions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(q.VerificationURL(v.ID), qrcode.High, ClampSize(size))
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
