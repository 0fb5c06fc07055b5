package service

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwerk/cockpit-backend/internal/plans/domain"
)

func TestClampSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultQRSize},
		{-10, DefaultQRSize},
		{1, MinQRSize},
		{128, 128},
		{300, 300},
		{1024, 1024},
		{5000, MaxQRSize},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampSize(tt.in), "size %d", tt.in)
	}
}

func TestQRRenderer_VerificationURL(t *testing.T) {
	id := uuid.MustParse("6f1c2f8e-3a7b-4c55-9a0e-2d6b1f0c9e11")

	f := newFixture(t)
	assert.Equal(t, "https://cockpit.example.at/verify/"+id.String(), f.qr.VerificationURL(id))

	bare := NewQRRenderer(Deps{PublicBaseURL: "http://localhost:5173"})
	assert.Equal(t, "http://localhost:5173/verify/"+id.String(), bare.VerificationURL(id))
}

func TestQRRenderer_Render(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.project(t, "24-007", "Haus Berger")
	plan := f.plan(t, p.ID, "Grundriss EG")
	v := f.upload(t, plan.ID, 1, "")

	data, err := f.qr.Render(ctx, v.ID.String(), 0)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultQRSize, img.Bounds().Dx())

	data, err = f.qr.Render(ctx, v.ID.String(), 9999)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, MaxQRSize, img.Bounds().Dx())
}

func TestQRRenderer_UnknownVersion(t *testing.T) {
	f := newFixture(t)
	_, err := f.qr.Render(context.Background(), uuid.NewString(), 256)
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
	_, err = f.qr.Render(context.Background(), "xyz", 256)
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
}
