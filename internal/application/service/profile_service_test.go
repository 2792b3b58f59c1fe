package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestProfileService_GetAndSave(t *testing.T) {
	repo := &mockProfileRepo{}
	svc := NewProfileService(repo, newMockStorage(), ProfileConfig{}, nopLogger{})
	ctx := context.Background()

	_, err := svc.Get(ctx)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	profile := &entity.CompanyProfile{CompanyName: "Acme", Email: "billing@acme.example"}
	require.NoError(t, svc.Save(ctx, profile))

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.CompanyName)
}

func TestProfileService_Save_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		profile *entity.CompanyProfile
	}{
		{name: "nil", profile: nil},
		{name: "missing name", profile: &entity.CompanyProfile{CompanyAddress: "Tokyo"}},
		{name: "bad email", profile: &entity.CompanyProfile{CompanyName: "Acme", Email: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProfileRepo{}
			svc := NewProfileService(repo, newMockStorage(), ProfileConfig{}, nopLogger{})

			assert.ErrorIs(t, svc.Save(context.Background(), tt.profile), ErrInvalidProfile)
			assert.Empty(t, repo.saved)
		})
	}
}

func TestProfileService_Resolve(t *testing.T) {
	stored := &entity.CompanyProfile{CompanyName: "Stored"}
	explicit := &entity.CompanyProfile{CompanyName: "Explicit"}
	ctx := context.Background()

	svc := NewProfileService(&mockProfileRepo{profile: stored}, newMockStorage(), ProfileConfig{}, nopLogger{})

	got, err := svc.Resolve(ctx, explicit)
	require.NoError(t, err)
	assert.Same(t, explicit, got)

	got, err = svc.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.Same(t, stored, got)

	empty := NewProfileService(&mockProfileRepo{}, newMockStorage(), ProfileConfig{}, nopLogger{})
	got, err = empty.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	failing := NewProfileService(&mockProfileRepo{getErr: errors.New("locked")}, newMockStorage(), ProfileConfig{}, nopLogger{})
	_, err = failing.Resolve(ctx, nil)
	assert.Error(t, err)
}

func TestProfileService_UploadLogo(t *testing.T) {
	repo := &mockProfileRepo{profile: &entity.CompanyProfile{CompanyName: "Acme"}}
	store := newMockStorage()
	svc := NewProfileService(repo, store, ProfileConfig{}, nopLogger{})

	url, err := svc.UploadLogo(context.Background(), pngBytes(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/logos/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	assert.Equal(t, url, repo.profile.CompanyLogoURL)
	assert.Equal(t, "Acme", repo.profile.CompanyName)
	assert.Len(t, store.files, 1)
	assert.True(t, store.Exists(context.Background(), strings.TrimPrefix(url, "/uploads/")))
}

func TestProfileService_UploadLogo_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not an image", data: []byte("%PDF-1.4 not a logo")},
		{name: "too large", data: append(pngHeader(), make([]byte, 64)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProfileRepo{}
			store := newMockStorage()
			svc := NewProfileService(repo, store, ProfileConfig{MaxLogoBytes: 32}, nopLogger{})

			_, err := svc.UploadLogo(context.Background(), tt.data)
			assert.ErrorIs(t, err, ErrInvalidLogo)
			assert.Empty(t, store.files)
			assert.Empty(t, repo.saved)
		})
	}
}

func TestProfileService_UploadLogo_CreatesProfile(t *testing.T) {
	repo := &mockProfileRepo{}
	svc := NewProfileService(repo, newMockStorage(), ProfileConfig{URLPrefix: "/files"}, nopLogger{})

	url, err := svc.UploadLogo(context.Background(), pngBytes(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/files/logos/"))
	require.NotNil(t, repo.profile)
	assert.Equal(t, url, repo.profile.CompanyLogoURL)
}

func pngHeader() []byte {
	return []byte("\x89PNG\r\n\x1a\n")
}
