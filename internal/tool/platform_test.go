package tool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_SupportedPlatforms(t *testing.T) {
	tests := []struct {
		goos, goarch string
		triple       string
		format       ArchiveFormat
		exe          string
	}{
		{"darwin", "amd64", "macos-universal", TarGz, "rcodesign"},
		{"darwin", "arm64", "macos-universal", TarGz, "rcodesign"},
		{"linux", "amd64", "x86_64-unknown-linux-musl", TarGz, "rcodesign"},
		{"linux", "arm64", "aarch64-unknown-linux-musl", TarGz, "rcodesign"},
		{"windows", "amd64", "x86_64-pc-windows-msvc", Zip, "rcodesign.exe"},
	}
	for _, tt := range tests {
		b, err := Lookup(tt.goos, tt.goarch)
		require.NoError(t, err, "%s/%s", tt.goos, tt.goarch)
		assert.Equal(t, tt.triple, b.Triple)
		assert.Equal(t, tt.format, b.Format)
		assert.Equal(t, tt.exe, b.Exe)
	}
}

func TestLookup_Unsupported(t *testing.T) {
	for _, p := range [][2]string{
		{"linux", "386"},
		{"windows", "arm64"},
		{"plan9", "amd64"},
	} {
		_, err := Lookup(p[0], p[1])
		assert.True(t, errors.Is(err, ErrUnsupportedPlatform), "%s/%s: %v", p[0], p[1], err)
	}
}

func TestBuild_AssetName(t *testing.T) {
	b, err := Lookup("linux", "amd64")
	require.NoError(t, err)

	assert.Equal(t, "apple-codesign-0.29.0-x86_64-unknown-linux-musl.tar.gz", b.AssetName("0.29.0"))
	assert.Equal(t, "apple-codesign-0.29.0-x86_64-unknown-linux-musl", b.ExtractDir("0.29.0"))
}

func TestBuild_AssetNameWindows(t *testing.T) {
	b, err := Lookup("windows", "amd64")
	require.NoError(t, err)

	assert.Equal(t, "apple-codesign-0.29.0-x86_64-pc-windows-msvc.zip", b.AssetName("0.29.0"))
}
