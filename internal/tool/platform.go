package tool

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is returned for OS/architecture combinations
// rcodesign is not released for.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// ArchiveFormat is the packaging of a release asset.
type ArchiveFormat string

const (
	TarGz ArchiveFormat = "tar.gz"
	Zip   ArchiveFormat = "zip"
)

// Build describes the release asset for one platform.
type Build struct {
	// Triple is the target-triple portion of the asset name.
	Triple string
	Format ArchiveFormat
	// Exe is the executable file name inside the archive directory.
	Exe string
}

type platform struct {
	os   string
	arch string
}

// The upstream project publishes a fixed set of targets: a macOS
// universal binary, musl builds for Linux, and an MSVC build for
// Windows. Everything else is unsupported.
var builds = map[platform]Build{
	{"darwin", "amd64"}:  {Triple: "macos-universal", Format: TarGz, Exe: "rcodesign"},
	{"darwin", "arm64"}:  {Triple: "macos-universal", Format: TarGz, Exe: "rcodesign"},
	{"linux", "amd64"}:   {Triple: "x86_64-unknown-linux-musl", Format: TarGz, Exe: "rcodesign"},
	{"linux", "arm64"}:   {Triple: "aarch64-unknown-linux-musl", Format: TarGz, Exe: "rcodesign"},
	{"windows", "amd64"}: {Triple: "x86_64-pc-windows-msvc", Format: Zip, Exe: "rcodesign.exe"},
}

// Lookup returns the release build for the given GOOS/GOARCH pair.
func Lookup(goos, goarch string) (Build, error) {
	b, ok := builds[platform{goos, goarch}]
	if !ok {
		return Build{}, fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	return b, nil
}

// AssetName returns the release asset file name for a tool version.
func (b Build) AssetName(version string) string {
	return fmt.Sprintf("apple-codesign-%s-%s.%s", version, b.Triple, b.Format)
}

// ExtractDir returns the directory name the archive unpacks to.
func (b Build) ExtractDir(version string) string {
	return fmt.Sprintf("apple-codesign-%s-%s", version, b.Triple)
}
