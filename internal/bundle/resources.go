package bundle

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tc-hib/winres"
	"github.com/tc-hib/winres/version"
)

const langEnUS = 0x0409

// stampResources writes icon and version info into the executable at
// exePath, replacing it in place.
func stampResources(exePath string, opts Options) error {
	rs := winres.ResourceSet{}

	if opts.Icon != "" {
		ico, err := loadIcon(opts.Icon)
		if err != nil {
			return err
		}
		rs.SetIcon(winres.ID(1), ico)
	}

	v := ParseVersion(opts.Version)
	vi := version.Info{
		ProductVersion: v,
		FileVersion:    v,
	}
	vi.Set(langEnUS, "ProductName", opts.Name)
	vi.Set(langEnUS, "FileDescription", opts.Name)
	vi.Set(langEnUS, "ProductVersion", opts.Version)
	vi.Set(langEnUS, "OriginalFilename", filepath.Base(exePath))
	rs.SetVersionInfo(vi)

	src, err := os.Open(exePath)
	if err != nil {
		return fmt.Errorf("open executable: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(exePath), "shellpack-*.exe")
	if err != nil {
		src.Close()
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	err = rs.WriteToEXE(tmp, src)
	src.Close()
	tmp.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write resources: %w", err)
	}

	if err := os.Rename(tmpPath, exePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace executable: %w", err)
	}
	return nil
}

func loadIcon(path string) (*winres.Icon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read icon: %w", err)
	}

	if isICO(data) {
		ico, err := winres.LoadICO(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("load ico: %w", err)
		}
		return ico, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode icon image: %w", err)
	}
	ico, err := winres.NewIconFromResizedImage(img, nil)
	if err != nil {
		return nil, fmt.Errorf("convert icon: %w", err)
	}
	return ico, nil
}

func isICO(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x00 && data[1] == 0x00 && data[2] == 0x01 && data[3] == 0x00
}

// ParseVersion reads up to four dotted numeric parts. Anything after a
// hyphen or plus is ignored, and unparsable parts are zero.
func ParseVersion(s string) [4]uint16 {
	var out [4]uint16
	s = strings.TrimPrefix(s, "v")
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}
	for i, part := range strings.SplitN(s, ".", 4) {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			continue
		}
		out[i] = uint16(n)
	}
	return out
}
