package encoder

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// UseBinary resolves the ffmpeg binary and makes it the first "ffmpeg"
// on PATH. Vidio runs ffmpeg and ffprobe by their names,
// so a custom binary only takes effect through PATH
// (ffprobe is expected next to it).
func UseBinary(bin string) (string, error) {
	if bin == "" {
		bin = DefaultBinary
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", err
	}
	if path, err = filepath.Abs(path); err != nil {
		return "", err
	}
	base := filepath.Base(path)
	if strings.TrimSuffix(base, filepath.Ext(base)) != DefaultBinary {
		return "", fmt.Errorf("%v: the binary should be named %v", path, DefaultBinary)
	}
	if found, err := exec.LookPath(DefaultBinary); err == nil && sameFile(found, path) {
		return path, nil
	}
	dir := filepath.Dir(path)
	if err = os.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH")); err != nil {
		return "", err
	}
	return path, nil
}

func sameFile(a, b string) bool {
	x, err := os.Stat(a)
	if err != nil {
		return false
	}
	y, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(x, y)
}
