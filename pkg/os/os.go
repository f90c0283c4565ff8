package os

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"
)

// UserTag is replaced with the user home directory in the configured paths.
const UserTag = "{user}"

func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func CheckCreateDir(path string) error {
	if !Exists(path) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// OutputPath returns the absolute path of an export result and makes
// the directory it goes into. A directory result (frames) is created itself.
func OutputPath(path string, isDir bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dir := abs
	if !isDir {
		dir = filepath.Dir(abs)
	}
	if err = CheckCreateDir(dir); err != nil {
		return "", err
	}
	return abs, nil
}

// ExpectTermination returns the first interrupt or termination signal.
func ExpectTermination() <-chan os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	return signals
}

// ExpandUser replaces the {user} tag of the path with the home directory.
func ExpandUser(path string) (string, error) {
	if !strings.Contains(path, UserTag) {
		return path, nil
	}
	home, err := GetUserHome()
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(strings.ReplaceAll(path, UserTag, home)), nil
}

func GetUserHome() (string, error) {
	me, err := user.Current()
	if err != nil {
		return os.UserHomeDir()
	}
	return me.HomeDir, nil
}
