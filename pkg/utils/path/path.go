package path

import (
	"os"
	"path/filepath"
	"strings"
)

const tilde = "~" + string(filepath.Separator)

// return absolute representation of path, with expanding "~" to user's home directory.
//
// args:
//   - pathstring: path to be resolved
//   - base: directory which relative paths are based on. If empty, the working directory is used.
//
// return:
//   - string: resolved, cleaned filepath
//   - error
//
// This does not check that the path exists.
func Resolve(pathstring string, base string) (string, error) {
	if pathstring == "~" || strings.HasPrefix(pathstring, tilde) {
		homedir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		pathstring = filepath.Join(homedir, strings.TrimPrefix(pathstring[1:], string(filepath.Separator)))
	}
	if filepath.IsAbs(pathstring) {
		return filepath.Clean(pathstring), nil
	}
	if base == "" {
		return filepath.Abs(pathstring)
	}
	abs, err := Resolve(base, "")
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, pathstring), nil
}
