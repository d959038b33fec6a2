package ssl

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

// PathResolver resolves configured file paths against an optional base
// config directory and validates the result points at a readable file.
type PathResolver struct {
	baseDir string
}

// NewPathResolver creates a resolver. An empty baseDir means configured
// paths are taken as-is (absolute or relative to the working directory).
func NewPathResolver(baseDir string) *PathResolver {
	return &PathResolver{baseDir: baseDir}
}

// Resolve resolves rawPath for the setting named by key. An unset rawPath
// resolves to "" unless mustExist is set, in which case it is a
// ConfigurationError. When mustExist is set the resolved target must be an
// existing, readable, non-directory file. An empty resolved path is treated
// as "not configured", matching the behavior of unset input.
func (r *PathResolver) Resolve(key, rawPath string, mustExist bool) (string, error) {
	if rawPath == "" {
		if mustExist {
			return "", NewConfigurationError(key, "no file path configured")
		}
		return "", nil
	}

	path, err := homedir.Expand(rawPath)
	if err != nil {
		return "", NewConfigurationErrorWithCause(key, "cannot expand path", err)
	}

	if r.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}

	if err := checkReadableFile(key, path, mustExist); err != nil {
		return "", err
	}

	return path, nil
}

// checkReadableFile fails with a ConfigurationError when path is empty, a
// directory, or not readable. A missing file is only an error when mustExist
// is set; an existing but unusable target is rejected in either case.
func checkReadableFile(key, path string, mustExist bool) error {
	if path == "" {
		if mustExist {
			return NewConfigurationError(key, "empty file path")
		}
		return nil
	}

	info, err := os.Lstat(path)
	if err != nil {
		if mustExist {
			return NewConfigurationErrorWithCause(key, "unable to read "+path, err)
		}
		return nil
	}

	if info.IsDir() {
		return NewConfigurationError(key, "is a directory, expected a file: "+path)
	}

	f, err := os.Open(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return NewConfigurationErrorWithCause(key, "unable to read "+path+", check file permissions", err)
	}
	_ = f.Close()

	return nil
}
