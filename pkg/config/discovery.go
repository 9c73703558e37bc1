package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Discovery handles configuration file discovery.
type Discovery struct {
	searchPaths []string
	filenames   []string
}

// NewDiscovery creates a discovery instance with the default search paths
// and filenames.
func NewDiscovery() *Discovery {
	return &Discovery{
		searchPaths: getDefaultSearchPaths(),
		filenames:   getDefaultFilenames(),
	}
}

// NewDiscoveryWithOptions creates a discovery instance with custom search
// paths and filenames.
func NewDiscoveryWithOptions(searchPaths, filenames []string) *Discovery {
	return &Discovery{
		searchPaths: searchPaths,
		filenames:   filenames,
	}
}

// getDefaultSearchPaths returns the default search paths for
// configuration files.
func getDefaultSearchPaths() []string {
	paths := []string{
		".", // current directory first
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(homeDir, ".config", "ropevo"),
			filepath.Join(homeDir, ".ropevo"),
		)
	}

	paths = append(paths, "/etc/ropevo")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		paths = append(paths, filepath.Join(xdgConfigHome, "ropevo"))
	}

	if appDir := os.Getenv("ROPEVO_CONFIG_DIR"); appDir != "" {
		paths = append(paths, appDir)
	}

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, "config"))
	}

	return paths
}

// getDefaultFilenames returns the configuration filenames to search for.
func getDefaultFilenames() []string {
	return []string{
		"ropevo.yaml",
		"ropevo.yml",
		"config.yaml",
		"config.yml",
		".ropevo.yaml",
		".ropevo.yml",
	}
}

// Discover searches for configuration files in the configured paths.
func (d *Discovery) Discover() ([]string, error) {
	var foundFiles []string

	for _, searchPath := range d.searchPaths {
		for _, filename := range d.filenames {
			fullPath := filepath.Join(searchPath, filename)
			if !fileExists(fullPath) {
				continue
			}
			absPath, err := filepath.Abs(fullPath)
			if err != nil {
				return nil, fmt.Errorf("failed to get absolute path for %s: %w", fullPath, err)
			}
			foundFiles = append(foundFiles, absPath)
		}
	}

	return removeDuplicates(foundFiles), nil
}

// DiscoverFirst returns the first configuration file found.
func (d *Discovery) DiscoverFirst() (string, error) {
	files, err := d.Discover()
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no configuration files found")
	}
	return files[0], nil
}

// DiscoverInPath searches for configuration files in a specific path.
func (d *Discovery) DiscoverInPath(path string) ([]string, error) {
	var foundFiles []string

	for _, filename := range d.filenames {
		fullPath := filepath.Join(path, filename)
		if !fileExists(fullPath) {
			continue
		}
		absPath, err := filepath.Abs(fullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", fullPath, err)
		}
		foundFiles = append(foundFiles, absPath)
	}

	return foundFiles, nil
}

// AddSearchPath adds a search path to the discovery.
func (d *Discovery) AddSearchPath(path string) {
	d.searchPaths = append(d.searchPaths, path)
}

// AddFilename adds a filename to search for.
func (d *Discovery) AddFilename(filename string) {
	d.filenames = append(d.filenames, filename)
}

// CreateDefaultConfigFileInPath writes the default configuration to a new
// file in the given directory, refusing to clobber an existing one.
func (d *Discovery) CreateDefaultConfigFileInPath(path string) (string, error) {
	if len(d.filenames) == 0 {
		return "", fmt.Errorf("no filenames configured")
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", path, err)
	}

	configPath := filepath.Join(path, d.filenames[0])
	if fileExists(configPath) {
		return "", fmt.Errorf("configuration file already exists at %s", configPath)
	}

	data, err := yaml.Marshal(GetDefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config to %s: %w", configPath, err)
	}

	return configPath, nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// removeDuplicates removes duplicate strings while preserving order.
func removeDuplicates(paths []string) []string {
	seen := make(map[string]bool)
	result := []string{}

	for _, path := range paths {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	return result
}

// DiscoverFirstConfigFile discovers the first configuration file found
// using the default settings.
func DiscoverFirstConfigFile() (string, error) {
	return NewDiscovery().DiscoverFirst()
}
