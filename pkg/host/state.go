package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// stateExts are the state file extensions, in lookup order.
var stateExts = []string{".yaml", ".yml", ".json"}

// LoadStateFile reads initial state from a YAML or JSON file.
func LoadStateFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var state any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &state)
	case ".json":
		err = json.Unmarshal(data, &state)
	default:
		return nil, fmt.Errorf("%s: state files must be .yaml, .yml or .json", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return state, nil
}

// PageState loads the state file that sits next to a page, e.g.
// about.state.yaml for about.html. It returns nil when there is none.
func PageState(pagePath string) (any, error) {
	base := strings.TrimSuffix(pagePath, filepath.Ext(pagePath)) + ".state"
	for _, ext := range stateExts {
		state, err := LoadStateFile(base + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return state, err
	}
	return nil, nil
}
