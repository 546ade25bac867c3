package sound

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// Bundled default alert clip, used whenever no custom source is supplied.
//
//go:embed assets/chime.wav
var defaultChime []byte

const defaultAssetName = "chime.wav"

// materializeDefaultAsset writes the bundled clip into the data directory
// so external players can read it from disk. The write is idempotent.
func materializeDefaultAsset(dataDir string) (string, error) {
	path := filepath.Join(dataDir, defaultAssetName)

	if info, err := os.Stat(path); err == nil && info.Size() == int64(len(defaultChime)) {
		return path, nil
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(path, defaultChime, 0o644); err != nil {
		return "", fmt.Errorf("failed to write default sound asset: %w", err)
	}

	return path, nil
}
