package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one document in the output manifest.
type ManifestEntry struct {
	Source  string  `json:"source"`
	Output  string  `json:"output,omitempty"`
	Entries []Entry `json:"entries,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// WriteManifest writes the results as a JSON manifest. Failed documents are
// listed with their error and no output.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Source:  r.Source,
			Entries: r.Entries,
			Error:   r.Error,
		}
		if r.Success {
			entries[i].Output = r.Output
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
