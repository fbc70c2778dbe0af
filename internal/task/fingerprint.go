package task

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// Fingerprint computes a stable blake3 hash of a task list. The same
// tasks in the same order always hash identically, regardless of config
// key order. The dispatcher compares this against the fingerprint stored
// with a schedule to detect schedules made for a different task list.
func Fingerprint(tasks []Task) (string, error) {
	canonical, err := canonicalize(tasks)
	if err != nil {
		return "", fmt.Errorf("canonicalize tasks: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash tasks: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// canonicalize returns a canonical JSON representation of the task list
// with stable config key ordering for consistent hashing
func canonicalize(tasks []Task) ([]byte, error) {
	entries := make([]map[string]any, len(tasks))
	for i, t := range tasks {
		var cfg any
		if len(t.Config) > 0 {
			if err := json.Unmarshal(t.Config, &cfg); err != nil {
				return nil, fmt.Errorf("task %d config: %w", t.ID, err)
			}
		}
		entries[i] = map[string]any{
			"id":     t.ID,
			"type":   string(t.Type),
			"config": sortKeys(cfg),
		}
	}

	return json.Marshal(entries)
}

// sortKeys recursively sorts map keys for stable JSON output
func sortKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sorted := make(map[string]any, len(val))
		for _, k := range keys {
			sorted[k] = sortKeys(val[k])
		}
		return sorted

	case []any:
		for i, item := range val {
			val[i] = sortKeys(item)
		}
		return val

	default:
		return v
	}
}
