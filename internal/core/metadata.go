package core

// ExtractMetadata maps header names at index 4 and beyond to the values of
// the first data row. Empty cells are left out. Later rows are never read:
// recorders write per-run metadata once, on the first sample.
func ExtractMetadata(header []string, first RawRow) map[string]string {
	md := make(map[string]string)
	for i := MetadataStart; i < len(header) && i < len(first); i++ {
		if first[i] != "" {
			md[header[i]] = first[i]
		}
	}
	return md
}

// MetadataEntry is one key/value pair of a dataset's metadata.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MetadataEntries returns md in header column order.
func MetadataEntries(header []string, md map[string]string) []MetadataEntry {
	entries := make([]MetadataEntry, 0, len(md))
	seen := make(map[string]bool, len(md))
	for i := MetadataStart; i < len(header); i++ {
		key := header[i]
		v, ok := md[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, MetadataEntry{Key: key, Value: v})
	}
	return entries
}
