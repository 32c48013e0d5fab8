package selection

// Attrs holds the attributes of one list entry, as cached by the
// owning view (e.g. "archived": false).
type Attrs = map[string]any

// FilterSelected returns the subsequence of selected whose entries
// exist in details and match every required attribute exactly. Keys
// with no details entry are dropped, since a selection can outlive the
// entry it points at. Output order follows input order.
//
// Views run their selection through this before submitting bulk
// actions so archived or removed plants are never included.
func FilterSelected(selected []string, details map[string]Attrs, required Attrs) []string {
	filtered := make([]string, 0, len(selected))
	for _, key := range selected {
		attrs, ok := details[key]
		if !ok {
			continue
		}
		if matches(attrs, required) {
			filtered = append(filtered, key)
		}
	}
	return filtered
}

func matches(attrs, required Attrs) bool {
	for name, want := range required {
		got, ok := attrs[name]
		if !ok || got != want {
			return false
		}
	}
	return true
}
