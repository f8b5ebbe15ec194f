package tui

// KeyBindings lists the keys handled by the dashboard itself; every other
// key is passed to the log viewport for scrolling.
var KeyBindings = []string{"q", "ctrl+c", "f"}

// IsGlobalKey reports whether key is handled by the dashboard before the log
// viewport sees it.
func IsGlobalKey(key string) bool {
	for _, k := range KeyBindings {
		if k == key {
			return true
		}
	}
	return false
}
