package ports

// PreferenceStore holds local key/value user preferences (theme, language,
// notification and auto-save flags). No server round-trip is involved.
type PreferenceStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	All() (map[string]string, error)
}
