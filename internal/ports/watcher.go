package ports

// DictionaryWatcher monitors dictionary files and reports changes so the
// engine can rebuild its automata. Only one Watch call should be active at a
// time.
type DictionaryWatcher interface {
	// Watch starts monitoring the given files. onChange is called with the
	// absolute path of a changed file once its writes have settled. The
	// callback may be invoked from any goroutine. Returns an error if a
	// file's directory doesn't exist.
	Watch(paths []string, onChange func(path string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
