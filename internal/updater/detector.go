package updater

// HasChanged reports whether resolved differs from the last applied IP.
// An empty last IP means no update was dispatched yet, so it always counts as a change.
func HasChanged(resolved, last string) bool {
	return last == "" || resolved != last
}
