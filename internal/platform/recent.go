package platform

// MostRecent picks the first window in a most-recently-used list that can
// take focus: not minimized and not excluded from task switching.
func MostRecent(windows []Window) (WindowID, bool, error) {
	for _, w := range windows {
		if w.Minimized || w.SkipTaskbar {
			continue
		}
		return w.ID, true, nil
	}
	return 0, false, nil
}
