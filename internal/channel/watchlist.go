package channel

import "strings"

// WatchList controls which channels the bot mirrors. An empty or nil
// WatchList watches every channel the bot can see; listing channel ids
// restricts mirroring to those channels only.
type WatchList struct {
	channels map[string]struct{}
}

// NewWatchList creates a WatchList with O(1) lookups. Ids are trimmed at
// construction time so that IsWatched can use direct map lookups.
func NewWatchList(channelIDs []string) *WatchList {
	w := &WatchList{channels: make(map[string]struct{}, len(channelIDs))}
	for _, id := range channelIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			w.channels[id] = struct{}{}
		}
	}
	return w
}

// IsWatched reports whether events from the given channel should be
// processed.
func (w *WatchList) IsWatched(channelID string) bool {
	if w == nil || len(w.channels) == 0 {
		return true
	}
	_, ok := w.channels[channelID]
	return ok
}

// IDs returns the watched channel ids. Empty means "all channels".
func (w *WatchList) IDs() []string {
	if w == nil {
		return nil
	}
	ids := make([]string, 0, len(w.channels))
	for id := range w.channels {
		ids = append(ids, id)
	}
	return ids
}
