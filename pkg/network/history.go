package network

import "github.com/dd0wney/cluso-netviz/pkg/telemetry"

// HistoryLimit caps the per-node activation history.
const HistoryLimit = 50

// HistoryEntry is one epoch's primary value for a node: the input value for
// input nodes, the activation otherwise.
type HistoryEntry struct {
	Epoch int             `json:"epoch"`
	Value telemetry.Value `json:"value"`
}

// History is a rolling window of the most recent entries.
type History struct {
	entries []HistoryEntry
}

// Append adds e, evicting the oldest entry beyond HistoryLimit.
func (h *History) Append(e HistoryEntry) {
	if len(h.entries) == HistoryLimit {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:HistoryLimit-1]
	}
	h.entries = append(h.entries, e)
}

// Entries returns a copy, oldest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int { return len(h.entries) }

func (h *History) Reset() { h.entries = nil }
