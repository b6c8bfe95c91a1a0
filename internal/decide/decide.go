package decide

import "time"

// Operation is the incremental-scan classification of a file.
type Operation int

const (
	Skip Operation = iota
	Add
	Mod
)

func (o Operation) String() string {
	switch o {
	case Skip:
		return "SKIP"
	case Add:
		return "ADD"
	case Mod:
		return "MOD"
	default:
		return "UNKNOWN"
	}
}

// Prior is the subset of a catalog's existing FileRecord+Hash the decider
// needs: the size of the content it last observed, and that observation's
// modified timestamp.
type Prior struct {
	Size     int64
	Modified time.Time
}

// Decide classifies a file given its current size and mtime and, if one
// exists, the catalog's prior observation of it. It performs no I/O beyond
// what the caller already did to obtain statSize/statModTime; it never
// hashes.
func Decide(statSize int64, statModTime time.Time, prior *Prior) Operation {
	if prior == nil {
		return Add
	}
	if prior.Size == statSize && prior.Modified.Equal(statModTime) {
		return Skip
	}
	return Mod
}
