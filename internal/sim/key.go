package sim

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"

	"rtsched/internal/rm"
	"rtsched/internal/task"
)

// RunKey is a deterministic identifier for a run: the task set plus every
// option that can change an outcome.
type RunKey string

func (k RunKey) String() string { return string(k) }

// ComputeKey hashes set and opts into a RunKey.
//
// Components, each length-prefixed:
//  1. Selected engines, in report order
//  2. RM placement (defaulted) and truncated-window policy
//  3. Duration and aperiodic deadline
//  4. Periodic tasks then aperiodic tasks, in task index order
//
// Task order is not normalized: indices break ties, so reordering tasks is a
// different run.
func ComputeKey(set *task.Set, opts Options) RunKey {
	h := sha256.New()

	engines := opts.Engines
	if len(engines) == 0 {
		engines = Engines
	}
	engines = append([]string(nil), engines...)
	sort.SliceStable(engines, func(i, j int) bool { return rank(engines[i]) < rank(engines[j]) })
	writeInt(h, len(engines))
	for _, e := range engines {
		writeField(h, []byte(e))
	}

	placement := opts.RM.Placement
	if placement == "" {
		placement = rm.PlaceASAP
	}
	writeField(h, []byte(placement))
	writeField(h, []byte(strconv.FormatBool(opts.RM.FlagTruncatedWindows)))

	writeInt(h, set.Duration)
	writeInt(h, set.AperiodicDeadline)

	writeInt(h, len(set.Periodic))
	writeInt(h, len(set.Aperiodic))
	for _, tk := range set.Tasks() {
		writeField(h, []byte(tk.Label()))
		writeInt(h, tk.Cost())
		switch v := tk.(type) {
		case task.Periodic:
			writeInt(h, v.T)
		case task.Aperiodic:
			writeInt(h, v.R)
		}
	}

	return RunKey(hex.EncodeToString(h.Sum(nil)))
}

// writeField writes an 8-byte big-endian length prefix followed by data.
func writeField(h hash.Hash, data []byte) {
	var prefix [8]byte
	binary.BigEndian.PutUint64(prefix[:], uint64(len(data)))
	h.Write(prefix[:])
	h.Write(data)
}

func writeInt(h hash.Hash, v int) {
	writeField(h, []byte(strconv.Itoa(v)))
}
