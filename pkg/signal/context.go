package signal

import (
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"iter"
)

type Context interface {
	State() State
	Snapshot() agenda.Snapshot
	Items() iter.Seq2[agenda.Item, error]
}

// ContextOf creates a Context for the given snapshot with the state derived
// by StateOf.
func ContextOf(snapshot agenda.Snapshot) Context {
	return &snapshotContext{snapshot, StateOf(snapshot)}
}

type snapshotContext struct {
	snapshot agenda.Snapshot
	state    State
}

func (this *snapshotContext) State() State {
	return this.state
}

func (this *snapshotContext) Snapshot() agenda.Snapshot {
	return this.snapshot
}

func (this *snapshotContext) Items() iter.Seq2[agenda.Item, error] {
	return common.Iter2Err(this.snapshot.Items...)
}
