package core

// serial.go – the reference executor: transactions run one at a time, in
// priority order, each against a fresh snapshot of the evolving state. It
// exists to cross-check the parallel scheduler; on batches whose footprints
// do not overlap, both produce identical confirmation orders and post-state
// roots.

import "fmt"

// SerialScheduler executes batches without speculation.
type SerialScheduler struct {
	state StateStore
	exec  Executor
}

func NewSerialScheduler(state StateStore, exec Executor) *SerialScheduler {
	return &SerialScheduler{state: state, exec: exec}
}

// ExecuteBlock runs every transaction in priority order against a rolling
// snapshot, committing each successful write set before the next transaction
// runs.
func (s *SerialScheduler) ExecuteBlock(block *Block) (*BlockResult, error) {
	if err := block.Validate(); err != nil {
		return nil, err
	}

	txsHash := block.TransactionsHash()
	runs := make([]*txRun, len(block.Transactions))
	for i, tx := range block.Transactions {
		h := tx.Hash()
		runs[i] = &txRun{tx: tx, idx: i, hash: h, priority: TxPriority(h, txsHash, block.Height)}
	}
	sortRuns(runs)

	confirmed := make([]ExecutedTransaction, 0, len(runs))
	for _, r := range runs {
		snap, err := s.state.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		rw, res := s.exec.Execute(r.tx, snap)
		et := ExecutedTransaction{Tx: r.tx, Hash: r.hash, Priority: r.priority, Result: res}
		if res.OK() {
			et.Writes = rw.Writes
			if len(rw.Writes) > 0 {
				if err := s.state.Commit(rw.Writes); err != nil {
					return nil, fmt.Errorf("commit tx %s: %w", r.hash.Short(), err)
				}
			}
		}
		confirmed = append(confirmed, et)
	}

	root, err := StateRoot(s.state)
	if err != nil {
		return nil, err
	}
	return &BlockResult{
		BlockHash: block.Hash(),
		StateRoot: root,
		Confirmed: confirmed,
	}, nil
}
