package core

// scheduler.go – VitaLedger Network
//
// The seamless scheduler: deterministic parallel execution of an ordered
// transaction batch against a committed pre-state. Every honest node running
// the same batch over the same pre-state reproduces the same confirmation
// order, block hash and post-state root, bit for bit, while the fast path
// fans out across a worker pool.
//
// Three phases per batch:
//   1. assign immutable priorities, open one snapshot, execute every
//      transaction in parallel and claim write-key ownership;
//   2. loop: partition pending into passed/aborted by the two-rule conflict
//      predicate, release and confirm the passed, re-execute the aborted
//      against the SAME snapshot with the SAME priority;
//   3. commit the confirmed writes as one batch, derive the post-state root,
//      clear the ownership table.
//
// Progress is bounded: on acyclic conflict patterns at least one transaction
// passes per round, so rounds never exceed the batch size. A read-ownership
// cycle has no valid confirmation order and exhausts the per-transaction
// retry budget, failing the batch deterministically.

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

const (
	// DefaultWorkers is the execution fan-out when the config leaves it zero.
	DefaultWorkers = 4
	// DefaultMaxRounds bounds the conflict-resolution loop.
	DefaultMaxRounds = 100
)

// SchedulerConfig tunes one scheduler instance.
type SchedulerConfig struct {
	// Workers is the width of the execution pool.
	Workers int
	// MaxRounds caps the conflict-resolution loop.
	MaxRounds int
	// MaxRetries is the per-transaction re-execution budget. Zero means
	// "batch size", the natural bound.
	MaxRetries int
	// OwnershipLimit caps distinct ownership entries per batch; zero means
	// unbounded.
	OwnershipLimit int
}

// ExecutedTransaction is one confirmed entry of a batch result.
type ExecutedTransaction struct {
	Tx       *Transaction
	Hash     Hash
	Priority PriorityCode
	Result   ExecutionResult
	// Writes is the confirmed write list; empty when the execution failed,
	// since failed writes are discarded at commit.
	Writes  []KV
	Retries int
}

// BlockResult is what the scheduler hands back to consensus.
type BlockResult struct {
	BlockHash    Hash
	StateRoot    Hash
	Confirmed    []ExecutedTransaction
	Reexecutions uint64
}

// SeamlessScheduler executes one batch at a time against a mutable state
// handle through a black-box executor.
type SeamlessScheduler struct {
	state StateStore
	exec  Executor
	cfg   SchedulerConfig
}

func NewSeamlessScheduler(state StateStore, exec Executor, cfg SchedulerConfig) *SeamlessScheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	return &SeamlessScheduler{state: state, exec: exec, cfg: cfg}
}

// txRun is the per-transaction scheduling record. The priority never changes
// across re-executions; the read/write set is replaced wholesale by each
// attempt.
type txRun struct {
	tx       *Transaction
	idx      int
	hash     Hash
	priority PriorityCode
	rwset    *ReadWriteSet
	result   ExecutionResult
	retries  int
}

// ExecuteBlock runs the three phases over block and returns the canonical
// result. It fails only on malformed input, exhausted retry budgets, an
// ownership-table breach, or a store failure.
func (s *SeamlessScheduler) ExecuteBlock(block *Block) (*BlockResult, error) {
	if err := block.Validate(); err != nil {
		return nil, err
	}

	trace := uuid.NewString()
	lg := coreLogger.WithFields(logrus.Fields{
		"trace":  trace,
		"height": block.Height,
		"txs":    len(block.Transactions),
	})

	blockHash := block.Hash()
	if len(block.Transactions) == 0 {
		root, err := StateRoot(s.state)
		if err != nil {
			return nil, err
		}
		metrics.batches.Inc()
		lg.Info("scheduled empty batch")
		return &BlockResult{
			BlockHash: blockHash,
			StateRoot: root,
			Confirmed: []ExecutedTransaction{},
		}, nil
	}

	// Phase 1 – priorities, snapshot, speculative parallel execution.
	txsHash := block.TransactionsHash()
	runs := make([]*txRun, len(block.Transactions))
	for i, tx := range block.Transactions {
		h := tx.Hash()
		runs[i] = &txRun{
			tx:       tx,
			idx:      i,
			hash:     h,
			priority: TxPriority(h, txsHash, block.Height),
		}
	}

	snap, err := s.state.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	table := NewOwnershipTable(s.cfg.OwnershipLimit)
	defer table.Clear()

	if err := s.executeAll(runs, snap, table); err != nil {
		return nil, err
	}

	maxRetries := s.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = len(runs)
	}

	// Pending set walks in priority order: that order is the deterministic
	// confirmation order, ties broken by batch index.
	pending := make([]*txRun, len(runs))
	copy(pending, runs)
	sortRuns(pending)

	// Phase 2 – conflict resolution loop.
	confirmed := make([]ExecutedTransaction, 0, len(runs))
	var reexecutions uint64
	rounds := 0
	for ; rounds < s.cfg.MaxRounds && len(pending) > 0; rounds++ {
		passed, aborted := s.partition(pending, table)

		for _, r := range passed {
			table.ReleaseAll(r.rwset.WriteKeys())
			et := ExecutedTransaction{
				Tx:       r.tx,
				Hash:     r.hash,
				Priority: r.priority,
				Result:   r.result,
				Retries:  r.retries,
			}
			if r.result.OK() {
				et.Writes = r.rwset.Writes
			}
			confirmed = append(confirmed, et)
		}

		if len(aborted) > 0 {
			metrics.abortedRounds.Inc()
			if len(passed) == 0 {
				for _, r := range aborted {
					if r.retries >= maxRetries {
						return nil, fmt.Errorf("%w: tx %s after %d retries",
							ErrMaxRetriesExceeded, r.hash.Short(), r.retries)
					}
				}
			}
			for _, r := range aborted {
				r.retries++
			}
			reexecutions += uint64(len(aborted))
			if err := s.executeAll(aborted, snap, table); err != nil {
				return nil, err
			}
			lg.WithFields(logrus.Fields{
				"round":   rounds,
				"passed":  len(passed),
				"aborted": len(aborted),
			}).Debug("conflict round")
		}

		pending = aborted
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("%w: %d transactions still pending after %d rounds",
			ErrMaxRetriesExceeded, len(pending), rounds)
	}

	// Phase 3 – atomic commit and root derivation.
	var batch []KV
	for _, et := range confirmed {
		batch = append(batch, et.Writes...)
	}
	if len(batch) > 0 {
		if err := s.state.Commit(batch); err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
	}
	root, err := StateRoot(s.state)
	if err != nil {
		return nil, err
	}

	metrics.batches.Inc()
	metrics.reexecutions.Add(float64(reexecutions))
	metrics.ownershipSize.Set(float64(table.Len()))
	lg.WithFields(logrus.Fields{
		"rounds":     rounds,
		"reexec":     reexecutions,
		"block_hash": blockHash.Short(),
		"state_root": root.Short(),
	}).Info("batch committed")

	return &BlockResult{
		BlockHash:    blockHash,
		StateRoot:    root,
		Confirmed:    confirmed,
		Reexecutions: reexecutions,
	}, nil
}

// executeAll runs every listed transaction against the snapshot on the worker
// pool, then claims write-key ownership with the transaction's immutable
// priority. The claim operator is a priority minimum, so the table's final
// owners do not depend on goroutine interleaving.
func (s *SeamlessScheduler) executeAll(runs []*txRun, snap Snapshot, table *OwnershipTable) error {
	workers := s.cfg.Workers
	if workers > len(runs) {
		workers = len(runs)
	}

	jobs := make(chan *txRun)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				rw, res := s.exec.Execute(r.tx, snap)
				r.rwset, r.result = rw, res
				if err := s.claimWrites(r, table); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
	for _, r := range runs {
		jobs <- r
	}
	close(jobs)
	wg.Wait()
	return firstErr
}

func (s *SeamlessScheduler) claimWrites(r *txRun, table *OwnershipTable) error {
	for _, k := range r.rwset.WriteKeys() {
		entry, err := table.GetOrCreate(k)
		if err != nil {
			return err
		}
		entry.TrySet(r.priority)
	}
	return nil
}

// partition applies the two-rule conflict predicate to the pending set
// against the table state at round start. Releases happen strictly after the
// full walk, so classification within a round is order-independent.
func (s *SeamlessScheduler) partition(pending []*txRun, table *OwnershipTable) (passed, aborted []*txRun) {
	for _, r := range pending {
		if s.conflictFree(r, table) {
			passed = append(passed, r)
		} else {
			aborted = append(aborted, r)
		}
	}
	return passed, aborted
}

// conflictFree evaluates:
//   - write-ownership: every write key must still be held at r's priority;
//   - read-invalidation: every read key must be DISOWNED or owned by r itself.
func (s *SeamlessScheduler) conflictFree(r *txRun, table *OwnershipTable) bool {
	for _, k := range r.rwset.WriteKeys() {
		entry, ok := table.Get(k)
		if !ok || !entry.Check(r.priority) {
			return false
		}
	}
	for _, k := range r.rwset.Reads {
		entry, ok := table.Get(k)
		if !ok {
			continue
		}
		owner := entry.Owner()
		if owner.Release == Disowned || owner.Equal(r.priority) {
			continue
		}
		return false
	}
	return true
}

// sortRuns orders by priority code, ties broken by batch position.
func sortRuns(runs []*txRun) {
	sort.Slice(runs, func(i, j int) bool {
		if c := runs[i].priority.Compare(runs[j].priority); c != 0 {
			return c < 0
		}
		return runs[i].idx < runs[j].idx
	})
}
