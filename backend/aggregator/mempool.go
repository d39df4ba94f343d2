package aggregator

import (
	"sync"

	"github.com/polybase/payy/backend/prover"
	"github.com/polybase/payy/field"
)

// PendingTx is one shielded transaction waiting to be bundled into a
// block: the request the prover needs to produce its UTXO proof, plus
// the three public values the settlement contract publishes per slot
// (§4.2's (root_ref, mb, value) triple).
type PendingTx struct {
	Request prover.UTXOProofRequest
	RootRef field.Element
	MB      field.Element
	Value   field.Element
}

// Mempool is the aggregator's FIFO queue of pending shielded
// transactions awaiting inclusion in a block.
type Mempool struct {
	mu  sync.Mutex
	txs []PendingTx
}

// NewMempool returns an empty mempool.
func NewMempool() *Mempool {
	return &Mempool{}
}

// Add appends a pending transaction to the queue.
func (m *Mempool) Add(tx PendingTx) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append(m.txs, tx)
}

// Len reports the number of queued transactions.
func (m *Mempool) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs)
}

// Drain removes and returns up to n transactions from the front of the
// queue, in FIFO order.
func (m *Mempool) Drain(n int) []PendingTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.txs) {
		n = len(m.txs)
	}
	out := m.txs[:n]
	m.txs = m.txs[n:]
	return out
}
