package comm

import (
	"sync"

	"github.com/notargets/goshock/hydro"
)

type chanKey struct {
	src, dst int
	msg      hydro.MsgType
}

// Cluster owns the transfer channels and collectives shared by all ranks
// of one in-process run.
type Cluster struct {
	NumRanks int
	Side     int // ranks per cube edge

	chans map[chanKey]chan []hydro.Real

	reduce minReducer

	abortOnce sync.Once
	abortCh   chan struct{}
	abortMu   sync.Mutex
	abortErr  error
}

// NewCluster wires the channel mesh for numRanks in-process ranks.
// numRanks must be an integer cube; Side is its edge.
func NewCluster(numRanks, side int) *Cluster {
	c := &Cluster{
		NumRanks: numRanks,
		Side:     side,
		chans:    make(map[chanKey]chan []hydro.Real),
		abortCh:  make(chan struct{}),
	}
	c.reduce.init(numRanks)
	// one buffered channel per ordered pair and message type; rank skew
	// within a cycle is bounded by the symmetric force exchange, so a
	// small buffer suffices and sends never block
	for src := 0; src < numRanks; src++ {
		for dst := 0; dst < numRanks; dst++ {
			if src == dst {
				continue
			}
			for _, msg := range []hydro.MsgType{hydro.MsgSumNodal, hydro.MsgSyncPosVel, hydro.MsgMonoQ} {
				c.chans[chanKey{src, dst, msg}] = make(chan []hydro.Real, 4)
			}
		}
	}
	return c
}

// Abort records the first fatal error and releases every rank blocked on
// a transfer or reduction.
func (c *Cluster) Abort(err error) {
	c.abortMu.Lock()
	if c.abortErr == nil {
		c.abortErr = err
	}
	c.abortMu.Unlock()
	c.abortOnce.Do(func() {
		close(c.abortCh)
		c.reduce.abort()
	})
}

// Err returns the error that aborted the cluster, if any.
func (c *Cluster) Err() error {
	c.abortMu.Lock()
	defer c.abortMu.Unlock()
	return c.abortErr
}

// Exchanger returns the hydro.Exchanger endpoint for one rank.
func (c *Cluster) Exchanger(rank int) *LocalExchange {
	return &LocalExchange{cluster: c, rank: rank}
}

type pendingRecv struct {
	msg     hydro.MsgType
	nFields int
	dirs    []direction
}

// LocalExchange is one rank's endpoint into the Cluster. It implements
// hydro.Exchanger with channel sends in place of message passing; the
// pack and unpack index sets mirror each other on the two sides of every
// transfer.
type LocalExchange struct {
	cluster *Cluster
	rank    int

	pending pendingRecv
}

// transferDirs selects which neighbors take part in a message type from
// the sending side; recv mirrors it.
func transferDirs(d *hydro.Domain, msg hydro.MsgType, planeOnly, sending bool) (dirs []direction) {
	for _, dir := range neighbors(d) {
		if planeOnly && !dir.isFace() {
			continue
		}
		switch msg {
		case hydro.MsgSyncPosVel:
			// position/velocity values flow toward the lower rank: each
			// rank sends to its lower neighbors and receives from its
			// upper ones
			if sending && !dir.allMinus() {
				continue
			}
			if !sending && !dir.allPlus() {
				continue
			}
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

// Recv posts the receive expectation for a paired exchange. The channel
// transport needs no eager buffer posting; the expectation is consumed by
// the matching Apply call.
func (x *LocalExchange) Recv(d *hydro.Domain, msg hydro.MsgType, nFields int, planeOnly bool) {
	x.pending = pendingRecv{
		msg:     msg,
		nFields: nFields,
		dirs:    transferDirs(d, msg, planeOnly, false),
	}
}

// Send packs the boundary slab of each field for every participating
// neighbor and ships it.
func (x *LocalExchange) Send(d *hydro.Domain, msg hydro.MsgType, fields [][]hydro.Real, planeOnly bool) {
	for _, dir := range transferDirs(d, msg, planeOnly, true) {
		var idx []int
		if msg == hydro.MsgMonoQ {
			idx = faceElems(d, dir)
		} else {
			idx = boundaryNodes(d, dir)
		}
		buf := make([]hydro.Real, 0, len(idx)*len(fields))
		for _, f := range fields {
			for _, i := range idx {
				buf = append(buf, f[i])
			}
		}
		key := chanKey{x.rank, rankOf(d, dir), msg}
		select {
		case x.cluster.chans[key] <- buf:
		case <-x.cluster.abortCh:
			return
		}
	}
}

func (x *LocalExchange) recvFrom(d *hydro.Domain, dir direction, msg hydro.MsgType) []hydro.Real {
	key := chanKey{rankOf(d, dir), x.rank, msg}
	select {
	case buf := <-x.cluster.chans[key]:
		return buf
	case <-x.cluster.abortCh:
		return nil
	}
}

// ApplySum waits for the posted receives and accumulates each incoming
// slab into the matching boundary nodes.
func (x *LocalExchange) ApplySum(d *hydro.Domain, fields [][]hydro.Real) {
	for _, dir := range x.pending.dirs {
		buf := x.recvFrom(d, dir, x.pending.msg)
		if buf == nil {
			return
		}
		idx := boundaryNodes(d, dir)
		for fi, f := range fields {
			base := fi * len(idx)
			for j, i := range idx {
				f[i] += buf[base+j]
			}
		}
	}
}

// ApplyCopy waits for the posted receives and overwrites the destination
// slots: boundary nodes for the position/velocity sync, ghost element
// blocks for the monotonic q gradients.
func (x *LocalExchange) ApplyCopy(d *hydro.Domain, fields [][]hydro.Real) {
	for _, dir := range x.pending.dirs {
		buf := x.recvFrom(d, dir, x.pending.msg)
		if buf == nil {
			return
		}
		if x.pending.msg == hydro.MsgMonoQ {
			n := len(buf) / len(fields)
			ghost := ghostBlockStart(d, dir)
			for fi, f := range fields {
				copy(f[ghost:ghost+n], buf[fi*n:(fi+1)*n])
			}
		} else {
			idx := boundaryNodes(d, dir)
			for fi, f := range fields {
				base := fi * len(idx)
				for j, i := range idx {
					f[i] = buf[base+j]
				}
			}
		}
	}
}

// ReduceMinReal is the all-rank minimum used by the timestep controller.
func (x *LocalExchange) ReduceMinReal(v hydro.Real) hydro.Real {
	return x.cluster.reduce.min(v)
}

// Abort triggers the cluster-wide teardown.
func (x *LocalExchange) Abort(err error) {
	x.cluster.Abort(err)
}

// Err reports the error that aborted the cluster, if any.
func (x *LocalExchange) Err() error {
	return x.cluster.Err()
}

// minReducer is a cyclic all-reduce barrier: every rank contributes a
// value, the last arrival publishes the minimum and releases the round.
type minReducer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	n       int
	count   int
	round   int
	val     hydro.Real
	result  hydro.Real
	aborted bool
}

func (r *minReducer) init(n int) {
	r.n = n
	r.cond = sync.NewCond(&r.mu)
}

func (r *minReducer) min(v hydro.Real) hydro.Real {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.aborted {
		return v
	}
	if r.count == 0 {
		r.val = v
	} else if v < r.val {
		r.val = v
	}
	r.count++
	if r.count == r.n {
		r.result = r.val
		r.count = 0
		r.round++
		r.cond.Broadcast()
		return r.result
	}
	myRound := r.round
	for r.round == myRound && !r.aborted {
		r.cond.Wait()
	}
	if r.aborted {
		return v
	}
	return r.result
}

func (r *minReducer) abort() {
	r.mu.Lock()
	r.aborted = true
	r.cond.Broadcast()
	r.mu.Unlock()
}
