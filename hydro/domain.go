package hydro

import "runtime"

// Boundary condition flags, three choices per hexahedral face: each
// of the six faces is symmetry, free surface, or communicated. Packed into
// a single mask per element, 3 bits per face.
const (
	XiMSymm   = 0x00001
	XiMFree   = 0x00002
	XiMComm   = 0x00004
	XiM       = XiMSymm | XiMFree | XiMComm
	XiPSymm   = 0x00008
	XiPFree   = 0x00010
	XiPComm   = 0x00020
	XiP       = XiPSymm | XiPFree | XiPComm
	EtaMSymm  = 0x00040
	EtaMFree  = 0x00080
	EtaMComm  = 0x00100
	EtaM      = EtaMSymm | EtaMFree | EtaMComm
	EtaPSymm  = 0x00200
	EtaPFree  = 0x00400
	EtaPComm  = 0x00800
	EtaP      = EtaPSymm | EtaPFree | EtaPComm
	ZetaMSymm = 0x01000
	ZetaMFree = 0x02000
	ZetaMComm = 0x04000
	ZetaM     = ZetaMSymm | ZetaMFree | ZetaMComm
	ZetaPSymm = 0x08000
	ZetaPFree = 0x10000
	ZetaPComm = 0x20000
	ZetaP     = ZetaPSymm | ZetaPFree | ZetaPComm
)

// MsgType selects one of the three ghost exchange message flavors.
type MsgType int

const (
	MsgSumNodal   MsgType = iota // sum nodal quantities (force, mass) across rank boundaries
	MsgSyncPosVel                // overwrite boundary node positions/velocities
	MsgMonoQ                     // copy element velocity gradients into ghost slots
)

// Exchanger is the ghost exchange collaborator. A single rank run uses the
// no-op implementation; distributed runs plug in a transport. Recv posts
// the receives for a paired exchange, Send packs and ships the given
// fields, and the Apply pair waits on the outstanding receives before
// accumulating (sum) or overwriting (copy) into the domain arrays.
type Exchanger interface {
	Recv(d *Domain, msg MsgType, nFields int, planeOnly bool)
	Send(d *Domain, msg MsgType, fields [][]Real, planeOnly bool)
	ApplySum(d *Domain, fields [][]Real)
	ApplyCopy(d *Domain, fields [][]Real)

	// ReduceMinReal is the collective minimum over all ranks, used by the
	// time increment controller.
	ReduceMinReal(v Real) Real

	// Abort tears the whole job down after a fatal error without
	// deadlocking ranks blocked on outstanding transfers. Err reports the
	// error that aborted the job, if any; ranks poll it between cycles so
	// survivors stop instead of advancing on stale boundary data.
	Abort(err error)
	Err() error
}

// NullExchange is the R=1 collaborator: every exchange is a no-op and
// reductions are local.
type NullExchange struct{}

func (NullExchange) Recv(d *Domain, msg MsgType, nFields int, planeOnly bool)     {}
func (NullExchange) Send(d *Domain, msg MsgType, fields [][]Real, planeOnly bool) {}
func (NullExchange) ApplySum(d *Domain, fields [][]Real)                          {}
func (NullExchange) ApplyCopy(d *Domain, fields [][]Real)                         {}
func (NullExchange) ReduceMinReal(v Real) Real                                    { return v }
func (NullExchange) Abort(err error)                                              {}
func (NullExchange) Err() error                                                   { return nil }

// Params holds the material cutoffs and EOS bounds. They are set at Domain
// construction and the solver only reads them; parameter-file overrides of
// the q, qstop and hourglass coefficients are applied after construction,
// before the first cycle.
type Params struct {
	ECut Real // energy tolerance
	PCut Real // pressure tolerance
	QCut Real // q tolerance
	VCut Real // relative volume tolerance
	UCut Real // velocity tolerance

	HgCoef           Real // hourglass control coefficient
	Ss4o3            Real
	QStop            Real // excessive q indicator
	MonoqMaxSlope    Real
	MonoqLimiterMult Real
	Qlc              Real // linear term coefficient for q
	Qqc              Real // quadratic term coefficient for q
	QqcCourant       Real // q coefficient in the Courant constraint

	EosVMax Real
	EosVMin Real
	PMin    Real // pressure floor
	EMin    Real // energy floor
	DvovMax Real // maximum allowable volume change per step
	RefDens Real // reference density
}

// DefaultParams are the proxy's hardwired material constants.
func DefaultParams() Params {
	return Params{
		ECut:             1.0e-7,
		PCut:             1.0e-7,
		QCut:             1.0e-7,
		VCut:             1.0e-10,
		UCut:             1.0e-7,
		HgCoef:           3.0,
		Ss4o3:            4.0 / 3.0,
		QStop:            1.0e+12,
		MonoqMaxSlope:    1.0,
		MonoqLimiterMult: 2.0,
		Qlc:              0.5,
		Qqc:              2.0 / 3.0,
		QqcCourant:       2.0,
		EosVMax:          1.0e+9,
		EosVMin:          1.0e-9,
		PMin:             0.0,
		EMin:             -1.0e+15,
		DvovMax:          0.1,
		RefDens:          1.0,
	}
}

// Domain owns all node and element centered state for one subdomain of the
// Sedov problem, plus the static topology built at construction. Arrays are
// structure-of-arrays slices sized once and never resized.
type Domain struct {
	// Node-centered
	X, Y, Z       []Real // coordinates
	Xd, Yd, Zd    []Real // velocities
	Xdd, Ydd, Zdd []Real // accelerations
	FX, FY, FZ    []Real // force accumulators
	NodalMass     []Real

	SymmX, SymmY, SymmZ []int // symmetry plane nodesets

	// Element-centered
	Nodelist []int // 8*NumElem connectivity, canonical hex corner order

	Lxim, Lxip     []int // element connectivity across each face
	Letam, Letap   []int
	Lzetam, Lzetap []int

	ElemBC []int // face flag mask per element

	E        []Real // internal energy
	P        []Real // pressure
	Q        []Real // artificial viscosity
	Ql, Qq   []Real // linear and quadratic q terms
	V        []Real // relative volume
	Volo     []Real // reference volume
	Delv     []Real // vnew - v
	Vdov     []Real // volume derivative over volume
	Arealg   []Real // element characteristic length
	SS       []Real // sound speed
	ElemMass []Real

	// Per-cycle scratch, kept resident between cycles
	Vnew          []Real // new relative volume
	Dxx, Dyy, Dzz []Real // principal strains

	DelvXi, DelvEta, DelvZeta []Real // velocity gradients, ghost-extended
	DelxXi, DelxEta, DelxZeta []Real // position gradients

	// Regions
	NumReg      int
	Cost        int     // imbalance cost multiplier
	RegNumList  []int   // region number per element, 1..NumReg
	RegElemList [][]int // per-region element index sets

	// Node -> element corner CSR lists, built only when NumThreads > 1
	NodeElemStart      []int
	NodeElemCornerList []int

	// Cutoffs and material constants, read-only to the solver
	Params Params

	// Timestep state
	DtCourant Real // courant constraint from the previous cycle
	DtHydro   Real // volume change constraint from the previous cycle
	Cycle     int
	DtFixed   Real // negative means use the constraint controller
	Time      Real
	Deltatime Real
	DtMultLB  Real
	DtMultUB  Real
	DtMax     Real
	StopTime  Real

	// Decomposition
	NumRanks   int
	Rank       int
	ColLoc     int
	RowLoc     int
	PlaneLoc   int
	Tp         int // ranks per cube edge
	SizeX      int
	SizeY      int
	SizeZ      int
	NumElem    int
	NumNode    int
	NumThreads int

	MaxPlaneSize int
	MaxEdgeSize  int

	// true when the corresponding face of this subdomain touches a
	// neighbor rank
	RowMin, RowMax     bool
	ColMin, ColMax     bool
	PlaneMin, PlaneMax bool

	// Ghost exchange collaborator
	Ex Exchanger

	pmElem *PartitionMap // element range sharding
	pmNode *PartitionMap // node range sharding
}

func (d *Domain) allocateNodePersistent(numNode int) {
	d.X = make([]Real, numNode)
	d.Y = make([]Real, numNode)
	d.Z = make([]Real, numNode)

	d.Xd = make([]Real, numNode)
	d.Yd = make([]Real, numNode)
	d.Zd = make([]Real, numNode)

	d.Xdd = make([]Real, numNode)
	d.Ydd = make([]Real, numNode)
	d.Zdd = make([]Real, numNode)

	d.FX = make([]Real, numNode)
	d.FY = make([]Real, numNode)
	d.FZ = make([]Real, numNode)

	d.NodalMass = make([]Real, numNode)
}

func (d *Domain) allocateElemPersistent(numElem int) {
	d.Nodelist = make([]int, 8*numElem)

	d.Lxim = make([]int, numElem)
	d.Lxip = make([]int, numElem)
	d.Letam = make([]int, numElem)
	d.Letap = make([]int, numElem)
	d.Lzetam = make([]int, numElem)
	d.Lzetap = make([]int, numElem)

	d.ElemBC = make([]int, numElem)

	d.E = make([]Real, numElem)
	d.P = make([]Real, numElem)
	d.Q = make([]Real, numElem)
	d.Ql = make([]Real, numElem)
	d.Qq = make([]Real, numElem)

	d.V = make([]Real, numElem)
	d.Volo = make([]Real, numElem)
	d.Delv = make([]Real, numElem)
	d.Vdov = make([]Real, numElem)

	d.Arealg = make([]Real, numElem)
	d.SS = make([]Real, numElem)
	d.ElemMass = make([]Real, numElem)

	d.Vnew = make([]Real, numElem)

	d.Dxx = make([]Real, numElem)
	d.Dyy = make([]Real, numElem)
	d.Dzz = make([]Real, numElem)
}

// allocateGradients sizes the velocity gradient arrays with room for ghost
// element slots beyond NumElem; position gradients are local only.
func (d *Domain) allocateGradients(numElem, allElem int) {
	d.DelxXi = make([]Real, numElem)
	d.DelxEta = make([]Real, numElem)
	d.DelxZeta = make([]Real, numElem)

	d.DelvXi = make([]Real, allElem)
	d.DelvEta = make([]Real, allElem)
	d.DelvZeta = make([]Real, allElem)
}

// Nodes returns the eight corner node indices of element i.
func (d *Domain) Nodes(i int) []int {
	return d.Nodelist[8*i : 8*i+8]
}

// Opts carries the knobs that size and shape a Domain.
type Opts struct {
	NumRanks int
	Rank     int
	ColLoc   int
	RowLoc   int
	PlaneLoc int
	Nx       int // elements per subdomain edge
	Tp       int // subdomains per cube edge
	NumReg   int
	Balance  int
	Cost     int
	Threads  int // worker goroutines per rank; <=0 means one per CPU
}

// NewDomain constructs one subdomain of the Sedov problem at grid location
// (ColLoc, RowLoc, PlaneLoc) in a Tp x Tp x Tp cube of subdomains, builds
// the mesh topology and region sets, deposits the initial energy if this
// subdomain holds the global origin, and chooses the initial timestep.
func NewDomain(opts Opts) (d *Domain, err error) {
	var (
		edgeElems = opts.Nx
		edgeNodes = edgeElems + 1
	)
	d = &Domain{
		Params:     DefaultParams(),
		NumRanks:   opts.NumRanks,
		Rank:       opts.Rank,
		ColLoc:     opts.ColLoc,
		RowLoc:     opts.RowLoc,
		PlaneLoc:   opts.PlaneLoc,
		Tp:         opts.Tp,
		Cost:       opts.Cost,
		NumThreads: opts.Threads,
		Ex:         NullExchange{},
	}
	if d.NumThreads <= 0 {
		d.NumThreads = runtime.NumCPU()
	}

	d.SizeX = edgeElems
	d.SizeY = edgeElems
	d.SizeZ = edgeElems
	d.NumElem = edgeElems * edgeElems * edgeElems
	d.NumNode = edgeNodes * edgeNodes * edgeNodes

	d.RegNumList = make([]int, d.NumElem)

	d.allocateElemPersistent(d.NumElem)
	d.allocateNodePersistent(d.NumNode)

	if err = d.setupCommBuffers(edgeNodes); err != nil {
		return nil, err
	}

	// Note - v initializes to 1.0, not 0.0
	for i := 0; i < d.NumElem; i++ {
		d.V[i] = 1.0
	}

	d.buildMesh(opts.Nx, edgeNodes, edgeElems)

	if d.NumThreads > 1 {
		d.setupThreadSupportStructures()
	}
	d.pmElem = NewPartitionMap(d.NumThreads, d.NumElem)
	d.pmNode = NewPartitionMap(d.NumThreads, d.NumNode)

	// Region index sets are constant sized through the run, but could be
	// rebuilt every cycle to mimic ALE effects on the Lagrange solver
	d.createRegionIndexSets(opts.NumReg, opts.Balance)

	d.setupSymmetryPlanes(edgeNodes)
	d.setupElementConnectivities(edgeElems)
	d.setupBoundaryConditions(edgeElems)

	// ghost-extended gradient arrays; one plane of ghosts per comm face
	allElem := d.NumElem +
		2*d.SizeX*d.SizeY + // plane ghosts
		2*d.SizeX*d.SizeZ + // row ghosts
		2*d.SizeY*d.SizeZ // col ghosts
	d.allocateGradients(d.NumElem, allElem)

	// Timestep controller defaults. A fixed timestep is available by
	// setting DtFixed positive, but running a fixed iteration count with
	// the -i flag is the better tool.
	d.DtFixed = -1.0e-6 // negative means use the courant condition
	d.StopTime = 1.0e-2

	d.DtMultLB = 1.1
	d.DtMultUB = 1.2
	d.DtCourant = 1.0e+20
	d.DtHydro = 1.0e+20
	d.DtMax = 1.0e-2
	d.Time = 0.0
	d.Cycle = 0

	// Initialize field data: reference volumes and corner-lumped masses
	var xl, yl, zl [8]Real
	for i := 0; i < d.NumElem; i++ {
		elemToNode := d.Nodes(i)
		for ln := 0; ln < 8; ln++ {
			gnode := elemToNode[ln]
			xl[ln] = d.X[gnode]
			yl[ln] = d.Y[gnode]
			zl[ln] = d.Z[gnode]
		}
		volume := CalcElemVolume(&xl, &yl, &zl)
		d.Volo[i] = volume
		d.ElemMass[i] = volume
		for j := 0; j < 8; j++ {
			d.NodalMass[elemToNode[j]] += volume / 8.0
		}
	}

	// Deposit the initial energy. 3.948746e+7 is correct for a problem
	// with 45 zones along a side; scale for other sizes.
	const ebase = Real(3.948746e+7)
	scale := Real(opts.Nx*d.Tp) / 45.0
	einit := ebase * scale * scale * scale
	if d.RowLoc+d.ColLoc+d.PlaneLoc == 0 {
		// the first zone of this subdomain sits at the global origin
		d.E[0] = einit
	}
	// initial deltatime from the analytic CFL of the deposit
	d.Deltatime = (0.5 * Cbrt(d.Volo[0])) / Sqrt(2.0*einit)

	return d, nil
}
