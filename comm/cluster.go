package comm

import (
	"fmt"
	"sync"

	"github.com/notargets/goshock/hydro"
)

// Config sizes an in-process multi-rank run.
type Config struct {
	NumRanks int
	Nx       int
	NumReg   int
	Balance  int
	Cost     int
	Threads  int
	Run      hydro.RunOptions

	// Configure, when set, is applied to every Domain after construction
	// and before the first cycle (parameter-file overrides).
	Configure func(d *hydro.Domain)
}

// Launch builds one Domain per rank, wires them through a Cluster, runs
// every rank in its own goroutine and waits for completion. The returned
// slice is indexed by rank; stats are taken from rank 0.
func Launch(cfg Config) (domains []*hydro.Domain, stats hydro.RunStats, err error) {
	_, _, _, side, err := hydro.InitMeshDecomp(cfg.NumRanks, 0)
	if err != nil {
		return nil, stats, err
	}

	cluster := NewCluster(cfg.NumRanks, side)
	domains = make([]*hydro.Domain, cfg.NumRanks)

	for rank := 0; rank < cfg.NumRanks; rank++ {
		col, row, plane, _, derr := hydro.InitMeshDecomp(cfg.NumRanks, rank)
		if derr != nil {
			return nil, stats, derr
		}
		domains[rank], derr = hydro.NewDomain(hydro.Opts{
			NumRanks: cfg.NumRanks,
			Rank:     rank,
			ColLoc:   col,
			RowLoc:   row,
			PlaneLoc: plane,
			Nx:       cfg.Nx,
			Tp:       side,
			NumReg:   cfg.NumReg,
			Balance:  cfg.Balance,
			Cost:     cfg.Cost,
			Threads:  cfg.Threads,
		})
		if derr != nil {
			return nil, stats, fmt.Errorf("rank %d: %w", rank, derr)
		}
		domains[rank].Ex = cluster.Exchanger(rank)
		if cfg.Configure != nil {
			cfg.Configure(domains[rank])
		}
	}

	var (
		wg       sync.WaitGroup
		rankErr  = make([]error, cfg.NumRanks)
		rankStat = make([]hydro.RunStats, cfg.NumRanks)
	)
	for rank := 0; rank < cfg.NumRanks; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			d := domains[rank]

			// complete the corner-lumped nodal masses across rank
			// boundaries before the first cycle
			fields := [][]hydro.Real{d.NodalMass}
			d.Ex.Recv(d, hydro.MsgSumNodal, 1, false)
			d.Ex.Send(d, hydro.MsgSumNodal, fields, false)
			d.Ex.ApplySum(d, fields)

			rankStat[rank], rankErr[rank] = d.Run(cfg.Run)
		}(rank)
	}
	wg.Wait()

	if cerr := cluster.Err(); cerr != nil {
		return domains, rankStat[0], cerr
	}
	for _, rerr := range rankErr {
		if rerr != nil {
			return domains, rankStat[0], rerr
		}
	}
	return domains, rankStat[0], nil
}
