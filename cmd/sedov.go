/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/notargets/goshock/InputParameters"
	"github.com/notargets/goshock/comm"
	"github.com/notargets/goshock/hydro"
	"github.com/notargets/goshock/viz"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// SedovCmd represents the sedov command
var SedovCmd = &cobra.Command{
	Use:   "sedov",
	Short: "Sedov blast wave on a uniform hexahedral mesh",
	Long: `
Runs the Sedov blast wave problem: a point energy deposit at the mesh
origin drives a spherical shock through an ideal gas, advanced with an
explicit Lagrangian leapfrog scheme.

goshock sedov -s 30 -i 100 -r 11`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ms := &ModelSedov{}
		ms.Iterations, _ = cmd.Flags().GetInt("iterations")
		ms.Nx, _ = cmd.Flags().GetInt("size")
		ms.NumReg, _ = cmd.Flags().GetInt("regions")
		ms.Balance, _ = cmd.Flags().GetInt("balance")
		ms.Cost, _ = cmd.Flags().GetInt("cost")
		ms.NumFiles, _ = cmd.Flags().GetInt("numFiles")
		ms.ShowProg, _ = cmd.Flags().GetBool("progress")
		ms.Quiet, _ = cmd.Flags().GetBool("quiet")
		ms.Viz, _ = cmd.Flags().GetBool("viz")
		ms.NumRanks, _ = cmd.Flags().GetInt("nranks")
		ms.NumThreads, _ = cmd.Flags().GetInt("nthreads")
		ms.CPUProfile, _ = cmd.Flags().GetBool("cpuProfile")
		ms.Perf, _ = cmd.Flags().GetBool("perf")
		ms.ICFile, _ = cmd.Flags().GetString("inputFile")

		var ip *InputParameters.SedovParameters
		if len(ms.ICFile) != 0 {
			var data []byte
			if data, err = ioutil.ReadFile(ms.ICFile); err != nil {
				return err
			}
			ip = &InputParameters.SedovParameters{}
			if err = ip.Parse(data); err != nil {
				return err
			}
		}
		cmd.SilenceUsage = true
		return RunSedov(ms, ip)
	},
}

func init() {
	rootCmd.AddCommand(SedovCmd)
	SedovCmd.Flags().IntP("iterations", "i", 0, "iteration count, 0 runs to the stop time")
	SedovCmd.Flags().IntP("size", "s", 30, "elements along each subdomain edge")
	SedovCmd.Flags().IntP("regions", "r", 11, "number of element regions")
	SedovCmd.Flags().IntP("balance", "b", 1, "region size balance exponent")
	SedovCmd.Flags().IntP("cost", "c", 1, "imbalance cost multiplier for one region per rank")
	SedovCmd.Flags().IntP("numFiles", "f", 0, "number of visualization output files")
	SedovCmd.Flags().BoolP("progress", "p", false, "print a line per cycle")
	SedovCmd.Flags().BoolP("quiet", "q", false, "suppress all output but errors")
	SedovCmd.Flags().BoolP("viz", "v", false, "write a visualization dump at the end of the run")
	SedovCmd.Flags().Int("nranks", 1, "in-process ranks; must be an integer cube")
	SedovCmd.Flags().Int("nthreads", 0, "worker goroutines per rank, 0 = one per CPU")
	SedovCmd.Flags().StringP("inputFile", "I", "", "YAML file overriding solver parameters like:\n\t- StopTime\n\t- HourglassCoef")
	SedovCmd.Flags().Bool("cpuProfile", false, "write a CPU profile of the run")
	SedovCmd.Flags().Bool("perf", false, "report hardware instruction counts (Linux only)")
}

type ModelSedov struct {
	Iterations int
	Nx         int
	NumReg     int
	Balance    int
	Cost       int
	NumFiles   int
	NumRanks   int
	NumThreads int
	ShowProg   bool
	Quiet      bool
	Viz        bool
	CPUProfile bool
	Perf       bool
	ICFile     string
}

func applyParameters(ip *InputParameters.SedovParameters, d *hydro.Domain) {
	if ip == nil {
		return
	}
	if ip.StopTime != nil {
		d.StopTime = hydro.Real(*ip.StopTime)
	}
	if ip.FixedTimeStep > 0 {
		d.DtFixed = hydro.Real(ip.FixedTimeStep)
		d.Deltatime = hydro.Real(ip.FixedTimeStep)
	}
	if ip.MaxTimeStep != 0 {
		d.DtMax = hydro.Real(ip.MaxTimeStep)
	}
	if ip.TimeStepMultLB != 0 {
		d.DtMultLB = hydro.Real(ip.TimeStepMultLB)
	}
	if ip.TimeStepMultUB != 0 {
		d.DtMultUB = hydro.Real(ip.TimeStepMultUB)
	}
	if ip.HourglassCoef != 0 {
		d.Params.HgCoef = hydro.Real(ip.HourglassCoef)
	}
	if ip.QStop != 0 {
		d.Params.QStop = hydro.Real(ip.QStop)
	}
	if ip.MonoqMaxSlope != 0 {
		d.Params.MonoqMaxSlope = hydro.Real(ip.MonoqMaxSlope)
	}
	if ip.MonoqLimiterMult != 0 {
		d.Params.MonoqLimiterMult = hydro.Real(ip.MonoqLimiterMult)
	}
	if ip.LinearQCoef != 0 {
		d.Params.Qlc = hydro.Real(ip.LinearQCoef)
	}
	if ip.QuadraticQCoef != 0 {
		d.Params.Qqc = hydro.Real(ip.QuadraticQCoef)
	}
}

func RunSedov(ms *ModelSedov, ip *InputParameters.SedovParameters) error {
	if ms.CPUProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	if !ms.Quiet {
		fmt.Printf("Running problem size %d^3 per domain until completion\n", ms.Nx)
		fmt.Printf("Num ranks: %d\n", ms.NumRanks)
		fmt.Printf("Num threads: %d\n", ms.NumThreads)
		fmt.Printf("Total number of elements: %d\n\n", ms.NumRanks*ms.Nx*ms.Nx*ms.Nx)
		fmt.Printf("To run other sizes, use -s <integer>\n")
		fmt.Printf("To run a fixed number of iterations, use -i <integer>\n")
		fmt.Printf("To run a more or less balanced region set, use -b <integer>\n")
		fmt.Printf("To change the relative costs of regions, use -c <integer>\n")
		fmt.Printf("To print out progress, use -p\n")
		fmt.Printf("To write a plain-text visualization dump, use -v\n")
		fmt.Printf("See help (-h) for more options\n\n")
		if ip != nil {
			ip.Print()
		}
	}

	cfg := comm.Config{
		NumRanks: ms.NumRanks,
		Nx:       ms.Nx,
		NumReg:   ms.NumReg,
		Balance:  ms.Balance,
		Cost:     ms.Cost,
		Threads:  ms.NumThreads,
		Run: hydro.RunOptions{
			Iterations: ms.Iterations,
			ShowProg:   ms.ShowProg,
			Quiet:      ms.Quiet,
		},
		Configure: func(d *hydro.Domain) { applyParameters(ip, d) },
	}

	var (
		domains []*hydro.Domain
		stats   hydro.RunStats
		err     error
	)
	run := func() error {
		domains, stats, err = comm.Launch(cfg)
		return err
	}
	if ms.Perf {
		runWithPerf(run, os.Stdout)
	} else {
		run()
	}
	if err != nil {
		return err
	}

	if ms.Viz {
		if derr := viz.Dump(domains, ms.NumFiles); derr != nil {
			return derr
		}
	}

	if !ms.Quiet {
		domains[0].VerifyAndWriteFinalOutput(stats.Elapsed, ms.Nx, ms.NumRanks)
	}
	return nil
}
