package hydro

import "math/rand"

// createRegionIndexSets partitions the elements into NumReg disjoint
// regions. Assignment is pseudo-random from a rank-seeded source, in runs
// whose lengths follow a fixed bucket-size histogram, so results are
// reproducible for a given rank count but not across rank counts. The
// balance exponent skews how often high-numbered regions are picked, and
// the region with the heaviest representation rotates with the rank.
func (d *Domain) createRegionIndexSets(nr, balance int) {
	rng := rand.New(rand.NewSource(int64(d.Rank)))

	d.NumReg = nr
	regElemSize := make([]int, nr)
	nextIndex := 0

	if d.NumReg == 1 {
		// just fill it
		for nextIndex < d.NumElem {
			d.RegNumList[nextIndex] = 1
			nextIndex++
		}
	} else {
		var (
			lastReg         = -1
			costDenominator = 0
			regBinEnd       = make([]int, nr)
		)
		// relative weight of each region from the balance exponent; the
		// chance of hitting region i is its share of costDenominator
		for i := 0; i < nr; i++ {
			weight := 1
			for j := 0; j < balance; j++ {
				weight *= i + 1
			}
			costDenominator += weight
			regBinEnd[i] = costDenominator
		}

		pickRegion := func() int {
			regionVar := rng.Intn(costDenominator)
			i := 0
			for regionVar >= regBinEnd[i] {
				i++
			}
			// rotate the heaviest region with the rank so each subdomain
			// leans on a different region
			return (i+d.Rank)%d.NumReg + 1
		}

		for nextIndex < d.NumElem {
			regionNum := pickRegion()
			// never pick the same region twice in a row
			for regionNum == lastReg {
				regionNum = pickRegion()
			}
			// run length from the fixed bucket-size histogram
			var elements int
			binSize := rng.Intn(1000)
			switch {
			case binSize < 773:
				elements = rng.Intn(15) + 1
			case binSize < 937:
				elements = rng.Intn(16) + 16
			case binSize < 970:
				elements = rng.Intn(32) + 32
			case binSize < 974:
				elements = rng.Intn(64) + 64
			case binSize < 978:
				elements = rng.Intn(128) + 128
			case binSize < 981:
				elements = rng.Intn(256) + 256
			default:
				elements = rng.Intn(1537) + 512
			}
			runto := elements + nextIndex
			for nextIndex < runto && nextIndex < d.NumElem {
				d.RegNumList[nextIndex] = regionNum
				nextIndex++
			}
			lastReg = regionNum
		}
	}

	// convert the per-element region numbers to region index sets
	for i := 0; i < d.NumElem; i++ {
		regElemSize[d.RegNumList[i]-1]++
	}
	d.RegElemList = make([][]int, nr)
	for r := 0; r < nr; r++ {
		d.RegElemList[r] = make([]int, 0, regElemSize[r])
	}
	for i := 0; i < d.NumElem; i++ {
		r := d.RegNumList[i] - 1
		d.RegElemList[r] = append(d.RegElemList[r], i)
	}
}
