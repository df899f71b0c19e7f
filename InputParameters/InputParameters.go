package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file. Zero values mean "keep the
// solver default"; StopTime uses a pointer since zero is meaningful there.
type SedovParameters struct {
	Title            string   `yaml:"Title"`
	StopTime         *float64 `yaml:"StopTime"`
	FixedTimeStep    float64  `yaml:"FixedTimeStep"` // positive disables the constraint controller
	MaxTimeStep      float64  `yaml:"MaxTimeStep"`
	TimeStepMultLB   float64  `yaml:"TimeStepMultLB"`
	TimeStepMultUB   float64  `yaml:"TimeStepMultUB"`
	HourglassCoef    float64  `yaml:"HourglassCoef"`
	QStop            float64  `yaml:"QStop"`
	MonoqMaxSlope    float64  `yaml:"MonoqMaxSlope"`
	MonoqLimiterMult float64  `yaml:"MonoqLimiterMult"`
	LinearQCoef      float64  `yaml:"LinearQCoef"`
	QuadraticQCoef   float64  `yaml:"QuadraticQCoef"`
}

func (ip *SedovParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *SedovParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	if ip.StopTime != nil {
		fmt.Printf("%8.5f\t\t= StopTime\n", *ip.StopTime)
	}
	if ip.MaxTimeStep != 0 {
		fmt.Printf("%8.5f\t\t= MaxTimeStep\n", ip.MaxTimeStep)
	}
	if ip.HourglassCoef != 0 {
		fmt.Printf("%8.5f\t\t= HourglassCoef\n", ip.HourglassCoef)
	}
	if ip.LinearQCoef != 0 {
		fmt.Printf("%8.5f\t\t= LinearQCoef\n", ip.LinearQCoef)
	}
	if ip.QuadraticQCoef != 0 {
		fmt.Printf("%8.5f\t\t= QuadraticQCoef\n", ip.QuadraticQCoef)
	}
}
