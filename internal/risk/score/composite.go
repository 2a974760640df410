package score

// Weights combine the four domain scores into the composite stability
// score. They are configuration, not constants, and are not required to sum
// to 1: the observed production set sums to 1.5, so the composite is not
// bounded to [0, 1] even though every domain score is.
type Weights struct {
	Usage         float64 `yaml:"usage" json:"usage"`
	Incident      float64 `yaml:"incident" json:"incident"`
	Maintenance   float64 `yaml:"maintenance" json:"maintenance"`
	Vulnerability float64 `yaml:"vulnerability" json:"vulnerability"`
}

// DefaultWeights is the production weight set.
func DefaultWeights() Weights {
	return Weights{
		Usage:         0.2,
		Incident:      0.5,
		Maintenance:   0.3,
		Vulnerability: 0.5,
	}
}

// Composite computes the weighted stability score for one asset. Row-wise
// and pure: the inputs are the asset's normalized domain scores.
func (w Weights) Composite(usage, incident, maintenance, vulnerability float64) float64 {
	return usage*w.Usage +
		incident*w.Incident +
		maintenance*w.Maintenance +
		vulnerability*w.Vulnerability
}
