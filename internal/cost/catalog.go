package cost

// Rate is the price per shot and per unit of circuit depth for one
// backend pricing tier.
type Rate struct {
	PerShot  float64 `yaml:"per_shot" json:"per_shot"`
	PerDepth float64 `yaml:"per_depth" json:"per_depth"`
}

// Catalog maps backend -> tier -> rate
type Catalog map[string]map[string]Rate

// DefaultClassicalRate is the cost per data element for classical tasks
const DefaultClassicalRate = 0.1

// DefaultCatalog returns the built-in pricing catalog. Simulator tiers run
// locally and are priced near zero; cloud tiers reflect hosted hardware.
func DefaultCatalog() Catalog {
	return Catalog{
		"cirq": {
			"simulator": {PerShot: 0.0001, PerDepth: 0.001},
			"cloud":     {PerShot: 0.01, PerDepth: 0.05},
		},
		"qiskit": {
			"simulator": {PerShot: 0.00005, PerDepth: 0.0005},
			"cloud":     {PerShot: 0.008, PerDepth: 0.04},
		},
		"pennylane": {
			"simulator": {PerShot: 0.00008, PerDepth: 0.0008},
			"cloud":     {PerShot: 0.009, PerDepth: 0.045},
		},
	}
}

// Lookup resolves the rate for a (backend, tier) pair
func (c Catalog) Lookup(backend, tier string) (Rate, bool) {
	tiers, ok := c[backend]
	if !ok {
		return Rate{}, false
	}
	rate, ok := tiers[tier]
	return rate, ok
}

// Merge overlays the given rates onto the catalog, adding backends and
// tiers or overriding existing ones. Used for config-file overrides.
func (c Catalog) Merge(overrides Catalog) {
	for backend, tiers := range overrides {
		if c[backend] == nil {
			c[backend] = make(map[string]Rate, len(tiers))
		}
		for tier, rate := range tiers {
			c[backend][tier] = rate
		}
	}
}
