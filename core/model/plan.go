package model

// PlanRequest is the input of one production plan computation.
type PlanRequest struct {
	Load        float64      `json:"load" yaml:"load"` // requested load in MW
	Fuels       Fuels        `json:"fuels" yaml:"fuels"`
	Powerplants []Powerplant `json:"powerplants" yaml:"powerplants"`
}

// Allocation is the power assigned to one plant.
type Allocation struct {
	Name string  `json:"name" yaml:"name"`
	P    float64 `json:"p" yaml:"p"`
}

// ProductionPlan lists one allocation per requested plant, in request order.
type ProductionPlan []Allocation

// Total returns the summed output of the plan.
func (p ProductionPlan) Total() float64 {
	var sum float64
	for _, a := range p {
		sum += a.P
	}
	return sum
}

// Get returns the power assigned to the named plant.
func (p ProductionPlan) Get(name string) (float64, bool) {
	for _, a := range p {
		if a.Name == name {
			return a.P, true
		}
	}
	return 0, false
}

// Map returns the plan indexed by plant name. Duplicate names keep the last
// allocation.
func (p ProductionPlan) Map() map[string]float64 {
	m := make(map[string]float64, len(p))
	for _, a := range p {
		m[a.Name] = a.P
	}
	return m
}
