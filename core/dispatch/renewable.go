package dispatch

// allocateWind sets every wind turbine to its weather limited potential and
// curtails them proportionally when wind alone exceeds the load. It returns
// the wind total and the load left for dispatchable units. The remaining load
// is negative when rounding over-curtailed wind; it is passed on unchanged.
func allocateWind(units []*Unit, load float64) (total, remaining float64) {
	var turbines []*Unit
	for _, u := range units {
		if u.Plant.Type.IsRenewable() {
			turbines = append(turbines, u)
		}
	}
	if load <= 0 {
		for _, u := range turbines {
			u.Output = 0
		}
		return 0, Round1(load)
	}
	for _, u := range turbines {
		u.Output = u.Max
		total += u.Output
	}
	total = Round1(total)
	if total > load {
		factor := load / total
		total = 0
		for _, u := range turbines {
			u.Output = Round1(u.Output * factor)
			total += u.Output
		}
		total = Round1(total)
	}
	return total, Round1(load - total)
}
