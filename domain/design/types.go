package design

import (
	"gocausal/domain/core"
)

// Unit is one experimental subject with both potential outcomes.
// Y0 and Y1 are never both observable outside simulation: a real estimator
// only ever sees the one selected by the realized assignment.
type Unit struct {
	ID core.UnitID `json:"id"`
	Y0 float64     `json:"y0"` // potential outcome under control
	Y1 float64     `json:"y1"` // potential outcome under treatment
}

// Effect returns the unit-level treatment effect. Oracle-only: it reads both
// potential outcomes.
func (u Unit) Effect() float64 {
	return u.Y1 - u.Y0
}

// Roster is an ordered, read-only collection of units with unique IDs.
type Roster struct {
	units []Unit
}

// NewRoster validates and wraps a unit list.
// INVARIANTS:
// - at least one unit
// - unit IDs unique
func NewRoster(units []Unit) (*Roster, error) {
	if len(units) == 0 {
		return nil, core.ErrEmptyRoster
	}
	seen := make(map[core.UnitID]bool, len(units))
	for _, u := range units {
		if seen[u.ID] {
			return nil, core.NewValidationError("units", core.ErrDuplicateUnit.Error())
		}
		seen[u.ID] = true
	}
	copied := make([]Unit, len(units))
	copy(copied, units)
	return &Roster{units: copied}, nil
}

// Size returns the number of units N
func (r *Roster) Size() int {
	return len(r.units)
}

// Units returns a copy of the unit list to keep the roster read-only
func (r *Roster) Units() []Unit {
	out := make([]Unit, len(r.units))
	copy(out, r.units)
	return out
}

// Unit returns the unit at position i in roster order
func (r *Roster) Unit(i int) Unit {
	return r.units[i]
}

// TrueATE returns mean(Y1 - Y0) over the roster. Oracle-only: it uses the
// counterfactual outcome of every unit, so it exists for simulated data and
// for cross-checking estimators, never for real analysis.
func (r *Roster) TrueATE() float64 {
	sum := 0.0
	for _, u := range r.units {
		sum += u.Effect()
	}
	return sum / float64(len(r.units))
}

// Fingerprint hashes the roster contents for run manifests
func (r *Roster) Fingerprint() core.RosterHash {
	buf := make([]byte, 0, len(r.units)*24)
	for _, u := range r.units {
		buf = append(buf, []byte(u.ID.String())...)
		buf = appendFloat(buf, u.Y0)
		buf = appendFloat(buf, u.Y1)
	}
	return core.RosterHash(core.NewHash(buf))
}
