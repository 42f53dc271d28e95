package validation

import (
	"encoding/json"

	"github.com/dmitrijs2005/cmiyc/internal/common"
	"github.com/dmitrijs2005/cmiyc/internal/server/models"
)

// Pair names the two fields of a preference pair, e.g. min_pace/max_pace.
type Pair struct {
	MinField string
	MaxField string
}

var (
	PacePair     = Pair{MinField: "min_pace", MaxField: "max_pace"}
	DistancePair = Pair{MinField: "min_dist_pref", MaxField: "max_dist_pref"}
)

// PairUpdate is the parsed outcome of a partial update of one pair. A nil
// side was absent from the request.
type PairUpdate struct {
	Min *models.Optional[int64]
	Max *models.Optional[int64]
}

// CheckFull validates a pair where both bounds are known, as on signup.
func (p Pair) CheckFull(minV, maxV int64) []common.Violation {
	if minV > maxV {
		return p.orderViolation()
	}
	return nil
}

// CheckPartial validates the pair that results from applying the present
// sides of an update over the stored bounds.
//
// When both sides are present they are compared with each other. When only
// one is present it is compared with the stored opposite bound. A null
// bound, stored or sent, constrains nothing. A side that is not a
// non-negative integer is a violation and suppresses the range check.
func (p Pair) CheckPartial(newMin, newMax models.Optional[json.RawMessage], storedMin, storedMax *int64) (PairUpdate, []common.Violation) {
	var (
		upd        PairUpdate
		violations []common.Violation
	)

	minV, minOK := parseSide(p.MinField, newMin, &violations)
	maxV, maxOK := parseSide(p.MaxField, newMax, &violations)
	if !minOK || !maxOK {
		return PairUpdate{}, violations
	}
	upd.Min, upd.Max = minV, maxV

	effMin, effMax := storedMin, storedMax
	if minV != nil {
		effMin = minV.Value
	}
	if maxV != nil {
		effMax = maxV.Value
	}

	// neither present: pair unchanged, nothing to check
	if minV == nil && maxV == nil {
		return upd, nil
	}

	if effMin != nil && effMax != nil && *effMin > *effMax {
		return PairUpdate{}, p.orderViolation()
	}

	return upd, nil
}

func (p Pair) orderViolation() []common.Violation {
	return violation(p.MinField, p.MinField+" must be less than or equal to "+p.MaxField)
}

// parseSide returns nil for an absent side and false when the side is
// present but malformed.
func parseSide(field string, o models.Optional[json.RawMessage], violations *[]common.Violation) (*models.Optional[int64], bool) {
	if !o.Set {
		return nil, true
	}
	if o.Value == nil || isMissing(*o.Value) {
		n := models.Null[int64]()
		return &n, true
	}
	v, ok := ParseBound(*o.Value)
	if !ok {
		*violations = append(*violations, common.Violation{Field: field, Message: "must be a non-negative integer"})
		return nil, false
	}
	s := models.Some(v)
	return &s, true
}
