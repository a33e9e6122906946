package rating

import "github.com/garyjia/courier-billing/internal/domain/entity"

// Side says which end of the shipment a pincode belongs to
type Side string

// Shipment ends
const (
	SideOrigin      Side = "origin"
	SideDestination Side = "destination"
)

// ResolveZone picks the sector serving pincode for service. Among matching
// sectors the lowest PrioritySequence wins and ties go to the lowest id, so
// the result does not depend on the order of sectors.
func ResolveZone(sectors []entity.Sector, side Side, pincode string, service entity.ServiceType) (*entity.Sector, *Error) {
	var best *entity.Sector
	for i := range sectors {
		s := &sectors[i]
		if !s.Covers(pincode) || !s.Supports(service) {
			continue
		}
		if best == nil || s.Precedes(best) {
			best = s
		}
	}

	if best == nil {
		return nil, NewError(ErrZoneUnresolved, "", StageZone, map[string]any{
			"side":         string(side),
			"pincode":      pincode,
			"service_type": string(service),
		})
	}

	found := *best
	return &found, nil
}
