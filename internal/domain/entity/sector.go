package entity

import "sort"

// Sector is a franchise-owned delivery area. ZoneCode is the zone
// classification used when looking up rates between two sectors.
type Sector struct {
	ID               int64                    `json:"id"`
	FranchiseID      int64                    `json:"franchise_id"`
	Name             string                   `json:"name"`
	ZoneCode         string                   `json:"zone_code"`
	Pincodes         map[string]struct{}      `json:"-"`
	Capabilities     map[ServiceType]struct{} `json:"-"`
	PrioritySequence int                      `json:"priority_sequence"`
}

// NewSector builds a sector from pincode and capability lists
func NewSector(id, franchiseID int64, name, zoneCode string, pincodes []string, capabilities []ServiceType, priority int) Sector {
	s := Sector{
		ID:               id,
		FranchiseID:      franchiseID,
		Name:             name,
		ZoneCode:         zoneCode,
		Pincodes:         make(map[string]struct{}, len(pincodes)),
		Capabilities:     make(map[ServiceType]struct{}, len(capabilities)),
		PrioritySequence: priority,
	}
	for _, p := range pincodes {
		s.Pincodes[p] = struct{}{}
	}
	for _, c := range capabilities {
		s.Capabilities[c] = struct{}{}
	}
	return s
}

// Covers reports whether the sector serves pincode
func (s *Sector) Covers(pincode string) bool {
	_, ok := s.Pincodes[pincode]
	return ok
}

// Supports reports whether the sector offers service
func (s *Sector) Supports(service ServiceType) bool {
	_, ok := s.Capabilities[service]
	return ok
}

// PincodeList returns the pincode set in ascending order
func (s *Sector) PincodeList() []string {
	out := make([]string, 0, len(s.Pincodes))
	for p := range s.Pincodes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// CapabilityList returns the capability set in ascending order
func (s *Sector) CapabilityList() []ServiceType {
	out := make([]ServiceType, 0, len(s.Capabilities))
	for c := range s.Capabilities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Precedes reports whether s wins over other during zone resolution
func (s *Sector) Precedes(other *Sector) bool {
	if s.PrioritySequence != other.PrioritySequence {
		return s.PrioritySequence < other.PrioritySequence
	}
	return s.ID < other.ID
}
