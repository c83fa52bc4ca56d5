package location

// Compatibility lists, per parent type, which child types may be placed under it.
// Types missing from the table accept no children.
type Compatibility map[LocationType][]LocationType

// DefaultCompatibility returns the standard parent/child table
func DefaultCompatibility() Compatibility {
	return Compatibility{
		LocationTypeWarehouse:        {LocationTypeProductionFloor, LocationTypeCustomerSite},
		LocationTypeProductionFloor:  {LocationTypeWarehouse, LocationTypeCustomerSite},
		LocationTypeCustomerSite:     {LocationTypeWarehouse, LocationTypeProductionFloor},
		LocationTypeSupplierLocation: {},
		LocationTypeTransit:          {},
		LocationTypeQuarantine:       {},
		LocationTypeOther: {
			LocationTypeWarehouse,
			LocationTypeProductionFloor,
			LocationTypeCustomerSite,
			LocationTypeSupplierLocation,
		},
	}
}

// Allows reports whether child may be placed under parent
func (c Compatibility) Allows(parent, child LocationType) bool {
	for _, t := range c[parent] {
		if t == child {
			return true
		}
	}
	return false
}
