package domain

// WaterBalance is the annual groundwater budget of a region (MCM).
type WaterBalance struct {
	Recharge         float64 `json:"recharge"`
	Extraction       float64 `json:"extraction"`
	NaturalDischarge float64 `json:"naturalDischarge"`
	NetBalance       float64 `json:"netBalance"`
}

// BalanceComponent is one labelled row of a water balance, for charting.
type BalanceComponent struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ComputeWaterBalance returns the budget breakdown. ok is false when recharge
// or extraction is missing.
func ComputeWaterBalance(m RegionMetrics) (WaterBalance, bool) {
	if m.GroundWaterRecharge == 0 || m.GroundWaterExtraction == 0 {
		return WaterBalance{}, false
	}
	return WaterBalance{
		Recharge:         m.GroundWaterRecharge,
		Extraction:       m.GroundWaterExtraction,
		NaturalDischarge: m.NaturalDischarge,
		NetBalance:       m.GroundWaterRecharge - m.GroundWaterExtraction - m.NaturalDischarge,
	}, true
}

// Components lists the balance as named rows in display order.
func (b WaterBalance) Components() []BalanceComponent {
	return []BalanceComponent{
		{Name: "Recharge", Value: b.Recharge},
		{Name: "Extraction", Value: b.Extraction},
		{Name: "Natural Discharge", Value: b.NaturalDischarge},
		{Name: "Net Balance", Value: b.NetBalance},
	}
}
