package domain

// JobSheetData is what the scan flow pulls off a photographed job sheet.
// CustomerName and WorkRequired are the required keys; everything else is
// best-effort.
type JobSheetData struct {
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
	BikeModel     string  `json:"bike_model,omitempty"`
	WorkRequired  string  `json:"work_required"`
	LaborCost     float64 `json:"labor_cost,omitempty"`
	TotalCost     float64 `json:"total_cost,omitempty"`
	DateDue       string  `json:"date_due,omitempty"`
}
