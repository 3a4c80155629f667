package dto

// MaintenanceResponse reports one manual mirror maintenance run.
type MaintenanceResponse struct {
	Job   string `json:"job"`
	Count int64  `json:"count"`
}
