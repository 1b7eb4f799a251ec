package maintenance

const DateLayout = "2006-01-02"

type MaintenanceRequest struct {
	AssetID         int64  `json:"asset_id" binding:"required,gt=0"`
	IssueReported   string `json:"issue_reported" binding:"required"`
	MaintenanceDate string `json:"maintenance_date" binding:"required"` // YYYY-MM-DD
	PerformedBy     string `json:"performed_by" binding:"required,max=100"`
	Remarks         string `json:"remarks"`
}

type Record struct {
	RecordID        int64  `json:"id"`
	RecordULID      string `json:"ulid"`
	AssetID         int64  `json:"asset_id"`
	AssetName       string `json:"asset_name"`
	IssueReported   string `json:"issue_reported"`
	MaintenanceDate string `json:"maintenance_date"`
	PerformedBy     string `json:"performed_by"`
	Remarks         string `json:"remarks"`
}

type Filter struct {
	AssetID *int64
}
