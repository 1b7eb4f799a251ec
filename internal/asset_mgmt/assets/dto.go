package assets

import (
	"time"

	"ASSETRACK-backend/internal/asset_mgmt/maintenance"
	"ASSETRACK-backend/internal/asset_mgmt/movements"
)

// ===== Requests =====

// AssetRequest は作成・編集共通（編集は全項目置換）
type AssetRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	CategoryID   *int64  `json:"category_id,omitempty"`
	SerialNumber string  `json:"serial_number" binding:"required,max=100"`
	DepartmentID *int64  `json:"department_id,omitempty"`
	AssignedTo   *string `json:"assigned_to,omitempty"`
	PurchaseDate string  `json:"purchase_date" binding:"required"` // YYYY-MM-DD
	Condition    string  `json:"condition" binding:"max=50"`
	Status       string  `json:"status"`
	Description  string  `json:"description"`
}

// ===== Responses =====

type Asset struct {
	AssetID            int64      `json:"id"`
	Name               string     `json:"name"`
	CategoryID         *int64     `json:"category_id"`
	Category           *string    `json:"category"`
	SerialNumber       string     `json:"serial_number"`
	DepartmentID       *int64     `json:"department_id"`
	Department         *string    `json:"department"`
	AssignedTo         *string    `json:"assigned_to"`
	PurchaseDate       string     `json:"purchase_date"`
	Condition          string     `json:"condition"`
	Status             string     `json:"status"`
	Description        string     `json:"description"`
	DateAdded          time.Time  `json:"date_added"`
	CurrentHolder      *string    `json:"current_holder"`
	LastCheckedOut     *time.Time `json:"last_checked_out"`
	ExpectedReturnTime *time.Time `json:"expected_return_time"`
}

type AssetDetail struct {
	Asset
	Movements          []movements.Movement `json:"movements"`
	MaintenanceRecords []maintenance.Record `json:"maintenance_records"`
}

// ===== Listing =====

type Filter struct {
	Status       *string
	DepartmentID *int64
	CategoryID   *int64
	Q            string // name / serial の部分一致

	// 要対応: status = Under Maintenance OR condition = Poor
	NeedsAttention bool
}
