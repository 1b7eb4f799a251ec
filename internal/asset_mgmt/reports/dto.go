package reports

import (
	"time"

	"ASSETRACK-backend/internal/asset_mgmt/assets"
)

type Count struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type Totals struct {
	Assets             int64 `json:"assets"`
	InUse              int64 `json:"in_use"`
	Available          int64 `json:"available"`
	UnderMaintenance   int64 `json:"under_maintenance"`
	Disposed           int64 `json:"disposed"`
	Departments        int64 `json:"departments"`
	Categories         int64 `json:"categories"`
	RecentMovements    int64 `json:"recent_movements"`
	MaintenanceRecords int64 `json:"maintenance_records"`
	RecentMaintenance  int64 `json:"recent_maintenance"`
}

type Percentages struct {
	InUse            float64 `json:"in_use"`
	Available        float64 `json:"available"`
	UnderMaintenance float64 `json:"under_maintenance"`
}

type DepartmentCount struct {
	DepartmentID int64  `json:"id"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	AssetCount   int64  `json:"asset_count"`
}

type TrendPoint struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int64     `json:"count"`
}

type DepartmentStatus struct {
	DepartmentID     int64  `json:"department_id"`
	Department       string `json:"department"`
	Available        int64  `json:"available"`
	InUse            int64  `json:"in_use"`
	UnderMaintenance int64  `json:"under_maintenance"`
}

type Dashboard struct {
	GeneratedAt      time.Time          `json:"generated_at"`
	Totals           Totals             `json:"totals"`
	Percentages      Percentages        `json:"percentages"`
	ByStatus         []Count            `json:"by_status"`
	ByCondition      []Count            `json:"by_condition"`
	ByDepartment     []Count            `json:"by_department"`
	ByCategory       []Count            `json:"by_category"`
	TopDepartments   []DepartmentCount  `json:"top_departments"`
	RecentAssets     []assets.Asset     `json:"recent_assets"`
	NeedingAttention []assets.Asset     `json:"needing_attention"`
	MonthlyTrend     []TrendPoint       `json:"monthly_trend"`
	DepartmentStatus []DepartmentStatus `json:"department_status"`
}

type Report struct {
	TotalAssets      int64   `json:"total_assets"`
	MaintenanceCount int64   `json:"maintenance_count"`
	MovementCount    int64   `json:"movement_count"`
	ByCategory       []Count `json:"by_category"`
	ByDepartment     []Count `json:"by_department"`
}

// ExportRow は台帳エクスポートの1行
type ExportRow struct {
	AssetID       int64
	Name          string
	SerialNumber  string
	Category      string
	Department    string
	Status        string
	Condition     string
	CurrentHolder string
	PurchaseDate  string
	DateAdded     time.Time
}
