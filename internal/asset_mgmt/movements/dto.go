package movements

import "time"

// ===== Requests =====

type RecordMovementRequest struct {
	AssetID          int64  `json:"asset_id" binding:"required,gt=0"`
	FromDepartmentID *int64 `json:"from_department_id,omitempty"`
	ToDepartmentID   *int64 `json:"to_department_id,omitempty"`
	Remarks          string `json:"remarks"`
}

// UpdateMovementRequest は全項目置換。資産の所属部署は変更しない
type UpdateMovementRequest struct {
	AssetID          int64  `json:"asset_id" binding:"required,gt=0"`
	FromDepartmentID *int64 `json:"from_department_id,omitempty"`
	ToDepartmentID   *int64 `json:"to_department_id,omitempty"`
	Remarks          string `json:"remarks"`
}

// ===== Responses =====

type Movement struct {
	MovementID       int64     `json:"id"`
	MovementULID     string    `json:"ulid"`
	AssetID          int64     `json:"asset_id"`
	AssetName        string    `json:"asset_name"`
	FromDepartmentID *int64    `json:"from_department_id"`
	FromDepartment   *string   `json:"from_department"`
	ToDepartmentID   *int64    `json:"to_department_id"`
	ToDepartment     *string   `json:"to_department"`
	MovedBy          *string   `json:"moved_by"`
	DateMoved        time.Time `json:"date_moved"`
	Remarks          string    `json:"remarks"`
}

type Filter struct {
	AssetID *int64
}
