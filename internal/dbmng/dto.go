package dbmng

type DepartmentRequest struct {
	Name             string  `json:"name" binding:"required,max=100"`
	Location         string  `json:"location" binding:"max=100"`
	HeadOfDepartment *string `json:"head_of_department,omitempty" binding:"omitempty,max=100"`
}

type Department struct {
	DepartmentID     int64   `json:"id"`
	Name             string  `json:"name"`
	Location         string  `json:"location"`
	HeadOfDepartment *string `json:"head_of_department,omitempty"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type Category struct {
	CategoryID  int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
