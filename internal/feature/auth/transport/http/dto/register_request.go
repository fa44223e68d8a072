package dto

import openapi_types "github.com/oapi-codegen/runtime/types"

// RegisterReq represents the request body for /api/auth/register.
// Role may be omitted and defaults to employee.
type RegisterReq struct {
	Name       string              `json:"name" binding:"required"`
	Email      openapi_types.Email `json:"email" binding:"required"`
	Password   string              `json:"password" binding:"required"`
	Role       string              `json:"role"`
	EmployeeID string              `json:"employeeId"`
	Department string              `json:"department"`
}

// UpdateProfileReq represents the request body for /api/auth/update.
// Every field is optional; role cannot be changed here.
type UpdateProfileReq struct {
	Name       string               `json:"name"`
	Email      *openapi_types.Email `json:"email"`
	Password   string               `json:"password"`
	EmployeeID string               `json:"employeeId"`
	Department string               `json:"department"`
}
