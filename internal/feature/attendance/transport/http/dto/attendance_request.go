package dto

// ApplyLeaveReq represents the request body for /api/attendance/apply-leave.
// Date defaults to today when omitted.
type ApplyLeaveReq struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// FilterQuery holds the query parameters of /api/attendance/all.
type FilterQuery struct {
	Employee string `form:"employee"`
	Date     string `form:"date"`
	Status   string `form:"status"`
}
