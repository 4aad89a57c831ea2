package dto

type SyncPaymentsRequest struct {
	// RFC 3339 timestamp or a YYYY-MM-DD date
	LastSyncTime string `json:"last_sync_time"`
	SyncType     string `json:"sync_type" validate:"omitempty,oneof=incremental full"`
}

type SyncPaymentsResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Count           int    `json:"count"`
	SuccessfulSyncs int    `json:"successfulSyncs"`
	FailedSyncs     int    `json:"failedSyncs"`
	SkippedSyncs    int    `json:"skippedSyncs"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
