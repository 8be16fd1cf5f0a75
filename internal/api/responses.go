package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type BalanceResponse struct {
	MemberID         int    `json:"member_id"`
	CreditsRemaining *int64 `json:"credits_remaining"`
	UnlimitedClasses bool   `json:"unlimited_classes"`
}
