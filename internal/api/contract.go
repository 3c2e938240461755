package api

type CommandRequest struct {
	CommandType string         `json:"commandType"`
	Parameters  map[string]any `json:"parameters"`
}

type CommandResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CommandID string `json:"commandId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
