package response

// Response is the wire envelope every endpoint returns:
// { "success": bool, "data": ..., "message": "..." }
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ListData wraps paginated collections inside the envelope's data field
type ListData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success returns a success envelope wrapping the data
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// Error returns a failure envelope carrying the message shown to the caller
func Error(message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

// List returns a success envelope for a paginated collection
func List(items interface{}, total int64, page, limit int) Response {
	return Response{
		Success: true,
		Data: ListData{
			Items: items,
			Total: total,
			Page:  page,
			Limit: limit,
		},
	}
}
