package openapi

type property struct {
	Type    string `json:"type"`
	Example string `json:"example,omitempty"`
}

type errorProperties struct {
	Code    property  `json:"code"`
	Message property  `json:"message"`
	Details *property `json:"details,omitempty"`
}

type errorSchema struct {
	Type       string          `json:"type"`
	Properties errorProperties `json:"properties"`
}

type jsonMedia struct {
	Schema errorSchema `json:"schema"`
}

type errorContent struct {
	JSON jsonMedia `json:"application/json"`
}

type errorResponse struct {
	Description string       `json:"description"`
	Content     errorContent `json:"content"`
}

type standardResponse struct {
	Code     string
	Response errorResponse
}

func newErrorResponse(description, code, message string, details bool) errorResponse {
	props := errorProperties{
		Code:    property{Type: "string", Example: code},
		Message: property{Type: "string", Example: message},
	}
	if details {
		props.Details = &property{Type: "object"}
	}
	return errorResponse{
		Description: description,
		Content: errorContent{
			JSON: jsonMedia{Schema: errorSchema{Type: "object", Properties: props}},
		},
	}
}

// standardResponses are added to every successful operation that lacks
// them, in this order.
var standardResponses = []standardResponse{
	{"400", newErrorResponse("Bad Request - Invalid request parameters or body", "invalid_request", "Invalid request parameters", true)},
	{"401", newErrorResponse("Unauthorized - Missing or invalid authentication", "unauthorized", "Authentication required", false)},
	{"403", newErrorResponse("Forbidden - Insufficient permissions", "forbidden", "Insufficient permissions to perform this action", false)},
	{"404", newErrorResponse("Not Found - Resource does not exist", "not_found", "Resource not found", false)},
	{"500", newErrorResponse("Internal Server Error - An error occurred processing the request", "internal_error", "An internal error occurred", false)},
}
