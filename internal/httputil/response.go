package httputil

type BaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type DataResponse struct {
	BaseResponse
	Data any `json:"data"`
}

type ValidationErrorResponse struct {
	BaseResponse
	Errors []string `json:"errors"`
}

func NewBaseResponse(success bool, msg string) BaseResponse {
	return BaseResponse{
		Success: success,
		Message: msg,
	}
}

func NewDataResponse(success bool, msg string, data any) DataResponse {
	return DataResponse{
		BaseResponse: NewBaseResponse(success, msg),
		Data:         data,
	}
}
