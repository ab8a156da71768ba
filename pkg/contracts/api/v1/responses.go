package api

// StatusSuccess marks successful responses
const StatusSuccess = "success"

// Response is the success envelope of every JSON endpoint
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Count  *int        `json:"count,omitempty"`
}

// Success wraps data in the success envelope
func Success(data interface{}) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// SuccessList wraps a collection and its length
func SuccessList(data interface{}, count int) Response {
	return Response{Status: StatusSuccess, Data: data, Count: &count}
}
