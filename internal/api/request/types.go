package request

// EvaluateRequest is the request body for scoring a guess
type EvaluateRequest struct {
	Guess  string `json:"guess"`
	Target string `json:"target"`
}
