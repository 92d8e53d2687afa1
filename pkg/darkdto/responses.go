package darkdto

type CreateResponse struct {
	WhiteSecret    string    `json:"white_secret"`
	BoardViewWhite BoardView `json:"board_view__white"`
}

type JoinSecretResponse struct {
	JoinSecret *string `json:"join_secret"`
}

// JoinResponse carries nulls when the join secret is unknown or already used.
type JoinResponse struct {
	BlackSecret    *string    `json:"black_secret"`
	BoardViewBlack *BoardView `json:"board_view__black"`
}

type ValidityResponse struct {
	Valid bool `json:"valid"`
}

type Move struct {
	XFrom int `json:"x_from"`
	YFrom int `json:"y_from"`
	XTo   int `json:"x_to"`
	YTo   int `json:"y_to"`
}

type ReachableResponse struct {
	Moves []Move `json:"moves"`
}

// Problem is the body of every error response.
type Problem struct {
	Problem string `json:"problem"`
	Code    string `json:"code,omitempty"`
}

func (p Problem) Error() string {
	if p.Problem != "" {
		return p.Problem
	}
	if p.Code != "" {
		return p.Code
	}
	return "dark chess service error"
}
