package dto

// PageResponse ventana devuelta en los listados. Los listados no cuentan el
// total: el cliente pagina hasta recibir menos elementos que limit.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
