// Package apierror holds the JSON bodies of every 4xx/5xx response. Handlers
// never serialise raw errors: database and driver details stay in the logs.
package apierror

// APIError is the error envelope. RequestID is only filled on 500s so the
// shop can quote it when reporting a failure.
type APIError struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Interno is the body of every unexpected failure.
func Interno(requestID string) *APIError {
	return &APIError{Detail: "Error interno del servidor", RequestID: requestID}
}

// ValidationError lists the offending fields by their JSON name.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validación", Fields: fields}
}

// Regla turns a validator tag into the message shown next to the form field.
func Regla(tag, param string) string {
	switch tag {
	case "required":
		return "obligatorio"
	case "min":
		return "mínimo " + param
	case "max":
		return "máximo " + param
	case "oneof":
		return "debe ser uno de: " + param
	case "uuid":
		return "identificador inválido"
	case "datetime":
		return "fecha inválida, se espera AAAA-MM-DD"
	default:
		return tag
	}
}
