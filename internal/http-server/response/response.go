// Package response описывает JSON‑ответы служебных HTTP‑эндпоинтов.
package response

type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// Health собирает ответ проверки зависимостей: checks — имя зависимости и
// "ok" или текст ошибки.
func Health(checks map[string]string, healthy bool) Response {
	if healthy {
		return Response{Status: StatusOK, Checks: checks}
	}
	return Response{Status: StatusError, Error: "dependency check failed", Checks: checks}
}
