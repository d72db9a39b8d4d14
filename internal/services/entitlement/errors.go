package entitlement

import "errors"

// Канонические сообщения об ошибках. Клиенты сравнивают их побайтно.
const (
	MsgUnknownAction   = "No such API action"
	MsgInvalidRequest  = "Invalid request"
	MsgProductNotFound = "Product not found."
	MsgInvalidLicense  = "Invalid license or license expired."
	MsgActionFailed    = "Error executing API action."
)

var (
	// ErrMalformedRequest: не передан один из параметров p, e, l.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrUnknownAction: действие не поддерживается.
	ErrUnknownAction = errors.New("unknown action")
	// ErrProductNotFound: продукт не найден среди опубликованных.
	ErrProductNotFound = errors.New("product not found")
	// ErrUnauthorized: лицензия не найдена, не совпадает или истекла.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrActionFailed: действие после проверки лицензии не дало результата.
	ErrActionFailed = errors.New("action failed")
	// ErrInternal: сбой внешней зависимости или таймаут вызова.
	// Наружу отдаётся как MsgActionFailed, причина остаётся в логах.
	ErrInternal = errors.New("internal failure")
)

// Message возвращает каноническое сообщение для ошибки диспетчера.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrUnknownAction):
		return MsgUnknownAction
	case errors.Is(err, ErrMalformedRequest):
		return MsgInvalidRequest
	case errors.Is(err, ErrProductNotFound):
		return MsgProductNotFound
	case errors.Is(err, ErrUnauthorized):
		return MsgInvalidLicense
	default:
		return MsgActionFailed
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, ErrMalformedRequest):
		return "invalid_request"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInternal):
		return "internal"
	default:
		return "action_failed"
	}
}
