package entitlement

import "time"

// ErrorPayload тело ответа об ошибке. Других полей в нём не бывает.
type ErrorPayload struct {
	Error string `json:"error"`
}

// InfoPayload тело успешного ответа на действие info.
type InfoPayload struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Version        string `json:"version"`
	Tested         string `json:"tested"`
	Author         string `json:"author"`
	LastUpdated    string `json:"last_updated"`
	BannerLow      string `json:"banner_low"`
	BannerHigh     string `json:"banner_high"`
	PackageURL     string `json:"package_url"`
	DescriptionURL string `json:"description_url"`
}

// Response результат обработки запроса: либо JSON-тело, либо редирект.
type Response struct {
	Action Action
	// Payload: ErrorPayload или InfoPayload; nil для редиректа.
	Payload any
	// Location: подписанная ссылка для действия get.
	Location string
	// ExpiresAt: момент истечения ссылки из Location.
	ExpiresAt time.Time
	// Err: причина отказа, только для логов; клиенту не отдаётся.
	Err error
}

// IsRedirect сообщает, что ответ отдаётся редиректом, а не JSON.
func (r Response) IsRedirect() bool {
	return r.Location != ""
}

// Failed сообщает, что запрос завершился ошибкой.
func (r Response) Failed() bool {
	return r.Err != nil
}
