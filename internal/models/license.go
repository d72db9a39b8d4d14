// Package models содержит доменные структуры лицензий и продуктов,
// которые читает API проверки лицензий, а также вспомогательные типы
// для приёма данных из JSON-запросов административного API.
package models

import "time"

// License представляет лицензию покупателя на конкретный продукт.
// ValidUntil == nil означает бессрочную лицензию.
type License struct {
	ID         int64      // Идентификатор, присваивается хранилищем
	ProductID  int64      // Внутренний идентификатор продукта
	Email      string     // Email покупателя, сравнивается как непрозрачная строка
	LicenseKey string     // Лицензионный ключ, сравнивается побайтно
	ValidUntil *time.Time // Дата окончания действия; nil, если не истекает
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ActiveAt сообщает, действует ли лицензия в момент now.
// Граница исключающая: лицензия с ValidUntil == now уже истекла.
func (l *License) ActiveAt(now time.Time) bool {
	if l.ValidUntil == nil {
		return true
	}
	return l.ValidUntil.After(now)
}

// DummyLicense используется для приёма данных из JSON-запроса на выпуск лицензии.
// Дата приходит строкой в формате 2006-01-02 и парсится в сервисе.
type DummyLicense struct {
	ProductID  int64  `json:"product_id" validate:"required,gt=0"`
	Email      string `json:"email" validate:"required,email,max=48"`
	ValidUntil string `json:"valid_until,omitempty"`
}
