package models

import "time"

// Статусы публикации продукта в каталоге.
const (
	ProductPublished = "publish"
	ProductDraft     = "draft"
)

// Product описывает запись каталога продуктов.
// API лицензий только читает её; владельцем является каталог.
type Product struct {
	ID          int64
	Slug        string // Публичный идентификатор продукта, параметр p в API
	Title       string
	Description string
	Author      string
	Version     string
	Tested      string // Версия платформы, с которой продукт проверен
	Requires    string // Минимальная требуемая версия платформы
	LastUpdated time.Time
	BannerLow   string
	BannerHigh  string
	Permalink   string
	FileBucket  string // Бакет объектного хранилища с дистрибутивом
	FileName    string // Имя объекта дистрибутива в бакете
	Status      string
}

// Published сообщает, опубликован ли продукт.
func (p *Product) Published() bool {
	return p.Status == ProductPublished
}

// DummyProduct принимает данные продукта из JSON-запроса административного API.
type DummyProduct struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Version     string `json:"version" validate:"required"`
	Tested      string `json:"tested"`
	Requires    string `json:"requires"`
	BannerLow   string `json:"banner_low"`
	BannerHigh  string `json:"banner_high"`
	Permalink   string `json:"permalink" validate:"omitempty,url"`
	FileBucket  string `json:"file_bucket" validate:"required"`
	FileName    string `json:"file_name" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=publish draft"`
}
