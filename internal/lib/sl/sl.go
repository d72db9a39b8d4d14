// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Для nil пишет пустую строку, чтобы лог не падал на пути без ошибки.
//
// Пример:
//
//	log.Error("failed to find license", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Op возвращает атрибут с именем операции, под которым пишутся логи обработчика.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}
