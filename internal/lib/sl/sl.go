// Package sl содержит мелкие помощники для log/slog.
package sl

import "log/slog"

// Err упаковывает ошибку в атрибут с ключом "error", чтобы записи
// об ошибках выглядели одинаково во всём сервисе.
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}
