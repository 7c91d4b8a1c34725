// Package kvstore описывает персистентное хранилище строк по строковому ключу
// и его реализации: в памяти, Redis, PostgreSQL и SQLite.
//
// Хранилище само ошибок не скрывает: Get сообщает отдельно «ключ отсутствует»
// и «чтение не удалось». Решение о деградации к значению по умолчанию принимает
// репозиторий, поэтому это поведение видно в контракте, а не спрятано в реализации.
package kvstore

import (
	"context"
	"io"
)

// Store — контракт хранилища ключ-значение.
type Store interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set полностью перезаписывает значение ключа.
	Set(ctx context.Context, key, value string) error
	// Remove удаляет ключ. Удаление отсутствующего ключа ошибкой не является.
	Remove(ctx context.Context, key string) error
}

// Closer — хранилище, которое держит соединения и должно быть закрыто.
type Closer interface {
	Store
	io.Closer
}
