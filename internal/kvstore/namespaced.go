package kvstore

import "context"

// Namespaced добавляет префикс ко всем ключам. Так разделяются пространства имён
// платформ: веб-клиент хранит ключи без префикса, нативный — с префиксом "@".
type Namespaced struct {
	next   Store
	prefix string
}

// WithNamespace оборачивает хранилище. Пустой префикс возвращает исходное хранилище.
func WithNamespace(next Store, prefix string) Store {
	if prefix == "" {
		return next
	}
	return &Namespaced{next: next, prefix: prefix}
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.next.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.next.Set(ctx, n.prefix+key, value)
}

func (n *Namespaced) Remove(ctx context.Context, key string) error {
	return n.next.Remove(ctx, n.prefix+key)
}
