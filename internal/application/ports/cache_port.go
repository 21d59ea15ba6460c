package ports

import (
	"context"
	"time"
)

// ErrCacheMiss lo devuelve Get cuando la llave no existe.
// Definido aquí para que los casos de uso no conozcan al proveedor concreto.
type cacheMissError struct{}

func (cacheMissError) Error() string { return "cache: llave no encontrada" }

// ErrCacheMiss sentinel para distinguir un miss de un fallo del proveedor.
var ErrCacheMiss error = cacheMissError{}

// Cache define el puerto de caché para la consulta pública de rastreo.
// Cualquier proveedor (Redis, memoria) puede implementarlo.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
