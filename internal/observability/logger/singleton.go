package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu       sync.RWMutex
	once     sync.Once
	instance *zap.Logger
)

// Init inicializa el logger singleton. Solo la primera llamada tiene efecto.
func Init(cfg Config) {
	once.Do(func() {
		l := build(cfg)
		mu.Lock()
		instance = l
		mu.Unlock()
	})
}

// L retorna el logger singleton.
// Si Init() no fue llamado, crea un logger por defecto (dev, info).
func L() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(Config{Env: "dev", Level: "info"})
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Replace reemplaza el singleton (tests, o un logger construido afuera).
func Replace(l *zap.Logger) {
	once.Do(func() {})
	mu.Lock()
	instance = l
	mu.Unlock()
}

// Named retorna un logger con un nombre de componente.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushea cualquier buffer pendiente. Llamar con defer en main.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
