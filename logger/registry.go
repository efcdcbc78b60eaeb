package logger

import "sync"

// loggerRegistry holds named loggers so packages can share a configured
// instance without threading it through every constructor.
type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

var registry = &loggerRegistry{loggers: map[string]*Logger{}}

func (r *loggerRegistry) set(name string, l *Logger) {
	r.mu.Lock()
	r.loggers[name] = l
	r.mu.Unlock()
}

func (r *loggerRegistry) get(name string) (*Logger, bool) {
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	return l, ok
}

// Register stores a named logger for later retrieval with Get.
func Register(name string, l *Logger) {
	registry.set(name, l)
}

// Get returns the logger registered under name. Unregistered names fall
// back to the global logger tagged with name as its component.
func Get(name string) *Logger {
	if l, ok := registry.get(name); ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}
