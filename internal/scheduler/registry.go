package scheduler

import "sync"

type worker interface {
	Stop()
	ID() string
}

var (
	registryMu sync.Mutex
	workers    = map[string]worker{}
)

// register makes w the live worker for name, stopping the previous one.
func register(name string, w worker) {
	registryMu.Lock()
	prev := workers[name]
	workers[name] = w
	registryMu.Unlock()

	if prev != nil && prev != w {
		prev.Stop()
	}
}

func unregister(name string, w worker) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if workers[name] == w {
		delete(workers, name)
	}
}

// Running returns the id of the live worker registered under name.
func Running(name string) (string, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	w, ok := workers[name]
	if !ok {
		return "", false
	}
	return w.ID(), true
}
