package stores

import "log"

type NotifyKind string

const (
	NotifySuccess NotifyKind = "success"
	NotifyError   NotifyKind = "error"
	NotifyWarning NotifyKind = "warning"
	NotifyInfo    NotifyKind = "info"
)

// Notifier es el canal único de avisos al usuario. El frontend lo consume
// como toasts; acá solo importa el contrato (tipo, mensaje).
type Notifier interface {
	Notify(kind NotifyKind, message string)
}

// LogNotifier escribe los avisos en el log del proceso.
type LogNotifier struct{}

func (LogNotifier) Notify(kind NotifyKind, message string) {
	log.Printf("[%s] %s", kind, message)
}
