package workflow

import "strings"

// Trigger is an action that moves an invoice header between states
type Trigger string

const (
	TriggerSend   Trigger = "SEND"
	TriggerPay    Trigger = "PAY"
	TriggerCancel Trigger = "CANCEL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// ParseTrigger maps an action name such as "send" to its trigger
func ParseTrigger(action string) (Trigger, bool) {
	t := Trigger(strings.ToUpper(strings.TrimSpace(action)))
	switch t {
	case TriggerSend, TriggerPay, TriggerCancel:
		return t, true
	}
	return "", false
}
