package monitor

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Alarm is the single audible-alarm resource. It is owned by the Reconciler:
// only the reconciler's state transitions call Start and Stop, never
// presentation code. One alarm covers all simultaneously-new alerts.
type Alarm interface {
	Start()
	Stop()
}

// ConsoleAlarm sounds the alarm on the operator's terminal. It rings the
// terminal bell and logs the transition; a deployment with a proper audio
// device can substitute its own Alarm.
type ConsoleAlarm struct{}

// Start begins sounding the alarm.
func (ConsoleAlarm) Start() {
	fmt.Print("\a")
	logrus.Warn("ALARM sounding: new emergency alert")
}

// Stop silences the alarm.
func (ConsoleAlarm) Stop() {
	logrus.Info("Alarm silenced")
}
