package tools

import (
	"fmt"
	"time"

	"github.com/golang/glog"
)

var isEnabled = true
var printTimestamp = true

func EnableLogger() {
	isEnabled = true
}

func DisableLogger() {
	isEnabled = false
}

func EnableLoggerTimestamp() {
	printTimestamp = true
}

func DisableLoggerTimestamp() {
	printTimestamp = false
}

// LogOutput prints a progress line for the user and records it in the glog info log
func LogOutput(val ...interface{}) {
	glog.Infoln(val...)
	if isEnabled {
		line := fmt.Sprintln(val...)
		if printTimestamp {
			line = "[" + time.Now().Format("2006-01-02 15.04:05.000") + "] " + line
		}
		fmt.Print(line)
	}
}
