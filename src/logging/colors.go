package logging

import "runtime"

var (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorRed   = "\033[31m"
	colorBlue  = "\033[34m"
	colorGray  = "\033[37m"

	colorBgBlue   = "\033[44m"
	colorBgYellow = "\033[43m"
	colorBgRed    = "\033[41m"
)

func init() {
	if runtime.GOOS == "windows" {
		colorReset = ""
		colorBold = ""
		colorRed = ""
		colorBlue = ""
		colorGray = ""
		colorBgBlue = ""
		colorBgYellow = ""
		colorBgRed = ""
	}
}
