package gps

import "os"

func openMissing() (*os.File, error) {
	return os.Open("/nonexistent/gps/receiver")
}
