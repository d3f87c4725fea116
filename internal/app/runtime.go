package app

import (
	"os"
	"sync"
)

const testModeEnv = "VERIDIAN_TEST_MODE"

var inTestMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether the process should skip runtime side effects
// such as background schedulers. Set VERIDIAN_TEST_MODE=1 before startup;
// the flag is read once and cached for the life of the process.
func InTestMode() bool {
	return inTestMode()
}
