// Package debug writes component-tagged diagnostics for the matcher and the
// CLI. Nothing is written unless a component is selected, either through
// TERMSHIELD_DEBUG (e.g. "1", "all" or "match,chunk") or through Enable.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Components that emit debug lines.
const (
	Index    = "index"
	Match    = "match"
	Chunk    = "chunk"
	Cache    = "cache"
	Preserve = "preserve"
	Watch    = "watch"
)

// EnvVar selects components when Enable has not been called.
const EnvVar = "TERMSHIELD_DEBUG"

// Build flag that selects every component:
// go build -ldflags "-X github.com/standardbeagle/termshield/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// QuietMode suppresses all debug output.
var QuietMode = false

const allComponents = "*"

var (
	mu       sync.Mutex
	output   io.Writer
	logFile  *os.File
	selected map[string]bool // nil until Enable; the environment decides
)

func SetQuietMode(enabled bool) {
	QuietMode = enabled
}

// SetDebugOutput sets the destination for debug lines. Nil disables output.
func SetDebugOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enable selects components from a comma separated spec, overriding the
// environment. An empty spec selects every component.
func Enable(spec string) {
	if strings.TrimSpace(spec) == "" {
		spec = "all"
	}
	set := parseComponents(spec)
	mu.Lock()
	selected = set
	mu.Unlock()
}

// Reset drops any Enable selection so the environment decides again.
func Reset() {
	mu.Lock()
	selected = nil
	mu.Unlock()
}

func parseComponents(spec string) map[string]bool {
	set := make(map[string]bool)
	for _, part := range strings.Split(strings.ToLower(spec), ",") {
		switch part = strings.TrimSpace(part); part {
		case "", "0", "false", "off":
		case "1", "true", "all":
			set[allComponents] = true
		default:
			set[part] = true
		}
	}
	return set
}

// Enabled reports whether lines for component would be written.
func Enabled(component string) bool {
	if QuietMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	mu.Lock()
	set := selected
	mu.Unlock()
	if set == nil {
		set = parseComponents(os.Getenv(EnvVar))
	}
	return set[allComponents] || set[strings.ToLower(component)]
}

// OpenLogFile sends debug output to a new file in dir, or in a termshield
// directory under os.TempDir when dir is empty, and returns its path. A
// previously opened log is closed first.
func OpenLogFile(dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "termshield")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}
	name := fmt.Sprintf("termshield-%s-%d.log", time.Now().Format("20060102-150405"), os.Getpid())
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to open debug log: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	output = f
	return path, nil
}

// CloseLog closes the file opened by OpenLogFile, if any.
func CloseLog() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	output = nil
	return err
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

func emit(w io.Writer, component, msg string) {
	fmt.Fprintf(w, "%s [%s] %s", time.Now().Format("15:04:05.000"), component, msg)
}

// Log writes one line for component when it is selected.
func Log(component, format string, args ...interface{}) {
	if !Enabled(component) {
		return
	}
	if w := writer(); w != nil {
		emit(w, strings.ToLower(component), fmt.Sprintf(format, args...))
	}
}

func LogIndex(format string, args ...interface{}) { Log(Index, format, args...) }

func LogMatch(format string, args ...interface{}) { Log(Match, format, args...) }

// LogChunk logs large-document fan-out.
func LogChunk(format string, args ...interface{}) { Log(Chunk, format, args...) }

func LogCache(format string, args ...interface{}) { Log(Cache, format, args...) }

// LogPreserve logs placeholder substitution and restoration.
func LogPreserve(format string, args ...interface{}) { Log(Preserve, format, args...) }

func LogWatch(format string, args ...interface{}) { Log(Watch, format, args...) }

// Fatal records err in the debug output whatever components are selected,
// then returns it wrapped for the exit message. A nil err stays nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	if w := writer(); w != nil && !QuietMode {
		emit(w, "fatal", err.Error()+"\n")
	}
	return fmt.Errorf("fatal error: %w", err)
}
