package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/term"
)

const (
	DecoderMonitoring = "decoder" // per-instruction trace
	VerifyMonitoring  = "verify"  // x86asm cross-check
	CLIMonitoring     = "cli"     // command line shell
)

const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12
)

var root atomic.Pointer[slog.Logger]

func init() {
	root.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToUpper(lvl) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "CRIT", "CRITICAL":
		return LevelCrit, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", lvl)
	}
}

// LevelName returns the upper-case name of l, including the two levels slog
// doesn't know about.
func LevelName(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelCrit:
		return "CRIT"
	default:
		return l.String()
	}
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey && len(groups) == 0 {
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(LevelName(lvl))
		}
	}
	return a
}

// NewHandler writes text to terminals and JSON to anything else.
func NewHandler(f *os.File, lvl slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceLevel}
	if term.IsTerminal(int(f.Fd())) {
		return slog.NewTextHandler(f, opts)
	}
	return slog.NewJSONHandler(f, opts)
}

// InitLogger installs a stderr logger at the given level.
func InitLogger(logLevel string) error {
	lvl, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}
	SetDefault(slog.New(NewHandler(os.Stderr, lvl)))
	return nil
}

// SetDefault sets the default global logger
func SetDefault(l *slog.Logger) {
	root.Store(l)
}

// Root returns the root logger
func Root() *slog.Logger {
	return root.Load()
}

// --- Module management ---
// moduleEnabled keeps track of whether a module's debug and trace logging is
// enabled.
var moduleEnabled = map[string]bool{
	DecoderMonitoring: false,
	VerifyMonitoring:  false,
	CLIMonitoring:     true,
}

func EnableModule(module string) {
	moduleEnabled[module] = true
}

func DisableModule(module string) {
	moduleEnabled[module] = false
}

// EnableModules takes a comma separated list, e.g. "decoder,verify".
func EnableModules(modules string) {
	for _, module := range strings.Split(modules, ",") {
		if module = strings.TrimSpace(module); module != "" {
			EnableModule(module)
		}
	}
}

func isModuleEnabled(module string) bool {
	enabled, ok := moduleEnabled[module]
	return ok && enabled
}

func write(level slog.Level, module string, msg string, ctx ...any) {
	logger := Root()
	if !logger.Enabled(context.Background(), level) {
		return
	}
	logger.Log(context.Background(), level, msg, append([]any{"module", module}, ctx...)...)
}

// Trace and Debug are dropped unless the module is enabled.
func Trace(module string, msg string, ctx ...any) {
	if !isModuleEnabled(module) {
		return
	}
	write(LevelTrace, module, msg, ctx...)
}

func Debug(module string, msg string, ctx ...any) {
	if !isModuleEnabled(module) {
		return
	}
	write(LevelDebug, module, msg, ctx...)
}

func Info(module string, msg string, ctx ...any) {
	write(LevelInfo, module, msg, ctx...)
}

func Warn(module string, msg string, ctx ...any) {
	write(LevelWarn, module, msg, ctx...)
}

func Error(module string, msg string, ctx ...any) {
	write(LevelError, module, msg, ctx...)
}
