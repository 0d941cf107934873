package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/specialistvlad/gppgo/internal/app"
	"github.com/specialistvlad/gppgo/internal/nav"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("gpp", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gpp - A configurable global path planning pipeline.

Usage:
  gpp [options] -goal x,y[,yaw] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to a .hcl/.yaml/.yml file or a directory containing such files.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the configuration file or directory.")
	cFlag := flagSet.String("c", "", "Path to the configuration file or directory (shorthand).")
	nameFlag := flagSet.String("name", "gpp", "Pipeline name; its namespace in the configuration. Empty reads the document root.")
	startFlag := flagSet.String("start", "0,0", "Start pose as x,y[,yaw].")
	goalFlag := flagSet.String("goal", "", "Goal pose as x,y[,yaw].")
	toleranceFlag := flagSet.Float64("tolerance", -1, "Goal tolerance for this request. Negative uses the configured tolerance.")
	frameFlag := flagSet.String("frame", "map", "Frame of the start, goal and map.")
	boundsFlag := flagSet.String("bounds", "", "Map extent as minx,miny,maxx,maxy. Empty is unbounded.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Config path determined.", "path", path)

	if path == "" {
		slog.Debug("No config path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if *goalFlag == "" {
		return nil, false, usageError("missing -goal")
	}
	start, err := ParsePose(*startFlag, *frameFlag)
	if err != nil {
		return nil, false, usageError("invalid start: %v", err)
	}
	goal, err := ParsePose(*goalFlag, *frameFlag)
	if err != nil {
		return nil, false, usageError("invalid goal: %v", err)
	}

	var bounds *nav.Bounds
	if *boundsFlag != "" {
		b, err := ParseBounds(*boundsFlag, *frameFlag)
		if err != nil {
			return nil, false, usageError("invalid bounds: %v", err)
		}
		bounds = &b
	}

	if math.IsNaN(*toleranceFlag) {
		return nil, false, usageError("invalid tolerance: NaN")
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath:      path,
		Name:            *nameFlag,
		Start:           start,
		Goal:            goal,
		Tolerance:       *toleranceFlag,
		Bounds:          bounds,
		Frame:           *frameFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// ParsePose reads "x,y" or "x,y,yaw".
func ParsePose(s, frame string) (nav.Pose, error) {
	v, err := parseFloats(s)
	if err != nil {
		return nav.Pose{}, err
	}
	if len(v) != 2 && len(v) != 3 {
		return nav.Pose{}, fmt.Errorf("expected x,y[,yaw], got %q", s)
	}
	p := nav.Pose{Frame: frame, X: v[0], Y: v[1]}
	if len(v) == 3 {
		p.Yaw = v[2]
	}
	return p, nil
}

// ParseBounds reads "minx,miny,maxx,maxy".
func ParseBounds(s, frame string) (nav.Bounds, error) {
	v, err := parseFloats(s)
	if err != nil {
		return nav.Bounds{}, err
	}
	if len(v) != 4 {
		return nav.Bounds{}, fmt.Errorf("expected minx,miny,maxx,maxy, got %q", s)
	}
	return nav.Bounds{FrameID: frame, MinX: v[0], MinY: v[1], MaxX: v[2], MaxY: v[3]}, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%q is not a finite number", part)
		}
		out[i] = f
	}
	return out, nil
}
