package app

import (
	"io"

	"github.com/specialistvlad/gppgo/internal/registry"
	"github.com/specialistvlad/gppgo/modules/bounds"
	"github.com/specialistvlad/gppgo/modules/cost_limit"
	"github.com/specialistvlad/gppgo/modules/goal_tolerance"
	"github.com/specialistvlad/gppgo/modules/print"
	"github.com/specialistvlad/gppgo/modules/remote"
	"github.com/specialistvlad/gppgo/modules/s3"
	"github.com/specialistvlad/gppgo/modules/socketio"
	"github.com/specialistvlad/gppgo/modules/straight_line"
)

// coreModules is the definitive list of all modules that are compiled into
// the gpp binary. The print module writes to outW.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&bounds.Module{},
		&goal_tolerance.Module{},
		&straight_line.Module{},
		&remote.Module{},
		&cost_limit.Module{},
		&print.Module{Out: outW},
		&socketio.Module{},
		&s3.Module{},
	}
}
