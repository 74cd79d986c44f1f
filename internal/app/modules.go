package app

import (
	"io"

	"github.com/vk/taskflow/internal/handlers"
	"github.com/vk/taskflow/modules/env"
	"github.com/vk/taskflow/modules/http_request"
	"github.com/vk/taskflow/modules/identity"
	"github.com/vk/taskflow/modules/print"
	"github.com/vk/taskflow/modules/socketio"
)

// coreModules is the definitive list of all handler modules compiled into
// the taskflow binary. print writes to the application's output.
func coreModules(outW io.Writer) []handlers.Module {
	return []handlers.Module{
		&print.Module{Out: outW},
		&identity.Module{},
		&env.Module{},
		&http_request.Module{},
		&socketio.Module{},
	}
}
