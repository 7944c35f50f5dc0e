package shell

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cjoudrey/gluahttp"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

const scriptHTTPTimeout = 30 * time.Second

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("caissa_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

type handler func(sc *ShellController, cmd *shellcmd) (*Response, error)

// luaCommand exposes a shell command to scripts. The single string argument
// is parsed like a shell line; the result is the command's message, or a
// string starting with ERROR.
func luaCommand(name string, h handler) lua.LGFunction {
	return func(L *lua.LState) int {
		lv := L.ToString(1)
		sc := getShell(L)
		cmd, err := extractFields(strings.TrimSpace(name + " " + lv))
		if err != nil {
			log.Err(err).Msg("error-parsing-" + name)
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		r, err := h(sc, cmd)
		if err != nil {
			log.Err(err).Msg("error-executing-" + name)
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		L.Push(lua.LString(r.message))
		// return number of results pushed to stack.
		return 1
	}
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	// require("json") and require("http") for scripts that fetch positions
	// or report results.
	luajson.Preload(L)
	L.PreloadModule("http", gluahttp.NewHttpModule(&http.Client{Timeout: scriptHTTPTimeout}).Loader)

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("caissa_shell", lsc)
	L.SetGlobal("caissa_position", L.NewFunction(luaCommand("position", (*ShellController).position)))
	L.SetGlobal("caissa_play", L.NewFunction(luaCommand("play", (*ShellController).play)))
	L.SetGlobal("caissa_undo", L.NewFunction(luaCommand("undo", (*ShellController).undo)))
	L.SetGlobal("caissa_go", L.NewFunction(luaCommand("go", (*ShellController).search)))
	L.SetGlobal("caissa_eval", L.NewFunction(luaCommand("eval", (*ShellController).eval)))
	L.SetGlobal("caissa_set", L.NewFunction(luaCommand("set", (*ShellController).set)))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return msg("script " + filepath + " done"), nil
}
