// Package shell is an interactive front end for solving crossword
// structures against word lists.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/crossfill/config"
	"github.com/domino14/crossfill/grid"
	"github.com/domino14/crossfill/lexicon"
	"github.com/domino14/crossfill/render"
	"github.com/domino14/crossfill/solver"
)

var (
	errNoData = errors.New("no data in line")
)

type shellcmd struct {
	cmd  string
	args []string
}

func extractFields(line string) (*shellcmd, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errNoData
	}
	return &shellcmd{cmd: fields[0], args: fields[1:]}, nil
}

type ShellController struct {
	l   *readline.Instance
	cfg *config.Config

	curGrid       *grid.Grid
	curLexicon    *lexicon.Lexicon
	curAssignment solver.Assignment
	lastStats     solver.Stats

	infer      bool
	nodeBudget int
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mcrossfill>\033[0m ",
		HistoryFile:     "/tmp/readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	return &ShellController{
		l:          l,
		cfg:        cfg,
		infer:      cfg.GetBool("infer"),
		nodeBudget: cfg.GetInt("node-budget"),
	}
}

// load reads a structure file and a word list, in parallel since the
// word list can be large.
func (sc *ShellController) load(structurePath, wordsPath string) error {
	var g *grid.Grid
	var lex *lexicon.Lexicon
	eg := errgroup.Group{}
	eg.Go(func() error {
		var err error
		g, err = grid.Load(structurePath)
		return err
	})
	eg.Go(func() error {
		var err error
		lex, err = lexicon.CachedLoad(wordsPath)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}
	sc.curGrid = g
	sc.curLexicon = lex
	sc.curAssignment = nil
	showMessage(fmt.Sprintf("loaded structure (%d slots) and %s (%d words)",
		len(g.Variables()), lex.Name(), lex.Len()), sc.out())
	return nil
}

func (sc *ShellController) solve() error {
	if sc.curGrid == nil {
		return errors.New("load a structure and word list first")
	}
	s := solver.New(sc.curGrid, sc.curLexicon)
	s.SetInference(sc.infer)
	s.SetNodeBudget(sc.nodeBudget)
	asg, err := s.Solve(context.Background())
	sc.lastStats = s.Stats()
	if errors.Is(err, solver.ErrUnsatisfiable) {
		showMessage("No solution.", sc.out())
		return nil
	}
	if err != nil {
		return err
	}
	sc.curAssignment = asg
	sc.show()
	return nil
}

func (sc *ShellController) show() {
	if sc.curAssignment == nil {
		showMessage("nothing solved yet", sc.out())
		return
	}
	showMessage(render.Text(sc.curGrid, sc.curAssignment), sc.out())
}

func (sc *ShellController) save(path string) error {
	if sc.curAssignment == nil {
		return errors.New("nothing solved yet")
	}
	if err := render.SavePNG(sc.curGrid, sc.curAssignment, path); err != nil {
		return err
	}
	showMessage("wrote "+path, sc.out())
	return nil
}

func (sc *ShellController) showStats() {
	showMessage(fmt.Sprintf("nodes: %d  revisions: %d  pruned: %d",
		sc.lastStats.Nodes, sc.lastStats.Revisions, sc.lastStats.Pruned), sc.out())
}

func (sc *ShellController) out() io.Writer {
	return sc.l.Stderr()
}

func usage(w io.Writer) {
	io.WriteString(w, "commands:\n")
	io.WriteString(w, "load <structure> <words> - load a structure file and a word list\n")
	io.WriteString(w, "solve - fill the loaded structure\n")
	io.WriteString(w, "show - print the last fill\n")
	io.WriteString(w, "save <file.png> - save the last fill as an image\n")
	io.WriteString(w, "stats - show solver counters for the last solve\n")
	io.WriteString(w, "infer on|off - maintain arc consistency during search\n")
	io.WriteString(w, "budget <n> - abort search after n nodes (0 = no limit)\n")
	io.WriteString(w, "exit - leave the shell\n")
}

func (sc *ShellController) dispatch(c *shellcmd) (quit bool, err error) {
	switch c.cmd {
	case "exit", "bye":
		return true, nil
	case "help":
		usage(sc.out())
	case "load":
		if len(c.args) != 2 {
			return false, errors.New("usage: load <structure> <words>")
		}
		err = sc.load(c.args[0], c.args[1])
	case "solve":
		err = sc.solve()
	case "show":
		sc.show()
	case "save":
		if len(c.args) != 1 {
			return false, errors.New("usage: save <file.png>")
		}
		err = sc.save(c.args[0])
	case "stats":
		sc.showStats()
	case "infer":
		if len(c.args) != 1 || (c.args[0] != "on" && c.args[0] != "off") {
			return false, errors.New("usage: infer on|off")
		}
		sc.infer = c.args[0] == "on"
	case "budget":
		if len(c.args) != 1 {
			return false, errors.New("usage: budget <n>")
		}
		sc.nodeBudget, err = strconv.Atoi(c.args[0])
	default:
		err = fmt.Errorf("unknown command %q; try help", c.cmd)
	}
	return false, err
}

func (sc *ShellController) Loop() {
	defer sc.l.Close()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		cmd, err := extractFields(line)
		if err != nil {
			continue
		}
		quit, err := sc.dispatch(cmd)
		if err != nil {
			log.Error().Err(err).Msg("")
			showMessage("error: "+err.Error(), sc.out())
		}
		if quit {
			break
		}
	}
	log.Debug().Msg("leaving shell loop")
}
