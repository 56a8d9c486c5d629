// Package debugger implements an interactive terminal UI for stepping a
// riscvsim/sim.Simulator forward and backward one cycle at a time,
// showing the register file, the per-stage instruction disassembly, and
// a dump of the decoded current instruction's control-table entry.
package debugger

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"riscvsim/isa"
	"riscvsim/sim"
)

type model struct {
	s       *sim.Simulator
	program []byte
	model_  sim.Model

	prevPC uint32
	err    error
}

// Init loads the program and positions the simulator at its reset vector.
func (m model) Init() tea.Cmd {
	if m.program != nil {
		if err := m.s.LoadProgram(m.program); err != nil {
			m.err = err
		}
	}
	m.s.Reset(m.model_, 0)
	return nil
}

// Update advances or rewinds the simulator in response to a keypress:
// space or "j" steps forward, "k" steps back, "q" quits. A step error
// stops the program so the caller can report it.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit

		case " ", "j":
			m.prevPC = m.s.GetPC()
			if err := m.s.Step(); err != nil {
				m.err = err
				return m, tea.Quit
			}

		case "k":
			if err := m.s.StepBack(); err != nil {
				m.err = err
			}
		}
	}
	return m, nil
}

// registerGrid renders all 32 architectural registers, eight per row.
func (m model) registerGrid() string {
	regs := m.s.GetAllRegisters()
	var rows []string
	for row := 0; row < 4; row++ {
		var cells []string
		for col := 0; col < 8; col++ {
			idx := row*8 + col
			cells = append(cells, fmt.Sprintf("x%-2d %08x", idx, regs[idx]))
		}
		rows = append(rows, strings.Join(cells, "  "))
	}
	return strings.Join(rows, "\n")
}

// pipelineStrip renders the five-stage mnemonic strip in every model. The
// single-cycle and general models fill only IF, so the other cells show
// "-"; the multi-cycle model repeats its one instruction in all five.
func (m model) pipelineStrip() string {
	names := [5]string{"IF", "ID", "EX", "MEM", "WB"}
	st := m.s.GetState()
	var cells []string
	for i, name := range names {
		mnem := st.StageMnemonic[i]
		if mnem == "" {
			mnem = "-"
		}
		cells = append(cells, fmt.Sprintf("%s: %s", name, mnem))
	}
	return strings.Join(cells, " | ")
}

func (m model) status() string {
	return fmt.Sprintf(`
model:  %s
PC:     0x%08x (was 0x%08x)
status: 0x%02x
cycle:  %d
`,
		m.model_,
		m.s.GetPC(),
		m.prevPC,
		m.s.GetStatusRegister(),
		m.s.GetCycle(),
	)
}

// View renders the whole screen: register grid and status on top, the
// pipeline strip, and a spew dump of the decoded current instruction at
// the bottom.
func (m model) View() string {
	word := m.s.GetState().Instr.Value
	var decode string
	if info := isa.Decode(word); info != nil {
		decode = spew.Sdump(*info)
	} else {
		decode = fmt.Sprintf("0x%08x (no match)\n", word)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.registerGrid(),
			m.status(),
		),
		"",
		m.pipelineStrip(),
		"",
		decode,
	)
}

// Run loads program into sim.Simulator s starting in the given model, then
// runs an interactive step/step-back TUI until the user quits.
func Run(s *sim.Simulator, selected sim.Model, program []byte) error {
	m, err := tea.NewProgram(model{s: s, program: program, model_: selected}).Run()
	if err != nil {
		return err
	}
	final := m.(model)
	return final.err
}
