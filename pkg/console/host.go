package console

import (
	"context"
	"errors"
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/common"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/facilitator"
	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"
	"io"
	"os"
	"strings"
)

var (
	ErrQuit           = errors.New("quit")
	ErrUnknownCommand = errors.New("unknown command")
)

const helpText = `status             current time status and agenda
skip               skip the current item
extend             give the current item more time
style <style>      change the facilitation style (gentle, moderate, aggressive, chatting)
quiet              ask the facilitator to stay silent for a while
end                end the meeting
ask <question>     ask the facilitator a question
say <who>: <text>  inject an utterance as if it was transcribed
log                replay the recent log output
help               this text
quit               leave the console`

// Facilitator is what the Host controls.
type Facilitator interface {
	Skip() bool
	Extend() bool
	SetStyle(agenda.Style)
	RequestSilence()
	End()
	Ask(asker, question string) string
	HandleTranscript(facilitator.TranscriptEvent)
	Snapshot() agenda.Snapshot
	FormatTimeStatus() string
}

// Host is the interactive console of the meeting host.
type Host struct {
	Facilitator Facilitator

	// Backlog is replayed by the log command. Optional.
	Backlog *common.LineBuffer

	// Name is used as the speaker of questions asked by the host.
	Name string

	Stdin  io.ReadCloser
	Stdout io.Writer
}

// Execute runs one command line and returns what should be shown to the
// host. It returns ErrQuit if the console should be left.
func (this *Host) Execute(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	command, argument, _ := strings.Cut(line, " ")
	argument = strings.TrimSpace(argument)

	switch strings.ToLower(command) {
	case "status":
		return this.status(), nil
	case "skip":
		if !this.Facilitator.Skip() {
			return "There is nothing to skip.", nil
		}
		return this.status(), nil
	case "extend":
		if !this.Facilitator.Extend() {
			return "There is no item to extend.", nil
		}
		return "Extended the current item.", nil
	case "style":
		var style agenda.Style
		if err := style.Set(argument); err != nil {
			return "", fmt.Errorf("%w; possible values: %v", err, agenda.AllStyles)
		}
		this.Facilitator.SetStyle(style)
		return fmt.Sprintf("Style is now %v.", style), nil
	case "quiet":
		this.Facilitator.RequestSilence()
		return "Staying quiet for a while.", nil
	case "end":
		this.Facilitator.End()
		return "Meeting ended.", nil
	case "ask":
		if argument == "" {
			return "", errors.New("ask requires a question")
		}
		return this.Facilitator.Ask(this.name(), argument), nil
	case "say":
		who, text, ok := strings.Cut(argument, ":")
		if !ok || strings.TrimSpace(text) == "" {
			return "", errors.New("say requires <who>: <text>")
		}
		this.Facilitator.HandleTranscript(facilitator.TranscriptEvent{
			Speaker: strings.TrimSpace(who),
			Text:    strings.TrimSpace(text),
		})
		return "", nil
	case "log":
		if this.Backlog == nil {
			return "No log available.", nil
		}
		var buf strings.Builder
		if _, err := this.Backlog.WriteTo(&buf); err != nil {
			return "", err
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil
	case "help", "?":
		return helpText, nil
	case "quit", "exit":
		return "", ErrQuit
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

func (this *Host) status() string {
	snapshot := this.Facilitator.Snapshot()

	var buf strings.Builder
	buf.WriteString(this.Facilitator.FormatTimeStatus())
	for i, item := range snapshot.Items {
		marker := " "
		if i == snapshot.CurrentItemIndex {
			marker = ">"
		}
		_, _ = fmt.Fprintf(&buf, "\n%s %d. %s (%s) %v", marker, i+1, item.Topic, facilitator.FormatDuration(item.DurationMinutes), item.State)
	}
	if snapshot.Ended {
		buf.WriteString("\nThe meeting is over.")
	}
	return buf.String()
}

func (this *Host) name() string {
	if v := this.Name; v != "" {
		return v
	}
	return "host"
}

// Run reads commands from the terminal until ctx is done, the input is closed
// or the host quits.
func (this *Host) Run(ctx context.Context) error {
	stdin, stdout := this.Stdin, this.Stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if err := enableVirtualTerminal(stdout); err != nil {
		log.WithError(err).
			Debug("Cannot enable virtual terminal processing.")
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "beat> ",
		Stdin:           stdin,
		Stdout:          stdout,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("cannot open console: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-done:
			_ = l.Close()
		}
	}()

	for {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		reply, err := this.Execute(line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			_, _ = fmt.Fprintf(l.Stderr(), "error: %v\n", err)
			continue
		}
		if reply != "" {
			_, _ = fmt.Fprintln(l.Stdout(), reply)
		}
	}
}

func completer() readline.AutoCompleter {
	var styles []readline.PrefixCompleterInterface
	for _, v := range agenda.AllStyles {
		styles = append(styles, readline.PcItem(v.String()))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("status"),
		readline.PcItem("skip"),
		readline.PcItem("extend"),
		readline.PcItem("style", styles...),
		readline.PcItem("quiet"),
		readline.PcItem("end"),
		readline.PcItem("ask"),
		readline.PcItem("say"),
		readline.PcItem("log"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
