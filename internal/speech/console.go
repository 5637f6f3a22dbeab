package speech

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/goffycoder/VOCI-TRADE/internal/interfaces"
)

// ConsoleSpeaker prints instead of playing audio. Used in CONSOLE mode
// and wherever a synthesizer is unavailable.
type ConsoleSpeaker struct{}

var _ interfaces.Speaker = (*ConsoleSpeaker)(nil)

func (ConsoleSpeaker) Say(ctx context.Context, text string) error {
	fmt.Printf("[Ledger]: %s\n", text)
	return nil
}

// ConsolePrompter reads typed input from stdin. ReadSecret disables
// echo so PINs never appear on screen.
type ConsolePrompter struct {
	reader *bufio.Reader
}

var _ interfaces.Prompter = (*ConsolePrompter)(nil)

func NewConsolePrompter() *ConsolePrompter {
	return &ConsolePrompter{reader: bufio.NewReader(os.Stdin)}
}

func (p *ConsolePrompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *ConsolePrompter) ReadSecret(ctx context.Context, prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Piped stdin in tests and scripts: fall back to a plain line.
		return p.ReadLine(ctx, "")
	}

	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// ConsoleListener substitutes typed text for the microphone.
type ConsoleListener struct {
	prompter interfaces.Prompter
}

var _ interfaces.Listener = (*ConsoleListener)(nil)

func NewConsoleListener(prompter interfaces.Prompter) *ConsoleListener {
	return &ConsoleListener{prompter: prompter}
}

func (l *ConsoleListener) Capture(ctx context.Context, d time.Duration) (string, error) {
	return l.prompter.ReadLine(ctx, "[You]: ")
}
