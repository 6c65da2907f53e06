package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// PathPrompt is the question asked before an interactive split.
const PathPrompt = "Enter the path of the JSON file to split"

// ErrNoInput is returned when stdin closes before a path is entered.
var ErrNoInput = errors.New("no input path entered")

// AskInputPath asks for the file to split. A terminal on in gets a huh form;
// anything else (pipes, redirected files) is read as a single line.
func AskInputPath(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return askWithForm(f, out)
	}
	return askLine(in, out)
}

func askWithForm(in *os.File, out io.Writer) (string, error) {
	var path string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(PathPrompt).
				Placeholder("data.json").
				Value(&path),
		),
	).WithInput(in).WithOutput(out)

	if err := form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

func askLine(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintf(out, "%s: ", PathPrompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	path := strings.TrimSpace(line)
	if path == "" && errors.Is(err, io.EOF) {
		return "", ErrNoInput
	}
	return path, nil
}
