package compile

import (
	"fmt"
	"io"
	"strings"

	"go.trai.ch/busy/internal/ui/output"
	"go.trai.ch/busy/internal/ui/style"
)

// Failure describes one failed tool invocation.
type Failure struct {
	Step   string
	Target string
	File   string
	Argv   []string
	Stdout []byte
	Stderr []byte
	Err    error
}

// WriteReport renders f to w. Only the first failure of a batch is rendered.
func WriteReport(w io.Writer, f Failure) {
	s := style.NewStyles(output.Renderer(w))

	subject := f.Target
	if f.File != "" {
		subject += " " + f.File
	}
	fmt.Fprintln(w, s.Title.Render(style.Cross+" "+f.Step+" failed: "+subject))
	if len(f.Argv) > 0 {
		fmt.Fprintln(w, s.Command.Render("$ "+strings.Join(f.Argv, " ")))
	}
	if f.Err != nil {
		fmt.Fprintln(w, s.Label.Render("error:")+" "+f.Err.Error())
	}
	writeStream(w, s, "stdout", f.Stdout)
	writeStream(w, s, "stderr", f.Stderr)
}

func writeStream(w io.Writer, s style.Styles, name string, data []byte) {
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return
	}
	fmt.Fprintln(w, s.Label.Render(name+":"))
	fmt.Fprintln(w, text)
}
